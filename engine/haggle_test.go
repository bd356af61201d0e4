package engine

import (
	"testing"

	"github.com/nathoo/shopkeep/engine/dialogue"
)

// dice returns its rolls in order, then repeats the last one.
type dice struct {
	rolls []int
	sides []int
}

func (d *dice) Roll(sides int) int {
	d.sides = append(d.sides, sides)
	r := d.rolls[0]
	if len(d.rolls) > 1 {
		d.rolls = d.rolls[1:]
	}
	return r
}

func keeper() dialogue.Personality {
	return dialogue.Personality{HaggleDC: 15, MinDiscountPct: 5, MaxDiscountPct: 10}
}

func TestHaggleRoll(t *testing.T) {
	tests := []struct {
		name    string
		rolls   []int
		success bool
		percent int
	}{
		{"natural 20", []int{20}, true, 10},
		{"natural 1", []int{1}, false, 0},
		{"meets DC", []int{15, 1}, true, 5},
		{"beats DC, top of range", []int{18, 6}, true, 10},
		{"below DC", []int{14}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &dice{rolls: tt.rolls}
			o := HaggleRoll(keeper(), d)
			if o.Success != tt.success || o.Percent != tt.percent {
				t.Errorf("outcome = %+v, want success=%v percent=%d", o, tt.success, tt.percent)
			}
			if o.Roll != tt.rolls[0] || o.DC != 15 {
				t.Errorf("roll/dc = %d/%d", o.Roll, o.DC)
			}
			if d.sides[0] != 20 {
				t.Errorf("first die = d%d, want d20", d.sides[0])
			}
		})
	}
}

func TestHaggleRoll_DiscountDie(t *testing.T) {
	d := &dice{rolls: []int{16, 3}}
	HaggleRoll(keeper(), d)
	if len(d.sides) != 2 || d.sides[1] != 6 {
		t.Errorf("discount die sides = %v, want d6 for 5..10%%", d.sides)
	}
}

func TestDiscounted(t *testing.T) {
	tests := []struct {
		price int64
		pct   int
		want  int64
	}{
		{200, 10, 180},
		{1500, 5, 1425},
		{1, 20, 1},
		{0, 10, 0},
	}
	for _, tt := range tests {
		if got := Discounted(tt.price, tt.pct); got != tt.want {
			t.Errorf("Discounted(%d, %d) = %d, want %d", tt.price, tt.pct, got, tt.want)
		}
	}
}
