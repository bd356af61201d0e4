package engine

import "github.com/nathoo/shopkeep/engine/dialogue"

// MaxHaggleAttempts is how many haggles a character gets per window.
const MaxHaggleAttempts = 3

// Roller rolls dice. *RNG implements it.
type Roller interface {
	Roll(sides int) int
}

// HaggleOutcome is the result of one haggle roll.
type HaggleOutcome struct {
	Roll    int
	DC      int
	Success bool
	Percent int // discount granted on success
}

// HaggleRoll rolls 1d20 against the keeper's DC. A natural 20 wins the
// keeper's best discount; a natural 1 always fails. Any other success
// rolls a discount between the keeper's minimum and maximum.
func HaggleRoll(p dialogue.Personality, rng Roller) HaggleOutcome {
	o := HaggleOutcome{Roll: rng.Roll(20), DC: p.HaggleDC}
	switch {
	case o.Roll == 20:
		o.Success, o.Percent = true, p.MaxDiscountPct
	case o.Roll == 1:
	case o.Roll >= o.DC:
		o.Success = true
		o.Percent = p.MinDiscountPct + rng.Roll(p.MaxDiscountPct-p.MinDiscountPct+1) - 1
	}
	return o
}

// Discounted takes pct percent off price, never going below one copper.
func Discounted(price int64, pct int) int64 {
	d := price * int64(100-pct) / 100
	if d < 1 && price > 0 {
		d = 1
	}
	return d
}
