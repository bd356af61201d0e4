package resolve

import (
	"testing"

	"github.com/nathoo/shopkeep/catalog/catalogtest"
	"github.com/nathoo/shopkeep/types"
)

func TestMatchCategory(t *testing.T) {
	v := catalogtest.View()
	equipment := v.Categories(types.KindEquipment)

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"weapon", "Weapon", true},
		{"Weapons", "Weapon", true},
		{"adventuring gear", "Adventuring Gear", true},
		{"weapn", "Weapon", true},
		{"tresure", "Treasure", true},
		{"dragons", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := MatchCategory(equipment, tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MatchCategory(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMatchScoped(t *testing.T) {
	v := catalogtest.View()

	tests := []struct {
		kind  types.CategoryKind
		input string
		want  string
		ok    bool
	}{
		{types.KindArmor, "light", "Light", true},
		{types.KindArmor, "show me light armor", "Light", true},
		{types.KindArmor, "shields", "Shield", true},
		{types.KindWeapon, "any simple ranged weapons", "Simple Ranged", true},
		{types.KindGear, "standard gear please", "Standard Gear", true},
		{types.KindTool, "musical instruments", "Musical Instrument", true},
		{types.KindArmor, "robes", "", false},
	}
	for _, tt := range tests {
		got, ok := MatchScoped(v.Categories(tt.kind), tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MatchScoped(%s, %q) = (%q, %v), want (%q, %v)", tt.kind, tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestContainedCategoryPrefersLongest(t *testing.T) {
	v := catalogtest.View()
	hint := ContainedCategory("simple ranged weapon", v)
	if hint == nil || hint.Name != "Simple Ranged" {
		t.Fatalf("got %v, want Simple Ranged", hint)
	}
	if ContainedCategory("nothing at all", v) != nil {
		t.Error("expected no category")
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("dagger", "dagger"); got != 1 {
		t.Errorf("identical = %v", got)
	}
	if got := Similarity("", "dagger"); got != 0 {
		t.Errorf("empty = %v", got)
	}
	if got := Similarity("dager", "dagger"); got < 0.9 {
		t.Errorf("typo = %v, want >= 0.9", got)
	}
}
