package loader

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/shopkeep/types"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

func TestCompileShop(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Shop {
			name = "Test Shop",
			keeper = "Tess",
			personality = "shrewd",
			hours = "always",
			location = "here",
			rumours = { "one", "two" },
		}
	`); err != nil {
		t.Fatal(err)
	}

	info := compileShop(coll.shop)
	if info.Name != "Test Shop" || info.Keeper != "Tess" || info.Personality != "shrewd" {
		t.Errorf("info = %+v", info)
	}
	if info.Hours != "always" || info.Location != "here" {
		t.Errorf("hours/location = %q/%q", info.Hours, info.Location)
	}
	if diff := cmp.Diff([]string{"one", "two"}, info.Rumours); diff != "" {
		t.Errorf("Rumours mismatch (-want +got):\n%s", diff)
	}
}

func TestShop_DefinedTwice(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	err := L.DoString(`
		Shop { name = "A", keeper = "a" }
		Shop { name = "B", keeper = "b" }
	`)
	if err == nil {
		t.Fatal("expected error for second Shop{}")
	}
}

func TestCompileItem_AllFields(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Item "Lute" {
			id = 50,
			category = "Tools",
			tool_category = "Musical Instrument",
			price = gp(35),
			weight = 2,
			description = "A pear-shaped string instrument.",
		}
	`); err != nil {
		t.Fatal(err)
	}
	if len(coll.items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(coll.items))
	}

	got := compileItem(coll.items[0])
	want := types.Item{
		ID:           50,
		Name:         "Lute",
		Category:     "Tools",
		ToolCategory: "Musical Instrument",
		Price:        3500,
		Weight:       2,
		Description:  "A pear-shaped string instrument.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("item mismatch (-want +got):\n%s", diff)
	}
}

func TestMoneyHelpers(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	tests := []struct {
		expr string
		want float64
	}{
		{"gp(1)", 100},
		{"sp(3)", 30},
		{"cp(7)", 7},
		{"gp(1) + sp(5) + cp(2)", 152},
		{"gp(0.5)", 50},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if err := L.DoString("return " + tt.expr); err != nil {
				t.Fatal(err)
			}
			got := float64(L.CheckNumber(-1))
			L.Pop(1)
			if got != tt.want {
				t.Errorf("%s = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestTaxonomy_KeepsOrder(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Shop { name = "S", keeper = "K" }
		Taxonomy "armor" { "Heavy", "Light" }
	`); err != nil {
		t.Fatal(err)
	}
	c, err := compile(coll)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Heavy", "Light"}, c.taxonomies[types.KindArmor]); diff != "" {
		t.Errorf("taxonomy mismatch (-want +got):\n%s", diff)
	}
}

func TestTaxonomy_Duplicate(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Shop { name = "S", keeper = "K" }
		Taxonomy "armor" { "Heavy" }
		Taxonomy "armor" { "Light" }
	`); err != nil {
		t.Fatal(err)
	}
	if _, err := compile(coll); err == nil {
		t.Fatal("expected error for duplicate taxonomy")
	}
}

func TestCompileHandler_Conditions(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		On("gold_spent", {
			conditions = {
				ActionIs("buy"),
				AmountAtLeast(gp(100)),
				AmountBelow(gp(500)),
				BalanceBelow(sp(5)),
				ItemIs("Rope"),
				Not(VisitsAtLeast(3)),
			},
			say = "Well spent.",
			priority = 4,
		})
	`); err != nil {
		t.Fatal(err)
	}
	if len(coll.handlers) != 1 {
		t.Fatalf("expected 1 handler, got %d", len(coll.handlers))
	}

	got := compileHandler(coll.handlers[0])
	want := types.EventHandler{
		EventType: "gold_spent",
		Priority:  4,
		Say:       "Well spent.",
		Conditions: []types.Condition{
			{Type: "action_is", Params: map[string]any{"action": "buy"}},
			{Type: "amount_at_least", Params: map[string]any{"value": int64(10000)}},
			{Type: "amount_below", Params: map[string]any{"value": int64(50000)}},
			{Type: "balance_below", Params: map[string]any{"value": int64(50)}},
			{Type: "item_is", Params: map[string]any{"item": "Rope"}},
			{Type: "not", Inner: &types.Condition{Type: "visits_at_least", Params: map[string]any{"value": int64(3)}}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("handler mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileHandler_NoConditions(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`On("item_stashed", { say = "Safe and sound." })`); err != nil {
		t.Fatal(err)
	}
	got := compileHandler(coll.handlers[0])
	if len(got.Conditions) != 0 {
		t.Errorf("expected no conditions, got %v", got.Conditions)
	}
	if got.Say != "Safe and sound." {
		t.Errorf("Say = %q", got.Say)
	}
}

func TestToGoValue(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	if err := L.DoString(`return { 1, 2.5, "x", true }`); err != nil {
		t.Fatal(err)
	}
	got := toGoValue(L.CheckTable(-1))
	want := []any{int64(1), 2.5, "x", true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("toGoValue mismatch (-want +got):\n%s", diff)
	}
}
