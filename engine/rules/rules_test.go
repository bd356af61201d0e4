package rules

import (
	"testing"

	"github.com/nathoo/shopkeep/types"
)

func spent(amount, balance int64, item string) types.Event {
	return types.Event{Type: "gold_spent", Data: map[string]any{"action": "buy", "amount": amount, "balance": balance, "item": item}}
}

func TestEvalCondition(t *testing.T) {
	e := spent(5000, 300, "Chain Mail")
	f := Facts{Visits: 3, Balance: 9999}

	tests := []struct {
		name string
		cond types.Condition
		want bool
	}{
		{"amount at least: equal", types.Condition{Type: "amount_at_least", Params: map[string]any{"value": 5000}}, true},
		{"amount at least: above", types.Condition{Type: "amount_at_least", Params: map[string]any{"value": 5001}}, false},
		{"amount at least: lua float", types.Condition{Type: "amount_at_least", Params: map[string]any{"value": 4999.0}}, true},
		{"amount below", types.Condition{Type: "amount_below", Params: map[string]any{"value": 6000}}, true},
		{"balance below uses event balance", types.Condition{Type: "balance_below", Params: map[string]any{"value": 500}}, true},
		{"action is", types.Condition{Type: "action_is", Params: map[string]any{"action": "buy"}}, true},
		{"action is, other action", types.Condition{Type: "action_is", Params: map[string]any{"action": "withdraw"}}, false},
		{"item is, case-insensitive", types.Condition{Type: "item_is", Params: map[string]any{"item": "chain mail"}}, true},
		{"item is, other item", types.Condition{Type: "item_is", Params: map[string]any{"item": "Dagger"}}, false},
		{"visits at least", types.Condition{Type: "visits_at_least", Params: map[string]any{"value": 3}}, true},
		{"visits at least, too many", types.Condition{Type: "visits_at_least", Params: map[string]any{"value": 4}}, false},
		{"not inverts", types.Condition{Type: "not", Inner: &types.Condition{Type: "visits_at_least", Params: map[string]any{"value": 4}}}, true},
		{"not without inner", types.Condition{Type: "not"}, true},
		{"unknown type", types.Condition{Type: "moon_is_full"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvalCondition(tt.cond, e, f); got != tt.want {
				t.Errorf("EvalCondition = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBalanceBelowFallsBackToFacts(t *testing.T) {
	e := types.Event{Type: "item_gained", Data: map[string]any{"item": "Torch"}}
	c := types.Condition{Type: "balance_below", Params: map[string]any{"value": 100}}
	if !EvalCondition(c, e, Facts{Balance: 50}) {
		t.Error("expected facts balance 50 < 100")
	}
	if EvalCondition(c, e, Facts{Balance: 150}) {
		t.Error("expected facts balance 150 >= 100")
	}
}

func TestEvalAllConditions_Empty(t *testing.T) {
	if !EvalAllConditions(nil, types.Event{}, Facts{}) {
		t.Error("empty condition list should pass")
	}
}

func TestSelect(t *testing.T) {
	big := types.Condition{Type: "amount_at_least", Params: map[string]any{"value": 1000}}
	mail := types.Condition{Type: "item_is", Params: map[string]any{"item": "Chain Mail"}}
	handlers := []types.EventHandler{
		{EventType: "gold_spent", Say: "generic"},
		{EventType: "gold_spent", Conditions: []types.Condition{big}, Say: "big"},
		{EventType: "gold_spent", Conditions: []types.Condition{mail}, Say: "mail"},
		{EventType: "gold_received", Say: "thanks"},
	}

	tests := []struct {
		name  string
		event types.Event
		want  string
		ok    bool
	}{
		{"item condition is most specific", spent(7500, 0, "Chain Mail"), "mail", true},
		{"amount condition beats generic", spent(1500, 0, "Longsword"), "big", true},
		{"generic catches the rest", spent(200, 0, "Dagger"), "generic", true},
		{"other type", types.Event{Type: "gold_received"}, "thanks", true},
		{"no handler", types.Event{Type: "item_lost"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := Select(handlers, tt.event, Facts{})
			if ok != tt.ok || h.Say != tt.want {
				t.Errorf("Select = (%q, %v), want (%q, %v)", h.Say, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSelect_PriorityThenSourceOrder(t *testing.T) {
	handlers := []types.EventHandler{
		{EventType: "item_gained", Say: "first"},
		{EventType: "item_gained", Say: "second"},
		{EventType: "item_gained", Priority: 5, Say: "urgent"},
	}
	h, _ := Select(handlers, types.Event{Type: "item_gained"}, Facts{})
	if h.Say != "urgent" {
		t.Errorf("got %q, want urgent", h.Say)
	}
	h, _ = Select(handlers[:2], types.Event{Type: "item_gained"}, Facts{})
	if h.Say != "first" {
		t.Errorf("got %q, want first", h.Say)
	}
}
