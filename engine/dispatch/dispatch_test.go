package dispatch

import (
	"context"
	"testing"

	"github.com/nathoo/shopkeep/engine/parser"
	"github.com/nathoo/shopkeep/types"
)

func named(name string) Handler {
	return func(context.Context, Request) (Reply, error) { return Say(name), nil }
}

func call(t *testing.T, h Handler) string {
	t.Helper()
	rep, err := h(context.Background(), Request{})
	if err != nil || len(rep.Lines) != 1 {
		t.Fatalf("handler: %v %v", rep, err)
	}
	return rep.Lines[0]
}

func testRouter() *Router {
	r := New(named("fallback"))
	r.Handle(types.StateAwaitingConfirmation, parser.Confirm, named("confirm-purchase"))
	r.Handle(types.StateAwaitingConfirmation, parser.BuyItem, named("reselect"))
	r.HandleEverywhere(parser.Gratitude, named("thanks"))
	r.HandleEverywhere(parser.Confirm, named("nothing-pending"))
	r.HandleNumeric(types.StateAwaitingItemSelection, named("select"))
	r.Fallback(parser.BuyItem, named("buy"))
	r.Fallback(parser.CheckBalance, named("balance"))
	return r
}

func TestRoute(t *testing.T) {
	r := testRouter()

	tests := []struct {
		name      string
		state     types.State
		intent    types.Intent
		raw       string
		want      string
		wantRoute Route
	}{
		{"state entry", types.StateAwaitingConfirmation, parser.Confirm, "yes", "confirm-purchase", RouteState},
		{"explicit beats everywhere", types.StateAwaitingConfirmation, parser.Confirm, "sure", "confirm-purchase", RouteState},
		{"confirm with nothing pending", types.StateAwaitingAction, parser.Confirm, "yes", "nothing-pending", RouteState},
		{"new buy mid confirmation", types.StateAwaitingConfirmation, parser.BuyItem, "buy rope", "reselect", RouteState},
		{"gratitude anywhere", types.StateViewingItems, parser.Gratitude, "thanks", "thanks", RouteState},
		{"numeric selection", types.StateAwaitingItemSelection, parser.BuyItem, "2", "select", RouteNumeric},
		{"numeric beats intent", types.StateAwaitingItemSelection, parser.Gratitude, "1 thanks", "select", RouteNumeric},
		{"non numeric in selection", types.StateAwaitingItemSelection, parser.BuyItem, "buy rope", "buy", RouteIntent},
		{"numeric elsewhere is not special", types.StateAwaitingAction, parser.BuyItem, "7", "buy", RouteIntent},
		{"intent chain", types.StateIntroduction, parser.CheckBalance, "balance", "balance", RouteIntent},
		{"default", types.StateIntroduction, parser.Joke, "joke", "fallback", RouteDefault},
		{"unknown", types.StateAwaitingAction, parser.Unknown, "florp", "fallback", RouteDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, route := r.Route(tt.state, tt.intent, tt.raw)
			if route != tt.wantRoute {
				t.Errorf("route = %s, want %s", route, tt.wantRoute)
			}
			if got := call(t, h); got != tt.want {
				t.Errorf("handler = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHandleEverywhereCoversAllStates(t *testing.T) {
	r := testRouter()
	for _, st := range States {
		if !r.Has(st, parser.Gratitude) {
			t.Errorf("gratitude not mapped in %s", st)
		}
	}
}

func TestLeadingNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2", 2, true},
		{" 50 gold", 50, true},
		{"12gp", 12, true},
		{"#3", 3, true},
		{"number 3", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := LeadingNumber(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LeadingNumber(%q) = %d, %v", tt.in, got, ok)
		}
	}
}

func TestRequestItem(t *testing.T) {
	if _, ok := (Request{}).Item(); ok {
		t.Error("empty request has no item")
	}
	req := Request{Result: types.IntentResult{Metadata: types.Metadata{Items: []types.Item{{ID: 7}}}}}
	if it, ok := req.Item(); !ok || it.ID != 7 {
		t.Errorf("Item() = %v, %v", it, ok)
	}
}
