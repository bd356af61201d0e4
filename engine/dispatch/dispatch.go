// Package dispatch routes an interpreted intent to its handler based on the
// conversation state.
package dispatch

import (
	"context"
	"strconv"
	"strings"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/engine/state"
	"github.com/nathoo/shopkeep/types"
)

// States lists every conversation state.
var States = []types.State{
	types.StateIntroduction,
	types.StateAwaitingAction,
	types.StateAwaitingItemSelection,
	types.StateAwaitingConfirmation,
	types.StateViewingCategories,
	types.StateViewingItems,
	types.StateInTransaction,
	types.StateAwaitingDepositAmount,
	types.StateAwaitingWithdrawAmount,
	types.StateAwaitingStashSelection,
	types.StateAwaitingUnstashSelection,
}

// Request is what a handler receives for one turn.
type Request struct {
	Raw    string
	Result types.IntentResult
	Conv   *state.Conversation
	View   *catalog.View
}

// Item returns the first resolved item, if any.
func (r Request) Item() (types.Item, bool) {
	if len(r.Result.Metadata.Items) == 0 {
		return types.Item{}, false
	}
	return r.Result.Metadata.Items[0], true
}

// Reply is a handler's output: lines for the player and ledger effects to
// apply. Done lines are shown only once every effect has been applied.
type Reply struct {
	Lines   []string
	Effects []types.Effect
	Done    []string
}

// Say builds a Reply from lines.
func Say(lines ...string) Reply { return Reply{Lines: lines} }

// Handler serves one routed turn. Returned errors are persistence or
// external failures; the caller turns them into an apology.
type Handler func(ctx context.Context, req Request) (Reply, error)

// Route names the table that produced a handler.
type Route int

// Routing tables, in lookup order.
const (
	RouteNumeric Route = iota
	RouteState
	RouteIntent
	RouteDefault
)

func (r Route) String() string {
	switch r {
	case RouteNumeric:
		return "numeric"
	case RouteState:
		return "state"
	case RouteIntent:
		return "intent"
	default:
		return "default"
	}
}

type key struct {
	state  types.State
	intent types.Intent
}

// Router is the (state, intent) dispatch table. Build it once per service.
type Router struct {
	table    map[key]Handler
	numeric  map[types.State]Handler
	byIntent map[types.Intent]Handler
	def      Handler
}

// New returns an empty router whose default replies with fallback.
func New(fallback Handler) *Router {
	return &Router{
		table:    map[key]Handler{},
		numeric:  map[types.State]Handler{},
		byIntent: map[types.Intent]Handler{},
		def:      fallback,
	}
}

// Handle maps (st, intent) to h, replacing any earlier entry.
func (r *Router) Handle(st types.State, intent types.Intent, h Handler) {
	r.table[key{st, intent}] = h
}

// HandleEverywhere maps intent to h in every state that has no explicit
// entry for it yet.
func (r *Router) HandleEverywhere(intent types.Intent, h Handler) {
	for _, st := range States {
		k := key{st, intent}
		if _, ok := r.table[k]; !ok {
			r.table[k] = h
		}
	}
}

// HandleNumeric routes input that starts with a number while in st to h,
// whatever the interpreter made of it.
func (r *Router) HandleNumeric(st types.State, h Handler) {
	r.numeric[st] = h
}

// Fallback adds intent to the intent-only chain used when no state entry exists.
func (r *Router) Fallback(intent types.Intent, h Handler) {
	r.byIntent[intent] = h
}

// Route picks the handler for a turn. Lookup order: numeric route for the
// state, then (state, intent), then the intent-only chain, then the default.
func (r *Router) Route(st types.State, intent types.Intent, raw string) (Handler, Route) {
	if h, ok := r.numeric[st]; ok {
		if _, ok := LeadingNumber(raw); ok {
			return h, RouteNumeric
		}
	}
	if h, ok := r.table[key{st, intent}]; ok {
		return h, RouteState
	}
	if h, ok := r.byIntent[intent]; ok {
		return h, RouteIntent
	}
	return r.def, RouteDefault
}

// Has reports whether (st, intent) has an explicit entry.
func (r *Router) Has(st types.State, intent types.Intent) bool {
	_, ok := r.table[key{st, intent}]
	return ok
}

// LeadingNumber parses the digits at the start of the input ("2", "50 gold", "12gp").
func LeadingNumber(raw string) (int, bool) {
	norm := normalize.Normalize(raw)
	end := strings.IndexFunc(norm, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(norm)
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(norm[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
