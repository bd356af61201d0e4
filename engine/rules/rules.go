package rules

import (
	"sort"

	"github.com/nathoo/shopkeep/types"
)

// Select returns the remark to make for one event: handlers for the event
// type whose conditions pass, ranked by specificity, then priority, then
// source order. At most one handler wins per event.
func Select(handlers []types.EventHandler, e types.Event, f Facts) (types.EventHandler, bool) {
	type candidate struct {
		h     types.EventHandler
		order int
	}
	var candidates []candidate
	for i, h := range handlers {
		if h.EventType != e.Type {
			continue
		}
		if !EvalAllConditions(h.Conditions, e, f) {
			continue
		}
		candidates = append(candidates, candidate{h, i})
	}
	if len(candidates) == 0 {
		return types.EventHandler{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := Specificity(candidates[i].h), Specificity(candidates[j].h)
		if si != sj {
			return si > sj
		}
		if candidates[i].h.Priority != candidates[j].h.Priority {
			return candidates[i].h.Priority > candidates[j].h.Priority
		}
		return candidates[i].order < candidates[j].order
	})
	return candidates[0].h, true
}

// Specificity returns a numeric score for ranking handlers.
// Higher is more specific; an item condition counts double.
func Specificity(h types.EventHandler) int {
	score := 0
	for _, c := range h.Conditions {
		score++
		if c.Type == "item_is" {
			score++
		}
	}
	return score
}
