// Package rules decides which shopkeeper remarks apply to an event.
package rules

import (
	"strings"

	"github.com/nathoo/shopkeep/types"
)

// Facts is what conditions can see besides the event itself.
type Facts struct {
	Visits  int
	Balance int64 // party purse after the turn's effects
}

// EvalCondition evaluates a single condition against an event.
func EvalCondition(c types.Condition, e types.Event, f Facts) bool {
	switch c.Type {
	case "amount_at_least":
		return toInt64(e.Data["amount"]) >= toInt64(c.Params["value"])

	case "amount_below":
		return toInt64(e.Data["amount"]) < toInt64(c.Params["value"])

	case "balance_below":
		balance := f.Balance
		if _, ok := e.Data["balance"]; ok {
			balance = toInt64(e.Data["balance"])
		}
		return balance < toInt64(c.Params["value"])

	case "action_is":
		want, _ := c.Params["action"].(string)
		got, _ := e.Data["action"].(string)
		return want == got

	case "item_is":
		want, _ := c.Params["item"].(string)
		got, _ := e.Data["item"].(string)
		return want != "" && strings.EqualFold(want, got)

	case "visits_at_least":
		return int64(f.Visits) >= toInt64(c.Params["value"])

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, e, f)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, e types.Event, f Facts) bool {
	for _, c := range conditions {
		if !EvalCondition(c, e, f) {
			return false
		}
	}
	return true
}

// Known reports whether a condition type is understood by EvalCondition.
func Known(conditionType string) bool {
	switch conditionType {
	case "amount_at_least", "amount_below", "balance_below", "action_is", "item_is", "visits_at_least", "not":
		return true
	}
	return false
}

// toInt64 converts an any value to int64, handling float64 from JSON/Lua.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
