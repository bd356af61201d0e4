package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/shopkeep/engine/dialogue"
	"github.com/nathoo/shopkeep/engine/events"
	"github.com/nathoo/shopkeep/engine/rules"
	"github.com/nathoo/shopkeep/engine/state"
	"github.com/nathoo/shopkeep/types"
)

// Thresholds for the built-in remarks.
const (
	BigSpendThreshold = 100 * Gold
	LowPurseThreshold = 5 * Gold
)

// notices are the built-in remarks followed by the shop's own. The shop's
// remarks win ties through specificity or priority.
func (s *Service) notices() []types.EventHandler {
	first := func(int) int { return 1 }
	builtin := []types.EventHandler{
		{
			EventType: "gold_spent",
			Conditions: []types.Condition{
				{Type: "action_is", Params: map[string]any{"action": "buy"}},
				{Type: "amount_at_least", Params: map[string]any{"value": BigSpendThreshold}},
			},
			Say: s.keeper.Say(dialogue.BigSpend, first),
		},
		{
			EventType: "gold_spent",
			Conditions: []types.Condition{
				{Type: "balance_below", Params: map[string]any{"value": LowPurseThreshold}},
			},
			Priority: 1,
			Say:      s.keeper.Say(dialogue.LowPurse, first),
		},
	}
	return append(builtin, s.info().Notices...)
}

// remarks renders the notices triggered by the turn's events.
func (s *Service) remarks(ctx context.Context, conv *state.Conversation, evts []types.Event) []string {
	if len(evts) == 0 {
		return nil
	}
	f := rules.Facts{Visits: conv.Visits()}
	if p, err := s.deps.Ledger.GetParty(ctx, s.cfg.PartyID); err != nil {
		s.log.Warn("party unavailable for remarks", zap.Error(err))
	} else {
		f.Balance = p.Balance
	}
	return events.Dispatch(evts, s.notices(), f, s.renderEvent)
}

func (s *Service) renderEvent(text string, e types.Event) string {
	item, _ := e.Data["item"].(string)
	r := strings.NewReplacer(
		"{item}", item,
		"{amount}", FormatCoins(toInt64(e.Data["amount"])),
		"{balance}", FormatCoins(toInt64(e.Data["balance"])),
	)
	return s.fill(r.Replace(text))
}

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

// numbered renders items as a 1-based list with prices.
func numbered(items []types.Item) []string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%d. %s (%s)", i+1, it.Name, FormatCoins(it.Price))
	}
	return lines
}

// numberedNames renders names as a 1-based list.
func numberedNames(names []string) []string {
	lines := make([]string, len(names))
	for i, n := range names {
		lines[i] = fmt.Sprintf("%d. %s", i+1, n)
	}
	return lines
}
