// Package events turns the events emitted by applied effects into
// shopkeeper remarks. Single pass: remarks never emit further events.
package events

import (
	"github.com/nathoo/shopkeep/engine/rules"
	"github.com/nathoo/shopkeep/types"
)

// Types lists the events the ledger emits.
var Types = []string{
	"gold_spent",
	"gold_received",
	"item_gained",
	"item_lost",
	"item_stashed",
	"item_unstashed",
}

// Known reports whether eventType is one of Types.
func Known(eventType string) bool {
	for _, t := range Types {
		if t == eventType {
			return true
		}
	}
	return false
}

// Render fills a remark's placeholders for the event that triggered it.
type Render func(text string, e types.Event) string

// Dispatch picks at most one remark per event, in event order, and renders it.
func Dispatch(evts []types.Event, handlers []types.EventHandler, f rules.Facts, render Render) []string {
	var lines []string
	for _, e := range evts {
		h, ok := rules.Select(handlers, e, f)
		if !ok || h.Say == "" {
			continue
		}
		text := h.Say
		if render != nil {
			text = render(text, e)
		}
		if text != "" {
			lines = append(lines, text)
		}
	}
	return lines
}
