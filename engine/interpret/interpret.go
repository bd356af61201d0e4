// Package interpret turns one line of player text into an intent plus the
// items, category or amount it refers to. Interpret has no side effects;
// persisting anything it finds is the caller's job.
package interpret

import (
	"strings"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/engine/parser"
	"github.com/nathoo/shopkeep/engine/resolve"
	"github.com/nathoo/shopkeep/types"
)

// Options tunes interpretation.
type Options struct {
	// Threshold is the minimum ranker confidence trusted outright.
	Threshold float64
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{Threshold: parser.DefaultThreshold}
}

// Interpret classifies text against the conversation snapshot and catalog view.
// Resolution order, first applicable wins:
//  1. a numeric or inspect request during a pending confirmation peeks at an item;
//  2. an item named in the text decides the intent by its verb;
//  3. the keyword ranker, enriched per intent;
//  4. long-tail keyword sets, then a bare item mention.
func Interpret(text string, snap types.ConversationSnapshot, v *catalog.View, opts Options) types.IntentResult {
	if v == nil {
		v = catalog.NewView(nil, nil)
	}
	if res, ok := confirmationPeek(text, snap, v); ok {
		return res
	}
	if res, ok := itemFirst(text, v); ok {
		return res
	}
	rank := parser.Rank(text)
	if rank.Intent != parser.Unknown && rank.Confidence >= opts.Threshold {
		res := enrich(rank.Intent, text, snap, v)
		res.Metadata.Confidence = rank.Confidence
		return res
	}
	res := longTail(text, snap, v)
	res.Metadata.Confidence = rank.Confidence
	return res
}

// confirmationPeek lets a player inspect an item without losing the
// purchase awaiting yes or no.
func confirmationPeek(text string, snap types.ConversationSnapshot, v *catalog.View) (types.IntentResult, bool) {
	if snap.State != types.StateAwaitingConfirmation || parser.IsBareYesNo(text) {
		return types.IntentResult{}, false
	}
	inspect := parser.HasInspectVerb(text)
	_, numeric := parser.NumericToken(text)
	if !inspect && !numeric {
		return types.IntentResult{}, false
	}
	// "buy 12" mid-confirmation is a new purchase, not a peek.
	if !inspect && (parser.HasBuyVerb(text) || parser.HasSellVerb(text)) {
		return types.IntentResult{}, false
	}
	m := resolve.FindItem(text, v, snap.PendingItem)
	if !m.Found() {
		return types.IntentResult{}, false
	}
	return withItems(parser.InspectItem, m), true
}

// itemFirst short-circuits when the text names catalog items. The pending
// fallback and bare category hints do not count.
func itemFirst(text string, v *catalog.View) (types.IntentResult, bool) {
	if parser.IsBanking(text) {
		return types.IntentResult{}, false
	}
	m := resolve.FindItem(text, v, types.PendingItem{Kind: types.PendingNone})
	if !m.Found() {
		return types.IntentResult{}, false
	}
	return withItems(ItemVerb(text), m), true
}

// ItemVerb picks the acting intent for text that names an item. Priority:
// inspect, haggle, unstash, stash, sell, buy; BUY_ITEM when no verb is present.
// Unstash is tested first because "take it out of the stash" mentions both.
func ItemVerb(text string) types.Intent {
	switch {
	case parser.HasInspectVerb(text):
		return parser.InspectItem
	case parser.HasHaggleVerb(text):
		return parser.Haggle
	case parser.HasUnstashVerb(text):
		return parser.UnstashItem
	case parser.HasStashVerb(text):
		return parser.StashItem
	case parser.HasSellVerb(text):
		return parser.SellItem
	default:
		return parser.BuyItem
	}
}

func enrich(intent types.Intent, text string, snap types.ConversationSnapshot, v *catalog.View) types.IntentResult {
	res := types.IntentResult{Intent: intent}
	switch intent {
	case parser.BuyItem:
		m := resolve.FindItem(text, v, snap.PendingItem)
		if m.Found() || m.Raw != "" {
			return withItems(intent, m)
		}
		if m.Category != nil {
			res.Metadata.Category = m.Category
		} else {
			res.Metadata.Category = resolve.ContainedCategory(normalize.Normalize(text), v)
		}
		res.Metadata.Raw = itemQuery(text)

	case parser.SellItem, parser.InspectItem, parser.Haggle, parser.StashItem, parser.UnstashItem:
		m := resolve.FindItem(text, v, snap.PendingItem)
		res = withItems(intent, m)
		if !m.Found() && m.Raw == "" {
			res.Metadata.Raw = itemQuery(text)
		}

	case parser.DepositGold, parser.WithdrawGold:
		if amount, ok := parser.ParseAmount(text); ok {
			res.Metadata.Amount = amount
		}

	case parser.ViewEquipmentCategory, parser.ViewWeaponCategory, parser.ViewArmorCategory,
		parser.ViewGearCategory, parser.ViewToolCategory, parser.ViewTreasureCategory:
		kind := parser.IntentKinds[intent]
		if name, ok := categoryValue(kind, text, v); ok {
			res.Metadata.Category = &types.CategoryHint{Kind: kind, Name: name}
		}

	case parser.NextPage, parser.PreviousPage:
		if n, ok := parser.NumericToken(text); ok {
			res.Metadata.Choice = n
		}
	}
	return res
}

// categoryValue resolves the taxonomy value a category-view intent refers to.
func categoryValue(kind types.CategoryKind, text string, v *catalog.View) (string, bool) {
	names := v.Categories(kind)
	if kind == types.KindEquipment {
		if name, ok := resolve.MatchCategory(names, text); ok {
			return name, true
		}
	}
	return resolve.MatchScoped(names, text)
}

func longTail(text string, snap types.ConversationSnapshot, v *catalog.View) types.IntentResult {
	if parser.HasBuyVerb(text) {
		return enrich(parser.BuyItem, text, snap, v)
	}
	if hint := resolve.ContainedCategory(normalize.Normalize(text), v); hint != nil {
		return types.IntentResult{
			Intent:   parser.CategoryIntents[hint.Kind],
			Metadata: types.Metadata{Category: hint},
		}
	}
	switch {
	case parser.IsConfirm(text):
		return types.IntentResult{Intent: parser.Confirm}
	case parser.IsCancel(text):
		return types.IntentResult{Intent: parser.Cancel}
	case parser.IsGratitude(text):
		return types.IntentResult{Intent: parser.Gratitude}
	case parser.IsGoodbye(text):
		return types.IntentResult{Intent: parser.Goodbye}
	case parser.HasInspectVerb(text):
		return withItems(parser.InspectItem, resolve.FindItem(text, v, snap.PendingItem))
	}
	if it, ok := resolve.MentionedItem(text, v); ok {
		return types.IntentResult{Intent: parser.BuyItem, Metadata: types.Metadata{Items: []types.Item{it}}}
	}
	return types.IntentResult{Intent: parser.Unknown}
}

func withItems(intent types.Intent, m resolve.Match) types.IntentResult {
	return types.IntentResult{
		Intent: intent,
		Metadata: types.Metadata{
			Items:    m.Items,
			Category: m.Category,
			Raw:      m.Raw,
		},
	}
}

// itemQuery is the text left once filler, stopwords and the verb are gone.
func itemQuery(text string) string {
	return strings.Join(parser.StripLeadingVerb(normalize.Tokens(normalize.Preprocess(text))), " ")
}
