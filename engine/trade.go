package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/engine/dialogue"
	"github.com/nathoo/shopkeep/engine/dispatch"
	"github.com/nathoo/shopkeep/engine/effects"
	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/engine/parser"
	"github.com/nathoo/shopkeep/engine/state"
	"github.com/nathoo/shopkeep/types"
)

func single(it types.Item) types.PendingItem {
	return types.PendingItem{Kind: types.PendingSingle, Item: &it}
}

func list(items []types.Item) types.PendingItem {
	return types.PendingItem{Kind: types.PendingList, Items: items}
}

var none = types.PendingItem{Kind: types.PendingNone}

// pendingItems returns the items a pending reference points at.
func pendingItems(p types.PendingItem) []types.Item {
	switch p.Kind {
	case types.PendingSingle:
		return []types.Item{*p.Item}
	case types.PendingList:
		return p.Items
	case types.PendingRaw, types.PendingNone:
		return nil
	}
	return nil
}

func (s *Service) buy(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	md := req.Result.Metadata
	switch {
	case len(md.Items) == 1:
		return s.offer(ctx, req.Conv, md.Items[0])
	case len(md.Items) > 1:
		return s.choose(ctx, req.Conv, parser.BuyItem, md.Items, "Which one do you mean?")
	case md.Category != nil:
		return s.browseHint(ctx, req, *md.Category)
	case md.Raw != "":
		if err := req.Conv.SetPending(ctx, parser.BuyItem, types.PendingItem{Kind: types.PendingRaw, Raw: md.Raw}); err != nil {
			return dispatch.Reply{}, err
		}
		return dispatch.Say(fmt.Sprintf("I don't stock anything called %q. Try another name, or ask to see the wares.", md.Raw)), nil
	}
	return dispatch.Say("What are you after? Name an item, or ask to see the wares."), nil
}

// offer asks the player to confirm buying it. A haggled price carries over
// only while the same item stays pending.
func (s *Service) offer(ctx context.Context, conv *state.Conversation, it types.Item) (dispatch.Reply, error) {
	price, kept := s.discountFor(conv, it)
	if !kept {
		if _, had := conv.Discount(); had {
			if err := conv.SetDiscount(ctx, nil); err != nil {
				return dispatch.Reply{}, err
			}
		}
	}
	if err := conv.Transition(ctx, types.StateAwaitingConfirmation, parser.BuyItem, single(it)); err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Say(fmt.Sprintf("The %s will cost you %s. Do we have a deal? (yes/no)", it.Name, FormatCoins(price))), nil
}

// discountFor returns the price to charge for it and whether a haggled
// discount applies.
func (s *Service) discountFor(conv *state.Conversation, it types.Item) (int64, bool) {
	d, ok := conv.Discount()
	if !ok || conv.PendingIntent() != parser.BuyItem {
		return it.Price, false
	}
	p := conv.PendingItem()
	if p.Kind != types.PendingSingle || p.Item.ID != it.ID {
		return it.Price, false
	}
	return d, true
}

func (s *Service) sell(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	party, err := s.party(ctx)
	if err != nil {
		return dispatch.Reply{}, err
	}
	named := req.Result.Metadata.Items
	var held []types.Item
	for _, it := range named {
		if effects.Holds(party.Inventory, it.Name) {
			held = append(held, it)
		}
	}
	switch {
	case len(held) == 1:
		return s.offerSale(ctx, req.Conv, held[0])
	case len(held) > 1:
		return s.choose(ctx, req.Conv, parser.SellItem, held, "Which one are you selling?")
	case len(named) > 0:
		return dispatch.Say(fmt.Sprintf("You're not carrying a %s.", named[0].Name)), nil
	}

	sellable := s.sellable(req.View, party.Inventory)
	if len(sellable) == 0 {
		return dispatch.Say("You've nothing I'd buy."), nil
	}
	return s.choose(ctx, req.Conv, parser.SellItem, sellable, "What are you selling?")
}

// sellable returns the catalog entries for the inventory, in inventory order.
func (s *Service) sellable(v *catalog.View, inventory []string) []types.Item {
	var out []types.Item
	seen := map[int]bool{}
	for _, name := range inventory {
		it, ok := catalogItem(v, name)
		if !ok || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

func catalogItem(v *catalog.View, name string) (types.Item, bool) {
	want := normalize.Normalize(name)
	for _, it := range v.Items {
		if it.NormalizedName == want {
			return it, true
		}
	}
	return types.Item{}, false
}

func (s *Service) offerSale(ctx context.Context, conv *state.Conversation, it types.Item) (dispatch.Reply, error) {
	if _, had := conv.Discount(); had {
		if err := conv.SetDiscount(ctx, nil); err != nil {
			return dispatch.Reply{}, err
		}
	}
	if err := conv.Transition(ctx, types.StateAwaitingConfirmation, parser.SellItem, single(it)); err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Say(fmt.Sprintf("I'll give you %s for your %s. Deal? (yes/no)", FormatCoins(SalePrice(it.Price)), it.Name)), nil
}

// choose lists items and waits for the player to pick one for intent.
func (s *Service) choose(ctx context.Context, conv *state.Conversation, intent types.Intent, items []types.Item, header string) (dispatch.Reply, error) {
	if err := conv.Transition(ctx, types.StateAwaitingItemSelection, intent, list(items)); err != nil {
		return dispatch.Reply{}, err
	}
	lines := append([]string{header}, numbered(items)...)
	return dispatch.Say(append(lines, "Give me a number.")...), nil
}

// confirm completes the pending purchase or sale.
func (s *Service) confirm(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	conv := req.Conv
	p := conv.PendingItem()
	if p.Kind != types.PendingSingle {
		if err := conv.Finish(ctx); err != nil {
			return dispatch.Reply{}, err
		}
		return dispatch.Say("There's nothing on the counter to agree to. What'll it be?"), nil
	}
	it := *p.Item

	var reply dispatch.Reply
	switch conv.PendingIntent() {
	case parser.BuyItem:
		price, _ := s.discountFor(conv, it)
		reply.Effects = []types.Effect{effects.Debit("buy", price, it.Name), effects.GiveItem(it.Name)}
		reply.Done = []string{s.say(dialogue.Purchased), fmt.Sprintf("The %s is yours for %s.", it.Name, FormatCoins(price))}
	case parser.SellItem:
		price := SalePrice(it.Price)
		reply.Effects = []types.Effect{effects.TakeItem(it.Name), effects.Credit("sell", price, it.Name)}
		reply.Done = []string{s.say(dialogue.Bought), fmt.Sprintf("Here's %s for the %s.", FormatCoins(price), it.Name)}
	default:
		if err := conv.Finish(ctx); err != nil {
			return dispatch.Reply{}, err
		}
		return dispatch.Say("There's nothing on the counter to agree to. What'll it be?"), nil
	}
	if err := conv.SetState(ctx, types.StateInTransaction); err != nil {
		return dispatch.Reply{}, err
	}
	return reply, nil
}

// cancel drops whatever is pending.
func (s *Service) cancel(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	if err := req.Conv.Finish(ctx); err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Say("No matter. Anything else?"), nil
}

func (s *Service) nothingToConfirm(_ context.Context, _ dispatch.Request) (dispatch.Reply, error) {
	return dispatch.Say("There's nothing waiting on a yes. What can I get you?"), nil
}

func (s *Service) nothingToCancel(_ context.Context, _ dispatch.Request) (dispatch.Reply, error) {
	return dispatch.Say("Nothing to call off. What can I get you?"), nil
}

// confirmChoice answers a bare "yes" while a choice is open: a single
// option is taken, otherwise the player is asked again.
func (s *Service) confirmChoice(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	switch req.Conv.State() {
	case types.StateAwaitingDepositAmount, types.StateAwaitingWithdrawAmount:
		return dispatch.Say("How much? Give me a number, like '20 gold'."), nil
	case types.StateAwaitingItemSelection, types.StateViewingItems:
		if items := pendingItems(req.Conv.PendingItem()); len(items) == 1 {
			return s.act(ctx, req, req.Conv.PendingIntent(), items[0])
		}
	}
	return dispatch.Say("Which one? Give me a number from the list."), nil
}

// selectItem takes a numbered choice from the pending list. A number that
// is not a list position may be the id of an item in the list.
func (s *Service) selectItem(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	items := pendingItems(req.Conv.PendingItem())
	n := req.Result.Metadata.Choice
	if len(items) == 0 {
		if err := req.Conv.Finish(ctx); err != nil {
			return dispatch.Reply{}, err
		}
		if it, ok := req.View.ItemByID(n); ok {
			return s.offer(ctx, req.Conv, it)
		}
		return dispatch.Say("There's nothing to choose from. Ask to see the wares."), nil
	}
	if n >= 1 && n <= len(items) {
		return s.act(ctx, req, req.Conv.PendingIntent(), items[n-1])
	}
	for _, it := range items {
		if it.ID == n {
			return s.act(ctx, req, req.Conv.PendingIntent(), it)
		}
	}
	return dispatch.Say(fmt.Sprintf("Pick a number between 1 and %d.", len(items))), nil
}

// selectNamed handles an item named while a list is open: it is taken for
// the pending intent unless the player said "buy".
func (s *Service) selectNamed(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	intent := req.Conv.PendingIntent()
	items := req.Result.Metadata.Items
	if intent == "" || intent == parser.BuyItem || parser.HasBuyVerb(req.Raw) || len(items) == 0 {
		return s.buy(ctx, req)
	}
	if len(items) == 1 {
		return s.act(ctx, req, intent, items[0])
	}
	return s.choose(ctx, req.Conv, intent, items, "Which one do you mean?")
}

// act carries out intent on a chosen item.
func (s *Service) act(ctx context.Context, req dispatch.Request, intent types.Intent, it types.Item) (dispatch.Reply, error) {
	switch intent {
	case parser.SellItem:
		party, err := s.party(ctx)
		if err != nil {
			return dispatch.Reply{}, err
		}
		if !effects.Holds(party.Inventory, it.Name) {
			return dispatch.Say(fmt.Sprintf("You're not carrying a %s.", it.Name)), nil
		}
		return s.offerSale(ctx, req.Conv, it)
	case parser.InspectItem:
		if err := req.Conv.Finish(ctx); err != nil {
			return dispatch.Reply{}, err
		}
		return dispatch.Say(describe(it)...), nil
	case parser.Haggle:
		return s.haggleOn(ctx, req.Conv, it)
	default:
		return s.offer(ctx, req.Conv, it)
	}
}

// inspect describes an item. During a confirmation the pending deal is
// kept and offered again.
func (s *Service) inspect(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	conv := req.Conv
	md := req.Result.Metadata
	confirming := conv.State() == types.StateAwaitingConfirmation
	switch {
	case len(md.Items) == 0 && md.Raw != "":
		return dispatch.Say(fmt.Sprintf("I don't stock anything called %q.", md.Raw)), nil
	case len(md.Items) == 0:
		return dispatch.Say("Inspect what? Name an item."), nil
	case len(md.Items) > 1 && !confirming:
		return s.choose(ctx, conv, parser.InspectItem, md.Items, "Which one shall I show you?")
	}
	lines := describe(md.Items[0])
	if confirming {
		lines = append(lines, s.reprompt(conv))
	}
	return dispatch.Say(lines...), nil
}

// reprompt repeats the pending question.
func (s *Service) reprompt(conv *state.Conversation) string {
	p := conv.PendingItem()
	if p.Kind != types.PendingSingle {
		return "Anything else?"
	}
	it := *p.Item
	if conv.PendingIntent() == parser.SellItem {
		return fmt.Sprintf("Still selling your %s for %s? (yes/no)", it.Name, FormatCoins(SalePrice(it.Price)))
	}
	price, _ := s.discountFor(conv, it)
	return fmt.Sprintf("Still want the %s for %s? (yes/no)", it.Name, FormatCoins(price))
}

func describe(it types.Item) []string {
	desc := it.Description
	if desc == "" {
		desc = "Nothing remarkable about it."
	}
	kind := []string{}
	if it.Category != "" {
		kind = append(kind, it.Category)
		if sub, ok := catalog.SubKind(it.Category); ok {
			if v := catalog.Field(it, sub); v != "" {
				kind = append(kind, v)
			}
		}
	}
	facts := FormatCoins(it.Price)
	if it.Weight > 0 {
		facts += ", " + strconv.FormatFloat(it.Weight, 'f', -1, 64) + " lb"
	}
	if len(kind) > 0 {
		facts = strings.Join(kind, ", ") + ". " + facts
	}
	return []string{fmt.Sprintf("%s (#%d): %s", it.Name, it.ID, desc), facts + "."}
}

// haggle tries to talk the price of an item down.
func (s *Service) haggle(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	conv := req.Conv
	if attempts, won := conv.HaggleStatus(); won || attempts >= MaxHaggleAttempts {
		return dispatch.Say(s.say(dialogue.NoMoreDeals)), nil
	}
	if conv.State() == types.StateAwaitingConfirmation && conv.PendingIntent() == parser.SellItem {
		return dispatch.Say("My offer stands. " + s.reprompt(conv)), nil
	}
	items := req.Result.Metadata.Items
	switch {
	case len(items) == 1:
		return s.haggleOn(ctx, conv, items[0])
	case len(items) > 1:
		return s.choose(ctx, conv, parser.Haggle, items, "Haggle over which one?")
	}
	return dispatch.Say("Haggle over what? Name the item first."), nil
}

func (s *Service) haggleOn(ctx context.Context, conv *state.Conversation, it types.Item) (dispatch.Reply, error) {
	if attempts, won := conv.HaggleStatus(); won || attempts >= MaxHaggleAttempts {
		return dispatch.Say(s.say(dialogue.NoMoreDeals)), nil
	}
	o := HaggleRoll(s.keeper, s.rng)
	if err := conv.RecordHaggle(ctx, o.Success); err != nil {
		return dispatch.Reply{}, err
	}
	roll := fmt.Sprintf("(rolled %d against %d)", o.Roll, o.DC)

	if !o.Success {
		reply, err := s.offer(ctx, conv, it)
		if err != nil {
			return dispatch.Reply{}, err
		}
		reply.Lines = append([]string{s.say(dialogue.HaggleLose) + " " + roll}, reply.Lines...)
		return reply, nil
	}

	price := Discounted(it.Price, o.Percent)
	if err := conv.Transition(ctx, types.StateAwaitingConfirmation, parser.BuyItem, single(it)); err != nil {
		return dispatch.Reply{}, err
	}
	if err := conv.SetDiscount(ctx, &price); err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Say(
		s.say(dialogue.HaggleWin)+" "+roll,
		fmt.Sprintf("%d%% off: the %s for %s. Deal? (yes/no)", o.Percent, it.Name, FormatCoins(price)),
	), nil
}
