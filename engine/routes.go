package engine

import (
	"github.com/nathoo/shopkeep/engine/dispatch"
	"github.com/nathoo/shopkeep/engine/parser"
	"github.com/nathoo/shopkeep/types"
)

// selectionStates wait for the player to pick from a list or give an amount.
var selectionStates = []types.State{
	types.StateAwaitingItemSelection,
	types.StateViewingItems,
	types.StateViewingCategories,
	types.StateAwaitingDepositAmount,
	types.StateAwaitingWithdrawAmount,
	types.StateAwaitingStashSelection,
	types.StateAwaitingUnstashSelection,
}

// routes builds the dispatch table. Explicit (state, intent) entries come
// first so HandleEverywhere only fills the gaps.
func (s *Service) routes() *dispatch.Router {
	r := dispatch.New(s.confused)

	// Numbers typed while a list or an amount is expected.
	r.HandleNumeric(types.StateAwaitingItemSelection, s.selectItem)
	r.HandleNumeric(types.StateViewingItems, s.selectItem)
	r.HandleNumeric(types.StateViewingCategories, s.selectCategory)
	r.HandleNumeric(types.StateAwaitingDepositAmount, s.deposit)
	r.HandleNumeric(types.StateAwaitingWithdrawAmount, s.withdraw)
	r.HandleNumeric(types.StateAwaitingStashSelection, s.selectStash)
	r.HandleNumeric(types.StateAwaitingUnstashSelection, s.selectUnstash)

	// Pending confirmation. A new buy or sell re-enters selection instead
	// of being read as an answer.
	r.Handle(types.StateAwaitingConfirmation, parser.Confirm, s.confirm)
	r.Handle(types.StateAwaitingConfirmation, parser.Cancel, s.cancel)
	r.Handle(types.StateAwaitingConfirmation, parser.BuyItem, s.buy)
	r.Handle(types.StateAwaitingConfirmation, parser.SellItem, s.sell)

	for _, st := range selectionStates {
		r.Handle(st, parser.Cancel, s.cancel)
		r.Handle(st, parser.Confirm, s.confirmChoice)
	}
	r.Handle(types.StateAwaitingItemSelection, parser.BuyItem, s.selectNamed)
	r.Handle(types.StateAwaitingDepositAmount, parser.DepositGold, s.deposit)
	r.Handle(types.StateAwaitingWithdrawAmount, parser.WithdrawGold, s.withdraw)
	r.Handle(types.StateAwaitingStashSelection, parser.StashItem, s.stash)
	r.Handle(types.StateAwaitingUnstashSelection, parser.UnstashItem, s.unstash)
	r.Handle(types.StateViewingItems, parser.NextPage, s.nextPage)
	r.Handle(types.StateViewingItems, parser.PreviousPage, s.previousPage)

	// State-independent intents.
	r.HandleEverywhere(parser.Gratitude, s.thanks)
	r.HandleEverywhere(parser.Confirm, s.nothingToConfirm)
	r.HandleEverywhere(parser.Cancel, s.nothingToCancel)
	r.HandleEverywhere(parser.Help, s.help)
	r.HandleEverywhere(parser.Goodbye, s.goodbye)
	r.HandleEverywhere(parser.ResetConversation, s.reset)
	r.HandleEverywhere(parser.RepeatLast, s.repeat)
	r.HandleEverywhere(parser.InspectItem, s.inspect)
	r.HandleEverywhere(parser.Haggle, s.haggle)
	for _, intent := range []types.Intent{
		parser.ShopName, parser.ShopkeeperName, parser.ShopkeeperInfo, parser.ShopHours,
		parser.LocationInfo, parser.Rumours, parser.Weather, parser.SmallTalk,
		parser.Joke, parser.Compliment, parser.Insult,
	} {
		r.HandleEverywhere(intent, s.chatter)
	}

	// Intent-only chain for everything else.
	r.Fallback(parser.ViewItems, s.viewItems)
	for intent := range parser.IntentKinds {
		r.Fallback(intent, s.browse)
	}
	r.Fallback(parser.BuyItem, s.buy)
	r.Fallback(parser.SellItem, s.sell)
	r.Fallback(parser.NextPage, s.nextPage)
	r.Fallback(parser.PreviousPage, s.previousPage)
	r.Fallback(parser.Greeting, s.greet)
	r.Fallback(parser.DepositGold, s.deposit)
	r.Fallback(parser.WithdrawGold, s.withdraw)
	r.Fallback(parser.CheckBalance, s.balance)
	r.Fallback(parser.ViewLedger, s.ledger)
	r.Fallback(parser.ViewProfile, s.profile)
	r.Fallback(parser.ViewAccount, s.account)
	r.Fallback(parser.ViewParty, s.partyInfo)
	r.Fallback(parser.ViewInventory, s.inventory)
	r.Fallback(parser.ViewStash, s.viewStash)
	r.Fallback(parser.StashItem, s.stash)
	r.Fallback(parser.UnstashItem, s.unstash)
	r.Fallback(parser.ViewCheapest, s.cheapest)
	r.Fallback(parser.ViewMostExpensive, s.mostExpensive)
	r.Fallback(parser.ViewAffordable, s.affordable)
	r.Fallback(parser.RecommendItem, s.recommend)
	return r
}
