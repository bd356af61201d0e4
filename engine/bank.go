package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/nathoo/shopkeep/engine/dispatch"
	"github.com/nathoo/shopkeep/engine/effects"
	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/engine/parser"
	"github.com/nathoo/shopkeep/engine/state"
	"github.com/nathoo/shopkeep/types"
)

// begin marks the conversation as mid-transaction. The engine finishes it
// once the effects have been applied.
func begin(ctx context.Context, conv *state.Conversation) error {
	return conv.SetState(ctx, types.StateInTransaction)
}

func (s *Service) deposit(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	amount := req.Result.Metadata.Amount
	if amount <= 0 {
		if err := req.Conv.Transition(ctx, types.StateAwaitingDepositAmount, parser.DepositGold, none); err != nil {
			return dispatch.Reply{}, err
		}
		return dispatch.Say("How much would you like to deposit?"), nil
	}
	if err := begin(ctx, req.Conv); err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Reply{
		Effects: []types.Effect{effects.Credit("deposit", amount, "")},
		Done:    []string{fmt.Sprintf("Deposited %s into the party purse.", FormatCoins(amount))},
	}, nil
}

func (s *Service) withdraw(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	amount := req.Result.Metadata.Amount
	if amount <= 0 {
		if err := req.Conv.Transition(ctx, types.StateAwaitingWithdrawAmount, parser.WithdrawGold, none); err != nil {
			return dispatch.Reply{}, err
		}
		return dispatch.Say("How much would you like to withdraw?"), nil
	}
	if err := begin(ctx, req.Conv); err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Reply{
		Effects: []types.Effect{effects.Debit("withdraw", amount, "")},
		Done:    []string{fmt.Sprintf("Withdrew %s from the party purse.", FormatCoins(amount))},
	}, nil
}

func (s *Service) balance(ctx context.Context, _ dispatch.Request) (dispatch.Reply, error) {
	p, err := s.party(ctx)
	if err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Say(fmt.Sprintf("The party purse holds %s.", FormatCoins(p.Balance))), nil
}

func (s *Service) ledger(ctx context.Context, _ dispatch.Request) (dispatch.Reply, error) {
	entries, err := s.deps.Ledger.ListTransactions(ctx, s.cfg.PartyID, s.cfg.LedgerLimit)
	if err != nil {
		return dispatch.Reply{}, fmt.Errorf("listing transactions: %w", err)
	}
	if len(entries) == 0 {
		return dispatch.Say("No dealings on the books yet."), nil
	}
	lines := []string{"Your latest dealings:"}
	for _, e := range entries {
		lines = append(lines, ledgerLine(e))
	}
	return dispatch.Say(lines...), nil
}

func ledgerLine(e types.LedgerEntry) string {
	line := e.CreatedAt.Format("2006-01-02 15:04") + " " + e.Action
	if e.ItemName != "" {
		line += " " + e.ItemName
	}
	if e.Amount != 0 {
		line += fmt.Sprintf(" %s, balance %s", FormatCoins(e.Amount), FormatCoins(e.BalanceAfter))
	}
	return line
}

func (s *Service) profile(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	p, err := s.party(ctx)
	if err != nil {
		return dispatch.Reply{}, err
	}
	attempts, won := req.Conv.HaggleStatus()
	haggle := fmt.Sprintf("%d of %d haggles used today", attempts, MaxHaggleAttempts)
	if won {
		haggle = "already had your discount today"
	}
	return dispatch.Say(
		fmt.Sprintf("You're %s of %s.", s.cfg.CharacterID, partyName(p)),
		fmt.Sprintf("Visits: %d. You've %s.", req.Conv.Visits(), haggle),
	), nil
}

func (s *Service) account(ctx context.Context, _ dispatch.Request) (dispatch.Reply, error) {
	p, err := s.party(ctx)
	if err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Say(
		fmt.Sprintf("Account of %s: %s.", partyName(p), FormatCoins(p.Balance)),
		fmt.Sprintf("%d item(s) carried, %d in the stash.", len(p.Inventory), len(p.Stash)),
	), nil
}

func (s *Service) partyInfo(ctx context.Context, _ dispatch.Request) (dispatch.Reply, error) {
	p, err := s.party(ctx)
	if err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Say(fmt.Sprintf("You travel with %s (%s), purse %s.", partyName(p), p.ID, FormatCoins(p.Balance))), nil
}

func partyName(p types.Party) string {
	if p.Name == "" {
		return "your party"
	}
	return p.Name
}

func (s *Service) inventory(ctx context.Context, _ dispatch.Request) (dispatch.Reply, error) {
	p, err := s.party(ctx)
	if err != nil {
		return dispatch.Reply{}, err
	}
	if len(p.Inventory) == 0 {
		return dispatch.Say("You're carrying nothing."), nil
	}
	return dispatch.Say(append([]string{"You're carrying:"}, numberedNames(p.Inventory)...)...), nil
}

func (s *Service) viewStash(ctx context.Context, _ dispatch.Request) (dispatch.Reply, error) {
	p, err := s.party(ctx)
	if err != nil {
		return dispatch.Reply{}, err
	}
	if len(p.Stash) == 0 {
		return dispatch.Say("Your stash is empty."), nil
	}
	return dispatch.Say(append([]string{"In your stash:"}, numberedNames(p.Stash)...)...), nil
}

// held finds the entry of names the turn refers to, by resolved item or by
// the raw text.
func held(names []string, md types.Metadata) (string, bool) {
	for _, it := range md.Items {
		for _, n := range names {
			if strings.EqualFold(n, it.Name) {
				return n, true
			}
		}
	}
	want := normalize.Singular(normalize.Normalize(md.Raw))
	if want == "" {
		return "", false
	}
	for _, n := range names {
		if strings.Contains(normalize.Singular(normalize.Normalize(n)), want) {
			return n, true
		}
	}
	return "", false
}

func (s *Service) stash(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	p, err := s.party(ctx)
	if err != nil {
		return dispatch.Reply{}, err
	}
	if len(p.Inventory) == 0 {
		return dispatch.Say("You've nothing to stash."), nil
	}
	if name, ok := held(p.Inventory, req.Result.Metadata); ok {
		return s.stashName(ctx, req.Conv, name)
	}
	if err := req.Conv.Transition(ctx, types.StateAwaitingStashSelection, parser.StashItem, none); err != nil {
		return dispatch.Reply{}, err
	}
	lines := append([]string{"What shall I put away?"}, numberedNames(p.Inventory)...)
	return dispatch.Say(append(lines, "Give me a number.")...), nil
}

func (s *Service) unstash(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	p, err := s.party(ctx)
	if err != nil {
		return dispatch.Reply{}, err
	}
	if len(p.Stash) == 0 {
		return dispatch.Say("Your stash is empty."), nil
	}
	if name, ok := held(p.Stash, req.Result.Metadata); ok {
		return s.unstashName(ctx, req.Conv, name)
	}
	if err := req.Conv.Transition(ctx, types.StateAwaitingUnstashSelection, parser.UnstashItem, none); err != nil {
		return dispatch.Reply{}, err
	}
	lines := append([]string{"What shall I fetch?"}, numberedNames(p.Stash)...)
	return dispatch.Say(append(lines, "Give me a number.")...), nil
}

func (s *Service) selectStash(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	p, err := s.party(ctx)
	if err != nil {
		return dispatch.Reply{}, err
	}
	n := req.Result.Metadata.Choice
	if n < 1 || n > len(p.Inventory) {
		return dispatch.Say(fmt.Sprintf("Pick a number between 1 and %d.", len(p.Inventory))), nil
	}
	return s.stashName(ctx, req.Conv, p.Inventory[n-1])
}

func (s *Service) selectUnstash(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	p, err := s.party(ctx)
	if err != nil {
		return dispatch.Reply{}, err
	}
	n := req.Result.Metadata.Choice
	if n < 1 || n > len(p.Stash) {
		return dispatch.Say(fmt.Sprintf("Pick a number between 1 and %d.", len(p.Stash))), nil
	}
	return s.unstashName(ctx, req.Conv, p.Stash[n-1])
}

func (s *Service) stashName(ctx context.Context, conv *state.Conversation, name string) (dispatch.Reply, error) {
	if err := begin(ctx, conv); err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Reply{
		Effects: []types.Effect{effects.Stash(name)},
		Done:    []string{fmt.Sprintf("I'll keep your %s safe.", name)},
	}, nil
}

func (s *Service) unstashName(ctx context.Context, conv *state.Conversation, name string) (dispatch.Reply, error) {
	if err := begin(ctx, conv); err != nil {
		return dispatch.Reply{}, err
	}
	return dispatch.Reply{
		Effects: []types.Effect{effects.Unstash(name)},
		Done:    []string{fmt.Sprintf("Here's your %s back.", name)},
	}, nil
}
