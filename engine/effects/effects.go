// Package effects implements centralized ledger mutation via the Apply function.
// Every effect type is one atomic operation against the party ledger.
package effects

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nathoo/shopkeep/types"
)

var (
	// ErrPartyNotFound is returned by a Ledger for an unknown party.
	ErrPartyNotFound = errors.New("party not found")
	// ErrPartyExists is returned by CreateParty for a party that already exists.
	ErrPartyExists = errors.New("party already exists")
	// ErrInsufficientFunds means a debit would take the balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPurseOverflow means a credit would exceed the largest balance a purse can hold.
	ErrPurseOverflow = errors.New("purse would overflow")
	// ErrItemNotHeld means an item is missing from the inventory or stash.
	ErrItemNotHeld = errors.New("item not held")
)

// Ledger stores parties and their transaction history.
type Ledger interface {
	GetParty(ctx context.Context, id string) (types.Party, error)
	CreateParty(ctx context.Context, p types.Party) error
	UpdatePartyBalance(ctx context.Context, id string, balance int64) error
	UpdatePartyItems(ctx context.Context, id string, inventory, stash []string) error
	RecordTransaction(ctx context.Context, entry types.LedgerEntry) error
	ListTransactions(ctx context.Context, partyID string, limit int) ([]types.LedgerEntry, error)
}

// Effect types.
const (
	TypeDebit       = "debit"
	TypeCredit      = "credit"
	TypeGiveItem    = "give_item"
	TypeTakeItem    = "take_item"
	TypeStashItem   = "stash_item"
	TypeUnstashItem = "unstash_item"
)

// Context identifies who the effects are applied for.
type Context struct {
	PartyID     string
	CharacterID string
	Now         time.Time
}

// Debit takes amount copper from the party for action ("buy", "withdraw").
func Debit(action string, amount int64, item string) types.Effect {
	return types.Effect{Type: TypeDebit, Params: map[string]any{"action": action, "amount": amount, "item": item}}
}

// Credit pays amount copper to the party for action ("sell", "deposit").
func Credit(action string, amount int64, item string) types.Effect {
	return types.Effect{Type: TypeCredit, Params: map[string]any{"action": action, "amount": amount, "item": item}}
}

// GiveItem adds item to the party inventory.
func GiveItem(item string) types.Effect {
	return types.Effect{Type: TypeGiveItem, Params: map[string]any{"item": item}}
}

// TakeItem removes item from the party inventory.
func TakeItem(item string) types.Effect {
	return types.Effect{Type: TypeTakeItem, Params: map[string]any{"item": item}}
}

// Stash moves item from the inventory into the shop stash.
func Stash(item string) types.Effect {
	return types.Effect{Type: TypeStashItem, Params: map[string]any{"item": item}}
}

// Unstash moves item from the stash back into the inventory.
func Unstash(item string) types.Effect {
	return types.Effect{Type: TypeUnstashItem, Params: map[string]any{"item": item}}
}

// Apply applies effects in order against the ledger. It stops at the first
// failing effect; effects already applied stay applied. Returns the events
// emitted by the effects that succeeded.
func Apply(ctx context.Context, l Ledger, effs []types.Effect, ec Context) ([]types.Event, error) {
	var events []types.Event
	if len(effs) == 0 {
		return nil, nil
	}
	if ec.Now.IsZero() {
		ec.Now = time.Now()
	}

	for _, eff := range effs {
		party, err := l.GetParty(ctx, ec.PartyID)
		if err != nil {
			return events, fmt.Errorf("loading party %s: %w", ec.PartyID, err)
		}
		item, _ := eff.Params["item"].(string)

		switch eff.Type {
		case TypeDebit, TypeCredit:
			amount := toInt64(eff.Params["amount"])
			action, _ := eff.Params["action"].(string)
			if eff.Type == TypeCredit && amount > math.MaxInt64-party.Balance {
				return events, fmt.Errorf("%w: have %d, adding %d", ErrPurseOverflow, party.Balance, amount)
			}
			balance := party.Balance + amount
			eventType := "gold_received"
			if eff.Type == TypeDebit {
				balance = party.Balance - amount
				eventType = "gold_spent"
			}
			if balance < 0 {
				return events, fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, amount, party.Balance)
			}
			if err := l.UpdatePartyBalance(ctx, party.ID, balance); err != nil {
				return events, fmt.Errorf("updating balance: %w", err)
			}
			if err := record(ctx, l, ec, action, item, amount, balance); err != nil {
				return events, err
			}
			events = append(events, types.Event{
				Type: eventType,
				Data: map[string]any{"action": action, "amount": amount, "item": item, "balance": balance},
			})

		case TypeGiveItem:
			party.Inventory = append(party.Inventory, item)
			if err := l.UpdatePartyItems(ctx, party.ID, party.Inventory, party.Stash); err != nil {
				return events, fmt.Errorf("updating items: %w", err)
			}
			events = append(events, types.Event{Type: "item_gained", Data: map[string]any{"item": item}})

		case TypeTakeItem:
			inv, ok := removeFromSlice(party.Inventory, item)
			if !ok {
				return events, fmt.Errorf("%w: %s", ErrItemNotHeld, item)
			}
			if err := l.UpdatePartyItems(ctx, party.ID, inv, party.Stash); err != nil {
				return events, fmt.Errorf("updating items: %w", err)
			}
			events = append(events, types.Event{Type: "item_lost", Data: map[string]any{"item": item}})

		case TypeStashItem, TypeUnstashItem:
			from, to := party.Inventory, party.Stash
			action, eventType := "stash", "item_stashed"
			if eff.Type == TypeUnstashItem {
				from, to = party.Stash, party.Inventory
				action, eventType = "unstash", "item_unstashed"
			}
			rest, ok := removeFromSlice(from, item)
			if !ok {
				return events, fmt.Errorf("%w: %s", ErrItemNotHeld, item)
			}
			to = append(to, item)
			inv, stash := rest, to
			if eff.Type == TypeUnstashItem {
				inv, stash = to, rest
			}
			if err := l.UpdatePartyItems(ctx, party.ID, inv, stash); err != nil {
				return events, fmt.Errorf("updating items: %w", err)
			}
			if err := record(ctx, l, ec, action, item, 0, party.Balance); err != nil {
				return events, err
			}
			events = append(events, types.Event{Type: eventType, Data: map[string]any{"item": item}})

		default:
			return events, fmt.Errorf("unknown effect type %q", eff.Type)
		}
	}

	return events, nil
}

func record(ctx context.Context, l Ledger, ec Context, action, item string, amount, balance int64) error {
	entry := types.LedgerEntry{
		ID:           uuid.NewString(),
		PartyID:      ec.PartyID,
		CharacterID:  ec.CharacterID,
		Action:       action,
		ItemName:     item,
		Amount:       amount,
		BalanceAfter: balance,
		CreatedAt:    ec.Now,
	}
	if err := l.RecordTransaction(ctx, entry); err != nil {
		return fmt.Errorf("recording %s: %w", action, err)
	}
	return nil
}

// Holds reports whether items contains name, ignoring case.
func Holds(items []string, name string) bool {
	_, ok := indexOf(items, name)
	return ok
}

func indexOf(items []string, name string) (int, bool) {
	for i, v := range items {
		if strings.EqualFold(v, name) {
			return i, true
		}
	}
	return -1, false
}

// removeFromSlice returns a copy of slice without the first match of item.
func removeFromSlice(slice []string, item string) ([]string, bool) {
	i, ok := indexOf(slice, item)
	if !ok {
		return slice, false
	}
	out := make([]string, 0, len(slice)-1)
	out = append(out, slice[:i]...)
	return append(out, slice[i+1:]...), true
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
