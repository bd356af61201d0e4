// Package state is the per-character conversation state machine. A
// Conversation is rehydrated from its Store at the start of every request and
// every mutator saves before returning.
package state

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/nathoo/shopkeep/engine/parser"
	"github.com/nathoo/shopkeep/engine/save"
	"github.com/nathoo/shopkeep/types"
)

// HaggleWindow is how long haggle attempts count against the daily cap.
const HaggleWindow = 24 * time.Hour

// DefaultVisitWindow is the idle gap after which a new shop visit is counted.
const DefaultVisitWindow = 60 * time.Minute

var (
	// ErrNotFound is returned by a Store when no snapshot exists yet.
	ErrNotFound = errors.New("conversation not found")
	// ErrPendingMismatch is returned when a pending item has the wrong shape
	// for the pending intent.
	ErrPendingMismatch = errors.New("pending item does not fit pending intent")
)

// Store persists conversation snapshots.
type Store interface {
	LoadConversation(ctx context.Context, characterID string) (types.ConversationSnapshot, error)
	SaveConversation(ctx context.Context, snap types.ConversationSnapshot) error
	AppendAuditLog(ctx context.Context, snap types.ConversationSnapshot) error
}

// Conversation wraps one character's snapshot and its store.
type Conversation struct {
	snap  types.ConversationSnapshot
	store Store
	now   func() time.Time
}

// New returns a fresh snapshot in the initial state.
func New(characterID string, now time.Time) types.ConversationSnapshot {
	return types.ConversationSnapshot{
		CharacterID: characterID,
		State:       types.StateIntroduction,
		PendingItem: types.PendingItem{Kind: types.PendingNone},
		Metadata:    map[string]string{},
		UpdatedAt:   now,
	}
}

// Load rehydrates the conversation for characterID, creating and saving a
// new one on first contact. A nil now uses time.Now.
func Load(ctx context.Context, store Store, characterID string, now func() time.Time) (*Conversation, error) {
	if now == nil {
		now = time.Now
	}
	c := &Conversation{store: store, now: now}
	snap, err := store.LoadConversation(ctx, characterID)
	switch {
	case errors.Is(err, ErrNotFound):
		c.snap = New(characterID, now())
		if err := c.persist(ctx); err != nil {
			return nil, err
		}
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("loading conversation %s: %w", characterID, err)
	}
	if snap.Metadata == nil {
		snap.Metadata = map[string]string{}
	}
	if snap.PendingItem.Kind == "" {
		snap.PendingItem.Kind = types.PendingNone
	}
	c.snap = snap
	return c, nil
}

// Snapshot returns a copy of the current snapshot.
func (c *Conversation) Snapshot() types.ConversationSnapshot {
	return clone(c.snap)
}

// CharacterID returns the owning character.
func (c *Conversation) CharacterID() string { return c.snap.CharacterID }

// State returns the current state.
func (c *Conversation) State() types.State { return c.snap.State }

// PendingIntent returns the intent awaiting confirmation or selection.
func (c *Conversation) PendingIntent() types.Intent { return c.snap.PendingIntent }

// PendingItem returns the cached item reference.
func (c *Conversation) PendingItem() types.PendingItem { return clone(c.snap).PendingItem }

// Discount returns the haggled override price, if any.
func (c *Conversation) Discount() (int64, bool) {
	if c.snap.Discount == nil {
		return 0, false
	}
	return *c.snap.Discount, true
}

// Meta returns a metadata value.
func (c *Conversation) Meta(key string) string { return c.snap.Metadata[key] }

// SetState moves to st and persists.
func (c *Conversation) SetState(ctx context.Context, st types.State) error {
	c.snap.State = st
	return c.persist(ctx)
}

// SetPending caches intent and item and persists. The item's shape must
// fit the intent: item intents need an item reference, everything else none.
func (c *Conversation) SetPending(ctx context.Context, intent types.Intent, item types.PendingItem) error {
	if item.Kind == "" {
		item.Kind = types.PendingNone
	}
	if err := save.CheckPending(item); err != nil {
		return err
	}
	if !fits(intent, item.Kind) {
		return fmt.Errorf("%w: %s with %s", ErrPendingMismatch, intent, item.Kind)
	}
	c.snap.PendingIntent = intent
	c.snap.PendingItem = item
	return c.persist(ctx)
}

// Transition sets the state and the pending fields in one save.
func (c *Conversation) Transition(ctx context.Context, st types.State, intent types.Intent, item types.PendingItem) error {
	prev := c.snap.State
	c.snap.State = st
	if err := c.SetPending(ctx, intent, item); err != nil {
		c.snap.State = prev
		return err
	}
	return nil
}

// SetDiscount stores an override price; nil clears it.
func (c *Conversation) SetDiscount(ctx context.Context, price *int64) error {
	if price != nil {
		p := *price
		price = &p
	}
	c.snap.Discount = price
	return c.persist(ctx)
}

// SetMeta stores a metadata value; an empty value deletes the key.
func (c *Conversation) SetMeta(ctx context.Context, key, value string) error {
	if value == "" {
		delete(c.snap.Metadata, key)
	} else {
		c.snap.Metadata[key] = value
	}
	return c.persist(ctx)
}

// SetLastInput records the raw and normalized text of the current turn.
func (c *Conversation) SetLastInput(ctx context.Context, raw, normalized string) error {
	c.snap.LastRawInput = raw
	c.snap.LastNormalizedInput = normalized
	return c.persist(ctx)
}

// HaggleStatus returns the attempts and success flag inside the current
// window. An expired window reads as empty.
func (c *Conversation) HaggleStatus() (attempts int, success bool) {
	h := c.haggle()
	return h.Attempts, h.Success
}

// RecordHaggle counts one attempt, starting a new window when the old one
// has expired, and persists.
func (c *Conversation) RecordHaggle(ctx context.Context, success bool) error {
	h := c.haggle()
	if h.Attempts == 0 && !h.Success {
		h.LastReset = c.now()
	}
	h.Attempts++
	h.Success = h.Success || success
	c.snap.Haggle = h
	return c.persist(ctx)
}

func (c *Conversation) haggle() types.HaggleHistory {
	h := c.snap.Haggle
	if h.LastReset.IsZero() || c.now().Sub(h.LastReset) >= HaggleWindow {
		return types.HaggleHistory{}
	}
	return h
}

// TouchVisit counts a new visit when more than window has passed since the
// character was last seen. It reports whether a new visit began.
func (c *Conversation) TouchVisit(ctx context.Context, window time.Duration) (bool, error) {
	if window <= 0 {
		window = DefaultVisitWindow
	}
	now := c.now()
	v := c.snap.Visit
	fresh := v.LastSeen.IsZero() || now.Sub(v.LastSeen) > window
	if fresh {
		v.Count++
	}
	v.LastSeen = now
	c.snap.Visit = v
	return fresh, c.persist(ctx)
}

// Visits returns the number of visits counted so far.
func (c *Conversation) Visits() int { return c.snap.Visit.Count }

// Finish ends a completed or cancelled transaction: back to AWAITING_ACTION
// with nothing pending and no discount.
func (c *Conversation) Finish(ctx context.Context) error {
	c.clearPending()
	c.snap.State = types.StateAwaitingAction
	return c.persist(ctx)
}

// Reset returns the conversation to INTRODUCTION with nothing pending.
// Haggle and visit history survive a reset.
func (c *Conversation) Reset(ctx context.Context) error {
	c.clearPending()
	c.snap.State = types.StateIntroduction
	return c.persist(ctx)
}

func (c *Conversation) clearPending() {
	c.snap.PendingIntent = ""
	c.snap.PendingItem = types.PendingItem{Kind: types.PendingNone}
	c.snap.Discount = nil
}

// Audit appends the snapshot to the audit log.
func (c *Conversation) Audit(ctx context.Context) error {
	return c.store.AppendAuditLog(ctx, c.Snapshot())
}

func (c *Conversation) persist(ctx context.Context) error {
	c.snap.UpdatedAt = c.now()
	if err := c.store.SaveConversation(ctx, c.Snapshot()); err != nil {
		return fmt.Errorf("saving conversation %s: %w", c.snap.CharacterID, err)
	}
	return nil
}

// itemIntents need an item reference while pending.
var itemIntents = map[types.Intent]bool{
	parser.BuyItem:     true,
	parser.SellItem:    true,
	parser.InspectItem: true,
	parser.Haggle:      true,
	parser.StashItem:   true,
	parser.UnstashItem: true,
}

func fits(intent types.Intent, kind types.PendingKind) bool {
	if itemIntents[intent] {
		return true
	}
	return kind == types.PendingNone
}

func clone(s types.ConversationSnapshot) types.ConversationSnapshot {
	out := s
	out.Metadata = maps.Clone(s.Metadata)
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	if s.PendingItem.Item != nil {
		it := *s.PendingItem.Item
		out.PendingItem.Item = &it
	}
	if s.PendingItem.Items != nil {
		out.PendingItem.Items = append([]types.Item(nil), s.PendingItem.Items...)
	}
	if s.Discount != nil {
		d := *s.Discount
		out.Discount = &d
	}
	return out
}
