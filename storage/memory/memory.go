// Package memory is an in-process conversation store and party ledger. Every
// value is copied on the way in and out so callers never share state with it.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nathoo/shopkeep/engine/effects"
	"github.com/nathoo/shopkeep/engine/save"
	"github.com/nathoo/shopkeep/engine/state"
	"github.com/nathoo/shopkeep/types"
)

// Store implements state.Store and effects.Ledger.
type Store struct {
	mu            sync.Mutex
	conversations map[string][]byte
	audit         []auditRecord
	parties       map[string]types.Party
	entries       []types.LedgerEntry
}

type auditRecord struct {
	at   time.Time
	data []byte
}

// New returns an empty store.
func New() *Store {
	return &Store{
		conversations: map[string][]byte{},
		parties:       map[string]types.Party{},
	}
}

// LoadConversation returns state.ErrNotFound for unknown characters.
func (s *Store) LoadConversation(_ context.Context, characterID string) (types.ConversationSnapshot, error) {
	s.mu.Lock()
	data, ok := s.conversations[characterID]
	s.mu.Unlock()
	if !ok {
		return types.ConversationSnapshot{}, state.ErrNotFound
	}
	return save.Load(data)
}

func (s *Store) SaveConversation(_ context.Context, snap types.ConversationSnapshot) error {
	data, err := save.Save(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conversations[snap.CharacterID] = data
	s.mu.Unlock()
	return nil
}

func (s *Store) AppendAuditLog(_ context.Context, snap types.ConversationSnapshot) error {
	data, err := save.Save(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.audit = append(s.audit, auditRecord{at: snap.UpdatedAt, data: data})
	s.mu.Unlock()
	return nil
}

// AuditLog returns the audited snapshots for a character, oldest first.
func (s *Store) AuditLog(_ context.Context, characterID string) ([]types.ConversationSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.ConversationSnapshot
	for _, rec := range s.audit {
		snap, err := save.Load(rec.data)
		if err != nil {
			return nil, err
		}
		if snap.CharacterID == characterID {
			out = append(out, snap)
		}
	}
	return out, nil
}

// PruneAudit drops audit records older than before.
func (s *Store) PruneAudit(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.audit[:0]
	var n int64
	for _, rec := range s.audit {
		if rec.at.Before(before) {
			n++
			continue
		}
		kept = append(kept, rec)
	}
	s.audit = kept
	return n, nil
}

func (s *Store) GetParty(_ context.Context, id string) (types.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parties[id]
	if !ok {
		return types.Party{}, fmt.Errorf("%w: %s", effects.ErrPartyNotFound, id)
	}
	return cloneParty(p), nil
}

func (s *Store) CreateParty(_ context.Context, p types.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parties[p.ID]; ok {
		return fmt.Errorf("%w: %s", effects.ErrPartyExists, p.ID)
	}
	s.parties[p.ID] = cloneParty(p)
	return nil
}

func (s *Store) UpdatePartyBalance(_ context.Context, id string, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parties[id]
	if !ok {
		return fmt.Errorf("%w: %s", effects.ErrPartyNotFound, id)
	}
	p.Balance = balance
	s.parties[id] = p
	return nil
}

func (s *Store) UpdatePartyItems(_ context.Context, id string, inventory, stash []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parties[id]
	if !ok {
		return fmt.Errorf("%w: %s", effects.ErrPartyNotFound, id)
	}
	p.Inventory = slices.Clone(inventory)
	p.Stash = slices.Clone(stash)
	s.parties[id] = p
	return nil
}

func (s *Store) RecordTransaction(_ context.Context, entry types.LedgerEntry) error {
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return nil
}

// ListTransactions returns up to limit entries for a party, newest first.
func (s *Store) ListTransactions(_ context.Context, partyID string, limit int) ([]types.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.LedgerEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].PartyID != partyID {
			continue
		}
		out = append(out, s.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func cloneParty(p types.Party) types.Party {
	p.Inventory = slices.Clone(p.Inventory)
	p.Stash = slices.Clone(p.Stash)
	return p
}
