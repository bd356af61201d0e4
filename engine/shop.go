package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/types"
)

// Party describes the party every character at the shop belongs to.
type Party struct {
	Name string
	Gold int64 // starting purse in copper
}

// Shop hosts the conversations of many characters. Turns for one character
// run one at a time; different characters run in parallel. A character's
// service stays in memory until Evict drops it; its conversation lives in
// the store either way.
type Shop struct {
	cfg   Config
	deps  Deps
	party Party

	partyMu sync.Mutex
	mu      sync.Mutex
	seats   map[string]*seat
}

type seat struct {
	mu    sync.Mutex
	svc   *Service
	ready bool

	// Guarded by Shop.mu.
	users    int
	lastUsed time.Time
}

// NewShop checks that services can be built from cfg and deps. Services
// are created lazily, one per character.
func NewShop(cfg Config, deps Deps, party Party) (*Shop, error) {
	check := cfg
	check.CharacterID = "_"
	if _, err := New(check, deps); err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Shop{cfg: cfg, party: party, seats: map[string]*seat{}}
	deps.PartyLock = &s.partyMu
	s.deps = deps
	return s, nil
}

// with runs fn holding the character's lock.
func (s *Shop) with(ctx context.Context, characterID string, fn func(*Service) error) error {
	if characterID == "" {
		return errors.New("engine: character id is required")
	}
	s.mu.Lock()
	st, ok := s.seats[characterID]
	if !ok {
		st = &seat{}
		s.seats[characterID] = st
	}
	st.users++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		st.users--
		st.lastUsed = s.deps.Now()
		s.mu.Unlock()
	}()

	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.ready {
		cfg := s.cfg
		cfg.CharacterID = characterID
		svc, err := New(cfg, s.deps)
		if err != nil {
			return err
		}
		s.partyMu.Lock()
		err = svc.EnsureParty(ctx, s.party.Name, s.party.Gold)
		s.partyMu.Unlock()
		if err != nil {
			return err
		}
		st.svc, st.ready = svc, true
	}
	return fn(st.svc)
}

// Evict drops the services of characters whose last turn ended more than
// idle ago and returns how many went. Seats in use are never dropped.
func (s *Shop) Evict(idle time.Duration) int {
	cutoff := s.deps.Now().Add(-idle)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, st := range s.seats {
		if st.users == 0 && !st.lastUsed.After(cutoff) {
			delete(s.seats, id)
			n++
		}
	}
	return n
}

// EvictIdle runs Evict every idle/2 until ctx is done.
func (s *Shop) EvictIdle(ctx context.Context, idle time.Duration) error {
	if idle <= 0 {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(idle / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.Evict(idle); n > 0 {
				s.deps.Logger.Debug("idle conversations evicted", zap.Int("count", n))
			}
		}
	}
}

// Seats returns the number of characters with a service in memory.
func (s *Shop) Seats() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seats)
}

// Handle runs one turn for a character and returns the reply text.
func (s *Shop) Handle(ctx context.Context, characterID, raw string) string {
	var out string
	err := s.with(ctx, characterID, func(svc *Service) error {
		out = svc.Handle(ctx, raw)
		return nil
	})
	if err != nil {
		s.deps.Logger.Error("opening conversation", zap.String("character", characterID), zap.Error(err))
		return "The shop is closed for now. Try again later."
	}
	return out
}

// Step runs one turn for a character and returns the full result.
func (s *Shop) Step(ctx context.Context, characterID, raw string) (types.Result, error) {
	var res types.Result
	err := s.with(ctx, characterID, func(svc *Service) error {
		var err error
		res, err = svc.Step(ctx, raw)
		return err
	})
	return res, err
}

// Reset returns a character's conversation to INTRODUCTION.
func (s *Shop) Reset(ctx context.Context, characterID string) error {
	return s.with(ctx, characterID, func(svc *Service) error { return svc.Reset(ctx) })
}

// Snapshot returns a character's persisted conversation.
func (s *Shop) Snapshot(ctx context.Context, characterID string) (types.ConversationSnapshot, error) {
	var snap types.ConversationSnapshot
	err := s.with(ctx, characterID, func(svc *Service) error {
		var err error
		snap, err = svc.Snapshot(ctx)
		return err
	})
	return snap, err
}

// Party returns the party purse and belongings as seen by a character.
func (s *Shop) Party(ctx context.Context, characterID string) (types.Party, error) {
	var p types.Party
	err := s.with(ctx, characterID, func(svc *Service) error {
		var err error
		p, err = svc.party(ctx)
		return err
	})
	return p, err
}

// Info describes the shop, preferring the live catalog's description.
func (s *Shop) Info() catalog.Info {
	return shopInfo(s.deps.Catalog, s.cfg.Shop)
}
