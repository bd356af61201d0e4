package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nathoo/shopkeep/engine/effects"
	"github.com/nathoo/shopkeep/engine/state"
	"github.com/nathoo/shopkeep/types"
)

var (
	_ state.Store    = (*Store)(nil)
	_ effects.Ledger = (*Store)(nil)
)

func TestConversationRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.LoadConversation(ctx, "c1"); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	snap := state.New("c1", time.Now())
	snap.Metadata["page"] = "3"
	if err := s.SaveConversation(ctx, snap); err != nil {
		t.Fatal(err)
	}
	snap.Metadata["page"] = "4" // must not leak into the store

	got, err := s.LoadConversation(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata["page"] != "3" {
		t.Errorf("page = %q, want 3", got.Metadata["page"])
	}
}

func TestAuditPrune(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		snap := state.New("c1", base.Add(time.Duration(i)*24*time.Hour))
		if err := s.AppendAuditLog(ctx, snap); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.PruneAudit(ctx, base.Add(36*time.Hour))
	if err != nil || n != 2 {
		t.Fatalf("pruned %d, %v; want 2", n, err)
	}
	left, _ := s.AuditLog(ctx, "c1")
	if len(left) != 1 {
		t.Errorf("left = %d, want 1", len(left))
	}
}

func TestPartyCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreateParty(ctx, types.Party{ID: "p", Inventory: []string{"Rope"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateParty(ctx, types.Party{ID: "p"}); err == nil {
		t.Error("duplicate party should fail")
	}
	p, _ := s.GetParty(ctx, "p")
	p.Inventory[0] = "Stolen"
	again, _ := s.GetParty(ctx, "p")
	if again.Inventory[0] != "Rope" {
		t.Error("GetParty returned shared slice")
	}
	if _, err := s.GetParty(ctx, "nope"); !errors.Is(err, effects.ErrPartyNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i, action := range []string{"deposit", "buy", "sell"} {
		_ = s.RecordTransaction(ctx, types.LedgerEntry{ID: action, PartyID: "p", Action: action, Amount: int64(i)})
	}
	_ = s.RecordTransaction(ctx, types.LedgerEntry{ID: "other", PartyID: "q"})

	got, _ := s.ListTransactions(ctx, "p", 2)
	if len(got) != 2 || got[0].Action != "sell" || got[1].Action != "buy" {
		t.Errorf("got %+v", got)
	}
}
