package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/nathoo/shopkeep/engine/state"
	"github.com/nathoo/shopkeep/storage/memory"
)

type failingPruner struct{}

func (failingPruner) PruneAudit(context.Context, time.Time) (int64, error) {
	return 0, errors.New("locked")
}

func TestPruneOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	for _, age := range []time.Duration{40 * 24 * time.Hour, 31 * 24 * time.Hour, time.Hour} {
		if err := store.AppendAuditLog(ctx, state.New("c1", now.Add(-age))); err != nil {
			t.Fatal(err)
		}
	}

	p := NewPruner(store, 30*24*time.Hour, "@daily", zap.NewNop())
	p.now = func() time.Time { return now }

	n, err := p.PruneOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("pruned %d, want 2", n)
	}
	left, _ := store.AuditLog(ctx, "c1")
	if len(left) != 1 {
		t.Errorf("left = %d, want 1", len(left))
	}
}

func TestPruneOnce_ZeroRetentionKeepsAll(t *testing.T) {
	p := NewPruner(failingPruner{}, 0, "@daily", zap.NewNop())
	if n, err := p.PruneOnce(context.Background()); n != 0 || err != nil {
		t.Errorf("PruneOnce = %d, %v", n, err)
	}
}

func TestPruneOnce_WrapsError(t *testing.T) {
	p := NewPruner(failingPruner{}, time.Hour, "@daily", zap.NewNop())
	if _, err := p.PruneOnce(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestRun_BadSchedule(t *testing.T) {
	p := NewPruner(memory.New(), time.Hour, "every tuesday-ish", zap.NewNop())
	if err := p.Run(context.Background()); err == nil {
		t.Error("expected schedule error")
	}
}

func TestPrunerRun_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := NewPruner(memory.New(), time.Hour, "@hourly", zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
