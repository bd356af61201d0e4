package loader

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/nathoo/shopkeep/catalog"
)

const watchShop = `Shop { name = "Watched", keeper = "Wes", rumours = { "hush" } }
`

type recordingSwapper struct {
	mu    sync.Mutex
	swaps []*catalog.Memory
}

func (r *recordingSwapper) Swap(m *catalog.Memory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swaps = append(r.swaps, m)
}

func (r *recordingSwapper) last() *catalog.Memory {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.swaps) == 0 {
		return nil
	}
	return r.swaps[len(r.swaps)-1]
}

func (r *recordingSwapper) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.swaps)
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeCatalog(t, map[string]string{
		"shop.lua":  watchShop,
		"items.lua": `Item "Torch" { id = 1, category = "Adventuring Gear", price = cp(1) }`,
	})
	initial, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	target := catalog.NewReloadable(initial)

	w, err := NewWatcher(dir, target, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	w.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	items := `Item "Torch" { id = 1, category = "Adventuring Gear", price = cp(1) }
Item "Rope" { id = 2, category = "Adventuring Gear", price = gp(1) }
`
	if err := os.WriteFile(filepath.Join(dir, "items.lua"), []byte(items), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for target.Current().Len() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("catalog not reloaded, still %d items", target.Current().Len())
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeCatalog(t, map[string]string{"shop.lua": watchShop})
	target := &recordingSwapper{}
	w, err := NewWatcher(dir, target, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	w.Debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not lua"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	cancel()
	<-done
	if n := target.count(); n != 0 {
		t.Errorf("expected no reloads, got %d", n)
	}
}

func TestWatcher_ReloadKeepsPreviousOnError(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"shop.lua":  watchShop,
		"items.lua": `Item "Torch" { id = 1, category = "Adventuring Gear", price = 1 }`,
	})
	target := &recordingSwapper{}
	w, err := NewWatcher(dir, target, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsw.Close()

	if err := w.reload(); err != nil {
		t.Fatalf("first reload: %v", err)
	}
	first := target.last()

	if err := os.WriteFile(filepath.Join(dir, "items.lua"), []byte(`Item "Torch" { id = -1 }`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.reload(); err == nil {
		t.Fatal("expected reload error for invalid catalog")
	}
	if target.count() != 1 || target.last() != first {
		t.Errorf("failed reload must not swap, got %d swaps", target.count())
	}
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), &recordingSwapper{}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
