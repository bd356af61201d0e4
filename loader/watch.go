package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/nathoo/shopkeep/catalog"
)

// DefaultDebounce is how long the watcher waits after the last change
// before reloading, so an editor's burst of writes triggers one load.
const DefaultDebounce = 250 * time.Millisecond

// Swapper receives freshly loaded catalogs. *catalog.Reloadable implements it.
type Swapper interface {
	Swap(m *catalog.Memory)
}

// Watcher reloads a catalog directory whenever one of its .lua files changes.
// A catalog that fails to load is logged and the previous one stays in place.
type Watcher struct {
	dir      string
	target   Swapper
	log      *zap.Logger
	fsw      *fsnotify.Watcher
	Debounce time.Duration
}

// NewWatcher starts watching dir. Call Run to process changes.
func NewWatcher(dir string, target Swapper, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		target:   target,
		log:      log.With(zap.String("catalog_dir", dir)),
		fsw:      fsw,
		Debounce: DefaultDebounce,
	}, nil
}

// Run blocks until ctx is done, reloading after each settled burst of
// changes. It closes the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.log.Debug("catalog changed", zap.String("file", filepath.Base(event.Name)), zap.Stringer("op", event.Op))
			timer.Reset(w.Debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("catalog watcher error", zap.Error(err))

		case <-timer.C:
			if err := w.reload(); err != nil {
				w.log.Error("catalog reload failed, keeping previous catalog", zap.Error(err))
			}
		}
	}
}

// reload loads the directory and swaps the result in on success.
func (w *Watcher) reload() error {
	m, warnings, err := LoadWithWarnings(w.dir)
	for _, warn := range warnings {
		w.log.Warn("catalog warning", zap.String("warning", warn))
	}
	if err != nil {
		return err
	}
	w.target.Swap(m)
	w.log.Info("catalog reloaded", zap.Int("items", m.Len()))
	return nil
}

func relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".lua") {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

// Watch is NewWatcher followed by Run.
func Watch(ctx context.Context, dir string, target Swapper, log *zap.Logger) error {
	w, err := NewWatcher(dir, target, log)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
