package catalog

import (
	"context"
	"sync/atomic"

	"github.com/nathoo/shopkeep/types"
)

// Reloadable serves whichever Memory catalog was stored last. Readers never
// block; a reload swaps the whole catalog at once.
type Reloadable struct {
	cur atomic.Pointer[Memory]
}

// NewReloadable wraps an initial catalog.
func NewReloadable(m *Memory) *Reloadable {
	r := &Reloadable{}
	r.cur.Store(m)
	return r
}

// Swap installs a new catalog.
func (r *Reloadable) Swap(m *Memory) { r.cur.Store(m) }

// Current returns the catalog in use.
func (r *Reloadable) Current() *Memory { return r.cur.Load() }

func (r *Reloadable) ListItems(ctx context.Context) ([]types.Item, error) {
	return r.Current().ListItems(ctx)
}

func (r *Reloadable) GetItemByName(ctx context.Context, name string) (types.Item, bool, error) {
	return r.Current().GetItemByName(ctx, name)
}

func (r *Reloadable) ListCategories(ctx context.Context, kind types.CategoryKind) ([]string, error) {
	return r.Current().ListCategories(ctx, kind)
}

func (r *Reloadable) ListItemsByCategory(ctx context.Context, kind types.CategoryKind, value string, page, pageSize int) ([]types.Item, error) {
	return r.Current().ListItemsByCategory(ctx, kind, value, page, pageSize)
}

func (r *Reloadable) ShopInfo() Info { return r.Current().ShopInfo() }
