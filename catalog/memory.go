package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/types"
)

// Memory is an in-process catalog, normally compiled from Lua by the loader.
type Memory struct {
	Info       Info
	items      []types.Item
	taxonomies map[types.CategoryKind][]string
}

// NewMemory builds a catalog. Missing normalized names are filled in. Any
// taxonomy not listed explicitly is derived from the item fields.
func NewMemory(info Info, items []types.Item, taxonomies map[types.CategoryKind][]string) *Memory {
	m := &Memory{
		Info:       info,
		items:      make([]types.Item, len(items)),
		taxonomies: map[types.CategoryKind][]string{},
	}
	for i, it := range items {
		if it.NormalizedName == "" {
			it.NormalizedName = normalize.Normalize(it.Name)
		}
		m.items[i] = it
	}
	for _, kind := range Kinds {
		if names := taxonomies[kind]; len(names) > 0 {
			m.taxonomies[kind] = append([]string(nil), names...)
			continue
		}
		m.taxonomies[kind] = derive(m.items, kind)
	}
	return m
}

func derive(items []types.Item, kind types.CategoryKind) []string {
	seen := map[string]bool{}
	var names []string
	for _, it := range items {
		v := Field(it, kind)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

// ListItems returns every item.
func (m *Memory) ListItems(_ context.Context) ([]types.Item, error) {
	return append([]types.Item(nil), m.items...), nil
}

// GetItemByName looks an item up by case-insensitive name.
func (m *Memory) GetItemByName(_ context.Context, name string) (types.Item, bool, error) {
	want := normalize.Normalize(name)
	for _, it := range m.items {
		if it.NormalizedName == want || strings.EqualFold(it.Name, name) {
			return it, true, nil
		}
	}
	return types.Item{}, false, nil
}

// ListCategories returns the names of one taxonomy.
func (m *Memory) ListCategories(_ context.Context, kind types.CategoryKind) ([]string, error) {
	return append([]string(nil), m.taxonomies[kind]...), nil
}

// ListItemsByCategory returns one page of the items in a category, cheapest first.
func (m *Memory) ListItemsByCategory(_ context.Context, kind types.CategoryKind, value string, page, pageSize int) ([]types.Item, error) {
	return Page(filterSorted(m.items, kind, value), page, pageSize), nil
}

// ShopInfo returns the shop description loaded with the items.
func (m *Memory) ShopInfo() Info { return m.Info }

// Len returns the number of items.
func (m *Memory) Len() int { return len(m.items) }
