// Package catalog supplies the read-only item and taxonomy data the shop sells.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/shopkeep/engine/normalize"
	"github.com/nathoo/shopkeep/types"
)

// Kinds lists every taxonomy in matching order.
var Kinds = []types.CategoryKind{
	types.KindEquipment,
	types.KindWeapon,
	types.KindArmor,
	types.KindGear,
	types.KindTool,
	types.KindTreasure,
}

// Source is what a View is built from. The engine depends on nothing
// more: every lookup during a turn reads the View taken at its start.
type Source interface {
	ListItems(ctx context.Context) ([]types.Item, error)
	ListCategories(ctx context.Context, kind types.CategoryKind) ([]string, error)
}

// Accessor is the full read contract of a catalog. The name lookup and the
// paged category listing serve callers that hold no View.
type Accessor interface {
	Source
	GetItemByName(ctx context.Context, name string) (types.Item, bool, error)
	ListItemsByCategory(ctx context.Context, kind types.CategoryKind, value string, page, pageSize int) ([]types.Item, error)
}

var (
	_ Accessor = (*Memory)(nil)
	_ Accessor = (*Reloadable)(nil)
)

// Info describes the shop itself.
type Info struct {
	Name        string
	Keeper      string
	Personality string
	Hours       string
	Location    string
	Rumours     []string
	Notices     []types.EventHandler
}

// InfoSource is implemented by accessors that also know about the shop.
type InfoSource interface {
	ShopInfo() Info
}

// View is a per-request copy of the catalog. Matching reads only from a View
// so a single turn never sees a half-reloaded catalog.
type View struct {
	Items      []types.Item
	Taxonomies map[types.CategoryKind][]string

	byID map[int]int
}

// NewView indexes items and taxonomies into a View.
func NewView(items []types.Item, taxonomies map[types.CategoryKind][]string) *View {
	v := &View{
		Items:      items,
		Taxonomies: taxonomies,
		byID:       make(map[int]int, len(items)),
	}
	if v.Taxonomies == nil {
		v.Taxonomies = map[types.CategoryKind][]string{}
	}
	for i, it := range items {
		v.byID[it.ID] = i
	}
	return v
}

// Snapshot fetches every item and taxonomy from a into a fresh View.
func Snapshot(ctx context.Context, a Source) (*View, error) {
	items, err := a.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	tax := make(map[types.CategoryKind][]string, len(Kinds))
	for _, kind := range Kinds {
		names, err := a.ListCategories(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("listing %s categories: %w", kind, err)
		}
		tax[kind] = names
	}
	return NewView(items, tax), nil
}

// ItemByID returns the item with the given id.
func (v *View) ItemByID(id int) (types.Item, bool) {
	i, ok := v.byID[id]
	if !ok {
		return types.Item{}, false
	}
	return v.Items[i], true
}

// Categories returns the names in one taxonomy.
func (v *View) Categories(kind types.CategoryKind) []string {
	return v.Taxonomies[kind]
}

// InCategory returns the items whose kind field equals value, cheapest first.
func (v *View) InCategory(kind types.CategoryKind, value string) []types.Item {
	return filterSorted(v.Items, kind, value)
}

// Field returns the taxonomy value of it for kind.
func Field(it types.Item, kind types.CategoryKind) string {
	switch kind {
	case types.KindEquipment:
		return it.Category
	case types.KindWeapon:
		return it.WeaponCategory
	case types.KindArmor:
		return it.ArmorCategory
	case types.KindGear:
		return it.GearCategory
	case types.KindTool:
		return it.ToolCategory
	case types.KindTreasure:
		return it.TreasureCategory
	}
	return ""
}

// SubKind returns the sub-taxonomy browsed under an equipment category, if any.
// "Weapon" → weapon, "Armor" → armor and so on.
func SubKind(equipmentCategory string) (types.CategoryKind, bool) {
	n := normalize.Singular(normalize.Normalize(equipmentCategory))
	switch n {
	case "weapon":
		return types.KindWeapon, true
	case "armor", "armour":
		return types.KindArmor, true
	case "adventuring gear", "gear":
		return types.KindGear, true
	case "tool":
		return types.KindTool, true
	case "treasure":
		return types.KindTreasure, true
	}
	return "", false
}

// Page slices items for a zero-based page. Out of range pages are empty.
func Page(items []types.Item, page, pageSize int) []types.Item {
	if pageSize <= 0 {
		return items
	}
	start := page * pageSize
	if page < 0 || start >= len(items) {
		return nil
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}

func filterSorted(items []types.Item, kind types.CategoryKind, value string) []types.Item {
	want := normalize.Normalize(value)
	var out []types.Item
	for _, it := range items {
		if normalize.Normalize(Field(it, kind)) == want {
			out = append(out, it)
		}
	}
	SortByPrice(out)
	return out
}

// SortByPrice orders items by price, then name.
func SortByPrice(items []types.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Price != items[j].Price {
			return items[i].Price < items[j].Price
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}
