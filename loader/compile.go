package loader

import (
	"fmt"
	"math"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/types"
)

// rawItem holds an item table before compilation.
type rawItem struct {
	name  string
	table *lua.LTable
}

// rawTaxonomy holds an ordered list of category names for one kind.
type rawTaxonomy struct {
	kind  string
	table *lua.LTable
}

// rawHandler holds a shopkeeper remark before compilation.
type rawHandler struct {
	eventType string
	table     *lua.LTable
}

// contents is the compiled catalog before it is validated.
type contents struct {
	info       catalog.Info
	items      []types.Item
	taxonomies map[types.CategoryKind][]string
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == math.Trunc(f) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if n := val.MaxN(); n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// stringList returns the string entries of a Lua array, in order.
func stringList(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts all collected Lua data into catalog contents.
func compile(coll *collector) (*contents, error) {
	if coll.shop == nil {
		return nil, fmt.Errorf("no Shop{} definition found")
	}
	c := &contents{
		info:       compileShop(coll.shop),
		taxonomies: map[types.CategoryKind][]string{},
	}

	for _, raw := range coll.items {
		c.items = append(c.items, compileItem(raw))
	}

	for _, raw := range coll.taxonomies {
		kind := types.CategoryKind(raw.kind)
		if _, dup := c.taxonomies[kind]; dup {
			return nil, fmt.Errorf("taxonomy %q defined more than once", raw.kind)
		}
		c.taxonomies[kind] = stringList(raw.table)
	}

	for _, raw := range coll.handlers {
		c.info.Notices = append(c.info.Notices, compileHandler(raw))
	}
	return c, nil
}

func compileShop(tbl *lua.LTable) catalog.Info {
	return catalog.Info{
		Name:        getString(tbl, "name"),
		Keeper:      getString(tbl, "keeper"),
		Personality: getString(tbl, "personality"),
		Hours:       getString(tbl, "hours"),
		Location:    getString(tbl, "location"),
		Rumours:     stringList(getTable(tbl, "rumours")),
	}
}

func compileItem(raw rawItem) types.Item {
	tbl := raw.table
	return types.Item{
		ID:               getInt(tbl, "id"),
		Name:             raw.name,
		Category:         getString(tbl, "category"),
		WeaponCategory:   getString(tbl, "weapon_category"),
		ArmorCategory:    getString(tbl, "armor_category"),
		GearCategory:     getString(tbl, "gear_category"),
		ToolCategory:     getString(tbl, "tool_category"),
		TreasureCategory: getString(tbl, "treasure_category"),
		Price:            int64(math.Round(getNumber(tbl, "price"))),
		Weight:           getNumber(tbl, "weight"),
		Description:      getString(tbl, "description"),
	}
}

func compileHandler(raw rawHandler) types.EventHandler {
	h := types.EventHandler{
		EventType: raw.eventType,
		Priority:  getInt(raw.table, "priority"),
		Say:       getString(raw.table, "say"),
	}
	if condTbl := getTable(raw.table, "conditions"); condTbl != nil {
		h.Conditions = compileConditions(condTbl)
	}
	return h
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for i := 1; i <= tbl.MaxN(); i++ {
		if condTbl, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		c := types.Condition{Type: "not"}
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			c.Inner = &inner
		}
		return c
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			params[string(ks)] = toGoValue(v)
		}
	})
	return types.Condition{Type: condType, Params: params}
}

// sortedLuaFiles returns .lua files with shop.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var shopFile string
	var others []string
	for _, f := range files {
		if f == "shop.lua" {
			shopFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if shopFile != "" {
		return append([]string{shopFile}, others...)
	}
	return others
}
