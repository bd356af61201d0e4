package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerMoneyHelpers(L)
	registerConditionHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Shop { name = "...", keeper = "...", ... }
	L.SetGlobal("Shop", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		if coll.shop != nil {
			L.RaiseError("Shop{} defined more than once")
		}
		coll.shop = tbl
		return 0
	}))

	// Item "Name" { ... }: curried, Item("Name") returns a function that takes a table.
	L.SetGlobal("Item", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.items = append(coll.items, rawItem{name: name, table: tbl})
			return 0
		}))
		return 1
	}))

	// Taxonomy "armor" { "Light", "Medium", ... }
	L.SetGlobal("Taxonomy", L.NewFunction(func(L *lua.LState) int {
		kind := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.taxonomies = append(coll.taxonomies, rawTaxonomy{kind: kind, table: tbl})
			return 0
		}))
		return 1
	}))

	// On("event_type", { conditions = {...}, say = "...", priority = n })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawHandler{eventType: eventType, table: tbl})
		return 0
	}))
}

// registerMoneyHelpers exposes gp/sp/cp so prices read like the rulebook.
// All three return copper.
func registerMoneyHelpers(L *lua.LState) {
	coins := map[string]float64{"gp": 100, "sp": 10, "cp": 1}
	for name, rate := range coins {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			n := L.CheckNumber(1)
			L.Push(lua.LNumber(float64(n) * rate))
			return 1
		}))
	}
}

func registerConditionHelpers(L *lua.LState) {
	numeric := map[string]string{
		"AmountAtLeast": "amount_at_least",
		"AmountBelow":   "amount_below",
		"BalanceBelow":  "balance_below",
		"VisitsAtLeast": "visits_at_least",
	}
	for fn, condType := range numeric {
		L.SetGlobal(fn, L.NewFunction(func(L *lua.LState) int {
			v := L.CheckNumber(1)
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(condType))
			tbl.RawSetString("value", v)
			L.Push(tbl)
			return 1
		}))
	}

	// ActionIs("buy")
	L.SetGlobal("ActionIs", L.NewFunction(func(L *lua.LState) int {
		action := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("action_is"))
		tbl.RawSetString("action", lua.LString(action))
		L.Push(tbl)
		return 1
	}))

	// ItemIs("Dagger")
	L.SetGlobal("ItemIs", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("item_is"))
		tbl.RawSetString("item", lua.LString(item))
		L.Push(tbl)
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}
