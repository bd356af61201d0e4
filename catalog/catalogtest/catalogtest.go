// Package catalogtest provides a small fixed catalog for tests.
package catalogtest

import (
	"context"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/types"
)

// Items is the fixture stock. Prices are in copper.
var Items = []types.Item{
	{ID: 7, Name: "Dagger", Category: "Weapon", WeaponCategory: "Simple Melee", Price: 200, Weight: 1, Description: "A plain steel dagger."},
	{ID: 70, Name: "Dagger of Venom", Category: "Weapon", WeaponCategory: "Martial Melee", Price: 250000, Weight: 1, Description: "A black blade that weeps poison."},
	{ID: 12, Name: "Longsword", Category: "Weapon", WeaponCategory: "Martial Melee", Price: 1500, Weight: 3, Description: "A versatile knightly sword."},
	{ID: 13, Name: "Shortsword", Category: "Weapon", WeaponCategory: "Martial Melee", Price: 1000, Weight: 2, Description: "A light finesse blade."},
	{ID: 20, Name: "Shortbow", Category: "Weapon", WeaponCategory: "Simple Ranged", Price: 2500, Weight: 2, Description: "A small hunting bow."},
	{ID: 30, Name: "Padded", Category: "Armor", ArmorCategory: "Light", Price: 500, Weight: 8, Description: "Quilted layers of cloth."},
	{ID: 31, Name: "Hide", Category: "Armor", ArmorCategory: "Medium", Price: 1000, Weight: 12, Description: "Thick furs and pelts."},
	{ID: 32, Name: "Chain Mail", Category: "Armor", ArmorCategory: "Heavy", Price: 7500, Weight: 55, Description: "Interlocking metal rings."},
	{ID: 33, Name: "Shield", Category: "Armor", ArmorCategory: "Shield", Price: 1000, Weight: 6, Description: "A wooden round shield."},
	{ID: 40, Name: "Rope, Hempen (50 feet)", Category: "Adventuring Gear", GearCategory: "Standard Gear", Price: 100, Weight: 10, Description: "Fifty feet of sturdy rope."},
	{ID: 41, Name: "Arrows", Category: "Adventuring Gear", GearCategory: "Ammunition", Price: 100, Weight: 1, Description: "A bundle of twenty arrows."},
	{ID: 42, Name: "Torch", Category: "Adventuring Gear", GearCategory: "Standard Gear", Price: 1, Weight: 1, Description: "Burns for an hour."},
	{ID: 50, Name: "Lute", Category: "Tools", ToolCategory: "Musical Instrument", Price: 3500, Weight: 2, Description: "A pear-shaped string instrument."},
	{ID: 60, Name: "Ruby", Category: "Treasure", TreasureCategory: "Gemstone", Price: 500000, Weight: 0, Description: "A deep red gem."},
}

// Info is the fixture shop.
var Info = catalog.Info{
	Name:        "The Rusty Flagon Trading Post",
	Keeper:      "Griswold",
	Personality: "gruff",
	Hours:       "dawn till dusk",
	Location:    "the market square of Millbrook",
	Rumours:     []string{"Goblins have been seen on the north road."},
}

// New returns a fresh Memory catalog over the fixture stock.
func New() *catalog.Memory {
	return catalog.NewMemory(Info, Items, nil)
}

// Item returns the fixture item with id, normalized the way the catalog stores it.
func Item(id int) types.Item {
	it, _ := View().ItemByID(id)
	return it
}

// View returns a per-request view over the fixture catalog.
func View() *catalog.View {
	v, err := catalog.Snapshot(context.Background(), New())
	if err != nil {
		panic(err)
	}
	return v
}
