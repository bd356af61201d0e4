// Package loader compiles a shop's Lua catalog into an in-memory catalog.
// The Lua VM only lives for the duration of a load.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/shopkeep/catalog"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	shop       *lua.LTable
	items      []rawItem
	taxonomies []rawTaxonomy
	handlers   []rawHandler
}

// Load reads all .lua files from dir, compiles them into items, taxonomies
// and shopkeeper remarks, validates them, and returns the catalog.
func Load(dir string) (*catalog.Memory, error) {
	m, _, err := LoadWithWarnings(dir)
	return m, err
}

// LoadWithWarnings is Load that also reports non-fatal findings, such as
// taxonomy entries no item carries.
func LoadWithWarnings(dir string) (*catalog.Memory, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	c, err := compile(coll)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling catalog: %w", err)
	}
	warnings, err := validate(c)
	if err != nil {
		return nil, warnings, err
	}
	return catalog.NewMemory(c.info, c.items, c.taxonomies), warnings, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the catalog files.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring", "require",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Catalogs must compile the same way every time.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
