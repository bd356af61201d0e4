package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/engine"
	"github.com/nathoo/shopkeep/loader"
	"github.com/nathoo/shopkeep/types"
)

var (
	catalogYAML     bool
	catalogItem     string
	catalogCategory string
	catalogPage     int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [dir]",
	Short: "Compile a catalog directory and print what it contains",
	Long: `Loads and validates a Lua catalog without opening a shop. Validation
errors fail the command; warnings are printed after the summary.

With --yaml the compiled catalog is dumped as YAML. --item looks one item up
by name; --category kind/value lists a page of one category the way the
shop would.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.CatalogDir
		if len(args) == 1 {
			dir = args[0]
		}
		if catalogItem == "" && catalogCategory == "" {
			return describeCatalog(cmd.Context(), cmd.OutOrStdout(), dir, catalogYAML)
		}
		mem, err := loader.Load(dir)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		w := cmd.OutOrStdout()
		if catalogItem != "" {
			return lookupItem(ctx, w, mem, catalogItem)
		}
		return listCategory(ctx, w, mem, catalogCategory, catalogPage, cfg.PageSize)
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogYAML, "yaml", false, "Dump the compiled catalog as YAML")
	catalogCmd.Flags().StringVar(&catalogItem, "item", "", "Show the item with this name")
	catalogCmd.Flags().StringVar(&catalogCategory, "category", "", "List a category, e.g. weapon/martial melee")
	catalogCmd.Flags().IntVar(&catalogPage, "page", 1, "Page of --category to list")
}

// lookupItem prints one item found by name.
func lookupItem(ctx context.Context, w io.Writer, acc catalog.Accessor, name string) error {
	it, ok, err := acc.GetItemByName(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no item named %q", name)
	}
	fmt.Fprintf(w, "#%d %s (%s)\n", it.ID, it.Name, engine.FormatCoins(it.Price))
	if it.Description != "" {
		fmt.Fprintf(w, "  %s\n", it.Description)
	}
	return nil
}

// listCategory prints one page of a "kind/value" category, cheapest first.
// Pages count from one.
func listCategory(ctx context.Context, w io.Writer, acc catalog.Accessor, spec string, page, size int) error {
	kind, value, ok := strings.Cut(spec, "/")
	if !ok || value == "" {
		return fmt.Errorf("category %q: want kind/value", spec)
	}
	if !slices.Contains(catalog.Kinds, types.CategoryKind(kind)) {
		return fmt.Errorf("category %q: unknown kind %q", spec, kind)
	}
	if size <= 0 {
		size = 5
	}
	items, err := acc.ListItemsByCategory(ctx, types.CategoryKind(kind), value, max(page, 1)-1, size)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintf(w, "nothing on page %d of %s\n", page, value)
		return nil
	}
	for _, it := range items {
		fmt.Fprintf(w, "#%d %s (%s)\n", it.ID, it.Name, engine.FormatCoins(it.Price))
	}
	return nil
}

type catalogDump struct {
	Shop       shopDump            `yaml:"shop"`
	Taxonomies map[string][]string `yaml:"taxonomies"`
	Items      []itemDump          `yaml:"items"`
	Warnings   []string            `yaml:"warnings,omitempty"`
}

type shopDump struct {
	Name        string   `yaml:"name"`
	Keeper      string   `yaml:"keeper"`
	Personality string   `yaml:"personality,omitempty"`
	Hours       string   `yaml:"hours,omitempty"`
	Location    string   `yaml:"location,omitempty"`
	Rumours     []string `yaml:"rumours,omitempty"`
	Remarks     int      `yaml:"remarks"`
}

type itemDump struct {
	ID       int     `yaml:"id"`
	Name     string  `yaml:"name"`
	Category string  `yaml:"category,omitempty"`
	Sub      string  `yaml:"subcategory,omitempty"`
	Price    string  `yaml:"price"`
	Weight   float64 `yaml:"weight,omitempty"`
}

func describeCatalog(ctx context.Context, w io.Writer, dir string, asYAML bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mem, warnings, err := loader.LoadWithWarnings(dir)
	if err != nil {
		return err
	}
	d, err := dumpCatalog(ctx, mem, warnings)
	if err != nil {
		return err
	}

	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encoding catalog: %w", err)
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "%s, kept by %s\n", d.Shop.Name, d.Shop.Keeper)
	fmt.Fprintf(w, "  %d items, %d rumours, %d remarks\n", len(d.Items), len(d.Shop.Rumours), d.Shop.Remarks)
	for _, kind := range catalog.Kinds {
		values := d.Taxonomies[string(kind)]
		if len(values) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s: %d categories\n", kind, len(values))
	}
	for _, warn := range d.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	return nil
}

func dumpCatalog(ctx context.Context, mem *catalog.Memory, warnings []string) (catalogDump, error) {
	info := mem.ShopInfo()
	d := catalogDump{
		Shop: shopDump{
			Name:        info.Name,
			Keeper:      info.Keeper,
			Personality: info.Personality,
			Hours:       info.Hours,
			Location:    info.Location,
			Rumours:     info.Rumours,
			Remarks:     len(info.Notices),
		},
		Taxonomies: map[string][]string{},
		Warnings:   warnings,
	}
	for _, kind := range catalog.Kinds {
		values, err := mem.ListCategories(ctx, kind)
		if err != nil {
			return catalogDump{}, err
		}
		if len(values) > 0 {
			d.Taxonomies[string(kind)] = values
		}
	}
	items, err := mem.ListItems(ctx)
	if err != nil {
		return catalogDump{}, err
	}
	for _, it := range items {
		sub := ""
		if kind, ok := catalog.SubKind(it.Category); ok {
			sub = catalog.Field(it, kind)
		}
		d.Items = append(d.Items, itemDump{
			ID:       it.ID,
			Name:     it.Name,
			Category: it.Category,
			Sub:      sub,
			Price:    engine.FormatCoins(it.Price),
			Weight:   it.Weight,
		})
	}
	return d, nil
}
