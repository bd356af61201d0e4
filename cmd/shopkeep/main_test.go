package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/shopkeep/catalog/catalogtest"
	"github.com/nathoo/shopkeep/config"
	"github.com/nathoo/shopkeep/engine"
)

const shippedCatalog = "../../shops/rusty_flagon"

func TestDescribeCatalog_Summary(t *testing.T) {
	var buf bytes.Buffer
	if err := describeCatalog(context.Background(), &buf, shippedCatalog, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"The Rusty Flagon Trading Post, kept by Griswold",
		"51 items, 4 rumours, 5 remarks",
		"armor: 4 categories",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "warning:") {
		t.Errorf("shipped catalog should load cleanly:\n%s", out)
	}
}

func TestDescribeCatalog_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := describeCatalog(context.Background(), &buf, shippedCatalog, true); err != nil {
		t.Fatal(err)
	}
	var got catalogDump
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if got.Shop.Keeper != "Griswold" || len(got.Items) != 51 {
		t.Errorf("keeper = %q, items = %d", got.Shop.Keeper, len(got.Items))
	}
	if want := []string{"Light", "Medium", "Heavy", "Shield"}; strings.Join(got.Taxonomies["armor"], ",") != strings.Join(want, ",") {
		t.Errorf("armor = %v, want %v", got.Taxonomies["armor"], want)
	}
}

func TestDescribeCatalog_BadDir(t *testing.T) {
	var buf bytes.Buffer
	if err := describeCatalog(context.Background(), &buf, t.TempDir(), false); err == nil {
		t.Error("expected error for a directory without catalog files")
	}
}

func TestLookupItem(t *testing.T) {
	var buf bytes.Buffer
	if err := lookupItem(context.Background(), &buf, catalogtest.New(), "LONGSWORD"); err != nil {
		t.Fatal(err)
	}
	want := "#12 Longsword (15 gp)\n  A versatile knightly sword.\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("lookupItem mismatch (-want +got):\n%s", diff)
	}
	if err := lookupItem(context.Background(), &buf, catalogtest.New(), "vorpal sword"); err == nil {
		t.Error("expected error for an unknown item")
	}
}

func TestListCategory(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		page    int
		want    string
		wantErr bool
	}{
		{"first page cheapest first", "weapon/martial melee", 1, "#13 Shortsword (10 gp)\n#12 Longsword (15 gp)\n", false},
		{"second page", "weapon/Martial Melee", 2, "#70 Dagger of Venom (2,500 gp)\n", false},
		{"past the end", "weapon/martial melee", 3, "nothing on page 3 of martial melee\n", false},
		{"missing value", "weapon", 1, "", true},
		{"unknown kind", "spell/evocation", 1, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := listCategory(context.Background(), &buf, catalogtest.New(), tt.spec, tt.page, 2)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("listCategory mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		DBPath:     filepath.Join(t.TempDir(), "shop.db"),
		CatalogDir: shippedCatalog,
		Character:  "alice",
		Seed:       3,
		Party:      config.Party{Name: "The Company", Gold: 10},
	}
}

func TestOpenApp_PersistsPurchases(t *testing.T) {
	ctx := context.Background()
	c := testConfig(t)

	a, err := openApp(ctx, c, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if reply := a.shop.Handle(ctx, "alice", "buy dagger"); !strings.Contains(reply, "Dagger") {
		t.Errorf("reply = %q", reply)
	}
	a.shop.Handle(ctx, "alice", "yes")
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	again, err := openApp(ctx, c, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer again.Close()
	p, err := again.shop.Party(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if p.Balance != 8*engine.Gold {
		t.Errorf("balance = %s, want 8 gp", engine.FormatCoins(p.Balance))
	}
}

func TestOpenApp_UnknownPersonality(t *testing.T) {
	c := testConfig(t)
	c.Personality = "sarcastic-robot"
	if _, err := openApp(context.Background(), c, zap.NewNop()); err == nil {
		t.Error("expected unknown personality error")
	}
}

func TestRunChannel_Script(t *testing.T) {
	ctx := context.Background()
	c := testConfig(t)
	a, err := openApp(ctx, c, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	script := filepath.Join(t.TempDir(), "visit.txt")
	if err := os.WriteFile(script, []byte("# a short visit\nbuy dagger\n/quit\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	oldCfg, oldScript := cfg, scriptFile
	t.Cleanup(func() { cfg, scriptFile = oldCfg, oldScript })
	cfg, scriptFile = c, script

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	if err := runChannel(ctx, a.shop, cmd); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"You step into The Rusty Flagon Trading Post.",
		"> buy dagger",
		"[Goodbye.]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}
