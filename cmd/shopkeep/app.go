package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nathoo/shopkeep/catalog"
	"github.com/nathoo/shopkeep/cli"
	"github.com/nathoo/shopkeep/config"
	"github.com/nathoo/shopkeep/engine"
	"github.com/nathoo/shopkeep/engine/dialogue"
	"github.com/nathoo/shopkeep/llm"
	"github.com/nathoo/shopkeep/loader"
	"github.com/nathoo/shopkeep/storage/sqlite"
	"github.com/nathoo/shopkeep/tui"
)

// app is everything a channel needs to serve the shop.
type app struct {
	shop    *engine.Shop
	store   *sqlite.Store
	catalog *catalog.Reloadable
}

func (a *app) Close() error { return a.store.Close() }

// openApp loads the catalog, opens the database and builds the shop.
func openApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	mem, warnings, err := loader.LoadWithWarnings(cfg.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	for _, w := range warnings {
		log.Warn("catalog warning", zap.String("warning", w))
	}
	log.Info("catalog loaded", zap.String("dir", cfg.CatalogDir), zap.Int("items", mem.Len()))
	rc := catalog.NewReloadable(mem)

	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	ecfg := engine.Config{
		PartyID:     cfg.Party.ID,
		Threshold:   cfg.Threshold,
		VisitWindow: cfg.VisitWindow,
		PageSize:    cfg.PageSize,
		LedgerLimit: cfg.LedgerLimit,
		Seed:        cfg.Seed,
	}
	if cfg.Personality != "" {
		p, err := dialogue.NewRegistry().Lookup(cfg.Personality)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		ecfg.Personality = p
	}

	deps := engine.Deps{
		Catalog: rc,
		Store:   store,
		Ledger:  store,
		Logger:  log,
	}
	if cfg.LLM.APIKey != "" {
		fb, err := llm.New(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		})
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		deps.Fallback = fb
		log.Info("llm fallback enabled", zap.String("model", cfg.LLM.Model))
	}

	shop, err := engine.NewShop(ecfg, deps, engine.Party{
		Name: cfg.Party.Name,
		Gold: cfg.Party.Gold * engine.Gold,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &app{shop: shop, store: store, catalog: rc}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM. After the first signal
// the default handling comes back, so a second Ctrl-C kills a console
// stuck reading stdin.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loader.Watch(gctx, cfg.CatalogDir, a.catalog, logger)
	})
	g.Go(func() error {
		defer cancel()
		return runChannel(gctx, a.shop, cmd)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runChannel picks the console front end: a script, the TUI or plain lines.
func runChannel(ctx context.Context, shop *engine.Shop, cmd *cobra.Command) error {
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := cli.New(shop, cfg.Character)
		c.In = f
		c.Out = cmd.OutOrStdout()
		c.EchoInput = true
		c.Trace = trace
		return c.Run(ctx)
	}
	if useTUI {
		return tui.Run(ctx, shop, cfg.Character)
	}
	c := cli.New(shop, cfg.Character)
	c.Out = cmd.OutOrStdout()
	c.Trace = trace
	return c.Run(ctx)
}
