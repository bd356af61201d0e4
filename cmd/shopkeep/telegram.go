package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nathoo/shopkeep/channel/telegram"
	"github.com/nathoo/shopkeep/loader"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Serve the shop to Telegram chats",
	Long: `Runs a Telegram bot. Every chat is its own character; all chats share
the party purse. Needs TELEGRAM_TOKEN. TELEGRAM_ALLOWED_CHATS limits who may
shop. Old audit records are pruned on AUDIT_PRUNE_SCHEDULE. Chats quiet for
SHOPKEEP_SEAT_IDLE are dropped from memory and reloaded on their next message.`,
	Args: cobra.NoArgs,
	RunE: runTelegram,
}

func runTelegram(cmd *cobra.Command, args []string) error {
	if cfg.Telegram.Token == "" {
		return errors.New("TELEGRAM_TOKEN is not set")
	}
	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	bot, err := telegram.New(telegram.Config{
		Token:        cfg.Telegram.Token,
		AllowedChats: cfg.Telegram.AllowedChats,
		Debug:        cfg.Telegram.Debug,
	}, a.shop, logger)
	if err != nil {
		return err
	}
	pruner := telegram.NewPruner(a.store, cfg.Retention(), cfg.Audit.PruneSchedule, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	g.Go(func() error { return pruner.Run(gctx) })
	g.Go(func() error { return a.shop.EvictIdle(gctx, cfg.SeatIdle) })
	g.Go(func() error { return loader.Watch(gctx, cfg.CatalogDir, a.catalog, logger) })

	logger.Info("shop open on telegram", zap.String("shop", a.shop.Info().Name))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shop closed")
	return nil
}
