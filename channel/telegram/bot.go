// Package telegram relays Telegram chats to the shop counter. Each chat is
// one character; every chat shares the party purse.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Counter is the part of engine.Shop the bot talks to.
type Counter interface {
	Handle(ctx context.Context, characterID, raw string) string
	Reset(ctx context.Context, characterID string) error
}

// Bot answers Telegram messages with shopkeeper replies.
type Bot struct {
	s       sender
	u       updater
	counter Counter
	allowed map[int64]bool
	log     *zap.Logger
}

// Config configures New.
type Config struct {
	Token string
	// AllowedChats restricts the bot to these chat ids. Empty allows everyone.
	AllowedChats []int64
	Debug        bool
}

// New connects to the Bot API.
func New(cfg Config, counter Counter, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	api.Debug = cfg.Debug
	log.Info("telegram bot authorised", zap.String("username", api.Self.UserName))
	return newBot(botAPISender{api}, api, counter, cfg.AllowedChats, log), nil
}

func newBot(s sender, u updater, counter Counter, allowedChats []int64, log *zap.Logger) *Bot {
	b := &Bot{s: s, u: u, counter: counter, log: log}
	if len(allowedChats) > 0 {
		b.allowed = make(map[int64]bool, len(allowedChats))
		for _, id := range allowedChats {
			b.allowed[id] = true
		}
	}
	return b
}

// Run polls for updates until ctx is done. Updates are handled one at a
// time, in the order Telegram delivers them.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.u.GetUpdatesChan(u)
	defer b.u.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
			}
		}
	}
}

// CharacterID names the character a chat plays.
func CharacterID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	log := b.log.With(zap.Int64("chat", chatID))

	if b.allowed != nil && !b.allowed[chatID] {
		log.Warn("message from chat not on the allow list")
		b.sendMessage(chatID, "Sorry, this counter only serves members of the company.")
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	character := CharacterID(chatID)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			text = "hello"
		case "help":
			text = "help"
		case "reset":
			if err := b.counter.Reset(ctx, character); err != nil {
				log.Error("reset failed", zap.Error(err))
				b.sendMessage(chatID, "The shopkeeper is busy. Try again in a moment.")
				return
			}
			b.sendMessage(chatID, "Let's start over. What can I get you?")
			return
		default:
			b.sendMessage(chatID, "I don't know that one. Try /help.")
			return
		}
	}

	log.Debug("turn", zap.String("text", text))
	reply := b.counter.Handle(ctx, character, text)
	if reply == "" {
		return
	}
	b.sendMessage(chatID, reply)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		b.log.Error("failed to send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}
