package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/nathoo/shopkeep/catalog/catalogtest"
	"github.com/nathoo/shopkeep/engine"
	"github.com/nathoo/shopkeep/storage/memory"
)

type fakeSender struct {
	chats []int64
	sent  []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	mc := c.(tgbotapi.MessageConfig)
	f.chats = append(f.chats, mc.ChatID)
	f.sent = append(f.sent, mc.Text)
	return tgbotapi.Message{}, nil
}

type fakeUpdater struct {
	ch      chan tgbotapi.Update
	stopped bool
}

func (f *fakeUpdater) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return f.ch }
func (f *fakeUpdater) StopReceivingUpdates()                                        { f.stopped = true }

type call struct {
	Character, Text string
}

type fakeCounter struct {
	calls    []call
	resets   []string
	resetErr error
}

func (f *fakeCounter) Handle(_ context.Context, characterID, raw string) string {
	f.calls = append(f.calls, call{characterID, raw})
	return "reply to " + raw
}

func (f *fakeCounter) Reset(_ context.Context, characterID string) error {
	f.resets = append(f.resets, characterID)
	return f.resetErr
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
}

func commandMessage(chatID int64, command string) *tgbotapi.Message {
	msg := textMessage(chatID, command)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return msg
}

func TestCharacterID(t *testing.T) {
	if got := CharacterID(-1001); got != "tg:-1001" {
		t.Errorf("CharacterID = %q", got)
	}
}

func TestHandleIncomingMessage_RelaysText(t *testing.T) {
	fs, fc := &fakeSender{}, &fakeCounter{}
	b := newBot(fs, nil, fc, nil, zap.NewNop())

	b.handleIncomingMessage(context.Background(), textMessage(42, "  buy dagger "))

	if diff := cmp.Diff([]call{{"tg:42", "buy dagger"}}, fc.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if len(fs.sent) != 1 || fs.sent[0] != "reply to buy dagger" || fs.chats[0] != 42 {
		t.Fatalf("unexpected sent: %v to %v", fs.sent, fs.chats)
	}
}

func TestHandleIncomingMessage_Commands(t *testing.T) {
	tests := []struct {
		command  string
		wantCall string
		wantSent string
	}{
		{"/start", "hello", "reply to hello"},
		{"/help", "help", "reply to help"},
		{"/reset", "", "Let's start over. What can I get you?"},
		{"/dance", "", "I don't know that one. Try /help."},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			fs, fc := &fakeSender{}, &fakeCounter{}
			b := newBot(fs, nil, fc, nil, zap.NewNop())
			b.handleIncomingMessage(context.Background(), commandMessage(7, tt.command))

			if tt.wantCall == "" && len(fc.calls) != 0 {
				t.Errorf("unexpected Handle calls: %v", fc.calls)
			}
			if tt.wantCall != "" && (len(fc.calls) != 1 || fc.calls[0].Text != tt.wantCall) {
				t.Errorf("calls = %v, want %q", fc.calls, tt.wantCall)
			}
			if len(fs.sent) != 1 || fs.sent[0] != tt.wantSent {
				t.Errorf("sent = %v, want %q", fs.sent, tt.wantSent)
			}
		})
	}
}

func TestHandleIncomingMessage_ResetUsesChatCharacter(t *testing.T) {
	fs, fc := &fakeSender{}, &fakeCounter{}
	b := newBot(fs, nil, fc, nil, zap.NewNop())
	b.handleIncomingMessage(context.Background(), commandMessage(9, "/reset"))
	if len(fc.resets) != 1 || fc.resets[0] != "tg:9" {
		t.Errorf("resets = %v", fc.resets)
	}
}

func TestHandleIncomingMessage_ResetFailure(t *testing.T) {
	fs := &fakeSender{}
	fc := &fakeCounter{resetErr: errors.New("db gone")}
	b := newBot(fs, nil, fc, nil, zap.NewNop())
	b.handleIncomingMessage(context.Background(), commandMessage(9, "/reset"))
	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "busy") {
		t.Errorf("sent = %v", fs.sent)
	}
}

func TestHandleIncomingMessage_AllowList(t *testing.T) {
	fs, fc := &fakeSender{}, &fakeCounter{}
	b := newBot(fs, nil, fc, []int64{1, 2}, zap.NewNop())

	b.handleIncomingMessage(context.Background(), textMessage(3, "buy rope"))
	if len(fc.calls) != 0 {
		t.Errorf("stranger reached the counter: %v", fc.calls)
	}
	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "only serves members") {
		t.Errorf("sent = %v", fs.sent)
	}

	b.handleIncomingMessage(context.Background(), textMessage(2, "buy rope"))
	if len(fc.calls) != 1 {
		t.Errorf("allowed chat was refused")
	}
}

func TestHandleIncomingMessage_IgnoresEmpty(t *testing.T) {
	fs, fc := &fakeSender{}, &fakeCounter{}
	b := newBot(fs, nil, fc, nil, zap.NewNop())
	b.handleIncomingMessage(context.Background(), textMessage(1, "   "))
	b.handleIncomingMessage(context.Background(), &tgbotapi.Message{Text: "no chat"})
	if len(fc.calls) != 0 || len(fs.sent) != 0 {
		t.Errorf("expected nothing, got calls=%v sent=%v", fc.calls, fs.sent)
	}
}

func TestRun_ProcessesUpdatesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs, fc := &fakeSender{}, &fakeCounter{}
	fu := &fakeUpdater{ch: make(chan tgbotapi.Update, 3)}
	b := newBot(fs, fu, fc, nil, zap.NewNop())

	fu.ch <- tgbotapi.Update{Message: textMessage(1, "first")}
	fu.ch <- tgbotapi.Update{}
	fu.ch <- tgbotapi.Update{Message: textMessage(1, "second")}
	close(fu.ch)

	if err := b.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{"reply to first", "reply to second"}
	if diff := cmp.Diff(want, fs.sent); diff != "" {
		t.Errorf("sent mismatch (-want +got):\n%s", diff)
	}
	if !fu.stopped {
		t.Error("expected StopReceivingUpdates on exit")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	fu := &fakeUpdater{ch: make(chan tgbotapi.Update)}
	b := newBot(&fakeSender{}, fu, &fakeCounter{}, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHandleIncomingMessage_RealShop(t *testing.T) {
	store := memory.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	shop, err := engine.NewShop(engine.Config{Seed: 7}, engine.Deps{
		Catalog: catalogtest.New(),
		Store:   store,
		Ledger:  store,
		Now:     func() time.Time { return now },
	}, engine.Party{Name: "The Company", Gold: 100 * engine.Gold})
	if err != nil {
		t.Fatal(err)
	}

	fs := &fakeSender{}
	b := newBot(fs, nil, shop, nil, zap.NewNop())
	ctx := context.Background()
	b.handleIncomingMessage(ctx, textMessage(5, "buy dagger"))
	b.handleIncomingMessage(ctx, textMessage(5, "yes"))

	if len(fs.sent) != 2 || !strings.Contains(fs.sent[0], "The Dagger will cost you 2 gp.") {
		t.Fatalf("sent = %v", fs.sent)
	}
	p, err := shop.Party(ctx, CharacterID(5))
	if err != nil {
		t.Fatal(err)
	}
	if p.Balance != 98*engine.Gold {
		t.Errorf("balance = %d, want %d", p.Balance, 98*engine.Gold)
	}
}
