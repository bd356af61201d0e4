package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nathoo/shopkeep/catalog/catalogtest"
	"github.com/nathoo/shopkeep/engine"
	"github.com/nathoo/shopkeep/storage/memory"
)

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
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
	var out bytes.Buffer
	c := &CLI{
		Shop:      shop,
		Character: "alice",
		In:        strings.NewReader(input),
		Out:       &out,
	}
	return c, &out
}

func run(t *testing.T, c *CLI) {
	t.Helper()
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestCLI_Welcome(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	run(t, c)

	output := out.String()
	if !strings.Contains(output, "You step into The Rusty Flagon Trading Post.") {
		t.Errorf("expected shop name in welcome, got:\n%s", output)
	}
	if !strings.Contains(output, "Griswold looks up from the counter.") {
		t.Error("expected keeper in welcome")
	}
	if !strings.Contains(output, "[Goodbye.]") {
		t.Error("expected goodbye on /quit")
	}
}

func TestCLI_BuyOffer(t *testing.T) {
	c, out := newTestCLI(t, "buy dagger\n/quit\n")
	run(t, c)

	if !strings.Contains(out.String(), "The Dagger will cost you 2 gp.") {
		t.Errorf("expected an offer, got:\n%s", out.String())
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	run(t, c)

	output := out.String()
	for _, want := range []string{"/quit", "/state", "/reset", "/trace", "haggle"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}

func TestCLI_StateCommand(t *testing.T) {
	c, out := newTestCLI(t, "buy dagger\n/state\n/quit\n")
	run(t, c)

	output := out.String()
	for _, want := range []string{
		"[Character: alice]",
		"[State: AWAITING_CONFIRMATION]",
		"[Pending: BUY_ITEM (Dagger)]",
		"[Party: The Company, purse 100 gp]",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in state output, got:\n%s", want, output)
		}
	}
}

func TestCLI_ResetCommand(t *testing.T) {
	c, out := newTestCLI(t, "buy dagger\n/reset\n/state\n/quit\n")
	run(t, c)

	output := out.String()
	if !strings.Contains(output, "[Conversation reset.]") {
		t.Error("expected reset confirmation")
	}
	if !strings.Contains(output, "[State: INTRODUCTION]") {
		t.Errorf("expected INTRODUCTION after reset, got:\n%s", output)
	}
	if strings.Contains(output, "[Pending:") {
		t.Error("reset must clear the pending item")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	c, out := newTestCLI(t, "/trace\nbuy dagger\n/trace\n/quit\n")
	run(t, c)

	output := out.String()
	if !strings.Contains(output, "Trace output enabled") {
		t.Error("expected trace enabled message")
	}
	if !strings.Contains(output, "[trace] Intent: BUY_ITEM") {
		t.Errorf("expected intent trace, got:\n%s", output)
	}
	if !strings.Contains(output, "Trace output disabled") {
		t.Error("expected trace disabled message")
	}
}

func TestCLI_TraceShowsEffects(t *testing.T) {
	c, out := newTestCLI(t, "/trace\nbuy dagger\nyes\n/quit\n")
	run(t, c)

	output := out.String()
	if !strings.Contains(output, "[trace] Effects: 2") {
		t.Errorf("expected two effects for a purchase, got:\n%s", output)
	}
	if !strings.Contains(output, "gold_spent") || !strings.Contains(output, "item_gained") {
		t.Error("expected purchase events in trace")
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/bogus\n/quit\n")
	run(t, c)

	if !strings.Contains(out.String(), "Unknown command: /bogus") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_SkipsBlankAndCommentLines(t *testing.T) {
	c, out := newTestCLI(t, "\n# a comment\n\n/quit\n")
	c.EchoInput = true
	run(t, c)

	output := out.String()
	if strings.Contains(output, "a comment") {
		t.Error("comment lines must not be echoed or sent")
	}
	if strings.Count(output, "> ") != 4 {
		t.Errorf("expected 4 prompts, got %d", strings.Count(output, "> "))
	}
}

func TestCLI_EndOfInput(t *testing.T) {
	c, out := newTestCLI(t, "hello")
	run(t, c)

	if strings.Contains(out.String(), "[Goodbye.]") {
		t.Error("end of input is not /quit")
	}
}

func TestCLI_CancelledContext(t *testing.T) {
	c, out := newTestCLI(t, "buy dagger\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Contains(out.String(), "Dagger") {
		t.Error("no turn should run after cancellation")
	}
}
