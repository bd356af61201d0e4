// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for a console session at the shop counter.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/nathoo/shopkeep/engine"
	"github.com/nathoo/shopkeep/types"
)

// CLI handles terminal interaction with one character.
type CLI struct {
	Shop      *engine.Shop
	Character string
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI for character at shop.
func New(shop *engine.Shop, character string) *CLI {
	return &CLI{
		Shop:      shop,
		Character: character,
		In:        os.Stdin,
		Out:       os.Stdout,
	}
}

// Run shows the shop's welcome, then loops: prompt → input → turn → output.
// It returns when the input ends, /quit is typed or ctx is cancelled.
func (c *CLI) Run(ctx context.Context) error {
	info := c.Shop.Info()
	c.printLine(fmt.Sprintf("You step into %s.", nonEmpty(info.Name, "the shop")))
	if info.Keeper != "" {
		c.printLine(fmt.Sprintf("%s looks up from the counter.", info.Keeper))
	}
	c.printLine("")

	scanner := bufio.NewScanner(c.In)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return nil
			}
			continue
		}

		result, err := c.Shop.Step(ctx, c.Character, input)
		if err != nil {
			c.printSystem(fmt.Sprintf("Turn failed: %v", err))
			continue
		}
		c.printResult(result)
		if c.Trace {
			c.printTrace(result)
		}
	}
	return scanner.Err()
}

// handleMeta dispatches meta-commands. Returns true if the session should end.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState(ctx)

	case "/reset":
		if err := c.Shop.Reset(ctx, c.Character); err != nil {
			c.printSystem(fmt.Sprintf("Reset failed: %v", err))
			break
		}
		c.printSystem("Conversation reset.")

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /quit         Leave the shop",
		"  /help         Show this help",
		"  /state        Debug: dump conversation and party",
		"  /reset        Start the conversation over",
		"  /trace        Toggle debug trace output",
		"",
		"At the counter:",
		"  show me your wares        Browse by category",
		"  buy <item>                Ask for a price",
		"  sell <item>               Offer something you carry",
		"  haggle                    Try for a better price",
		"  yes / no                  Accept or decline an offer",
		"  next / previous           Page through a listing",
		"  deposit / withdraw <n gp> Use the party purse",
		"  balance, ledger           Check the party's money",
		"  stash / unstash <item>    Leave loot in the back room",
		"  help                      Ask the shopkeeper",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState(ctx context.Context) {
	snap, err := c.Shop.Snapshot(ctx, c.Character)
	if err != nil {
		c.printSystem(fmt.Sprintf("State unavailable: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Character: %s", snap.CharacterID))
	c.printSystem(fmt.Sprintf("State: %s", snap.State))
	if snap.PendingIntent != "" {
		c.printSystem(fmt.Sprintf("Pending: %s %s", snap.PendingIntent, describePending(snap.PendingItem)))
	}
	if snap.Discount != nil {
		c.printSystem(fmt.Sprintf("Discounted price: %s", engine.FormatCoins(*snap.Discount)))
	}
	c.printSystem(fmt.Sprintf("Visits: %d, haggles today: %d", snap.Visit.Count, snap.Haggle.Attempts))
	if len(snap.Metadata) > 0 {
		keys := make([]string, 0, len(snap.Metadata))
		for k := range snap.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c.printSystem(fmt.Sprintf("Meta %s: %s", k, snap.Metadata[k]))
		}
	}

	p, err := c.Shop.Party(ctx, c.Character)
	if err != nil {
		c.printSystem(fmt.Sprintf("Party unavailable: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Party: %s, purse %s", p.Name, engine.FormatCoins(p.Balance)))
	c.printSystem(fmt.Sprintf("Inventory: %v", p.Inventory))
	if len(p.Stash) > 0 {
		c.printSystem(fmt.Sprintf("Stash: %v", p.Stash))
	}
}

func describePending(p types.PendingItem) string {
	switch p.Kind {
	case types.PendingSingle:
		if p.Item != nil {
			return fmt.Sprintf("(%s)", p.Item.Name)
		}
	case types.PendingList:
		return fmt.Sprintf("(%d choices)", len(p.Items))
	case types.PendingRaw:
		return fmt.Sprintf("(%q)", p.Raw)
	}
	return ""
}

func (c *CLI) printTrace(result types.Result) {
	c.printSystem(fmt.Sprintf("[trace] Intent: %s (%.2f) via %s → %s",
		result.Intent.Intent, result.Intent.Metadata.Confidence, result.Route, result.State))
	if len(result.Effects) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
