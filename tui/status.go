package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/shopkeep/engine"
	"github.com/nathoo/shopkeep/types"
)

// status is what the bar shows, refreshed after every turn.
type status struct {
	state     types.State
	purse     int64
	inventory []string
	err       error
}

// stateLabel turns "AWAITING_ITEM_SELECTION" into "Awaiting item selection".
func stateLabel(s types.State) string {
	if s == "" {
		return "Just arrived"
	}
	words := strings.Split(strings.ToLower(string(s)), "_")
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

// loadStatus reads the character's conversation and party.
func loadStatus(ctx context.Context, shop *engine.Shop, character string) status {
	snap, err := shop.Snapshot(ctx, character)
	if err != nil {
		return status{err: err}
	}
	p, err := shop.Party(ctx, character)
	if err != nil {
		return status{state: snap.State, err: err}
	}
	return status{state: snap.State, purse: p.Balance, inventory: p.Inventory}
}

// renderStatusBar produces a full-width status line showing the shop,
// the conversation state, the party purse and what the party carries.
func (m Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s | %s", m.shopName, stateLabel(m.status.state))
	right := fmt.Sprintf("Purse: %s ", engine.FormatCoins(m.status.purse))
	if m.status.err != nil {
		right = "Purse: ? "
	}

	// Show the pack if it fits, otherwise just a count.
	if n := len(m.status.inventory); n > 0 {
		candidate := fmt.Sprintf("Pack: %s | %s", strings.Join(m.status.inventory, ", "), right)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Pack: %d | %s", n, right)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
