package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/shopkeep/engine"
	"github.com/nathoo/shopkeep/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for a session at the counter.
type Model struct {
	ctx       context.Context
	shop      *engine.Shop
	character string
	shopName  string

	viewport viewport.Model
	input    textinput.Model
	history  *History
	status   status

	rawLines []rawLine // accumulated conversation lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
}

// turnOutputMsg carries output into the Update loop.
type turnOutputMsg struct {
	input    string   // echoed player input (empty for the welcome)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model for character at shop.
func New(ctx context.Context, shop *engine.Shop, character string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	name := shop.Info().Name
	if name == "" {
		name = "The shop"
	}
	return Model{
		ctx:       ctx,
		shop:      shop,
		character: character,
		shopName:  name,
		input:     ti,
		history:   NewHistory(100),
		status:    loadStatus(ctx, shop, character),
	}
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, shop *engine.Shop, character string) error {
	m := New(ctx, shop, character)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the welcome.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.welcome())
}

func (m Model) welcome() tea.Cmd {
	return func() tea.Msg {
		info := m.shop.Info()
		lines := []string{fmt.Sprintf("You step into %s.", m.shopName)}
		if info.Location != "" {
			lines = append(lines, fmt.Sprintf("It stands in %s.", info.Location))
		}
		if info.Keeper != "" {
			lines = append(lines, fmt.Sprintf("%s looks up from the counter.", info.Keeper))
		}
		lines = append(lines, "", "Say hello, or type /help.")
		return turnOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, turn output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case turnOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}
	m.history.Push(input)

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(turnOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	result, err := m.shop.Step(m.ctx, m.character, input)
	if err != nil {
		m = m.appendOutput(turnOutputMsg{input: input, lines: []string{fmt.Sprintf("Turn failed: %v", err)}, isSystem: true})
		return m, nil
	}
	output := result.Output
	if m.trace {
		output = append(output, formatTrace(result)...)
	}
	m.status = loadStatus(m.ctx, m.shop, m.character)
	m = m.appendOutput(turnOutputMsg{input: input, lines: output})
	return m, nil
}

// appendOutput adds lines to the conversation and refreshes the viewport.
func (m Model) appendOutput(msg turnOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindListing:
		return styledListing(line)
	case kindOffer:
		return styleOffer.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleSpeech.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		switch {
		case i == 0:
			lineLen = len(word)
		case lineLen+1+len(word) > width:
			result.WriteString("\n")
			lineLen = len(word)
		default:
			result.WriteString(" ")
			lineLen += 1 + len(word)
		}
		result.WriteString(word)
	}
	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	switch cmd := strings.Fields(input)[0]; cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/reset":
		if err := m.shop.Reset(m.ctx, m.character); err != nil {
			return []string{fmt.Sprintf("Reset failed: %v", err)}, false
		}
		m.status = loadStatus(m.ctx, m.shop, m.character)
		return []string{"Conversation reset."}, false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func cmdHelp() []string {
	return []string{
		"System:",
		"  /quit         Leave the shop",
		"  /help         Show this help",
		"  /state        Debug: dump conversation and party",
		"  /reset        Start the conversation over",
		"  /trace        Toggle debug trace output",
		"",
		"At the counter:",
		"  show me your wares        Browse by category",
		"  buy / sell <item>         Trade",
		"  haggle                    Try for a better price",
		"  yes / no                  Accept or decline an offer",
		"  next / previous           Page through a listing",
		"  deposit / withdraw <n gp> Use the party purse",
		"  stash / unstash <item>    Leave loot in the back room",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for input history",
	}
}

func (m *Model) cmdState() []string {
	snap, err := m.shop.Snapshot(m.ctx, m.character)
	if err != nil {
		return []string{fmt.Sprintf("State unavailable: %v", err)}
	}
	output := []string{
		fmt.Sprintf("Character: %s", snap.CharacterID),
		fmt.Sprintf("State: %s", snap.State),
	}
	if snap.PendingIntent != "" {
		output = append(output, fmt.Sprintf("Pending: %s (%s)", snap.PendingIntent, snap.PendingItem.Kind))
	}
	if snap.Discount != nil {
		output = append(output, fmt.Sprintf("Discounted price: %s", engine.FormatCoins(*snap.Discount)))
	}
	output = append(output, fmt.Sprintf("Visits: %d, haggles today: %d", snap.Visit.Count, snap.Haggle.Attempts))

	keys := make([]string, 0, len(snap.Metadata))
	for k := range snap.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		output = append(output, fmt.Sprintf("Meta %s: %s", k, snap.Metadata[k]))
	}
	return output
}

func formatTrace(result types.Result) []string {
	lines := []string{fmt.Sprintf("[trace] Intent: %s via %s → %s", result.Intent.Intent, result.Route, result.State)}
	if len(result.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
