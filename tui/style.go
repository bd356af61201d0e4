package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("94")).
			Foreground(lipgloss.Color("230")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("178"))

	styleSpeech = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230"))

	styleListing = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	stylePrice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleOffer = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("167"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("178"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindSpeech lineKind = iota
	kindListing
	kindOffer
	kindSystem
	kindError
	kindTrace
)

// listingLine matches "3. Longsword (15 gp)" and "2. Martial Melee".
var listingLine = regexp.MustCompile(`^\d+\. `)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case listingLine.MatchString(line):
		return kindListing
	case strings.HasSuffix(line, "(yes/no)"):
		return kindOffer
	case strings.HasPrefix(line, "You're not carrying"),
		strings.HasPrefix(line, "I don't stock"),
		strings.Contains(line, "purse says otherwise"):
		return kindError
	default:
		return kindSpeech
	}
}

// styledListing renders a numbered line with its trailing price highlighted.
func styledListing(line string) string {
	open := strings.LastIndex(line, " (")
	if open < 0 || !strings.HasSuffix(line, ")") {
		return styleListing.Render(line)
	}
	return styleListing.Render(line[:open+1]) + stylePrice.Render(line[open+1:])
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
