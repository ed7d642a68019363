package tui

import (
	"github.com/charmbracelet/lipgloss"

	"lotcheck/types"
)

// Symbol palette, matching the emoji each symbol renders as
const (
	colorGreen   = "#04B575"
	colorYellow  = "#F5C542"
	colorRed     = "#FF5F5F"
	colorRemoved = "#8A8A8A"

	colorBrand = "#7D56F4"
	colorMuted = "#626262"
	colorLight = "#FAFAFA"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorBrand)).
			MarginTop(1)

	// progressStyle shows the running "k of n" line
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen))

	// failureStyle shows a stream that ended with an error
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))

	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))

	greenTotalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorGreen))

	resultsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBrand)).
			Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorLight)).
			Background(lipgloss.Color(colorBrand)).
			Padding(0, 1)

	symbolStyles = map[types.Symbol]lipgloss.Style{
		types.SymbolGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)),
		types.SymbolYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		types.SymbolRed:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
		types.SymbolRemoved: lipgloss.NewStyle().Foreground(lipgloss.Color(colorRemoved)).Faint(true),
	}
)

// symbolStyle returns the row style for s; unknown symbols render as removed
func symbolStyle(s types.Symbol) lipgloss.Style {
	if st, ok := symbolStyles[s]; ok {
		return st
	}
	return symbolStyles[types.SymbolRemoved]
}
