package tui

import (
	"fmt"
	"strings"

	"lotcheck/types"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(TextTitle))
	b.WriteString("\n\n")

	b.WriteString(m.getStateText())
	b.WriteString("\n\n")

	if m.Latest != nil {
		b.WriteString(greenTotalStyle.Render(fmt.Sprintf("💰 Green total: %d", m.Latest.TotalGreenPrice)))
		b.WriteString("\n\n")
		b.WriteString(resultsBoxStyle.Render(formatResults(m.Latest.FilteredResults)))
		b.WriteString("\n\n")
	}

	switch m.State {
	case StateIdle:
		b.WriteString(hintStyle.Render(TextFooterIdle))
	case StateRunning:
		b.WriteString(hintStyle.Render(TextFooterRunning))
	default:
		b.WriteString(bannerStyle.Render(TextFooterDone))
	}
	return b.String()
}

// formatResults renders the most recent results, newest last
func formatResults(results []types.ClassifiedResult) string {
	start := 0
	if len(results) > maxVisibleResults {
		start = len(results) - maxVisibleResults
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(hintStyle.Render(fmt.Sprintf("… %d earlier", start)))
		b.WriteString("\n")
	}
	for _, r := range results[start:] {
		row := fmt.Sprintf("%s %s  %d", r.Symbol.Emoji(), r.Link, r.Price)
		if r.Symbol == types.SymbolRemoved {
			row = fmt.Sprintf("%s %s", r.Symbol.Emoji(), r.Link)
		}
		b.WriteString(symbolStyle(r.Symbol).Render(row))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
