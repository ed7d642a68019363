package batch

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lotcheck/market"
	"lotcheck/types"
)

// Report is the final state of one completed batch.
type Report struct {
	ID              uuid.UUID                `json:"id"`
	Mode            market.Mode              `json:"mode"`
	StartedAt       time.Time                `json:"started_at"`
	FinishedAt      time.Time                `json:"finished_at"`
	Total           int                      `json:"total"`
	TotalGreenPrice int64                    `json:"total_green_price"`
	Counts          map[types.Symbol]int     `json:"counts"`
	Results         []types.ClassifiedResult `json:"results"`
}

func countSymbols(results []types.ClassifiedResult) map[types.Symbol]int {
	counts := map[types.Symbol]int{
		types.SymbolGreen:   0,
		types.SymbolYellow:  0,
		types.SymbolRed:     0,
		types.SymbolRemoved: 0,
	}
	for _, r := range results {
		counts[r.Symbol]++
	}
	return counts
}

// FormatSummary renders the report as text, one line per link.
func FormatSummary(report *Report) string {
	var b strings.Builder
	for _, r := range report.Results {
		if r.Symbol == types.SymbolRemoved {
			fmt.Fprintf(&b, "Removed/No access: %s\n", r.Link)
			continue
		}
		fmt.Fprintf(&b, "Account: %s - State: %s, Price: %d\n", r.Link, r.Symbol.Emoji(), r.Price)
	}
	return b.String()
}
