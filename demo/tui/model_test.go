package tui

import (
	"errors"
	"strings"
	"testing"

	"lotcheck/types"
)

func TestModel_ProgressThenDone(t *testing.T) {
	m := NewModel(nil, []string{"item/1", "item/2"}, "")
	m.State = StateRunning

	next, _ := m.Update(ProgressMsg{Progress: types.BatchProgress{
		Progress:        "1 of 2",
		TotalGreenPrice: 97,
		FilteredResults: []types.ClassifiedResult{{Link: "item/1", Symbol: types.SymbolGreen, Price: 97}},
	}})
	m = next.(Model)

	if m.Latest == nil || m.Latest.Progress != "1 of 2" {
		t.Fatalf("Latest = %+v", m.Latest)
	}
	view := m.View()
	if !strings.Contains(view, "1 of 2") || !strings.Contains(view, "Green total: 97") {
		t.Errorf("view missing progress:\n%s", view)
	}

	next, _ = m.Update(StreamDoneMsg{})
	m = next.(Model)
	if m.State != StateComplete {
		t.Errorf("State = %s, want complete", m.State)
	}
}

func TestModel_StreamError(t *testing.T) {
	m := NewModel(nil, []string{"item/1"}, "")
	m.State = StateRunning

	next, _ := m.Update(StreamDoneMsg{Err: errors.New("server returned 400")})
	m = next.(Model)

	if m.State != StateError {
		t.Fatalf("State = %s, want error", m.State)
	}
	if !strings.Contains(m.View(), "server returned 400") {
		t.Errorf("view missing error:\n%s", m.View())
	}
}

func TestFormatResults_Truncates(t *testing.T) {
	results := make([]types.ClassifiedResult, maxVisibleResults+5)
	for i := range results {
		results[i] = types.ClassifiedResult{Link: "l", Symbol: types.SymbolRed}
	}

	out := formatResults(results)
	if !strings.Contains(out, "5 earlier") {
		t.Errorf("missing truncation marker:\n%s", out)
	}
}

func TestSymbolStyle_EverySymbolStyled(t *testing.T) {
	for _, s := range []types.Symbol{types.SymbolGreen, types.SymbolYellow, types.SymbolRed, types.SymbolRemoved} {
		if _, ok := symbolStyles[s]; !ok {
			t.Errorf("no style for %s", s)
		}
	}
	if got := symbolStyle("closed").Render("x"); !strings.Contains(got, "x") {
		t.Errorf("fallback style dropped text: %q", got)
	}
}

func TestFormatResults_Rows(t *testing.T) {
	out := formatResults([]types.ClassifiedResult{
		{Link: "item/1", Symbol: types.SymbolGreen, Price: 97},
		{Link: "item/2", Symbol: types.SymbolRemoved},
	})
	if !strings.Contains(out, "item/1  97") {
		t.Errorf("green row missing price:\n%s", out)
	}
	if strings.Contains(out, "item/2  0") {
		t.Errorf("removed row shows a price:\n%s", out)
	}
}
