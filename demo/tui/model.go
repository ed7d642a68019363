package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"lotcheck/demo/client"
	"lotcheck/types"
)

// State represents the application state machine
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateComplete State = "complete"
	StateError    State = "error"
)

// maxVisibleResults caps how many result rows are drawn
const maxVisibleResults = 15

// Model is the TUI state for one batch
type Model struct {
	Client *client.Client
	Links  []string
	Mode   string

	State  State
	Latest *types.BatchProgress
	Err    error

	events <-chan tea.Msg
	cancel context.CancelFunc
}

// NewModel creates a new TUI model for links
func NewModel(c *client.Client, links []string, mode string) Model {
	return Model{
		Client: c,
		Links:  links,
		Mode:   mode,
		State:  StateIdle,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return nil
}

// start kicks off the stream
func (m Model) start() (Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.events = streamEvents(ctx, m.Client, m.Links, m.Mode)
	m.State = StateRunning
	return m, waitForEvent(m.events)
}

// getStateText returns the appropriate state message
func (m Model) getStateText() string {
	switch m.State {
	case StateIdle:
		return bannerStyle.Render(fmt.Sprintf("👋 %d link(s) ready", len(m.Links)))
	case StateRunning:
		progress := "starting"
		if m.Latest != nil {
			progress = m.Latest.Progress
		}
		return progressStyle.Render("⏳ Checking links: " + progress)
	case StateComplete:
		return bannerStyle.Render("✅ COMPLETE")
	case StateError:
		errMsg := "Unknown error"
		if m.Err != nil {
			errMsg = m.Err.Error()
		}
		return failureStyle.Render(fmt.Sprintf("❌ Error: %v", errMsg))
	default:
		return ""
	}
}
