package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case ProgressMsg:
		p := msg.Progress
		m.Latest = &p
		return m, waitForEvent(m.events)
	case StreamDoneMsg:
		return m.handleDone(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case "s", "S":
		if m.State == StateIdle {
			return m.start()
		}
	}
	return m, nil
}

// handleDone records how the stream ended
func (m Model) handleDone(msg StreamDoneMsg) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.State = StateComplete
	return m, nil
}
