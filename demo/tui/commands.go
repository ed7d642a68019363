package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"lotcheck/demo/client"
	"lotcheck/types"
)

// streamEvents starts the batch in the background and returns the channel
// its messages arrive on. The channel is closed after StreamDoneMsg.
func streamEvents(ctx context.Context, c *client.Client, links []string, mode string) <-chan tea.Msg {
	events := make(chan tea.Msg)
	go func() {
		defer close(events)
		err := c.StreamLinks(ctx, links, mode, func(bp types.BatchProgress) error {
			select {
			case events <- ProgressMsg{Progress: bp}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		select {
		case events <- StreamDoneMsg{Err: err}:
		case <-ctx.Done():
		}
	}()
	return events
}

// waitForEvent reads the next stream message
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}
