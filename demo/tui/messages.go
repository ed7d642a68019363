package tui

import "lotcheck/types"

// Messages for the tea program

// ProgressMsg carries one record from the link stream
type ProgressMsg struct {
	Progress types.BatchProgress
}

// StreamDoneMsg is sent when the stream ends; Err is nil on success
type StreamDoneMsg struct {
	Err error
}
