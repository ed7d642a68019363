package tui

// UI Text Constants
const (
	TextTitle         = "🔎 lotcheck"
	TextFooterIdle    = "Press 's' to start | Press 'q' to quit"
	TextFooterRunning = "Press 'q' to cancel and quit"
	TextFooterDone    = "Press 'q' or Ctrl+C to exit"
)
