package ui

import (
	"time"

	"glsandbox/internal/domain"
)

// tickMsg drives the frame loop
type tickMsg time.Time

// snapshotDoneMsg carries the result of a PNG write
type snapshotDoneMsg struct {
	path string
	mode domain.DrawMode
	err  error
}

// pagerDoneMsg is sent once ov hands the terminal back
type pagerDoneMsg struct {
	what string
	err  error
}
