// Package tui provides Bubble Tea models for the sprint report viewer.
package tui

import "github.com/robby/sprintreport/internal/report"

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}

// Screen transitions
type (
	openDetailMsg  struct{ card *report.CardView }
	closeDetailMsg struct{}
)
