package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/robby/sprintreport/internal/domain"
)

var (
	// TitleStyle is used for screen titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")) // Purple

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// HelpStyle is used for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Dark gray
			MarginTop(1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	incomingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // Orange
			Bold(true)
)

// stateColors maps a card state to its badge color.
var stateColors = map[domain.State]lipgloss.Color{
	domain.StateInProgress: lipgloss.Color("39"),  // Blue
	domain.StateDone:       lipgloss.Color("34"),  // Green
	domain.StateAbandoned:  lipgloss.Color("196"), // Red
}

// stateBadges are the short markers shown next to card names.
var stateBadges = map[domain.State]string{
	domain.StateInProgress: "",
	domain.StateDone:       "✓",
	domain.StateAbandoned:  "✗",
}

func stateStyle(state domain.State) lipgloss.Style {
	if c, ok := stateColors[state]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return dimStyle
}
