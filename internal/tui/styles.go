package tui

import "charm.land/lipgloss/v2"

var (
	colorPrimary = lipgloss.Color("#8B5CF6")
	colorSuccess = lipgloss.Color("#22C55E")
	colorError   = lipgloss.Color("#F43F5E")
	colorDim     = lipgloss.Color("#94A3B8")
	colorBorder  = lipgloss.Color("#334155")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	hintStyle  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 3)

	correctStyle   = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	incorrectStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
)
