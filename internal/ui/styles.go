package ui

import "github.com/charmbracelet/lipgloss"

// This file centralizes the lipgloss styles used across the TUI.

var (
	primaryColor   = lipgloss.Color("#00A0DF") // Arriva blue
	secondaryColor = lipgloss.Color("#8DC63F")

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(primaryColor).
			Bold(true).
			Padding(0, 1)

	// Panes: the live list gets a border, the idle one keeps the space.
	activePaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
	idlePaneStyle = lipgloss.NewStyle().
			Border(lipgloss.HiddenBorder()).
			Padding(0, 1)

	paneTitleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	stopIDStyle       = lipgloss.NewStyle().Foreground(secondaryColor)
	stopNameStyle     = lipgloss.NewStyle().Foreground(primaryColor)
	selectedItemStyle = lipgloss.NewStyle().Bold(true).Italic(true)
	chosenStyle       = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)

	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().PaddingLeft(1)
)
