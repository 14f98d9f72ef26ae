package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#89b4fa")
	colorText   = lipgloss.Color("#cdd6f4")
	colorMuted  = lipgloss.Color("#7f849c")
	colorBorder = lipgloss.Color("#45475a")
	colorError  = lipgloss.Color("#f38ba8")
	colorOK     = lipgloss.Color("#a6e3a1")
	colorMantle = lipgloss.Color("#181825")

	headerStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	routeStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	accentStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	statusStyle    = lipgloss.NewStyle().Foreground(colorOK)
	statusErrStyle = lipgloss.NewStyle().Foreground(colorError)
	footerStyle    = lipgloss.NewStyle().Foreground(colorText).Background(colorMantle).Padding(0, 1)

	snackStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
	snackTitleStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)

	layerOnStyle  = lipgloss.NewStyle().Foreground(colorOK)
	layerOffStyle = lipgloss.NewStyle().Foreground(colorMuted)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
)
