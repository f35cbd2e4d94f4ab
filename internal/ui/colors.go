package ui

import "github.com/charmbracelet/lipgloss"

// Deezer brand purple plus status colors.
const (
	purple = "#A238FF"
	green  = "#04B575"
	red    = "#FF4D4D"
	amber  = "#FFA500"
	grey   = "#626262"
)

var styles = newTheme()

// theme groups the [lipgloss.Style] values the views render with.
type theme struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	link  lipgloss.Style
}

func newTheme() theme {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return theme{
		title: fg(purple).Bold(true).MarginBottom(1),
		ok:    fg(green).Bold(true),
		err:   fg(red).Bold(true),
		warn:  fg(amber),
		help:  fg(grey).Italic(true),
		link:  fg(purple).Underline(true),
	}
}
