package page

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	status  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	section lipgloss.Style
	notice  lipgloss.Style
	empty   lipgloss.Style
	help    lipgloss.Style
	box     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		status:  lipgloss.NewStyle().Bold(true),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		section: lipgloss.NewStyle().MarginTop(1),
		notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		empty:   lipgloss.NewStyle().Faint(true),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1),
	}
}

func (s styles) statusStyle(color string) lipgloss.Style {
	if color == "" {
		return s.status
	}
	return s.status.Foreground(lipgloss.Color(color))
}
