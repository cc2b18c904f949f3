package tui

import "charm.land/lipgloss/v2"

var (
	colorAccent = lipgloss.Color("#00AA00")
	colorBorder = lipgloss.Color("#2a2a2a")
	colorGray   = lipgloss.Color("#808080")
	colorActive = lipgloss.Color("#d7af00")
)

type styleSet struct {
	Border     lipgloss.Style
	StatusText lipgloss.Style
	StatusOn   lipgloss.Style
	StatusOff  lipgloss.Style
	Hint       lipgloss.Style
}

func newStyleSet() styleSet {
	return styleSet{
		Border:     lipgloss.NewStyle().Foreground(colorBorder),
		StatusText: lipgloss.NewStyle().Foreground(colorGray),
		StatusOn:   lipgloss.NewStyle().Foreground(colorActive).Bold(true),
		StatusOff:  lipgloss.NewStyle().Foreground(colorBorder),
		Hint:       lipgloss.NewStyle().Foreground(colorAccent),
	}
}
