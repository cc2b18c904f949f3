// Package render converts the engine's block/run projections into styled
// text. The plain text of the output covers the projected model ranges
// exactly, code unit for code unit; everything visual beyond that (colors,
// markers, separators) is either styling or a registered decoration.
package render

import "charm.land/lipgloss/v2"

// Theme carries the lipgloss styles for each rendered role.
type Theme struct {
	Text       lipgloss.Style
	InlineCode lipgloss.Style
	CodeBlock  lipgloss.Style
	Quote      lipgloss.Style
	Link       lipgloss.Style
	Mention    lipgloss.Style
	Marker     lipgloss.Style
}

// DefaultTheme returns the stock dark theme.
func DefaultTheme() Theme {
	return Theme{
		Text:       lipgloss.NewStyle(),
		InlineCode: lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75")).Background(lipgloss.Color("#2a2a2a")),
		CodeBlock:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ABB2BF")).Background(lipgloss.Color("#1e1e1e")),
		Quote:      lipgloss.NewStyle().Faint(true).Italic(true),
		Link:       lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")).Underline(true),
		Mention:    lipgloss.NewStyle().Foreground(lipgloss.Color("#C678DD")).Bold(true),
		Marker:     lipgloss.NewStyle().Foreground(lipgloss.Color("#5C6370")),
	}
}
