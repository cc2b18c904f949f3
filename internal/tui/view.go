package tui

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/composer/internal/projection"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() tea.View {
	v := tea.NewView(m.renderContent())
	v.AltScreen = true
	return v
}

// renderContent produces the string content for the view.
func (m Model) renderContent() string {
	if m.width == 0 {
		return ""
	}

	contentH := m.height - 2
	var b strings.Builder

	lines := m.documentLines()
	for row := 0; row < contentH; row++ {
		if row < len(lines) {
			line := lines[row]
			b.WriteString(line)
			if pad := m.width - lipgloss.Width(line); pad > 0 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		} else {
			b.WriteString(strings.Repeat(" ", m.width))
		}
		b.WriteByte('\n')
	}

	b.WriteString(m.st.styles.Border.Render(strings.Repeat("─", m.width)))
	b.WriteByte('\n')
	m.renderStatusBar(&b)
	return b.String()
}

// documentLines renders the styled document and wraps it to the window.
func (m Model) documentLines() []string {
	out := m.st.doc.ANSI()
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if lipgloss.Width(line) > m.width {
			lines = append(lines, strings.Split(ansi.Wordwrap(line, m.width, ""), "\n")...)
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// statusActions is the order formatting indicators appear in the bar.
var statusActions = []struct {
	id    projection.ActionID
	label string
}{
	{projection.ActionBold, "B"},
	{projection.ActionItalic, "I"},
	{projection.ActionStrikeThrough, "S"},
	{projection.ActionUnderline, "U"},
	{projection.ActionInlineCode, "`"},
	{projection.ActionOrderedList, "1."},
	{projection.ActionUnorderedList, "•"},
	{projection.ActionCodeBlock, "{}"},
	{projection.ActionQuote, ">"},
}

// renderStatusBar writes the action indicators, caret position, and any
// open suggestion.
func (m Model) renderStatusBar(b *strings.Builder) {
	st := m.st
	var left []string
	for _, a := range statusActions {
		var style lipgloss.Style
		switch st.session.ActionState(a.id) {
		case projection.Reversed:
			style = st.styles.StatusOn
		case projection.Disabled:
			style = st.styles.StatusOff
		default:
			style = st.styles.StatusText
		}
		left = append(left, style.Render(a.label))
	}
	leftStr := " " + strings.Join(left, " ")

	var right string
	if s := st.session.Suggestion; s != nil {
		right = st.styles.Hint.Render(string(s.Key)+s.Text) + " "
	} else {
		right = st.styles.StatusText.Render(strconv.Itoa(st.view.selStart)+":"+strconv.Itoa(st.view.selEnd)) + " "
	}

	pad := m.width - lipgloss.Width(leftStr) - lipgloss.Width(right)
	if pad < 0 {
		pad = 0
	}
	b.WriteString(leftStr)
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(right)
}
