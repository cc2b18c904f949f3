package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/composer/internal/compose"
	"github.com/xonecas/composer/internal/mention"
	"github.com/xonecas/composer/internal/projection"
)

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.PasteMsg:
		m.st.ctrl.Dispatch(compose.ReplaceText{Text: msg.Content})
		return m, nil

	case tea.KeyPressMsg:
		if mdl, cmd, handled := m.handleKeyPress(msg); handled {
			return mdl, cmd
		}
		if msg.Text != "" {
			m.st.ctrl.Dispatch(compose.ReplaceText{Text: msg.Text})
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (Model, tea.Cmd, bool) {
	handler := m.keyPressHandlers()[msg.Keystroke()]
	if handler == nil {
		return Model{}, nil, false
	}
	return handler(m)
}

func (m *Model) keyPressHandlers() map[string]func(*Model) (Model, tea.Cmd, bool) {
	return map[string]func(*Model) (Model, tea.Cmd, bool){
		"ctrl+c":    (*Model).handleQuit,
		"ctrl+b":    intentKey(compose.ToggleInlineFormat{Format: compose.Bold}),
		"ctrl+t":    intentKey(compose.ToggleInlineFormat{Format: compose.Italic}),
		"ctrl+u":    intentKey(compose.ToggleInlineFormat{Format: compose.Underline}),
		"ctrl+s":    intentKey(compose.ToggleInlineFormat{Format: compose.StrikeThrough}),
		"ctrl+e":    intentKey(compose.ToggleInlineFormat{Format: compose.InlineCode}),
		"ctrl+o":    intentKey(compose.ToggleList{Ordered: true}),
		"ctrl+l":    intentKey(compose.ToggleList{Ordered: false}),
		"ctrl+g":    intentKey(compose.ToggleCodeBlock{}),
		"ctrl+q":    intentKey(compose.ToggleQuote{}),
		"ctrl+z":    intentKey(compose.Undo{}),
		"ctrl+y":    intentKey(compose.Redo{}),
		"tab":       (*Model).handleTab,
		"shift+tab": intentKey(compose.Unindent{}),
		"enter":     (*Model).handleEnter,
		"backspace": intentKey(compose.Backspace{}),
		"left":      (*Model).handleLeft,
		"right":     (*Model).handleRight,
	}
}

func intentKey(in compose.Intent) func(*Model) (Model, tea.Cmd, bool) {
	return func(m *Model) (Model, tea.Cmd, bool) {
		m.st.ctrl.Dispatch(in)
		return *m, nil, true
	}
}

func (m *Model) handleQuit() (Model, tea.Cmd, bool) {
	m.st.session.Teardown()
	return *m, tea.Quit, true
}

// handleEnter confirms an open suggestion, otherwise splits the block.
func (m *Model) handleEnter() (Model, tea.Cmd, bool) {
	if s := m.st.session.Suggestion; s != nil {
		m.st.ctrl.Dispatch(m.completionFor(s))
		return *m, nil, true
	}
	m.st.ctrl.Dispatch(compose.InsertParagraph{})
	return *m, nil, true
}

// completionFor turns a suggestion into the mention (or plain text) that
// replaces it. "@room" is the display-only at-room mention.
func (m *Model) completionFor(s *projection.SuggestionPattern) compose.Intent {
	switch s.Key {
	case '@':
		if s.Text == "room" {
			return compose.InsertMention{Text: mention.AtRoomDisplay}
		}
		host := m.st.cfg.Mention.Host
		if host == "" {
			host = "matrix.to"
		}
		return compose.InsertMention{
			URL:  "https://" + host + "/#/@" + s.Text,
			Text: "@" + s.Text,
		}
	case '#':
		host := m.st.cfg.Mention.Host
		if host == "" {
			host = "matrix.to"
		}
		return compose.InsertMention{
			URL:  "https://" + host + "/#/#" + s.Text,
			Text: "#" + s.Text,
		}
	default:
		// Commands stay plain text; completion just closes the word.
		return compose.ReplaceText{Text: " "}
	}
}

func (m *Model) handleTab() (Model, tea.Cmd, bool) {
	if s := m.st.session.Suggestion; s != nil {
		m.st.ctrl.Dispatch(m.completionFor(s))
		return *m, nil, true
	}
	m.st.ctrl.Dispatch(compose.Indent{})
	return *m, nil, true
}

func (m *Model) handleLeft() (Model, tea.Cmd, bool) {
	m.moveCaret(-1)
	return *m, nil, true
}

func (m *Model) handleRight() (Model, tea.Cmd, bool) {
	m.moveCaret(1)
	return *m, nil, true
}

// moveCaret shifts the view-space caret by one code point, never landing
// between surrogate halves. The controller maps the position back to
// model space.
func (m *Model) moveCaret(dir int) {
	units := projection.UTF16Units(m.st.view.text)
	pos := m.st.view.selEnd
	pos += dir
	if pos >= 0 && pos < len(units) && isLowSurrogateUnit(units[pos]) {
		pos += dir
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(units) {
		pos = len(units)
	}
	m.st.view.selStart, m.st.view.selEnd = pos, pos
	m.st.ctrl.Dispatch(compose.UpdateSelection{Start: pos, End: pos})
}

func isLowSurrogateUnit(u uint16) bool { return u >= 0xDC00 && u <= 0xDFFF }
