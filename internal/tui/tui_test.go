package tui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/composer/internal/config"
	"github.com/xonecas/composer/internal/projection"
)

func newModel(t *testing.T) Model {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	m := New(cfg, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 12})
	return updated.(Model)
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func key(ch rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: ch, Text: string(ch)}
}

func ctrl(ch rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: ch, Mod: tea.ModCtrl}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = send(t, m, key(r))
	}
	return m
}

func TestTypingReachesTheView(t *testing.T) {
	m := newModel(t)
	m = typeText(t, m, "hi")

	if got := m.st.view.Text(); got != "hi" {
		t.Errorf("view text = %q, want %q", got, "hi")
	}
	stripped := ansi.Strip(m.renderContent())
	if !strings.Contains(stripped, "hi") {
		t.Error("rendered content does not show the typed text")
	}
}

func TestEnterSplitsBlocks(t *testing.T) {
	m := newModel(t)
	m = typeText(t, m, "a")
	m = send(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = typeText(t, m, "b")

	if got := m.st.view.Text(); got != "a\nb" {
		t.Errorf("view text = %q, want %q", got, "a\nb")
	}
}

func TestBoldToggleFlipsStatusIndicator(t *testing.T) {
	m := newModel(t)
	m = typeText(t, m, "x")

	m = send(t, m, ctrl('b'))
	if got := m.st.session.ActionState(projection.ActionBold); got != projection.Reversed {
		t.Errorf("bold = %v, want reversed after ctrl+b", got)
	}

	m = send(t, m, ctrl('b'))
	if got := m.st.session.ActionState(projection.ActionBold); got != projection.Enabled {
		t.Errorf("bold = %v, want enabled after second ctrl+b", got)
	}
}

func TestOrderedListRendersMarkers(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.UI.ListMarkers = "inline"
	m := New(cfg, nil)
	m = send(t, m, tea.WindowSizeMsg{Width: 60, Height: 12})

	m = typeText(t, m, "one")
	m = send(t, m, ctrl('o'))

	stripped := ansi.Strip(m.renderContent())
	if !strings.Contains(stripped, "1. one") {
		t.Errorf("content missing inline marker:\n%s", stripped)
	}
}

func TestSuggestionHintAndCompletion(t *testing.T) {
	m := newModel(t)
	m = typeText(t, m, "hi @al")

	if m.st.session.Suggestion == nil {
		t.Fatal("no suggestion after typing @-word")
	}
	stripped := ansi.Strip(m.renderContent())
	if !strings.Contains(stripped, "@al") {
		t.Error("status bar does not hint the suggestion")
	}

	m = send(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if got := m.st.view.Text(); got != "hi @al" {
		t.Errorf("view text = %q, want completed mention display", got)
	}
	if m.st.session.Suggestion != nil {
		t.Error("suggestion still open after completion")
	}
}

func TestSeedContentFromHTML(t *testing.T) {
	m := newModel(t)
	if err := m.SetContentHTML("<p>seed <b>text</b></p>"); err != nil {
		t.Fatal(err)
	}
	if got := m.st.view.Text(); got != "seed text" {
		t.Errorf("view text = %q, want %q", got, "seed text")
	}
}

func TestContentFillsWindow(t *testing.T) {
	m := newModel(t)
	m = typeText(t, m, "short")

	lines := strings.Split(m.renderContent(), "\n")
	// Content rows plus separator plus status bar.
	if len(lines) != 12 {
		t.Errorf("got %d lines, want 12", len(lines))
	}
	for i, line := range lines[:10] {
		if w := ansi.StringWidth(ansi.Strip(line)); w != 60 {
			t.Errorf("line %d width = %d, want 60", i, w)
		}
	}
}
