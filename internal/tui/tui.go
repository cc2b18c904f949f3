// Package tui is a terminal host for the composer: it feeds key events to
// the sync controller as editing intents and paints the rendered document,
// menu state, and suggestion hints.
package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/composer/internal/compose"
	"github.com/xonecas/composer/internal/config"
	"github.com/xonecas/composer/internal/differ"
	"github.com/xonecas/composer/internal/mention"
	"github.com/xonecas/composer/internal/render"
)

// Model is the application model.
type Model struct {
	width  int
	height int

	// Editing state lives behind a pointer so bubbletea's value copies
	// all see the same session.
	st *state
}

type state struct {
	cfg      *config.Config
	engine   *compose.ReferenceEngine
	session  *compose.Session
	ctrl     *compose.Controller
	renderer *render.Renderer
	view     *viewBuffer
	doc      *render.StyledDocument
	deltas   []render.BlockDelta
	styles   styleSet
}

// New builds the host around a fresh document. resolver may be nil; the
// renderer then falls back to each mention's own display text.
func New(cfg *config.Config, resolver mention.Resolver) Model {
	st := &state{
		cfg:      cfg,
		engine:   compose.NewReferenceEngine(),
		session:  compose.NewSession(resolver),
		renderer: render.New(),
		view:     &viewBuffer{},
		styles:   newStyleSet(),
	}
	st.renderer.SyntaxTheme = cfg.UI.SyntaxThemeOrDefault()
	if cfg.UI.ListMarkersOrDefault() == "inline" {
		st.renderer.Markers = render.InlineMarkers{}
	}
	st.renderer.Mentions = st.session.Mentions

	st.ctrl = compose.NewController(st.engine, st.view, st.session, cfg.Debug)
	st.ctrl.OnResync(st.refresh)
	st.view.refresh = st.refresh
	st.refresh()

	return Model{st: st}
}

// SetContentHTML seeds the document from sanitized markup.
func (m Model) SetContentHTML(markup string) error {
	if err := m.st.engine.SetContentHTML(markup); err != nil {
		return err
	}
	m.st.refresh()
	return nil
}

// Init initializes the TUI (required by BubbleTea).
func (m Model) Init() tea.Cmd {
	return nil
}

// refresh re-renders the document projection and reinstalls the offset
// mapper, keeping the view buffer canonical.
func (s *state) refresh() {
	s.doc, s.deltas = s.renderer.Render(s.engine.Projections())
	s.view.text = s.doc.Plain()
	s.ctrl.SetMapper(s.doc.Mapper())
}

// viewBuffer is the live text the controller keeps in sync. It implements
// the whole-buffer replacement capability, so engine updates skip the
// differ and land via a re-render.
type viewBuffer struct {
	text             string
	selStart, selEnd int
	refresh          func()
}

func (v *viewBuffer) Text() string { return v.text }

func (v *viewBuffer) Replace(location, length int, text string) {
	v.text = differ.Apply(v.text, &differ.Patch{Location: location, Length: length, Text: text})
	if v.refresh != nil {
		v.refresh()
	}
}

func (v *viewBuffer) ReplaceAllText(text string) {
	v.text = text
	if v.refresh != nil {
		v.refresh()
	}
}

func (v *viewBuffer) SetSelection(start, end int) {
	v.selStart, v.selEnd = start, end
}
