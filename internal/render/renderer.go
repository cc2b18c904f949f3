package render

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/composer/internal/indexmap"
	"github.com/xonecas/composer/internal/mention"
	"github.com/xonecas/composer/internal/projection"
)

// Fragment is a contiguous piece of styled output. Concatenating fragment
// texts in order reproduces the view text exactly.
type Fragment struct {
	Text       string
	Style      lipgloss.Style
	Link       string // tappable link decoration, empty = none
	Code       bool   // realized through syntax highlighting when possible
	Lang       string
	Decoration bool // view-only characters: separators, inline markers
}

// BlockDelta records where a block's content begins in view space and how
// many block separators precede it. A caller mapping a view offset back to
// "which block, which run" subtracts Separators (plus any decoration spans)
// from offsets at or past ViewStart.
type BlockDelta struct {
	BlockID    string
	ViewStart  int
	Separators int
}

// StyledDocument is the rendered form of a projection sequence.
type StyledDocument struct {
	Fragments []Fragment
	// Spans is the decoration registry for this render: every view-space
	// range (separators, inline markers) with no model counterpart.
	Spans []indexmap.Span
	// Markers carries drawn list markers for out-of-band painting. Empty
	// under the inline strategy.
	Markers []projection.ListMarkerInfo

	viewLen     int
	syntaxTheme string
}

// Plain returns the view text: every fragment's text in order, including
// decorative characters.
func (d *StyledDocument) Plain() string {
	var b strings.Builder
	for _, f := range d.Fragments {
		b.WriteString(f.Text)
	}
	return b.String()
}

// ViewLen returns the view text length in UTF-16 code units.
func (d *StyledDocument) ViewLen() int { return d.viewLen }

// Mapper builds the index mapper for this render's decoration registry.
func (d *StyledDocument) Mapper() *indexmap.Mapper {
	return indexmap.New(d.viewLen, d.Spans...)
}

// ANSI realizes the document for a terminal. Drawn markers are painted at
// their anchors here without entering the view text.
func (d *StyledDocument) ANSI() string {
	var b strings.Builder
	pos := 0
	next := 0
	for _, f := range d.Fragments {
		for next < len(d.Markers) && d.Markers[next].CharacterIndex == pos {
			m := d.Markers[next]
			b.WriteString(m.Style.Render(m.Text))
			next++
		}
		b.WriteString(renderFragment(f, d.syntaxTheme))
		pos += projection.UTF16Length(f.Text)
	}
	return b.String()
}

func renderFragment(f Fragment, syntaxTheme string) string {
	if f.Code && f.Lang != "" && syntaxTheme != "" {
		if out, ok := highlightCode(f.Text, f.Lang, syntaxTheme); ok {
			return out
		}
	}
	out := f.Style.Render(f.Text)
	if f.Link != "" {
		out = ansi.SetHyperlink(f.Link) + out + ansi.ResetHyperlink()
	}
	return out
}

// Renderer converts block projections to styled fragments.
type Renderer struct {
	Theme       Theme
	SyntaxTheme string // Chroma style for code blocks, empty = plain
	// Mentions supplies the mention-replacement capability. nil falls
	// back to display text with a link decoration.
	Mentions *mention.DisplayCache
	Markers  MarkerStrategy
}

// New returns a renderer with the stock theme and drawn list markers.
func New() *Renderer {
	return &Renderer{Theme: DefaultTheme(), Markers: DrawnMarkers{}}
}

// Render converts blocks into a styled document plus per-block index
// deltas. Blocks are joined by a single line-break separator which belongs
// to no block's model range.
func (r *Renderer) Render(blocks []projection.BlockProjection) (*StyledDocument, []BlockDelta) {
	doc := &StyledDocument{syntaxTheme: r.SyntaxTheme}
	deltas := make([]BlockDelta, 0, len(blocks))

	pos := 0
	seps := 0
	for i, b := range blocks {
		if i > 0 {
			doc.Fragments = append(doc.Fragments, Fragment{Text: "\n", Style: r.Theme.Text, Decoration: true})
			doc.Spans = append(doc.Spans, indexmap.Span{Start: pos, Length: 1})
			pos++
			seps++
		}
		if b.Kind == projection.ListItem {
			pos = r.placeMarker(doc, b, pos)
		}
		deltas = append(deltas, BlockDelta{BlockID: b.BlockID, ViewStart: pos, Separators: seps})

		frags := r.RenderBlock(b)
		doc.Fragments = append(doc.Fragments, frags...)
		pos += b.End - b.Start
	}
	doc.viewLen = pos
	return doc, deltas
}

// placeMarker emits the block's list marker under the active strategy and
// returns the view position where block content starts.
func (r *Renderer) placeMarker(doc *StyledDocument, b projection.BlockProjection, pos int) int {
	strategy := r.Markers
	if strategy == nil {
		strategy = DrawnMarkers{}
	}
	text := strategy.Marker(b.Ordered, b.Order)
	if !strategy.Inline() {
		doc.Markers = append(doc.Markers, projection.ListMarkerInfo{
			Text:           text,
			Style:          r.Theme.Marker,
			CharacterIndex: pos,
			HeadIndent:     projection.UTF16Length(text),
		})
		return pos
	}
	n := projection.UTF16Length(text)
	doc.Fragments = append(doc.Fragments, Fragment{Text: text, Style: r.Theme.Marker, Decoration: true})
	doc.Spans = append(doc.Spans, indexmap.Span{Start: pos, Length: n})
	return pos + n
}

// RenderBlock renders one block's content (no marker, no separator). The
// total UTF-16 length of the returned fragments equals the block's model
// range, which is what keeps selection offsets usable as model offsets.
func (r *Renderer) RenderBlock(b projection.BlockProjection) []Fragment {
	frags := make([]Fragment, 0, len(b.Runs))
	for _, run := range b.Runs {
		switch c := run.Content.(type) {
		case projection.Text:
			frags = append(frags, Fragment{
				Text:  c.Text,
				Style: r.styleFor(c.Attrs, b),
				Link:  c.Attrs.LinkURL,
				Code:  b.Kind == projection.CodeBlock,
				Lang:  b.Lang,
			})
		case projection.Mention:
			frags = append(frags, r.renderMention(c, run))
		}
	}
	return frags
}

// renderMention resolves a mention run through the replacement capability,
// falling back to the display text with a link decoration. The output text
// always occupies exactly the run's model range: display-text length, never
// URL length, and a replacer answer of the wrong width is overridden.
func (r *Renderer) renderMention(m projection.Mention, run projection.InlineRun) Fragment {
	want := run.End - run.Start
	if r.Mentions != nil {
		var d mention.Display
		if m.URL == "" {
			d = r.Mentions.ResolveAtRoom()
		} else {
			d = r.Mentions.Resolve(m.DisplayText, m.URL)
		}
		if projection.UTF16Length(d.Text) != want {
			d.Text = m.DisplayText
		}
		link := d.Link
		if link == "" {
			link = m.URL
		}
		return Fragment{Text: d.Text, Style: d.Style, Link: link}
	}
	// Without a replacer, only real mention permalinks get the mention
	// treatment; anything else is just a link.
	style := r.Theme.Link
	if _, ok := mention.ParseTarget(m.URL); ok || m.URL == "" {
		style = r.Theme.Mention
	}
	return Fragment{Text: m.DisplayText, Style: style, Link: m.URL}
}

// styleFor composes the lipgloss style for a text run inside its block.
func (r *Renderer) styleFor(a projection.AttributeSet, b projection.BlockProjection) lipgloss.Style {
	t := r.Theme
	s := t.Text
	switch {
	case b.Kind == projection.CodeBlock:
		s = t.CodeBlock
	case b.Kind == projection.Quote || b.InQuote:
		s = t.Quote
	}
	if a.InlineCode {
		s = t.InlineCode
	}
	if a.Bold {
		s = s.Bold(true)
	}
	if a.Italic {
		s = s.Italic(true)
	}
	if a.Underline {
		s = s.Underline(true)
	}
	if a.StrikeThrough {
		s = s.Strikethrough(true)
	}
	if a.LinkURL != "" {
		s = s.Foreground(t.Link.GetForeground()).Underline(true)
	}
	return s
}
