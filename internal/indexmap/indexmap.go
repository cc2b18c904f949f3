// Package indexmap translates offsets between the document model's index
// space and a view's index space when the view holds decorative characters
// the model does not know about (literal list markers, injected block
// separators).
//
// A Mapper is built fresh from each render's decoration registry and is
// only valid for the view text it was built against. All offsets are UTF-16
// code units.
package indexmap

import (
	"sort"

	"github.com/xonecas/composer/internal/projection"
)

// Span is a contiguous view-space range of decoration characters with no
// model counterpart.
type Span struct {
	Start  int
	Length int
}

// Mapper converts ranges between model and view space over an ordered set
// of decoration spans.
type Mapper struct {
	spans   []Span
	viewLen int
}

// New builds a Mapper for a view of viewLen code units carrying the given
// decoration spans. Spans are sorted; a registry that does not describe a
// consistent view (overlaps, out-of-bounds spans) yields a mapper whose
// lookups all fail rather than guess.
func New(viewLen int, spans ...Span) *Mapper {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return &Mapper{spans: sorted, viewLen: viewLen}
}

// ViewLen returns the view length the mapper was built for.
func (m *Mapper) ViewLen() int { return m.viewLen }

// ModelLen returns the model length implied by the registry.
func (m *Mapper) ModelLen() int {
	total := 0
	for _, s := range m.spans {
		total += s.Length
	}
	return m.viewLen - total
}

// Stale reports that the live view no longer matches the registry. A stale
// mapper must not be used; the caller drops the operation and requests a
// full re-sync.
func (m *Mapper) Stale(liveViewLen int) bool {
	return liveViewLen != m.viewLen
}

// valid checks that the registry describes a consistent view.
func (m *Mapper) valid() bool {
	pos := 0
	for _, s := range m.spans {
		if s.Length < 0 || s.Start < pos {
			return false
		}
		pos = s.Start + s.Length
	}
	return pos <= m.viewLen
}

// ToModel maps a view-space range to model space. A boundary inside a
// decoration span snaps outward — decorations are never split — which
// collapses a decoration-only range to a caret at its model anchor.
// ok == false means the range cannot be resolved against this registry;
// the caller must treat that as "drop and re-sync", never as "assume no
// decorations".
func (m *Mapper) ToModel(r projection.Range) (projection.Range, bool) {
	n := r.Normalized()
	if !m.valid() || n.Start < 0 || n.End > m.viewLen {
		return projection.Range{}, false
	}
	start := m.snap(n.Start, false)
	end := m.snap(n.End, true)
	return projection.Range{
		Start: start - m.decorBefore(start),
		End:   end - m.decorBefore(end),
	}, true
}

// ToView maps a model-space range back to view space. A model position that
// coincides with a decoration anchor lands after the decoration for range
// starts and before it for range ends, so a range that merely touches a
// decoration does not absorb it.
func (m *Mapper) ToView(r projection.Range) (projection.Range, bool) {
	n := r.Normalized()
	if !m.valid() || n.Start < 0 || n.End > m.ModelLen() {
		return projection.Range{}, false
	}
	if n.Collapsed() {
		// A caret coinciding with a decoration anchor belongs on the
		// content side, after the decoration.
		p := m.insert(n.Start, true)
		return projection.Range{Start: p, End: p}, true
	}
	return projection.Range{
		Start: m.insert(n.Start, true),
		End:   m.insert(n.End, false),
	}, true
}

// snap moves a view position out of any decoration span it falls strictly
// inside: range starts move left to the span edge, range ends move right.
func (m *Mapper) snap(pos int, isEnd bool) int {
	for _, s := range m.spans {
		if pos > s.Start && pos < s.Start+s.Length {
			if isEnd {
				return s.Start + s.Length
			}
			return s.Start
		}
	}
	return pos
}

// decorBefore sums decoration lengths that lie entirely before pos. pos is
// never strictly inside a span when called (snap runs first).
func (m *Mapper) decorBefore(pos int) int {
	total := 0
	for _, s := range m.spans {
		if s.Start+s.Length <= pos {
			total += s.Length
		}
	}
	return total
}

// insert converts a model position to a view position by re-inserting
// decoration lengths. after selects which side of a coincident decoration
// the position lands on.
func (m *Mapper) insert(pos int, after bool) int {
	view := pos
	decor := 0
	for _, s := range m.spans {
		anchor := s.Start - decor // model position of this span
		if pos > anchor || (after && pos == anchor) {
			view += s.Length
			decor += s.Length
			continue
		}
		break
	}
	return view
}
