package indexmap

import (
	"testing"

	"github.com/xonecas/composer/internal/projection"
)

// View layout used by most tests: "1. hello\n2. world" where "1. ", the
// separator "\n", and "2. " are decorations.
//
//	view:  [1. ][hello][\n][2. ][world]   len 17
//	model: [hello][world]                 len 10
func markerMapper() *Mapper {
	return New(17, Span{Start: 0, Length: 3}, Span{Start: 8, Length: 1}, Span{Start: 9, Length: 3})
}

func TestToModel(t *testing.T) {
	m := markerMapper()
	tests := []struct {
		name string
		in   projection.Range
		want projection.Range
	}{
		{"first word", projection.Range{Start: 3, End: 8}, projection.Range{Start: 0, End: 5}},
		{"second word", projection.Range{Start: 12, End: 17}, projection.Range{Start: 5, End: 10}},
		{"across blocks", projection.Range{Start: 3, End: 17}, projection.Range{Start: 0, End: 10}},
		{"backwards normalized", projection.Range{Start: 8, End: 3}, projection.Range{Start: 0, End: 5}},
		{"start snaps left out of marker", projection.Range{Start: 1, End: 8}, projection.Range{Start: 0, End: 5}},
		{"end snaps right out of marker", projection.Range{Start: 3, End: 10}, projection.Range{Start: 0, End: 5}},
		{"decoration-only collapses", projection.Range{Start: 9, End: 12}, projection.Range{Start: 5, End: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.ToModel(tt.in)
			if !ok {
				t.Fatalf("ToModel(%+v) failed", tt.in)
			}
			if got != tt.want {
				t.Errorf("ToModel(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	m := markerMapper()
	// Ranges that no decoration span intersects must round-trip exactly.
	for _, r := range []projection.Range{
		{Start: 3, End: 8},
		{Start: 12, End: 17},
		{Start: 4, End: 6},
		{Start: 13, End: 13},
		{Start: 3, End: 3},
		{Start: 3, End: 17},
	} {
		model, ok := m.ToModel(r)
		if !ok {
			t.Fatalf("ToModel(%+v) failed", r)
		}
		view, ok := m.ToView(model)
		if !ok {
			t.Fatalf("ToView(%+v) failed", model)
		}
		if view != r {
			t.Errorf("round trip %+v -> %+v -> %+v", r, model, view)
		}
	}
}

func TestToView_EndDoesNotAbsorbDecoration(t *testing.T) {
	m := markerMapper()
	// Model [0,5) is "hello"; its view end must stop before the separator.
	got, ok := m.ToView(projection.Range{Start: 0, End: 5})
	if !ok {
		t.Fatal("ToView failed")
	}
	if want := (projection.Range{Start: 3, End: 8}); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMappingFailure(t *testing.T) {
	m := markerMapper()

	if _, ok := m.ToModel(projection.Range{Start: 0, End: 18}); ok {
		t.Error("out-of-bounds view range resolved")
	}
	if _, ok := m.ToView(projection.Range{Start: 0, End: 11}); ok {
		t.Error("out-of-bounds model range resolved")
	}

	// Inconsistent registry: overlapping spans. Every lookup fails.
	bad := New(10, Span{Start: 0, Length: 4}, Span{Start: 2, Length: 3})
	if _, ok := bad.ToModel(projection.Range{Start: 8, End: 9}); ok {
		t.Error("overlapping registry resolved a range")
	}
}

func TestStale(t *testing.T) {
	m := markerMapper()
	if m.Stale(17) {
		t.Error("mapper stale against its own view length")
	}
	if !m.Stale(16) {
		t.Error("mapper not stale after view changed")
	}
}

func TestNoDecorations(t *testing.T) {
	m := New(5)
	r := projection.Range{Start: 1, End: 4}
	model, ok := m.ToModel(r)
	if !ok || model != r {
		t.Fatalf("identity mapping broke: %+v, ok=%v", model, ok)
	}
	if m.ModelLen() != 5 {
		t.Errorf("ModelLen = %d, want 5", m.ModelLen())
	}
}
