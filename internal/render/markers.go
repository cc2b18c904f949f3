package render

import "fmt"

// MarkerStrategy decides how list markers reach the view. Two live
// strategies exist: literal marker characters inserted into the view
// buffer, and pure-draw markers painted in a gutter. The index mapper is
// strategy-agnostic: inline markers register decoration spans, drawn
// markers register nothing.
type MarkerStrategy interface {
	// Marker returns the marker text for a list item. Order is 1-based
	// and only meaningful for ordered lists.
	Marker(ordered bool, order int) string
	// Inline reports whether the marker text is inserted into the view
	// buffer as literal characters.
	Inline() bool
}

// InlineMarkers inserts literal marker characters. Each marker becomes a
// decoration span in the rendered document's registry.
type InlineMarkers struct{}

func (InlineMarkers) Marker(ordered bool, order int) string {
	return markerText(ordered, order)
}

func (InlineMarkers) Inline() bool { return true }

// DrawnMarkers keeps markers out of the view buffer; the renderer emits
// ListMarkerInfo records for a host that paints them out-of-band.
type DrawnMarkers struct{}

func (DrawnMarkers) Marker(ordered bool, order int) string {
	return markerText(ordered, order)
}

func (DrawnMarkers) Inline() bool { return false }

func markerText(ordered bool, order int) string {
	if ordered {
		return fmt.Sprintf("%d. ", order)
	}
	return "• "
}
