package compose

import "github.com/xonecas/composer/internal/projection"

// Result is what every engine call returns: one view instruction, the
// menu-state entries that changed, and optionally a suggestion pattern for
// the host's autocomplete UI.
type Result struct {
	Update     projection.TextUpdate
	Menu       projection.MenuStateUpdate
	Suggestion *projection.SuggestionPattern
}

// Engine is the external document engine. Process is synchronous and
// non-reentrant: a second intent must not be dispatched before the call
// returns. A non-nil error is a recoverable fault — the engine guarantees
// its pre-call state is intact and the controller treats the intent as a
// no-op.
type Engine interface {
	Process(intent Intent) (Result, error)
	// Projections returns the current block/run projection of the
	// document, produced fresh after every mutating call.
	Projections() []projection.BlockProjection
}

// HostView is the live editable text the controller keeps in sync. All
// offsets are UTF-16 code units in the view's own index space. Mutations
// must leave Text() consistent before returning; hosts that decorate their
// view re-render and reinstall the controller's mapper from within the
// mutation, so the selection that follows maps against fresh offsets.
type HostView interface {
	Text() string
	// Replace substitutes text for the range [location, location+length).
	Replace(location, length int, text string)
	SetSelection(start, end int)
}

// FullReplacer is an optional HostView capability. Hosts that can swap
// their entire buffer cheaply skip the differ-based patch path.
type FullReplacer interface {
	ReplaceAllText(text string)
}
