package compose

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/composer/internal/differ"
	"github.com/xonecas/composer/internal/indexmap"
	"github.com/xonecas/composer/internal/projection"
)

// maxPatchRounds caps the differ's HasMore re-iteration. The difference
// shrinks every round, but nothing in the contract bounds how many disjoint
// edits a replacement can decompose into, so past the cap the controller
// gives up on incremental patching and replaces the full range.
const maxPatchRounds = 16

// Controller dispatches editing intents to the engine and applies the
// returned updates to the host view. One controller serves one session on
// one thread; it is non-reentrant by contract and guards against it.
type Controller struct {
	engine  Engine
	view    HostView
	session *Session

	// mapper translates between model and view space when the active
	// decoration strategy inserts literal characters. nil means the view
	// holds no decorations and offsets pass through untouched.
	mapper *indexmap.Mapper

	// resync is invoked on mapping divergence: the dropped operation
	// cannot be completed and the host must re-render from the canonical
	// document. nil is allowed for hosts without decorations.
	resync func()

	// debug re-raises engine faults and contract violations instead of
	// logging them, to fail fast in instrumented builds.
	debug bool

	applying bool
}

// NewController wires an engine, a host view, and a session together.
func NewController(engine Engine, view HostView, session *Session, debug bool) *Controller {
	return &Controller{engine: engine, view: view, session: session, debug: debug}
}

// SetMapper installs the decoration registry of the most recent render.
// Hosts call this after every render; passing nil declares the view
// decoration-free.
func (c *Controller) SetMapper(m *indexmap.Mapper) { c.mapper = m }

// OnResync registers the host's full re-sync callback.
func (c *Controller) OnResync(fn func()) { c.resync = fn }

// Session returns the session this controller feeds.
func (c *Controller) Session() *Session { return c.session }

// Dispatch routes one intent through the engine and applies the result.
// Engine faults never leave the document inconsistent: the engine
// guarantees pre-call state, so a fault makes the whole dispatch a no-op.
func (c *Controller) Dispatch(intent Intent) {
	if c.applying {
		c.fault(fmt.Errorf("intent %s dispatched while another is being applied", intentName(intent)))
		return
	}
	c.applying = true
	defer func() { c.applying = false }()

	intent, ok := c.prepare(intent)
	if !ok {
		return
	}

	res, err := c.engine.Process(intent)
	if err != nil {
		if c.debug {
			panic(fmt.Sprintf("engine rejected %s: %v", intentName(intent), err))
		}
		log.Warn().Err(err).Str("intent", intentName(intent)).Msg("engine rejected intent")
		return
	}

	if res.Menu != nil {
		c.session.mergeMenu(res.Menu)
	}
	c.session.Suggestion = res.Suggestion
	c.apply(res.Update)
}

// prepare normalizes selection-bearing intents and converts view-space
// selection queries into model space. ok == false drops the intent
// (mapping divergence) after requesting a re-sync.
func (c *Controller) prepare(intent Intent) (Intent, bool) {
	sel, isSelection := intent.(UpdateSelection)
	if !isSelection {
		return intent, true
	}
	r := projection.Range{Start: sel.Start, End: sel.End}.Normalized()
	if c.mapper != nil {
		if c.mapper.Stale(projection.UTF16Length(c.view.Text())) {
			c.divergence("selection update against a stale decoration registry")
			return nil, false
		}
		mapped, ok := c.mapper.ToModel(r)
		if !ok {
			c.divergence("selection does not resolve against the decoration registry")
			return nil, false
		}
		r = mapped
	}
	return UpdateSelection{Start: r.Start, End: r.End}, true
}

// apply routes one TextUpdate to the view. The switch is exhaustive over
// the closed union.
func (c *Controller) apply(update projection.TextUpdate) {
	switch u := update.(type) {
	case nil, projection.Keep:
		// No visual change needed.
	case projection.Select:
		c.moveSelection(u.Start, u.End)
	case projection.ReplaceAll:
		c.patch(u.Text)
		c.moveSelection(u.Start, u.End)
	}
}

// patch reconciles the live view text with the engine's canonical text,
// preferring minimal incremental replacements.
func (c *Controller) patch(target string) {
	if fr, ok := c.view.(FullReplacer); ok {
		fr.ReplaceAllText(target)
		return
	}
	for round := 0; round < maxPatchRounds; round++ {
		p := differ.Replacement(c.view.Text(), target)
		if p == nil {
			return
		}
		c.view.Replace(p.Location, p.Length, p.Text)
		if !p.HasMore {
			return
		}
	}
	// Cap reached: replace the whole range in one go.
	current := c.view.Text()
	c.view.Replace(0, projection.UTF16Length(current), target)
}

// moveSelection forwards a model-space selection to the view, translating
// through the decoration registry when one is installed.
func (c *Controller) moveSelection(start, end int) {
	r := projection.Range{Start: start, End: end}
	if c.mapper != nil {
		mapped, ok := c.mapper.ToView(r)
		if !ok {
			c.divergence("engine selection does not resolve against the decoration registry")
			return
		}
		r = mapped
	}
	c.view.SetSelection(r.Start, r.End)
}

// divergence handles an index-mapping failure: drop the operation and ask
// the host to re-render from the canonical document. Guessing offsets here
// would corrupt editing, so it is never attempted.
func (c *Controller) divergence(msg string) {
	log.Warn().Str("reason", msg).Msg("index mapping divergence, requesting re-sync")
	if c.resync != nil {
		c.resync()
	}
}

func (c *Controller) fault(err error) {
	if c.debug {
		panic(err)
	}
	log.Warn().Err(err).Msg("composer contract violation")
}
