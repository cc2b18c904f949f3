package compose

import (
	"errors"
	"testing"

	"github.com/xonecas/composer/internal/differ"
	"github.com/xonecas/composer/internal/indexmap"
	"github.com/xonecas/composer/internal/projection"
)

// scriptEngine replays canned results and records the intents it saw.
type scriptEngine struct {
	results []Result
	errs    []error
	calls   []Intent
}

func (s *scriptEngine) Process(intent Intent) (Result, error) {
	s.calls = append(s.calls, intent)
	i := len(s.calls) - 1
	var res Result
	var err error
	if i < len(s.results) {
		res = s.results[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return res, err
}

func (s *scriptEngine) Projections() []projection.BlockProjection { return nil }

// bufView applies replacements through the differ's unit-space splice.
type bufView struct {
	text             string
	selStart, selEnd int
	replaces         int
}

func (v *bufView) Text() string { return v.text }

func (v *bufView) Replace(location, length int, text string) {
	v.replaces++
	v.text = differ.Apply(v.text, &differ.Patch{Location: location, Length: length, Text: text})
}

func (v *bufView) SetSelection(start, end int) {
	v.selStart, v.selEnd = start, end
}

func TestDispatch_MenuMerge(t *testing.T) {
	eng := &scriptEngine{results: []Result{
		{Update: projection.Keep{}, Menu: projection.MenuStateUpdate{projection.ActionBold: projection.Reversed}},
		{Update: projection.Keep{}, Menu: projection.MenuStateUpdate{projection.ActionItalic: projection.Disabled}},
	}}
	sess := NewSession(nil)
	c := NewController(eng, &bufView{}, sess, false)

	c.Dispatch(ToggleInlineFormat{Format: Bold})
	c.Dispatch(ToggleInlineFormat{Format: Italic})

	if got := sess.ActionState(projection.ActionBold); got != projection.Reversed {
		t.Errorf("bold = %v, want reversed after merge", got)
	}
	if got := sess.ActionState(projection.ActionItalic); got != projection.Disabled {
		t.Errorf("italic = %v, want disabled", got)
	}
	if got := sess.ActionState(projection.ActionUndo); got != projection.Enabled {
		t.Errorf("untouched action = %v, want the enabled default", got)
	}
}

func TestDispatch_EngineFaultIsNoOp(t *testing.T) {
	view := &bufView{text: "stable"}
	eng := &scriptEngine{errs: []error{errRejected}}
	c := NewController(eng, view, NewSession(nil), false)

	c.Dispatch(Backspace{})

	if view.text != "stable" || view.replaces != 0 {
		t.Errorf("view changed on engine fault: %q (%d replaces)", view.text, view.replaces)
	}
}

func TestDispatch_EngineFaultPanicsInDebug(t *testing.T) {
	eng := &scriptEngine{errs: []error{errRejected}}
	c := NewController(eng, &bufView{}, NewSession(nil), true)

	defer func() {
		if recover() == nil {
			t.Error("expected panic in debug mode")
		}
	}()
	c.Dispatch(Backspace{})
}

func TestDispatch_PatchLoopConverges(t *testing.T) {
	view := &bufView{text: "text"}
	eng := &scriptEngine{results: []Result{
		{Update: projection.ReplaceAll{Text: "fexf", Start: 4, End: 4}},
	}}
	c := NewController(eng, view, NewSession(nil), false)

	c.Dispatch(ReplaceText{Text: "f"})

	if view.text != "fexf" {
		t.Fatalf("view = %q, want %q", view.text, "fexf")
	}
	// "text" -> "fexf" has two disjoint edits, so the first patch carries
	// hasMore and the loop runs again.
	if view.replaces < 2 {
		t.Errorf("got %d replace calls, want at least 2", view.replaces)
	}
	if view.selStart != 4 || view.selEnd != 4 {
		t.Errorf("selection = [%d,%d), want caret at 4", view.selStart, view.selEnd)
	}
}

// stuckView drops incremental replacements but honors a full-range one, so
// the differ never converges and the controller has to give up on patching.
type stuckView struct {
	text    string
	fullLen int
}

func (v *stuckView) Text() string { return v.text }

func (v *stuckView) Replace(location, length int, text string) {
	if location == 0 && length == projection.UTF16Length(v.text) {
		v.fullLen++
		v.text = text
	}
}

func (v *stuckView) SetSelection(int, int) {}

func TestDispatch_PatchLoopCapFallsBackToFullReplace(t *testing.T) {
	view := &stuckView{text: "text"}
	eng := &scriptEngine{results: []Result{
		{Update: projection.ReplaceAll{Text: "fexf", Start: 0, End: 0}},
	}}
	c := NewController(eng, view, NewSession(nil), false)

	c.Dispatch(ReplaceText{Text: "f"})

	if view.text != "fexf" {
		t.Fatalf("view = %q, want full replacement after the cap", view.text)
	}
	if view.fullLen != 1 {
		t.Errorf("full replaces = %d, want exactly 1", view.fullLen)
	}
}

// fullView exposes the whole-buffer capability.
type fullView struct {
	bufView
	fullText string
}

func (v *fullView) ReplaceAllText(text string) {
	v.fullText = text
	v.text = text
}

func TestDispatch_FullReplacerSkipsDiffing(t *testing.T) {
	view := &fullView{bufView: bufView{text: "old"}}
	eng := &scriptEngine{results: []Result{
		{Update: projection.ReplaceAll{Text: "new", Start: 3, End: 3}},
	}}
	c := NewController(eng, view, NewSession(nil), false)

	c.Dispatch(ReplaceText{Text: "x"})

	if view.fullText != "new" {
		t.Errorf("ReplaceAllText got %q, want %q", view.fullText, "new")
	}
	if view.replaces != 0 {
		t.Errorf("differ path ran %d replaces despite full-replace capability", view.replaces)
	}
}

func TestDispatch_NormalizesBackwardsSelection(t *testing.T) {
	eng := &scriptEngine{results: []Result{{Update: projection.Keep{}}}}
	view := &bufView{text: "hello"}
	c := NewController(eng, view, NewSession(nil), false)

	c.Dispatch(UpdateSelection{Start: 4, End: 1})

	sel, ok := eng.calls[0].(UpdateSelection)
	if !ok {
		t.Fatalf("engine saw %T, want UpdateSelection", eng.calls[0])
	}
	if sel.Start != 1 || sel.End != 4 {
		t.Errorf("engine saw [%d,%d), want normalized [1,4)", sel.Start, sel.End)
	}
}

func TestDispatch_SelectionMapsThroughDecorations(t *testing.T) {
	// View "1. hi" decorates model "hi" with a three-unit marker.
	view := &bufView{text: "1. hi"}
	eng := &scriptEngine{results: []Result{
		{Update: projection.Keep{}},
		{Update: projection.Select{Start: 0, End: 2}},
	}}
	c := NewController(eng, view, NewSession(nil), false)
	c.SetMapper(indexmap.New(5, indexmap.Span{Start: 0, Length: 3}))

	c.Dispatch(UpdateSelection{Start: 3, End: 5})
	sel := eng.calls[0].(UpdateSelection)
	if sel.Start != 0 || sel.End != 2 {
		t.Errorf("engine saw model [%d,%d), want [0,2)", sel.Start, sel.End)
	}

	c.Dispatch(ToggleInlineFormat{Format: Bold})
	if view.selStart != 3 || view.selEnd != 5 {
		t.Errorf("view selection = [%d,%d), want mapped [3,5)", view.selStart, view.selEnd)
	}
}

func TestDispatch_MappingFailureDropsAndResyncs(t *testing.T) {
	view := &bufView{text: "1. hi"}
	eng := &scriptEngine{}
	c := NewController(eng, view, NewSession(nil), false)
	c.SetMapper(indexmap.New(5, indexmap.Span{Start: 0, Length: 3}))
	resyncs := 0
	c.OnResync(func() { resyncs++ })

	c.Dispatch(UpdateSelection{Start: 0, End: 99})

	if len(eng.calls) != 0 {
		t.Errorf("engine saw %d intents, want the unmappable one dropped", len(eng.calls))
	}
	if resyncs != 1 {
		t.Errorf("resyncs = %d, want 1", resyncs)
	}
}

// TestDispatch_BoldToggleAlternatesActionState runs the real engine under
// the controller: toggling bold at an empty caret, typing, and toggling
// again must walk the session's bold state Enabled -> Reversed -> Enabled.
func TestDispatch_BoldToggleAlternatesActionState(t *testing.T) {
	view := &bufView{}
	sess := NewSession(nil)
	c := NewController(NewReferenceEngine(), view, sess, true)

	if got := sess.ActionState(projection.ActionBold); got != projection.Enabled {
		t.Fatalf("initial bold = %v, want enabled", got)
	}

	c.Dispatch(ToggleInlineFormat{Format: Bold})
	if got := sess.ActionState(projection.ActionBold); got != projection.Reversed {
		t.Errorf("bold after arming = %v, want reversed", got)
	}

	for _, ch := range "bold" {
		c.Dispatch(ReplaceText{Text: string(ch)})
	}
	if view.text != "bold" {
		t.Fatalf("view = %q, want %q", view.text, "bold")
	}
	if got := sess.ActionState(projection.ActionBold); got != projection.Reversed {
		t.Errorf("bold while typing = %v, want reversed", got)
	}

	c.Dispatch(ToggleInlineFormat{Format: Bold})
	if got := sess.ActionState(projection.ActionBold); got != projection.Enabled {
		t.Errorf("bold after second toggle = %v, want enabled", got)
	}
}

var errRejected = errors.New("rejected")
