package compose

import (
	"fmt"
	"strings"

	"github.com/xonecas/composer/internal/projection"
)

// ReferenceEngine is an in-process document engine backing the terminal
// host. It keeps the rich-text document as a flat list of blocks, each a
// list of attributed runs, and speaks the same intent/result contract an
// out-of-process engine would.
//
// All offsets are UTF-16 code units in model space: block contents are
// adjacent, with no separator units between blocks.
type ReferenceEngine struct {
	blocks []refBlock
	sel    projection.Range

	// pending holds inline formats toggled at a collapsed caret; they
	// apply to the next insertion and die on any selection move.
	pending map[InlineFormat]bool

	undo []snapshot
	redo []snapshot

	lastMenu map[projection.ActionID]projection.ActionState
	nextID   int
}

type refBlock struct {
	id      string
	kind    projection.BlockKind
	ordered bool
	order   int
	inQuote bool
	lang    string
	indent  int
	runs    []refRun
}

// refRun is either a text run (units non-nil semantics, mention nil) or an
// atomic mention run. Mention runs never split and never merge.
type refRun struct {
	attrs   projection.AttributeSet
	units   []uint16
	mention *refMention
}

type refMention struct {
	url     string
	display string
}

type snapshot struct {
	blocks []refBlock
	sel    projection.Range
}

// NewReferenceEngine starts with one empty paragraph and a caret at zero.
func NewReferenceEngine() *ReferenceEngine {
	e := &ReferenceEngine{
		pending:  make(map[InlineFormat]bool),
		lastMenu: make(map[projection.ActionID]projection.ActionState),
	}
	e.blocks = []refBlock{{id: e.newID(), kind: projection.Paragraph}}
	return e
}

func (e *ReferenceEngine) newID() string {
	id := fmt.Sprintf("b%d", e.nextID)
	e.nextID++
	return id
}

// ---
// Intent processing

// Process handles one intent synchronously. A returned error means the
// intent was rejected and the document is unchanged.
func (e *ReferenceEngine) Process(intent Intent) (Result, error) {
	switch in := intent.(type) {
	case UpdateSelection:
		return e.updateSelection(in.Start, in.End), nil
	case Undo:
		return e.applyUndo()
	case Redo:
		return e.applyRedo()
	case ToggleInlineFormat:
		// At a collapsed caret this arms a pending format for the next
		// insertion. Nothing visual changes and nothing lands on the
		// undo stack; only the menu flips.
		if e.sel.Collapsed() {
			e.pending[in.Format] = !e.pending[in.Format]
			return Result{Update: projection.Keep{}, Menu: e.menuDelta()}, nil
		}
	}

	// Everything below mutates the document.
	snap := e.snapshot()
	update, err := e.mutate(intent)
	if err != nil {
		e.restore(snap)
		return Result{}, err
	}
	e.undo = append(e.undo, snap)
	e.redo = nil
	return e.result(update), nil
}

func (e *ReferenceEngine) mutate(intent Intent) (projection.TextUpdate, error) {
	switch in := intent.(type) {
	case ReplaceText:
		e.deleteSelection()
		e.insertText(in.Text)
	case ReplaceRange:
		r := projection.Range{Start: in.Start, End: in.End}.Normalized()
		if r.Start < 0 || r.End > e.docLen() {
			return nil, fmt.Errorf("replace range [%d,%d) outside document of length %d", r.Start, r.End, e.docLen())
		}
		e.sel = r
		e.deleteSelection()
		e.insertText(in.Text)
	case InsertParagraph:
		e.deleteSelection()
		e.splitBlockAtCaret()
	case Backspace:
		if e.sel.Collapsed() {
			e.backspaceAtCaret()
		} else {
			e.deleteSelection()
		}
	case DeleteRange:
		r := projection.Range{Start: in.Start, End: in.End}.Normalized()
		if r.Start < 0 || r.End > e.docLen() {
			return nil, fmt.Errorf("delete range [%d,%d) outside document of length %d", r.Start, r.End, e.docLen())
		}
		e.sel = r
		e.deleteSelection()
	case ToggleInlineFormat:
		e.toggleFormatOverSelection(in.Format)
	case ToggleList:
		e.toggleList(in.Ordered)
	case ToggleCodeBlock:
		e.toggleCodeBlock()
	case ToggleQuote:
		e.toggleQuote()
	case Indent:
		if !e.indentSelection(1) {
			return nil, fmt.Errorf("selection is not indentable")
		}
	case Unindent:
		if !e.indentSelection(-1) {
			return nil, fmt.Errorf("selection is not unindentable")
		}
	case SetLink:
		if in.URL == "" {
			return nil, fmt.Errorf("empty link url")
		}
		e.setLinkOverSelection(in.URL)
	case RemoveLink:
		e.setLinkOverSelection("")
	case InsertLink:
		if in.URL == "" || in.Text == "" {
			return nil, fmt.Errorf("link insertion needs both url and text")
		}
		e.deleteSelection()
		e.insertLinkedText(in.Text, in.URL)
	case InsertMention:
		if in.Text == "" {
			return nil, fmt.Errorf("mention insertion needs display text")
		}
		if s := e.suggestionAtCaret(); s != nil {
			e.sel = s.Range
			e.deleteSelection()
		} else {
			e.deleteSelection()
		}
		e.insertMentionAtCaret(in.URL, in.Text)
	default:
		return nil, fmt.Errorf("unhandled intent %s", intentName(intent))
	}
	return nil, nil
}

// result wraps a mutation's outcome. A nil update means content changed
// and the host receives the full canonical text; Keep passes through.
func (e *ReferenceEngine) result(update projection.TextUpdate) Result {
	if update == nil {
		update = projection.ReplaceAll{
			Text:  e.plainText(),
			Start: e.sel.Start,
			End:   e.sel.End,
		}
	}
	return Result{
		Update:     update,
		Menu:       e.menuDelta(),
		Suggestion: e.suggestionAtCaret(),
	}
}

func (e *ReferenceEngine) updateSelection(start, end int) Result {
	r := projection.Range{Start: start, End: end}.Normalized()
	docLen := e.docLen()
	if r.Start > docLen {
		r.Start = docLen
	}
	if r.End > docLen {
		r.End = docLen
	}
	adjusted := e.snapOutsideMentions(r)
	clear(e.pending)
	var update projection.TextUpdate = projection.Keep{}
	if adjusted != r || adjusted.Start != start || adjusted.End != end {
		update = projection.Select{Start: adjusted.Start, End: adjusted.End}
	}
	e.sel = adjusted
	return Result{
		Update:     update,
		Menu:       e.menuDelta(),
		Suggestion: e.suggestionAtCaret(),
	}
}

// ---
// Undo / redo

func (e *ReferenceEngine) snapshot() snapshot {
	blocks := make([]refBlock, len(e.blocks))
	for i, b := range e.blocks {
		runs := make([]refRun, len(b.runs))
		for j, r := range b.runs {
			cp := r
			if r.units != nil {
				cp.units = append([]uint16(nil), r.units...)
			}
			if r.mention != nil {
				m := *r.mention
				cp.mention = &m
			}
			runs[j] = cp
		}
		b.runs = runs
		blocks[i] = b
	}
	return snapshot{blocks: blocks, sel: e.sel}
}

func (e *ReferenceEngine) restore(s snapshot) {
	e.blocks = s.blocks
	e.sel = s.sel
}

func (e *ReferenceEngine) applyUndo() (Result, error) {
	if len(e.undo) == 0 {
		return Result{}, fmt.Errorf("nothing to undo")
	}
	e.redo = append(e.redo, e.snapshot())
	e.restore(e.undo[len(e.undo)-1])
	e.undo = e.undo[:len(e.undo)-1]
	return e.result(nil), nil
}

func (e *ReferenceEngine) applyRedo() (Result, error) {
	if len(e.redo) == 0 {
		return Result{}, fmt.Errorf("nothing to redo")
	}
	e.undo = append(e.undo, e.snapshot())
	e.restore(e.redo[len(e.redo)-1])
	e.redo = e.redo[:len(e.redo)-1]
	return e.result(nil), nil
}

// ---
// Menu state

// menuDelta recomputes the full menu and reports only the keys whose state
// changed since the previous report. The session merges, so untouched keys
// keep their prior state there.
func (e *ReferenceEngine) menuDelta() projection.MenuStateUpdate {
	menu := e.computeMenu()
	delta := make(projection.MenuStateUpdate)
	for id, st := range menu {
		if prev, ok := e.lastMenu[id]; !ok || prev != st {
			delta[id] = st
		}
	}
	e.lastMenu = menu
	if len(delta) == 0 {
		return nil
	}
	return delta
}

func (e *ReferenceEngine) computeMenu() map[projection.ActionID]projection.ActionState {
	menu := make(map[projection.ActionID]projection.ActionState)

	inCode := e.selectionAllKind(projection.CodeBlock)
	formats := map[InlineFormat]projection.ActionID{
		Bold:          projection.ActionBold,
		Italic:        projection.ActionItalic,
		StrikeThrough: projection.ActionStrikeThrough,
		Underline:     projection.ActionUnderline,
		InlineCode:    projection.ActionInlineCode,
	}
	for f, id := range formats {
		switch {
		case inCode:
			menu[id] = projection.Disabled
		case e.formatActive(f):
			menu[id] = projection.Reversed
		default:
			menu[id] = projection.Enabled
		}
	}

	switch {
	case inCode:
		menu[projection.ActionLink] = projection.Disabled
	case e.linkActive():
		menu[projection.ActionLink] = projection.Reversed
	default:
		menu[projection.ActionLink] = projection.Enabled
	}

	menu[projection.ActionOrderedList] = e.blockToggleState(func(b refBlock) bool {
		return b.kind == projection.ListItem && b.ordered
	})
	menu[projection.ActionUnorderedList] = e.blockToggleState(func(b refBlock) bool {
		return b.kind == projection.ListItem && !b.ordered
	})
	menu[projection.ActionCodeBlock] = e.blockToggleState(func(b refBlock) bool {
		return b.kind == projection.CodeBlock
	})
	menu[projection.ActionQuote] = e.blockToggleState(func(b refBlock) bool {
		return b.kind == projection.Quote || b.inQuote
	})

	inList := e.selectionAllKind(projection.ListItem)
	if inList {
		menu[projection.ActionIndent] = projection.Enabled
		if e.selectionAnyIndented() {
			menu[projection.ActionUnindent] = projection.Enabled
		} else {
			menu[projection.ActionUnindent] = projection.Disabled
		}
	} else {
		menu[projection.ActionIndent] = projection.Disabled
		menu[projection.ActionUnindent] = projection.Disabled
	}

	if len(e.undo) > 0 {
		menu[projection.ActionUndo] = projection.Enabled
	} else {
		menu[projection.ActionUndo] = projection.Disabled
	}
	if len(e.redo) > 0 {
		menu[projection.ActionRedo] = projection.Enabled
	} else {
		menu[projection.ActionRedo] = projection.Disabled
	}
	return menu
}

func (e *ReferenceEngine) blockToggleState(active func(refBlock) bool) projection.ActionState {
	all := true
	for _, bi := range e.selectedBlocks() {
		if !active(e.blocks[bi]) {
			all = false
			break
		}
	}
	if all {
		return projection.Reversed
	}
	return projection.Enabled
}

// formatActive reports whether a format holds at the selection: every text
// unit of a range has it, or the caret context (plus pending toggles) does.
func (e *ReferenceEngine) formatActive(f InlineFormat) bool {
	if e.sel.Collapsed() {
		active := e.attrsAtCaret()
		return hasFormat(active, f) != e.pending[f]
	}
	found := false
	all := true
	e.walkRange(e.sel, func(r *refRun, _, _ int) {
		found = true
		if !hasFormat(r.attrs, f) {
			all = false
		}
	})
	return found && all
}

func (e *ReferenceEngine) linkActive() bool {
	if e.sel.Collapsed() {
		return e.attrsAtCaret().LinkURL != ""
	}
	found := false
	all := true
	e.walkRange(e.sel, func(r *refRun, _, _ int) {
		found = true
		if r.attrs.LinkURL == "" && r.mention == nil {
			all = false
		}
	})
	return found && all
}

func hasFormat(a projection.AttributeSet, f InlineFormat) bool {
	switch f {
	case Bold:
		return a.Bold
	case Italic:
		return a.Italic
	case StrikeThrough:
		return a.StrikeThrough
	case Underline:
		return a.Underline
	case InlineCode:
		return a.InlineCode
	}
	return false
}

func setFormat(a *projection.AttributeSet, f InlineFormat, on bool) {
	switch f {
	case Bold:
		a.Bold = on
	case Italic:
		a.Italic = on
	case StrikeThrough:
		a.StrikeThrough = on
	case Underline:
		a.Underline = on
	case InlineCode:
		a.InlineCode = on
	}
}

// ---
// Suggestions

// suggestionKeys are the sigils that open a suggestion: user mentions,
// room mentions, and slash commands.
var suggestionKeys = map[rune]bool{'@': true, '#': true, '/': true}

// suggestionAtCaret scans the word ending at a collapsed caret. The word
// must begin with a sigil and contain no whitespace to qualify.
func (e *ReferenceEngine) suggestionAtCaret() *projection.SuggestionPattern {
	if !e.sel.Collapsed() {
		return nil
	}
	bi, off := e.locate(e.sel.Start)
	b := e.blocks[bi]
	if b.kind == projection.CodeBlock {
		return nil
	}
	units := blockUnits(b)
	if off > len(units) {
		return nil
	}
	// Mention display text never seeds a new suggestion: the word scan
	// stops at the nearest mention boundary before the caret.
	regionStart := 0
	pos := 0
	for _, run := range b.runs {
		l := runLen16(run)
		if run.mention != nil && off >= pos+l {
			regionStart = pos + l
		}
		pos += l
	}
	start := off
	for start > regionStart && !isSpaceUnit16(units[start-1]) {
		start--
	}
	word := projection.FromUTF16(units[start:off])
	if word == "" {
		return nil
	}
	first := []rune(word)[0]
	if !suggestionKeys[first] {
		return nil
	}
	blockStart := e.blockStart(bi)
	return &projection.SuggestionPattern{
		Key:   first,
		Text:  strings.TrimPrefix(word, string(first)),
		Range: projection.Range{Start: blockStart + start, End: blockStart + off},
	}
}

func isSpaceUnit16(u uint16) bool {
	switch u {
	case ' ', '\t', '\n', '\r', 0x00A0:
		return true
	}
	return false
}
