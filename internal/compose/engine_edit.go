package compose

import (
	"strconv"
	"strings"

	"github.com/xonecas/composer/internal/projection"
)

// ---
// Offset bookkeeping

func runLen16(r refRun) int {
	if r.mention != nil {
		return projection.UTF16Length(r.mention.display)
	}
	return len(r.units)
}

func blockLen16(b refBlock) int {
	n := 0
	for _, r := range b.runs {
		n += runLen16(r)
	}
	return n
}

func blockUnits(b refBlock) []uint16 {
	var units []uint16
	for _, r := range b.runs {
		if r.mention != nil {
			units = append(units, projection.UTF16Units(r.mention.display)...)
			continue
		}
		units = append(units, r.units...)
	}
	return units
}

func (e *ReferenceEngine) docLen() int {
	n := 0
	for _, b := range e.blocks {
		n += blockLen16(b)
	}
	return n
}

func (e *ReferenceEngine) blockStart(bi int) int {
	n := 0
	for i := 0; i < bi; i++ {
		n += blockLen16(e.blocks[i])
	}
	return n
}

// locate resolves a caret offset to a block and an offset within it. A
// block boundary resolves to the start of the later block, so a caret at
// the boundary types into (and backspace-merges) the later block. Empty
// blocks hold no units but can still hold the caret: the last empty block
// sitting at the offset claims it, ahead of any non-empty block starting
// there. Otherwise no caret could ever sit on an empty line.
func (e *ReferenceEngine) locate(offset int) (int, int) {
	empty := -1
	for i, b := range e.blocks {
		l := blockLen16(b)
		if offset == 0 && l == 0 {
			empty = i
			continue
		}
		if offset < l {
			if empty >= 0 {
				return empty, 0
			}
			return i, offset
		}
		offset -= l
	}
	if empty >= 0 {
		return empty, 0
	}
	last := len(e.blocks) - 1
	return last, blockLen16(e.blocks[last])
}

// locateUnit resolves the block containing the content unit at offset.
// Unlike locate it never stops at an empty block, which holds no units.
func (e *ReferenceEngine) locateUnit(offset int) (int, int) {
	for i, b := range e.blocks {
		l := blockLen16(b)
		if offset < l {
			return i, offset
		}
		offset -= l
	}
	last := len(e.blocks) - 1
	return last, blockLen16(e.blocks[last])
}

func (e *ReferenceEngine) plainText() string {
	var sb strings.Builder
	for i, b := range e.blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, r := range b.runs {
			if r.mention != nil {
				sb.WriteString(r.mention.display)
				continue
			}
			sb.WriteString(projection.FromUTF16(r.units))
		}
	}
	return sb.String()
}

// selectedBlocks returns the indices of all blocks the selection touches.
// A collapsed caret resolves by caret rules; a real selection resolves by
// its first and last units, so ending at a block boundary does not pull in
// the next block.
func (e *ReferenceEngine) selectedBlocks() []int {
	first, _ := e.locate(e.sel.Start)
	last := first
	if !e.sel.Collapsed() {
		first, _ = e.locateUnit(e.sel.Start)
		last, _ = e.locateUnit(e.sel.End - 1)
	}
	bis := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		bis = append(bis, i)
	}
	return bis
}

func (e *ReferenceEngine) selectionAllKind(kind projection.BlockKind) bool {
	for _, bi := range e.selectedBlocks() {
		if e.blocks[bi].kind != kind {
			return false
		}
	}
	return true
}

func (e *ReferenceEngine) selectionAnyIndented() bool {
	for _, bi := range e.selectedBlocks() {
		if e.blocks[bi].indent > 0 {
			return true
		}
	}
	return false
}

// walkRange visits every run overlapping the model range, passing the
// overlap in run-local units. Runs are visited in document order.
func (e *ReferenceEngine) walkRange(r projection.Range, fn func(run *refRun, from, to int)) {
	pos := 0
	for bi := range e.blocks {
		b := &e.blocks[bi]
		for ri := range b.runs {
			run := &b.runs[ri]
			l := runLen16(*run)
			start, end := pos, pos+l
			if end > r.Start && start < r.End {
				from := max(r.Start-start, 0)
				to := min(r.End-start, l)
				fn(run, from, to)
			}
			pos = end
		}
	}
}

// attrsAtCaret returns the attributes typing would inherit: the run ending
// at the caret, or the run starting there when the caret is at a block
// start. Mentions contribute nothing.
func (e *ReferenceEngine) attrsAtCaret() projection.AttributeSet {
	bi, off := e.locate(e.sel.Start)
	b := e.blocks[bi]
	pos := 0
	var before, after *refRun
	for ri := range b.runs {
		run := &b.runs[ri]
		l := runLen16(*run)
		if pos < off && off <= pos+l {
			before = run
		}
		if after == nil && pos <= off && off < pos+l {
			after = run
		}
		pos += l
	}
	if before != nil && before.mention == nil {
		return before.attrs
	}
	if after != nil && after.mention == nil {
		return after.attrs
	}
	return projection.AttributeSet{}
}

// snapOutsideMentions widens a range so neither end sits strictly inside
// an atomic mention run.
func (e *ReferenceEngine) snapOutsideMentions(r projection.Range) projection.Range {
	pos := 0
	for _, b := range e.blocks {
		for _, run := range b.runs {
			l := runLen16(run)
			if run.mention != nil {
				if r.Start > pos && r.Start < pos+l {
					r.Start = pos
				}
				if r.End > pos && r.End < pos+l {
					r.End = pos + l
				}
			}
			pos += l
		}
	}
	return r
}

// ---
// Mutations

// deleteSelection removes the selected range and collapses the caret to
// its start. Collapsed selections are a no-op.
func (e *ReferenceEngine) deleteSelection() {
	if e.sel.Collapsed() {
		return
	}
	r := e.sel.Normalized()
	e.deleteModelRange(r)
	e.sel = projection.Range{Start: r.Start, End: r.Start}
	e.renumberLists()
}

func (e *ReferenceEngine) deleteModelRange(r projection.Range) {
	// End is exclusive; resolve the first and last deleted units so a
	// range ending exactly at a block boundary does not pull in the
	// following block.
	firstBI, firstOff := e.locateUnit(r.Start)
	lastBI, lastOff := e.locateUnit(r.End - 1)
	lastOff++
	if firstBI == lastBI {
		// Emptying a block keeps it: the user deleted content, not the
		// paragraph break around it.
		deleteInBlock(&e.blocks[firstBI], firstOff, lastOff)
		return
	}
	// Trim the edge blocks, then merge the tail of the last into the
	// first and drop everything in between.
	deleteInBlock(&e.blocks[firstBI], firstOff, blockLen16(e.blocks[firstBI]))
	deleteInBlock(&e.blocks[lastBI], 0, lastOff)
	e.blocks[firstBI].runs = append(e.blocks[firstBI].runs, e.blocks[lastBI].runs...)
	coalesce(&e.blocks[firstBI])
	e.blocks = append(e.blocks[:firstBI+1], e.blocks[lastBI+1:]...)
}

// deleteInBlock removes [from, to) block-local units. A range touching any
// part of a mention removes the whole mention; mentions never survive a
// partial deletion.
func deleteInBlock(b *refBlock, from, to int) {
	if from >= to {
		return
	}
	var out []refRun
	pos := 0
	for _, run := range b.runs {
		l := runLen16(run)
		start, end := pos, pos+l
		pos = end
		if end <= from || start >= to {
			out = append(out, run)
			continue
		}
		if run.mention != nil {
			continue
		}
		f := max(from-start, 0)
		t := min(to-start, l)
		kept := append(append([]uint16(nil), run.units[:f]...), run.units[t:]...)
		if len(kept) == 0 {
			continue
		}
		run.units = kept
		out = append(out, run)
	}
	b.runs = out
	coalesce(b)
}

// insertText inserts typed text at the caret. Newlines split blocks, so a
// pasted multi-line string lands as multiple paragraphs.
func (e *ReferenceEngine) insertText(text string) {
	segments := strings.Split(text, "\n")
	attrs := e.caretInsertionAttrs()
	for i, seg := range segments {
		if i > 0 {
			e.splitBlockAtCaret()
		}
		e.insertSegment(projection.UTF16Units(seg), attrs)
	}
	clear(e.pending)
	e.renumberLists()
}

func (e *ReferenceEngine) insertLinkedText(text, url string) {
	attrs := e.caretInsertionAttrs()
	attrs.LinkURL = url
	e.insertSegment(projection.UTF16Units(text), attrs)
	clear(e.pending)
}

func (e *ReferenceEngine) caretInsertionAttrs() projection.AttributeSet {
	bi, _ := e.locate(e.sel.Start)
	if e.blocks[bi].kind == projection.CodeBlock {
		return projection.AttributeSet{}
	}
	attrs := e.attrsAtCaret()
	for f, toggled := range e.pending {
		if toggled {
			setFormat(&attrs, f, !hasFormat(attrs, f))
		}
	}
	return attrs
}

func (e *ReferenceEngine) insertSegment(units []uint16, attrs projection.AttributeSet) {
	if len(units) == 0 {
		return
	}
	bi, off := e.locate(e.sel.Start)
	b := &e.blocks[bi]

	var out []refRun
	pos := 0
	inserted := false
	newRun := refRun{attrs: attrs, units: append([]uint16(nil), units...)}
	for _, run := range b.runs {
		l := runLen16(run)
		if !inserted && off >= pos && off <= pos+l && run.mention == nil {
			head := append([]uint16(nil), run.units[:off-pos]...)
			tail := append([]uint16(nil), run.units[off-pos:]...)
			if len(head) > 0 {
				out = append(out, refRun{attrs: run.attrs, units: head})
			}
			out = append(out, newRun)
			if len(tail) > 0 {
				out = append(out, refRun{attrs: run.attrs, units: tail})
			}
			inserted = true
		} else if !inserted && off == pos {
			out = append(out, newRun, run)
			inserted = true
		} else {
			out = append(out, run)
		}
		pos += l
	}
	if !inserted {
		out = append(out, newRun)
	}
	b.runs = out
	coalesce(b)
	caret := e.sel.Start + len(units)
	e.sel = projection.Range{Start: caret, End: caret}
}

// insertMentionAtCaret places an atomic mention run at the caret. Used by
// suggestion completion and HTML import paths.
func (e *ReferenceEngine) insertMentionAtCaret(url, display string) {
	bi, off := e.locate(e.sel.Start)
	b := &e.blocks[bi]
	m := refRun{mention: &refMention{url: url, display: display}}

	var out []refRun
	pos := 0
	inserted := false
	for _, run := range b.runs {
		l := runLen16(run)
		if !inserted && off >= pos && off <= pos+l && run.mention == nil {
			head := append([]uint16(nil), run.units[:off-pos]...)
			tail := append([]uint16(nil), run.units[off-pos:]...)
			if len(head) > 0 {
				out = append(out, refRun{attrs: run.attrs, units: head})
			}
			out = append(out, m)
			if len(tail) > 0 {
				out = append(out, refRun{attrs: run.attrs, units: tail})
			}
			inserted = true
		} else if !inserted && off == pos {
			out = append(out, m, run)
			inserted = true
		} else {
			out = append(out, run)
		}
		pos += l
	}
	if !inserted {
		out = append(out, m)
	}
	b.runs = out
	caret := e.sel.Start + projection.UTF16Length(display)
	e.sel = projection.Range{Start: caret, End: caret}
}

// splitBlockAtCaret breaks the caret's block in two. Model offsets do not
// shift, only the block boundary moves; the caret ends at the start of the
// second half.
func (e *ReferenceEngine) splitBlockAtCaret() {
	bi, off := e.locate(e.sel.Start)
	b := e.blocks[bi]

	var head, tail []refRun
	pos := 0
	for _, run := range b.runs {
		l := runLen16(run)
		switch {
		case pos+l <= off:
			head = append(head, run)
		case pos >= off:
			tail = append(tail, run)
		default:
			// Splitting inside a mention is impossible by the mention
			// atomicity invariant; only text runs reach here.
			head = append(head, refRun{attrs: run.attrs, units: append([]uint16(nil), run.units[:off-pos]...)})
			tail = append(tail, refRun{attrs: run.attrs, units: append([]uint16(nil), run.units[off-pos:]...)})
		}
		pos += l
	}

	second := refBlock{
		id:      e.newID(),
		kind:    b.kind,
		ordered: b.ordered,
		inQuote: b.inQuote,
		lang:    b.lang,
		indent:  b.indent,
		runs:    tail,
	}
	e.blocks[bi].runs = head
	e.blocks = append(e.blocks[:bi+1], append([]refBlock{second}, e.blocks[bi+1:]...)...)
	e.renumberLists()
}

// backspaceAtCaret deletes one unit of content before a collapsed caret:
// a whole mention, a whole surrogate pair, or one code unit. At a block
// start it merges the block into its predecessor instead.
func (e *ReferenceEngine) backspaceAtCaret() {
	bi, off := e.locate(e.sel.Start)
	if off == 0 {
		if bi == 0 {
			return
		}
		prev := &e.blocks[bi-1]
		prev.runs = append(prev.runs, e.blocks[bi].runs...)
		coalesce(prev)
		e.blocks = append(e.blocks[:bi], e.blocks[bi+1:]...)
		e.renumberLists()
		return
	}

	width := 1
	units := blockUnits(e.blocks[bi])
	if off >= 2 && isLowSurrogate16(units[off-1]) && isHighSurrogate16(units[off-2]) {
		width = 2
	}
	// A mention before the caret is removed whole.
	pos := 0
	for _, run := range e.blocks[bi].runs {
		l := runLen16(run)
		if run.mention != nil && off == pos+l {
			width = l
			break
		}
		pos += l
	}
	deleteInBlock(&e.blocks[bi], off-width, off)
	caret := e.sel.Start - width
	e.sel = projection.Range{Start: caret, End: caret}
	e.renumberLists()
}

func isHighSurrogate16(u uint16) bool { return u >= 0xD800 && u <= 0xDBFF }
func isLowSurrogate16(u uint16) bool  { return u >= 0xDC00 && u <= 0xDFFF }

// toggleFormatOverSelection applies or removes one format across the
// selection: if every covered text unit already carries it, it comes off;
// otherwise it goes on everywhere. Mentions are untouched.
func (e *ReferenceEngine) toggleFormatOverSelection(f InlineFormat) {
	on := !e.formatActive(f)
	e.splitRunsAt(e.sel.Start)
	e.splitRunsAt(e.sel.End)
	e.walkRange(e.sel, func(run *refRun, from, to int) {
		if run.mention != nil || from != 0 || to != runLen16(*run) {
			return
		}
		setFormat(&run.attrs, f, on)
	})
	for bi := range e.blocks {
		coalesce(&e.blocks[bi])
	}
}

func (e *ReferenceEngine) setLinkOverSelection(url string) {
	e.splitRunsAt(e.sel.Start)
	e.splitRunsAt(e.sel.End)
	e.walkRange(e.sel, func(run *refRun, from, to int) {
		if run.mention != nil || from != 0 || to != runLen16(*run) {
			return
		}
		run.attrs.LinkURL = url
	})
	for bi := range e.blocks {
		coalesce(&e.blocks[bi])
	}
}

// splitRunsAt guarantees a run boundary at the model offset so attribute
// edits never bleed past the selection.
func (e *ReferenceEngine) splitRunsAt(offset int) {
	bi, off := e.locate(offset)
	b := &e.blocks[bi]
	var out []refRun
	pos := 0
	for _, run := range b.runs {
		l := runLen16(run)
		if run.mention == nil && off > pos && off < pos+l {
			out = append(out,
				refRun{attrs: run.attrs, units: append([]uint16(nil), run.units[:off-pos]...)},
				refRun{attrs: run.attrs, units: append([]uint16(nil), run.units[off-pos:]...)},
			)
		} else {
			out = append(out, run)
		}
		pos += l
	}
	b.runs = out
}

// coalesce merges adjacent text runs with identical attributes and drops
// empty text runs.
func coalesce(b *refBlock) {
	var out []refRun
	for _, run := range b.runs {
		if run.mention == nil && len(run.units) == 0 {
			continue
		}
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.mention == nil && run.mention == nil && last.attrs == run.attrs {
				last.units = append(last.units, run.units...)
				continue
			}
		}
		out = append(out, run)
	}
	b.runs = out
}

// ---
// Block-level toggles

func (e *ReferenceEngine) toggleList(ordered bool) {
	bis := e.selectedBlocks()
	all := true
	for _, bi := range bis {
		b := e.blocks[bi]
		if b.kind != projection.ListItem || b.ordered != ordered {
			all = false
			break
		}
	}
	for _, bi := range bis {
		b := &e.blocks[bi]
		if all {
			b.kind = projection.Paragraph
			b.ordered = false
			b.indent = 0
		} else {
			b.kind = projection.ListItem
			b.ordered = ordered
		}
	}
	e.renumberLists()
}

func (e *ReferenceEngine) toggleCodeBlock() {
	bis := e.selectedBlocks()
	all := true
	for _, bi := range bis {
		if e.blocks[bi].kind != projection.CodeBlock {
			all = false
			break
		}
	}
	for _, bi := range bis {
		b := &e.blocks[bi]
		if all {
			b.kind = projection.Paragraph
			b.lang = ""
			continue
		}
		b.kind = projection.CodeBlock
		b.ordered = false
		b.indent = 0
		// Code holds plain text: formats drop, mentions keep only their
		// visible text so offsets hold.
		for ri := range b.runs {
			run := &b.runs[ri]
			if run.mention != nil {
				run.units = projection.UTF16Units(run.mention.display)
				run.mention = nil
			}
			run.attrs = projection.AttributeSet{}
		}
		coalesce(b)
	}
	e.renumberLists()
}

func (e *ReferenceEngine) toggleQuote() {
	bis := e.selectedBlocks()
	all := true
	for _, bi := range bis {
		b := e.blocks[bi]
		if b.kind != projection.Quote && !b.inQuote {
			all = false
			break
		}
	}
	for _, bi := range bis {
		b := &e.blocks[bi]
		switch {
		case all && b.kind == projection.Quote:
			b.kind = projection.Paragraph
		case all:
			b.inQuote = false
		case b.kind == projection.Paragraph:
			b.kind = projection.Quote
		default:
			// Lists and code blocks join the quote without losing
			// their own kind.
			b.inQuote = true
		}
	}
}

func (e *ReferenceEngine) indentSelection(delta int) bool {
	bis := e.selectedBlocks()
	for _, bi := range bis {
		b := e.blocks[bi]
		if b.kind != projection.ListItem {
			return false
		}
		if delta < 0 && b.indent == 0 {
			return false
		}
	}
	for _, bi := range bis {
		e.blocks[bi].indent += delta
	}
	e.renumberLists()
	return true
}

// renumberLists recounts ordered list items: each run of consecutive
// ordered items at the same indent counts from 1.
func (e *ReferenceEngine) renumberLists() {
	counters := map[int]int{}
	for bi := range e.blocks {
		b := &e.blocks[bi]
		if b.kind != projection.ListItem {
			clear(counters)
			b.order = 0
			continue
		}
		if !b.ordered {
			b.order = 0
			continue
		}
		counters[b.indent]++
		b.order = counters[b.indent]
	}
}

// ---
// Projection

// Projections renders the document as a fresh block/run projection with
// model offsets recomputed from scratch.
func (e *ReferenceEngine) Projections() []projection.BlockProjection {
	out := make([]projection.BlockProjection, 0, len(e.blocks))
	pos := 0
	for _, b := range e.blocks {
		bp := projection.BlockProjection{
			BlockID: b.id,
			Kind:    b.kind,
			Ordered: b.ordered,
			Order:   b.order,
			InQuote: b.inQuote,
			Lang:    b.lang,
			Start:   pos,
		}
		for ri, run := range b.runs {
			l := runLen16(run)
			ir := projection.InlineRun{
				NodeID: b.id + "-r" + strconv.Itoa(ri),
				Start:  pos,
				End:    pos + l,
			}
			if run.mention != nil {
				ir.Content = projection.Mention{URL: run.mention.url, DisplayText: run.mention.display}
			} else {
				ir.Content = projection.Text{Text: projection.FromUTF16(run.units), Attrs: run.attrs}
			}
			bp.Runs = append(bp.Runs, ir)
			pos += l
		}
		bp.End = pos
		out = append(out, bp)
	}
	return out
}

