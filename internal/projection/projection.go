// Package projection defines the value types the document engine hands to the
// view layer: block/run projections of the document, update records produced
// by each engine call, and the shared index types.
//
// Every offset in this package is a UTF-16 code-unit offset. The engine
// tracks the document in UTF-16 and off-by-one drift between index spaces
// corrupts editing, so nothing here measures text in bytes or runes.
package projection

import (
	"fmt"

	"charm.land/lipgloss/v2"
)

// BlockKind identifies the structural kind of a block.
type BlockKind int

const (
	Paragraph BlockKind = iota
	CodeBlock
	Quote
	ListItem
)

func (k BlockKind) String() string {
	switch k {
	case Paragraph:
		return "paragraph"
	case CodeBlock:
		return "codeBlock"
	case Quote:
		return "quote"
	case ListItem:
		return "listItem"
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

// AttributeSet is the inline styling of a text run.
type AttributeSet struct {
	Bold          bool
	Italic        bool
	StrikeThrough bool
	Underline     bool
	InlineCode    bool
	LinkURL       string // empty = no link
}

// IsZero reports whether no attribute is set.
func (a AttributeSet) IsZero() bool {
	return a == AttributeSet{}
}

// RunContent is the closed content union of an inline run: Text or Mention.
type RunContent interface{ isRunContent() }

// Text is a plain styled text run.
type Text struct {
	Text  string
	Attrs AttributeSet
}

// Mention is an inline reference to a user, room, or command. DisplayText is
// what the run occupies in model space; URL identifies the target.
type Mention struct {
	URL         string
	DisplayText string
}

func (Text) isRunContent()    {}
func (Mention) isRunContent() {}

// InlineRun is one contiguous run inside a block. Runs within a block are
// contiguous, non-overlapping, and strictly ordered by Start; their union
// covers the block's [Start, End).
type InlineRun struct {
	NodeID  string
	Start   int
	End     int
	Content RunContent
}

// BlockProjection is the engine's representation of one document block.
// Blocks are ordered and non-overlapping across the document.
type BlockProjection struct {
	BlockID string
	Kind    BlockKind
	Ordered bool   // list item: ordered vs unordered
	Order   int    // list item: 1-based position within its list
	InQuote bool   // rendered inside a quote even when Kind != Quote
	Lang    string // code block: syntax hint, may be empty
	Start   int
	End     int
	Runs    []InlineRun
}

// Range is a [Start, End) pair of UTF-16 offsets. Selections reuse this
// type; some callers hand selections in backwards (Start > End), so
// normalize before trusting the order.
type Range struct {
	Start int
	End   int
}

// Normalized returns r with Start <= End.
func (r Range) Normalized() Range {
	if r.Start > r.End {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Len returns the covered length. Zero for collapsed ranges.
func (r Range) Len() int {
	n := r.Normalized()
	return n.End - n.Start
}

// Collapsed reports whether the range covers nothing (a caret).
func (r Range) Collapsed() bool { return r.Start == r.End }

// ListMarkerInfo describes a decorative list marker. It lives entirely in
// view space: CharacterIndex anchors the marker in the view buffer and is
// meaningless as a model offset. Consumed by hosts that draw markers
// out-of-band instead of inserting marker characters.
type ListMarkerInfo struct {
	Text           string
	Style          lipgloss.Style
	CharacterIndex int
	HeadIndent     int
}

// Validate checks the structural invariants of a projection sequence:
// ordered non-overlapping blocks, and per block a contiguous ordered run
// cover of [Start, End).
func Validate(blocks []BlockProjection) error {
	prevEnd := -1
	for _, b := range blocks {
		if b.End < b.Start {
			return fmt.Errorf("block %s: inverted range [%d, %d)", b.BlockID, b.Start, b.End)
		}
		if b.Start < prevEnd {
			return fmt.Errorf("block %s: overlaps previous block at %d", b.BlockID, b.Start)
		}
		prevEnd = b.End
		pos := b.Start
		for _, r := range b.Runs {
			if r.Start != pos {
				return fmt.Errorf("block %s: run %s starts at %d, want %d", b.BlockID, r.NodeID, r.Start, pos)
			}
			if r.End < r.Start {
				return fmt.Errorf("block %s: run %s inverted range", b.BlockID, r.NodeID)
			}
			if got := runLen(r); got != r.End-r.Start {
				return fmt.Errorf("block %s: run %s covers %d units, range says %d", b.BlockID, r.NodeID, got, r.End-r.Start)
			}
			pos = r.End
		}
		if pos != b.End {
			return fmt.Errorf("block %s: runs cover [%d, %d), block says [%d, %d)", b.BlockID, b.Start, pos, b.Start, b.End)
		}
	}
	return nil
}

func runLen(r InlineRun) int {
	switch c := r.Content.(type) {
	case Text:
		return UTF16Length(c.Text)
	case Mention:
		return UTF16Length(c.DisplayText)
	}
	return 0
}
