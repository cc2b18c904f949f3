// Package compose owns the editing session: it dispatches editing intents
// to the document engine, merges the returned menu-state updates, and
// routes text updates through the differ onto the live view.
package compose

import "fmt"

// InlineFormat names a toggleable inline formatting kind.
type InlineFormat int

const (
	Bold InlineFormat = iota
	Italic
	StrikeThrough
	Underline
	InlineCode
)

func (f InlineFormat) String() string {
	switch f {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case StrikeThrough:
		return "strikeThrough"
	case Underline:
		return "underline"
	case InlineCode:
		return "inlineCode"
	}
	return fmt.Sprintf("InlineFormat(%d)", int(f))
}

// Intent is the closed set of editing intents. Each maps 1:1 to a single
// synchronous engine call. Adding a case here without extending every
// exhaustive switch over Intent is a compile-time-visible omission, which
// is the point of keeping the union closed.
type Intent interface{ isIntent() }

type (
	// ReplaceText replaces the current selection with typed text.
	ReplaceText struct{ Text string }
	// ReplaceRange replaces an explicit model range.
	ReplaceRange struct {
		Start, End int
		Text       string
	}
	// InsertParagraph splits the current block at the caret.
	InsertParagraph struct{}
	// Backspace deletes the selection, or one code point before a caret.
	Backspace struct{}
	// DeleteRange deletes an explicit model range.
	DeleteRange struct{ Start, End int }
	// ToggleInlineFormat toggles one inline format over the selection.
	ToggleInlineFormat struct{ Format InlineFormat }
	// ToggleList turns the selected blocks into (or out of) a list.
	ToggleList struct{ Ordered bool }
	// ToggleCodeBlock toggles the selected blocks between code and paragraph.
	ToggleCodeBlock struct{}
	// ToggleQuote toggles the selected blocks' quote membership.
	ToggleQuote struct{}
	// Undo reverts the last mutating intent.
	Undo struct{}
	// Redo re-applies the last undone intent.
	Redo struct{}
	// Indent moves the selected list items one level deeper.
	Indent struct{}
	// Unindent moves the selected list items one level out.
	Unindent struct{}
	// SetLink applies a link to the selected text.
	SetLink struct{ URL string }
	// RemoveLink removes any link from the selection.
	RemoveLink struct{}
	// InsertLink inserts new linked text at the caret.
	InsertLink struct{ URL, Text string }
	// InsertMention completes the active suggestion with an atomic
	// mention, or inserts one at the caret when no suggestion is open.
	// An empty URL inserts the at-room mention.
	InsertMention struct{ URL, Text string }
	// UpdateSelection moves the selection. Start/End may arrive backwards
	// from the host; the controller normalizes before the engine sees them.
	UpdateSelection struct{ Start, End int }
)

func (ReplaceText) isIntent()        {}
func (ReplaceRange) isIntent()       {}
func (InsertParagraph) isIntent()    {}
func (Backspace) isIntent()          {}
func (DeleteRange) isIntent()        {}
func (ToggleInlineFormat) isIntent() {}
func (ToggleList) isIntent()         {}
func (ToggleCodeBlock) isIntent()    {}
func (ToggleQuote) isIntent()        {}
func (Undo) isIntent()               {}
func (Redo) isIntent()               {}
func (Indent) isIntent()             {}
func (Unindent) isIntent()           {}
func (SetLink) isIntent()            {}
func (RemoveLink) isIntent()         {}
func (InsertLink) isIntent()         {}
func (InsertMention) isIntent()      {}
func (UpdateSelection) isIntent()    {}

// intentName labels an intent for logs. The switch is exhaustive over the
// closed union.
func intentName(in Intent) string {
	switch in := in.(type) {
	case ReplaceText:
		return "replace-text"
	case ReplaceRange:
		return "replace-range"
	case InsertParagraph:
		return "insert-paragraph"
	case Backspace:
		return "backspace"
	case DeleteRange:
		return "delete-range"
	case ToggleInlineFormat:
		return "toggle-inline-format." + in.Format.String()
	case ToggleList:
		if in.Ordered {
			return "toggle-list.ordered"
		}
		return "toggle-list.unordered"
	case ToggleCodeBlock:
		return "toggle-code-block"
	case ToggleQuote:
		return "toggle-quote"
	case Undo:
		return "undo"
	case Redo:
		return "redo"
	case Indent:
		return "indent"
	case Unindent:
		return "unindent"
	case SetLink:
		return "set-link"
	case RemoveLink:
		return "remove-link"
	case InsertLink:
		return "insert-link"
	case InsertMention:
		return "insert-mention"
	case UpdateSelection:
		return "update-selection"
	}
	return fmt.Sprintf("unknown(%T)", in)
}
