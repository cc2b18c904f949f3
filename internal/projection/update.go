package projection

// TextUpdate is the closed union of view instructions returned by every
// engine call: Keep, ReplaceAll, or Select.
type TextUpdate interface{ isTextUpdate() }

// Keep means the view already matches the document; no visual change.
type Keep struct{}

// ReplaceAll carries the full canonical text and the selection that should
// hold after the view is reconciled. The view patches itself against Text
// (diff or full replace) rather than trusting its own content.
type ReplaceAll struct {
	Text  string
	Start int
	End   int
}

// Select moves the selection without any content change. Start/End are
// canonical: the engine has already normalized backwards selections.
type Select struct {
	Start int
	End   int
}

func (Keep) isTextUpdate()       {}
func (ReplaceAll) isTextUpdate() {}
func (Select) isTextUpdate()     {}

// ActionState is the tri-state availability of a formatting action.
type ActionState int

const (
	Enabled ActionState = iota
	Disabled
	Reversed // currently active / toggled on
)

func (s ActionState) String() string {
	switch s {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	case Reversed:
		return "reversed"
	}
	return "unknown"
}

// ActionID names a formatting action in the menu-state map.
type ActionID string

const (
	ActionBold          ActionID = "bold"
	ActionItalic        ActionID = "italic"
	ActionStrikeThrough ActionID = "strikeThrough"
	ActionUnderline     ActionID = "underline"
	ActionInlineCode    ActionID = "inlineCode"
	ActionLink          ActionID = "link"
	ActionOrderedList   ActionID = "orderedList"
	ActionUnorderedList ActionID = "unorderedList"
	ActionCodeBlock     ActionID = "codeBlock"
	ActionQuote         ActionID = "quote"
	ActionIndent        ActionID = "indent"
	ActionUnindent      ActionID = "unindent"
	ActionUndo          ActionID = "undo"
	ActionRedo          ActionID = "redo"
)

// MenuStateUpdate carries only the entries that changed since the last
// engine call; absent keys keep their prior state.
type MenuStateUpdate map[ActionID]ActionState

// SuggestionPattern reports that the text around the caret looks like the
// start of a mention or command, for the host's autocomplete UI. Key is one
// of '@', '#', '/'.
type SuggestionPattern struct {
	Key   rune
	Text  string
	Range Range
}
