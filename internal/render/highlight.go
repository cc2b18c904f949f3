package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightCode renders code-block text through Chroma. ok == false on any
// lexer/formatter problem; the caller falls back to the plain code style.
// The visible text is unchanged, only color escapes are added.
func highlightCode(text, language, theme string) (string, bool) {
	lex := lexers.Get(language)
	if lex == nil {
		return "", false
	}
	lex = chroma.Coalesce(lex)

	sty := styles.Get(theme)
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}

	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return "", false
	}
	var b strings.Builder
	if err := fmtr.Format(&b, sty, it); err != nil {
		return "", false
	}
	// Chroma appends a newline the source never had.
	return strings.TrimSuffix(b.String(), "\n"), true
}
