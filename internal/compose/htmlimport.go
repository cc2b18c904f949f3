package compose

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xonecas/composer/internal/projection"
)

// SetContentHTML replaces the whole document with the given markup. The
// input is expected to be sanitized already; unknown elements degrade to
// their text content rather than failing the import. Undo history does not
// survive a content load.
func (e *ReferenceEngine) SetContentHTML(markup string) error {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return fmt.Errorf("parse html content: %w", err)
	}

	imp := &htmlImporter{engine: e}
	for _, n := range nodes {
		imp.blockNode(n, blockContext{})
	}
	imp.flush(blockContext{})

	if len(imp.blocks) == 0 {
		imp.blocks = []refBlock{{id: e.newID(), kind: projection.Paragraph}}
	}
	e.blocks = imp.blocks
	e.undo = nil
	e.redo = nil
	clear(e.pending)
	e.renumberLists()
	end := e.docLen()
	e.sel = projection.Range{Start: end, End: end}
	return nil
}

// blockContext carries the enclosing structure while walking: quote
// membership, list kind, and code-block mode.
type blockContext struct {
	inQuote bool
	list    bool
	ordered bool
	indent  int
	code    bool
	lang    string
}

type htmlImporter struct {
	engine *ReferenceEngine
	blocks []refBlock

	// current accumulates inline content until the next block boundary.
	current []refRun
	open    bool
}

func (imp *htmlImporter) flush(ctx blockContext) {
	if !imp.open {
		return
	}
	kind := projection.Paragraph
	switch {
	case ctx.code:
		kind = projection.CodeBlock
	case ctx.list:
		kind = projection.ListItem
	case ctx.inQuote:
		kind = projection.Quote
	}
	b := refBlock{
		id:      imp.engine.newID(),
		kind:    kind,
		ordered: ctx.list && ctx.ordered,
		inQuote: ctx.inQuote && kind != projection.Quote,
		lang:    ctx.lang,
		indent:  ctx.indent,
		runs:    imp.current,
	}
	coalesce(&b)
	if !ctx.code {
		trimBlockEdges(&b)
	}
	imp.blocks = append(imp.blocks, b)
	imp.current = nil
	imp.open = false
}

// blockNode handles one node at block level.
func (imp *htmlImporter) blockNode(n *html.Node, ctx blockContext) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return
		}
		imp.inlineText(n.Data, projection.AttributeSet{}, ctx)
	case html.ElementNode:
		switch n.Data {
		case "p":
			imp.flush(ctx)
			imp.open = true
			imp.inlineChildren(n, projection.AttributeSet{}, ctx)
			imp.flush(ctx)
		case "blockquote":
			imp.flush(ctx)
			inner := ctx
			inner.inQuote = true
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				imp.blockNode(c, inner)
			}
			imp.flush(inner)
		case "ul", "ol":
			imp.flush(ctx)
			inner := ctx
			inner.list = true
			inner.ordered = n.Data == "ol"
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				imp.blockNode(c, inner)
			}
		case "li":
			imp.flush(ctx)
			imp.open = true
			imp.inlineChildren(n, projection.AttributeSet{}, ctx)
			imp.flush(ctx)
		case "pre":
			imp.flush(ctx)
			inner := ctx
			inner.code = true
			inner.lang = codeLanguage(n)
			imp.open = true
			imp.inlineText(textContent(n), projection.AttributeSet{}, inner)
			imp.flush(inner)
		case "br":
			imp.flush(ctx)
		default:
			// Inline element at block level: open an implicit paragraph.
			imp.inlineNode(n, projection.AttributeSet{}, ctx)
		}
	}
}

func (imp *htmlImporter) inlineChildren(n *html.Node, attrs projection.AttributeSet, ctx blockContext) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		imp.inlineNode(c, attrs, ctx)
	}
}

func (imp *htmlImporter) inlineNode(n *html.Node, attrs projection.AttributeSet, ctx blockContext) {
	switch n.Type {
	case html.TextNode:
		imp.inlineText(n.Data, attrs, ctx)
	case html.ElementNode:
		switch n.Data {
		case "b", "strong":
			attrs.Bold = true
		case "i", "em":
			attrs.Italic = true
		case "u":
			attrs.Underline = true
		case "del":
			attrs.StrikeThrough = true
		case "code":
			attrs.InlineCode = true
		case "br":
			// A line break inside a paragraph splits the block.
			imp.flush(ctx)
			imp.open = true
			return
		case "a":
			if attrValue(n, "data-mention-type") != "" {
				text := strings.TrimSpace(textContent(n))
				if text != "" {
					imp.open = true
					imp.current = append(imp.current, refRun{
						mention: &refMention{url: attrValue(n, "href"), display: text},
					})
				}
				return
			}
			attrs.LinkURL = attrValue(n, "href")
		}
		imp.inlineChildren(n, attrs, ctx)
	}
}

func (imp *htmlImporter) inlineText(text string, attrs projection.AttributeSet, ctx blockContext) {
	if !ctx.code {
		text = collapseWhitespace(text)
	} else {
		text = strings.TrimSuffix(text, "\n")
	}
	if text == "" {
		return
	}
	if ctx.code {
		attrs = projection.AttributeSet{}
	}
	imp.open = true
	imp.current = append(imp.current, refRun{attrs: attrs, units: projection.UTF16Units(text)})
}

// collapseWhitespace folds runs of whitespace to single spaces, the way a
// browser lays out non-preformatted text. Boundary spaces survive so
// adjacent inline chunks keep their separation; flush trims block edges.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// codeLanguage reads the language hint off <pre><code class="language-x">.
func codeLanguage(pre *html.Node) string {
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			for _, cls := range strings.Fields(attrValue(c, "class")) {
				if lang, ok := strings.CutPrefix(cls, "language-"); ok {
					return lang
				}
			}
		}
	}
	return ""
}

// trimBlockEdges strips the leading and trailing space left over from
// whitespace collapsing. Interior spaces stay.
func trimBlockEdges(b *refBlock) {
	if len(b.runs) > 0 {
		if first := &b.runs[0]; first.mention == nil {
			for len(first.units) > 0 && first.units[0] == ' ' {
				first.units = first.units[1:]
			}
		}
	}
	if len(b.runs) > 0 {
		if last := &b.runs[len(b.runs)-1]; last.mention == nil {
			for len(last.units) > 0 && last.units[len(last.units)-1] == ' ' {
				last.units = last.units[:len(last.units)-1]
			}
		}
	}
	coalesce(b)
}
