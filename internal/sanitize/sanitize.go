// Package sanitize applies the fixed markup allow-list to untrusted HTML
// before it reaches the document engine. Disallowed markup is stripped,
// never rejected: the output is always well-formed with respect to the
// allow-list.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// allowedTags is the fixed set of element names that survive sanitization.
var allowedTags = map[string]bool{
	"a": true, "b": true, "strong": true, "i": true, "em": true,
	"u": true, "del": true, "code": true, "ul": true, "ol": true,
	"li": true, "pre": true, "blockquote": true, "p": true, "br": true,
}

// allowedAttrs maps element name to the attributes kept on it. Everything
// else is dropped.
var allowedAttrs = map[string]map[string]bool{
	"a":  {"href": true, "data-mention-type": true, "contenteditable": true},
	"ol": {"start": true},
}

// droppedSubtrees are elements whose content is never document text; they
// are removed wholesale instead of being unwrapped.
var droppedSubtrees = map[string]bool{
	"script": true, "style": true, "head": true, "title": true,
	"iframe": true, "object": true, "noscript": true, "template": true,
}

// voidTags render without a closing tag.
var voidTags = map[string]bool{"br": true}

// HTML filters input against the allow-list. Allowed elements keep their
// allowed attributes; disallowed elements are unwrapped so their children
// survive; dangerous subtrees are dropped. Parse problems degrade to
// escaped text rather than an error.
func HTML(input string) string {
	nodes, err := html.ParseFragment(strings.NewReader(input), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return html.EscapeString(input)
	}
	var b strings.Builder
	for _, n := range nodes {
		writeNode(&b, n)
	}
	return b.String()
}

func writeNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
		return
	case html.ElementNode:
		// handled below
	default:
		// Comments, doctypes and friends carry no document text.
		return
	}

	name := strings.ToLower(n.Data)
	if droppedSubtrees[name] {
		return
	}
	if !allowedTags[name] {
		// Unwrap: the element goes away, its children stay.
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(b, c)
		}
		return
	}

	b.WriteByte('<')
	b.WriteString(name)
	for _, attr := range n.Attr {
		if !allowedAttrs[name][strings.ToLower(attr.Key)] {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(attr.Key))
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidTags[name] {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(b, c)
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}
