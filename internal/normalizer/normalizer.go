package normalizer

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// Elements whose subtree never carries page prose.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Aside:    true,
	atom.Form:     true,
	atom.Button:   true,
	atom.Select:   true,
	atom.Iframe:   true,
}

// Normalizer turns fetched HTML into visible, boilerplate-free prose.
// It holds only immutable state and is safe for concurrent use.
type Normalizer struct {
	chrome []string
}

// New returns a Normalizer removing each literal in uiChrome.
func New(uiChrome []string) *Normalizer {
	chrome := make([]string, 0, len(uiChrome))
	for _, c := range uiChrome {
		if c = norm.NFC.String(c); c != "" {
			chrome = append(chrome, c)
		}
	}
	return &Normalizer{chrome: chrome}
}

// Normalize extracts visible text, removes UI chrome literals exactly (no
// separator is left in their place) and collapses whitespace.
// Input without markup is handled the same way.
func (n *Normalizer) Normalize(raw string) string {
	text := collapse(visibleText(raw))
	text = norm.NFC.String(text)
	for _, c := range n.chrome {
		text = strings.ReplaceAll(text, c, "")
	}
	return collapse(text)
}

func visibleText(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.ElementNode:
			if skipped[node.DataAtom] {
				return
			}
		case html.TextNode:
			b.WriteString(node.Data)
			b.WriteByte(' ')
			return
		case html.CommentNode, html.DoctypeNode:
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
