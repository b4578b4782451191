package page

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Node is a read-only view of one element (or the whole document)
type Node interface {
	// SelectAll returns every descendant matching selector, in document order
	SelectAll(selector string) []Node
	// SelectOne returns the first descendant matching selector
	SelectOne(selector string) (Node, bool)
	// Text returns the stripped text nodes of the subtree concatenated together
	Text() string
	// JoinedText returns the stripped, non-empty text nodes joined by sep
	JoinedText(sep string) string
	// Attr returns the value of the named attribute
	Attr(name string) (string, bool)
}

// Element is a Node backed by a goquery selection
type Element struct {
	sel *goquery.Selection
}

// Parse reads an HTML document. The reader must yield UTF-8.
func Parse(r io.Reader) (*Element, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Element{sel: doc.Selection}, nil
}

// ParseString is a convenience wrapper around Parse
func ParseString(s string) (*Element, error) {
	return Parse(strings.NewReader(s))
}

// SelectAll implements Node
func (e *Element) SelectAll(selector string) []Node {
	found := e.sel.Find(selector)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &Element{sel: s})
	})
	return nodes
}

// SelectOne implements Node
func (e *Element) SelectOne(selector string) (Node, bool) {
	found := e.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return &Element{sel: found}, true
}

// Text implements Node
func (e *Element) Text() string {
	return e.JoinedText("")
}

// JoinedText implements Node
func (e *Element) JoinedText(sep string) string {
	parts := make([]string, 0)
	for _, n := range e.sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, sep)
}

// Attr implements Node
func (e *Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// collectText appends every stripped, non-empty text node below n.
// Comments and other non-text nodes are ignored.
func collectText(n *html.Node, parts *[]string) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			*parts = append(*parts, s)
		}
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, parts)
	}
}

// ByID returns the first element of the given tag whose id attribute equals id.
// Quotes and backslashes in id are escaped for the attribute selector.
func ByID(n Node, tag, id string) (Node, bool) {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(id)
	return n.SelectOne(fmt.Sprintf(`%s[id="%s"]`, tag, escaped))
}
