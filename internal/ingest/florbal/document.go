package florbal

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is the read-only view of an element that the extractors work against.
// Find and First take CSS selectors; results are in document order.
type Node interface {
	Find(selector string) []Node
	// First returns nil when nothing matches.
	First(selector string) Node
	// Closest walks up from the node itself; nil when no ancestor matches.
	Closest(selector string) Node
	Attr(name string) (string, bool)
	ID() string
	// Text is the trimmed text content of the node and its descendants.
	Text() string
	// IsLeaf reports whether the node has no element children.
	IsLeaf() bool
}

// ParseHTML converts raw HTML into a traversable document.
func ParseHTML(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return selection{doc.Selection}, nil
}

// ParseHTMLString is ParseHTML for an in-memory page.
func ParseHTMLString(html string) (Node, error) {
	return ParseHTML(strings.NewReader(html))
}

type selection struct {
	s *goquery.Selection
}

func (n selection) Find(selector string) []Node {
	found := n.s.Find(selector)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, selection{s})
	})
	return nodes
}

func (n selection) First(selector string) Node {
	found := n.s.Find(selector).First()
	if found.Length() == 0 {
		return nil
	}
	return selection{found}
}

func (n selection) Closest(selector string) Node {
	found := n.s.Closest(selector)
	if found.Length() == 0 {
		return nil
	}
	return selection{found}
}

func (n selection) Attr(name string) (string, bool) {
	return n.s.Attr(name)
}

func (n selection) ID() string {
	return n.s.AttrOr("id", "")
}

func (n selection) Text() string {
	return strings.TrimSpace(n.s.Text())
}

func (n selection) IsLeaf() bool {
	return n.s.Children().Length() == 0
}

// firstText returns the text of the first match of selector, or "".
func firstText(n Node, selector string) string {
	if found := n.First(selector); found != nil {
		return found.Text()
	}
	return ""
}
