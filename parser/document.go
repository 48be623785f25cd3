// Package parser turns fetched marketplace pages into stubs, crawl plans and
// product records. It never performs network I/O.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Document answers XPath queries against a parsed HTML page or a node
// inside one. A nil Document matches nothing.
type Document struct {
	root *html.Node
}

// ParseHTML parses page content into a queryable document.
func ParseHTML(r io.Reader) (*Document, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// Find returns every node matching expr as a document rooted at that node,
// so relative expressions can be evaluated against it.
func (d *Document) Find(expr *xpath.Expr) []*Document {
	nodes := d.query(expr)
	out := make([]*Document, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Document{root: n})
	}
	return out
}

// Texts returns the text of every match in document order, duplicates
// included. Attribute matches yield the attribute value.
func (d *Document) Texts(expr *xpath.Expr) []string {
	if d == nil || d.root == nil || expr == nil {
		return nil
	}
	var out []string
	it := expr.Select(htmlquery.CreateXPathNavigator(d.root))
	for it.MoveNext() {
		out = append(out, it.Current().Value())
	}
	return out
}

// FirstText returns the first match trimmed of surrounding whitespace, or ""
// when nothing matches.
func (d *Document) FirstText(expr *xpath.Expr) string {
	texts := d.Texts(expr)
	if len(texts) == 0 {
		return ""
	}
	return strings.TrimSpace(texts[0])
}

// FirstMarkup returns the outer HTML of the first match, or "".
func (d *Document) FirstMarkup(expr *xpath.Expr) string {
	nodes := d.query(expr)
	if len(nodes) == 0 {
		return ""
	}
	return htmlquery.OutputHTML(nodes[0], true)
}

func (d *Document) query(expr *xpath.Expr) []*html.Node {
	if d == nil || d.root == nil || expr == nil {
		return nil
	}
	return htmlquery.QuerySelectorAll(d.root, expr)
}
