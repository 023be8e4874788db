// Package html wraps golang.org/x/net/html with a document tree that is
// convenient for layout: parent/sibling links plus attribute and text
// helpers used by the capture renderer and the break analyzer.
package html

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parser represents an HTML parser
type Parser struct{}

// Node represents an HTML node in the document tree
type Node struct {
	Type        html.NodeType
	Data        string
	Attr        []html.Attribute
	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node
}

// Document represents a parsed HTML document
type Document struct {
	Root *Node
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(content string) (*Document, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses HTML from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := convertNode(node, nil)
	return &Document{Root: root}, nil
}

// convertNode converts an html.Node to our Node structure
func convertNode(n *html.Node, parent *Node) *Node {
	if n == nil {
		return nil
	}

	node := &Node{
		Type:   n.Type,
		Data:   n.Data,
		Attr:   n.Attr,
		Parent: parent,
	}

	var lastChild *Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		child := convertNode(c, node)
		if node.FirstChild == nil {
			node.FirstChild = child
		}
		if lastChild != nil {
			lastChild.NextSibling = child
			child.PrevSibling = lastChild
		}
		lastChild = child
	}
	node.LastChild = lastChild

	return node
}

// IsElement reports whether the node is an element with the given tag
func (n *Node) IsElement(tag string) bool {
	return n != nil && n.Type == html.ElementNode && strings.EqualFold(n.Data, tag)
}

// Tag returns the lowercased element name, or "" for non-elements
func (n *Node) Tag() string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// AttrValue returns the value of the named attribute, or "" when absent
func (n *Node) AttrValue(name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

// Classes returns the class attribute split into individual class names
func (n *Node) Classes() []string {
	raw := n.AttrValue("class")
	if raw == "" {
		return nil
	}
	return strings.Fields(raw)
}

// Text returns the concatenated text content of the node and its
// descendants with runs of whitespace collapsed to single spaces.
func (n *Node) Text() string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur == nil {
			return
		}
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
			b.WriteByte(' ')
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Find returns the first descendant element with the given tag, searching
// depth-first, or nil.
func (n *Node) Find(tag string) *Node {
	if n == nil {
		return nil
	}
	if n.IsElement(tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := c.Find(tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns all descendant elements with the given tag in document order
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur == nil {
			return
		}
		if cur.IsElement(tag) {
			out = append(out, cur)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Body returns the document's <body> element, or the root when missing
func (d *Document) Body() *Node {
	if d == nil || d.Root == nil {
		return nil
	}
	if body := d.Root.Find("body"); body != nil {
		return body
	}
	return d.Root
}
