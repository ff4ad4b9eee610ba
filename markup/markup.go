// Package markup parses and renders HTML produced by converters, keeping
// fragments as fragments and full documents as full documents.
package markup

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var fullDocument = regexp.MustCompile(`(?i)<\s*(!doctype|html[\s>]|body[\s>])`)

// Tree is parsed markup. For fragments Root is synthetic container which
// is never rendered, only its children are.
type Tree struct {
	Root     *html.Node
	Fragment bool
}

// IsFullDocument reports whether markup looks like complete HTML document
// rather than fragment.
func IsFullDocument(s string) bool {
	return fullDocument.MatchString(s)
}

// Parse builds tree from markup. Parsing is lenient and never fails on
// malformed input, error is returned only when reading fails.
func Parse(s string) (*Tree, error) {
	if IsFullDocument(s) {
		doc, err := html.Parse(strings.NewReader(s))
		if err != nil {
			return nil, err
		}
		return &Tree{Root: doc}, nil
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Tree{Root: root, Fragment: true}, nil
}

// Render serializes tree back to markup.
func (t *Tree) Render() (string, error) {
	var sb strings.Builder
	if !t.Fragment {
		if err := html.Render(&sb, t.Root); err != nil {
			return "", err
		}
		return sb.String(), nil
	}
	for c := t.Root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// Body returns node which holds visible content: body element for full
// documents and synthetic root for fragments.
func (t *Tree) Body() *html.Node {
	if t.Fragment {
		return t.Root
	}
	if b := FindFirst(t.Root, atom.Body); b != nil {
		return b
	}
	return t.Root
}

// Walk visits n and all its descendants in document order. Returning false
// from fn skips children of current node.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		// fn may detach c
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// Elements returns all element nodes under n (n excluded) in document order.
func Elements(n *html.Node) []*html.Node {
	var out []*html.Node
	Walk(n, func(c *html.Node) bool {
		if c != n && c.Type == html.ElementNode {
			out = append(out, c)
		}
		return true
	})
	return out
}

// FindFirst returns first descendant element with given atom.
func FindFirst(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	Walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if c.Type == html.ElementNode && c.DataAtom == a {
			found = c
			return false
		}
		return true
	})
	return found
}

// Attr returns attribute value (attribute names are case-insensitive).
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or adds attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: strings.ToLower(key), Val: val})
}

// HasClass reports whether class attribute of n contains class (case
// sensitive, as in HTML).
func HasClass(n *html.Node, class string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for c := range strings.FieldsSeq(v) {
		if c == class {
			return true
		}
	}
	return false
}

// Text returns concatenated text content of n.
func Text(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}
