package patch

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"docconv/markup"
)

// Only simple selectors are accepted: "tag", "tag.class" or ".class".
var selectorRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*)?(?:\.([A-Za-z0-9_-]+))?$`)

// selector matches elements by tag name and class. It implements
// goquery.Matcher so selection never goes through CSS selector evaluation.
type selector struct {
	tag   string
	class string
}

func parseSelector(s string) (selector, error) {
	s = strings.TrimSpace(s)
	m := selectorRe.FindStringSubmatch(s)
	if s == "" || m == nil {
		return selector{}, fmt.Errorf("unsupported selector %q", s)
	}
	return selector{tag: strings.ToLower(m[1]), class: m[2]}, nil
}

func (sel selector) String() string {
	if sel.class == "" {
		return sel.tag
	}
	return sel.tag + "." + sel.class
}

func (sel selector) Match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if sel.tag != "" && !strings.EqualFold(n.Data, sel.tag) {
		return false
	}
	return sel.class == "" || markup.HasClass(n, sel.class)
}

func (sel selector) MatchAll(n *html.Node) []*html.Node {
	var out []*html.Node
	markup.Walk(n, func(c *html.Node) bool {
		if sel.Match(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

func (sel selector) Filter(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if sel.Match(n) {
			out = append(out, n)
		}
	}
	return out
}
