// Package sanitize strips converter output down to allow-listed markup.
package sanitize

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// textElements are block and inline elements carrying document content.
var textElements = []string{
	"p", "div", "span", "br", "hr", "blockquote", "pre", "code",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"strong", "b", "em", "i", "u", "s", "strike", "del", "ins",
	"sub", "sup", "small", "big", "mark", "font", "center",
	"ul", "ol", "li", "dl", "dt", "dd",
	"header", "footer", "section", "article", "main", "aside", "nav",
	"figure", "figcaption",
	"a", "img",
}

var tableElements = []string{
	"table", "thead", "tbody", "tfoot", "tr", "td", "th",
	"caption", "col", "colgroup",
}

// Policy returns shared policy. bluemonday policies are safe for concurrent
// use once built.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = newPolicy()
	})
	return policy
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(textElements...)
	p.AllowElements(tableElements...)

	// style blocks carry converter stylesheet, bluemonday requires explicit
	// opt-in to keep their text
	p.AllowUnsafe(true)
	p.AllowElements("style")

	// values of these are preserved as is, no style sanitizing
	p.AllowAttrs("style", "class", "id", "lang", "dir", "title").Globally()
	p.AllowAttrs("href", "name", "target").OnElements("a")
	p.AllowAttrs("src", "alt", "width", "height").OnElements("img")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("align", "valign", "width", "height", "border", "cellpadding", "cellspacing", "bgcolor").
		OnElements("table", "tr", "td", "th", "col", "colgroup", "thead", "tbody", "tfoot")
	p.AllowAttrs("span").OnElements("col", "colgroup")
	p.AllowAttrs("start", "type").OnElements("ol")
	p.AllowAttrs("align").OnElements("p", "div", "h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("face", "size", "color").OnElements("font")

	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.AllowDataURIImages()
	p.RequireParseableURLs(true)

	return p
}

// Sanitize returns allow-listed version of raw markup. It is deterministic
// and never fails, malformed input is cleaned on best effort basis.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return Policy().Sanitize(raw)
}

// Attributes returns subset of attrs the policy keeps on element tag. Names
// are lower-cased, values of kept attributes are not changed.
func Attributes(tag string, attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(tag)
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		if !attributeName(k) {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(attrs[k]))
		sb.WriteByte('"')
	}
	sb.WriteString(">x</")
	sb.WriteString(tag)
	sb.WriteByte('>')

	z := html.NewTokenizer(strings.NewReader(Policy().Sanitize(sb.String())))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			if t.Data != strings.ToLower(tag) {
				continue
			}
			kept := make(map[string]string, len(t.Attr))
			for _, a := range t.Attr {
				kept[a.Key] = a.Val
			}
			return kept
		}
	}
}

func attributeName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '_'):
		default:
			return false
		}
	}
	return true
}
