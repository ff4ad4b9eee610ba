package postprocess

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docconv/css"
	"docconv/markup"
)

// fontFallbacks maps lower-cased font names to fallback chain appended
// after the original name.
var fontFallbacks = map[string]string{
	"calibri":         "Carlito, Arial, sans-serif",
	"arial":           "Helvetica, sans-serif",
	"helvetica":       "Arial, sans-serif",
	"times new roman": "Times, serif",
	"cambria":         "Caladea, Georgia, serif",
	"georgia":         `"Times New Roman", serif`,
}

// FontFallback returns fallback chain for known font name.
func FontFallback(name string) (string, bool) {
	chain, ok := fontFallbacks[strings.ToLower(strings.TrimSpace(unquote(name)))]
	return chain, ok
}

// ResolveFontFallbacks rewrites font-family declarations naming a single
// known font into declarations carrying a fallback chain. Declarations
// which already list several families and unknown fonts are not touched.
func ResolveFontFallbacks(s string) string {
	tree, err := markup.Parse(s)
	if err != nil {
		return s
	}
	if !resolveFonts(tree.Root) {
		return s
	}
	out, err := tree.Render()
	if err != nil {
		return s
	}
	return out
}

func resolveFonts(root *html.Node) bool {
	return rewriteDeclarations(root, withFallback)
}

// rewriteDeclarations applies fn to declarations of style attributes and
// style blocks under root.
func rewriteDeclarations(root *html.Node, fn css.RewriteFunc) bool {
	changed := false
	markup.Walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if n.DataAtom == atom.Style {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.TextNode {
					continue
				}
				if v, ok := css.RewriteStylesheet(c.Data, fn); ok {
					c.Data = v
					changed = true
				}
			}
			return false
		}
		if style, ok := markup.Attr(n, "style"); ok {
			if v, ok := css.RewriteInline(style, fn); ok {
				markup.SetAttr(n, "style", v)
				changed = true
			}
		}
		return true
	})
	return changed
}

func withFallback(property, value string) (string, bool) {
	if property != "font-family" || strings.Contains(value, ",") {
		return "", false
	}
	chain, ok := FontFallback(value)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value) + ", " + chain, true
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
