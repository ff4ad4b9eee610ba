package fidelity

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docconv/css"
	"docconv/markup"
)

// QualityReport is derived snapshot of formatting signals in markup.
type QualityReport struct {
	HasInlineStyles       bool `json:"hasInlineStyles"`
	HasPtUnits            bool `json:"hasPtUnits"`
	HasMsoMarkupArtifacts bool `json:"hasMsoMarkupArtifacts"`
	HasTextIndent         bool `json:"hasTextIndent"`
	HasMargins            bool `json:"hasMargins"`
	FontCount             int  `json:"fontCount"`
	StyledElementCount    int  `json:"styledElementCount"`
}

var (
	ptUnit       = regexp.MustCompile(`(?i)\d(\.\d+)?pt\b`)
	msoArtifacts = regexp.MustCompile(`(?i)(mso-[a-z-]+\s*:|class\s*=\s*["']?mso|<o:p[\s>/])`)
	margins      = regexp.MustCompile(`(?i)margin(-(left|right|top|bottom))?\s*:`)
)

// Analyze computes quality report for markup.
func Analyze(s string) QualityReport {
	lower := strings.ToLower(s)
	r := QualityReport{
		HasInlineStyles:       inlineStyle.MatchString(lower),
		HasPtUnits:            ptUnit.MatchString(lower),
		HasMsoMarkupArtifacts: msoArtifacts.MatchString(lower),
		HasTextIndent:         strings.Contains(lower, "text-indent"),
		HasMargins:            margins.MatchString(lower),
	}

	tree, err := markup.Parse(s)
	if err != nil {
		return r
	}

	fonts := make(map[string]struct{})
	collect := func(property, value string) (string, bool) {
		if property == "font-family" {
			if first, _, _ := strings.Cut(value, ","); first != "" {
				fonts[strings.ToLower(strings.Trim(strings.TrimSpace(first), `"'`))] = struct{}{}
			}
		}
		return "", false
	}

	markup.Walk(tree.Root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if n.DataAtom == atom.Style {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					css.RewriteStylesheet(c.Data, collect)
				}
			}
			return false
		}
		if style, ok := markup.Attr(n, "style"); ok && strings.TrimSpace(style) != "" {
			r.StyledElementCount++
			css.RewriteInline(style, collect)
		}
		if face, ok := markup.Attr(n, "face"); ok && n.DataAtom == atom.Font {
			collect("font-family", face)
		}
		return true
	})
	r.FontCount = len(fonts)
	return r
}
