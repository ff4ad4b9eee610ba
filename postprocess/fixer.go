// Package postprocess repairs known defects of converter output: unit
// drift, missing font fallbacks, degenerate line heights and page
// header/footer bleed.
package postprocess

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docconv/config"
	"docconv/css"
	"docconv/markup"
)

// Line height clamp policy: values outside [LineHeightMin, LineHeightMax]
// are replaced with LineHeightFloor or LineHeightCeiling.
const (
	LineHeightMin     = 1.0
	LineHeightMax     = 3.0
	LineHeightFloor   = 1.0
	LineHeightCeiling = 2.0
)

const defaultReserve = "72pt"

// Options selects which fixes are applied.
type Options struct {
	FixLineHeight     bool
	FixHeadersFooters bool
	FixFontFallbacks  bool
	PreservePtUnits   bool
	HeaderReserve     string
	FooterReserve     string
}

// DefaultOptions has every fix enabled.
func DefaultOptions() Options {
	return Options{
		FixLineHeight:     true,
		FixHeadersFooters: true,
		FixFontFallbacks:  true,
		PreservePtUnits:   true,
		HeaderReserve:     defaultReserve,
		FooterReserve:     defaultReserve,
	}
}

func OptionsFromConfig(cfg *config.PostProcessConfig) Options {
	return Options{
		FixLineHeight:     cfg.FixLineHeight,
		FixHeadersFooters: cfg.FixHeadersFooters,
		FixFontFallbacks:  cfg.FixFontFallbacks,
		PreservePtUnits:   cfg.PreservePtUnits,
		HeaderReserve:     cfg.HeaderReserve,
		FooterReserve:     cfg.FooterReserve,
	}
}

// Fix runs enabled passes over markup. Disabled passes leave their concern
// untouched and when nothing changes input is returned as is.
func Fix(s string, opts Options) string {
	if !opts.PreservePtUnits && !opts.FixLineHeight && !opts.FixHeadersFooters && !opts.FixFontFallbacks {
		return s
	}

	tree, err := markup.Parse(s)
	if err != nil {
		return s
	}

	changed := false
	if opts.PreservePtUnits && normalizeUnits(tree.Root) {
		changed = true
	}
	if opts.FixLineHeight && clampLineHeights(tree.Root) {
		changed = true
	}
	if opts.FixHeadersFooters && reserveHeaderFooter(tree.Body(), opts) {
		changed = true
	}
	if opts.FixFontFallbacks && resolveFonts(tree.Root) {
		changed = true
	}
	if !changed {
		return s
	}

	out, err := tree.Render()
	if err != nil {
		return s
	}
	return out
}

// ClampLineHeight applies clamp policy to unitless line height. Values
// inside the allowed range are reported unchanged.
func ClampLineHeight(v float64) (float64, bool) {
	switch {
	case v < LineHeightMin:
		return LineHeightFloor, true
	case v > LineHeightMax:
		return LineHeightCeiling, true
	}
	return v, false
}

func clampLineHeights(root *html.Node) bool {
	changed := false
	markup.Walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		style, ok := markup.Attr(n, "style")
		if !ok || !strings.Contains(strings.ToLower(style), "line-height") {
			return true
		}
		if v, ok := css.RewriteInline(style, clampDeclaration); ok {
			markup.SetAttr(n, "style", v)
			changed = true
		}
		return true
	})
	return changed
}

func clampDeclaration(property, value string) (string, bool) {
	if property != "line-height" {
		return "", false
	}
	// only unitless numbers, "normal", percentages and lengths are kept
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return "", false
	}
	if clamped, ok := ClampLineHeight(v); ok {
		return strconv.FormatFloat(clamped, 'f', -1, 64), true
	}
	return "", false
}

func reserveHeaderFooter(body *html.Node, opts Options) bool {
	var hasHeader, hasFooter bool
	markup.Walk(body, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			h, f := pageRegion(n)
			hasHeader = hasHeader || h
			hasFooter = hasFooter || f
		}
		return !(hasHeader && hasFooter)
	})
	if !hasHeader && !hasFooter {
		return false
	}

	target := firstContentElement(body)
	if target == nil {
		return false
	}

	style, _ := markup.Attr(target, "style")
	decls := css.ParseInline(style)

	var add []string
	if hasHeader {
		add = appendReserve(add, decls, "margin-top", reserve(opts.HeaderReserve))
	}
	if hasFooter {
		add = appendReserve(add, decls, "margin-bottom", reserve(opts.FooterReserve))
	}
	if len(add) == 0 {
		return false
	}
	markup.SetAttr(target, "style", css.Append(style, strings.Join(add, "; ")))
	return true
}

// appendReserve adds margin declaration unless element already carries the
// same value.
func appendReserve(add []string, decls []css.Declaration, property, value string) []string {
	if v, ok := css.Lookup(decls, property); ok && v == value {
		return add
	}
	return append(add, property+": "+value)
}

// pageRegion reports whether element class marks it as page header or
// footer.
func pageRegion(n *html.Node) (header, footer bool) {
	class, ok := markup.Attr(n, "class")
	if !ok {
		return false, false
	}
	class = strings.ToLower(class)
	return strings.Contains(class, "header"), strings.Contains(class, "footer")
}

func firstContentElement(body *html.Node) *html.Node {
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Style, atom.Script, atom.Meta, atom.Link, atom.Title:
			continue
		}
		if h, f := pageRegion(c); h || f {
			continue
		}
		return c
	}
	return nil
}

func reserve(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return defaultReserve
	}
	return v
}
