package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// twips are 1/20 of a point, font sizes are in half points.
const (
	twipsPerPoint = 20.0
	emuPerPixel   = 9525
	lineUnit      = 240.0
)

// runFormat is character formatting accumulated from defaults, styles and
// direct run properties, later sources win.
type runFormat struct {
	bold, italic, underline, strike bool
	vertAlign                       string
	css                             map[string]string
}

func (f *runFormat) apply(rPr *etree.Element) {
	if rPr == nil {
		return
	}
	if f.css == nil {
		f.css = make(map[string]string)
	}
	for _, el := range rPr.ChildElements() {
		switch el.Tag {
		case "b":
			f.bold = toggle(el)
		case "i":
			f.italic = toggle(el)
		case "u":
			f.underline = val(el) != "none" && toggle(el)
		case "strike", "dstrike":
			f.strike = toggle(el)
		case "vertAlign":
			f.vertAlign = val(el)
		case "sz":
			if pt, ok := halfPoints(val(el)); ok {
				f.css["font-size"] = pt
			}
		case "rFonts":
			if font := fontName(el); font != "" {
				f.css["font-family"] = font
			}
		case "color":
			if c := val(el); c != "" && !strings.EqualFold(c, "auto") {
				f.css["color"] = "#" + strings.ToLower(c)
			}
		case "highlight":
			if c := val(el); c != "" && c != "none" {
				f.css["background-color"] = strings.ToLower(c)
			}
		case "shd":
			if c := el.SelectAttrValue("fill", ""); c != "" && !strings.EqualFold(c, "auto") {
				f.css["background-color"] = "#" + strings.ToLower(c)
			}
		case "smallCaps":
			setOrDelete(f.css, "font-variant", "small-caps", toggle(el))
		case "caps":
			setOrDelete(f.css, "text-transform", "uppercase", toggle(el))
		case "spacing":
			if pt, ok := twips(val(el)); ok && pt != "0pt" {
				f.css["letter-spacing"] = pt
			}
		}
	}
}

// declarations renders format as css. When inline is false emphasis is
// expressed through css too, it is used for paragraph level formatting.
func (f *runFormat) declarations(inline bool) map[string]string {
	out := make(map[string]string, len(f.css)+3)
	for k, v := range f.css {
		out[k] = v
	}
	if inline {
		return out
	}
	if f.bold {
		out["font-weight"] = "bold"
	}
	if f.italic {
		out["font-style"] = "italic"
	}
	var deco []string
	if f.underline {
		deco = append(deco, "underline")
	}
	if f.strike {
		deco = append(deco, "line-through")
	}
	if len(deco) > 0 {
		out["text-decoration"] = strings.Join(deco, " ")
	}
	return out
}

// paraFormat is paragraph formatting from styles and direct properties.
type paraFormat struct {
	css map[string]string
}

func (f *paraFormat) apply(pPr *etree.Element) {
	if pPr == nil {
		return
	}
	if f.css == nil {
		f.css = make(map[string]string)
	}
	for _, el := range pPr.ChildElements() {
		switch el.Tag {
		case "jc":
			if a := alignment(val(el)); a != "" {
				f.css["text-align"] = a
			}
		case "ind":
			f.indentation(el)
		case "spacing":
			f.spacing(el)
		case "shd":
			if c := el.SelectAttrValue("fill", ""); c != "" && !strings.EqualFold(c, "auto") {
				f.css["background-color"] = "#" + strings.ToLower(c)
			}
		case "pageBreakBefore":
			setOrDelete(f.css, "page-break-before", "always", toggle(el))
		case "keepNext":
			setOrDelete(f.css, "page-break-after", "avoid", toggle(el))
		}
	}
}

func (f *paraFormat) indentation(el *etree.Element) {
	if pt, ok := firstTwips(el, "left", "start"); ok {
		f.css["margin-left"] = pt
	}
	if pt, ok := firstTwips(el, "right", "end"); ok {
		f.css["margin-right"] = pt
	}
	if pt, ok := twips(el.SelectAttrValue("firstLine", "")); ok {
		f.css["text-indent"] = pt
	}
	if v := el.SelectAttrValue("hanging", ""); v != "" {
		if pt, ok := twips("-" + strings.TrimPrefix(v, "-")); ok {
			f.css["text-indent"] = pt
		}
	}
}

func (f *paraFormat) spacing(el *etree.Element) {
	if pt, ok := twips(el.SelectAttrValue("before", "")); ok {
		f.css["margin-top"] = pt
	}
	if pt, ok := twips(el.SelectAttrValue("after", "")); ok {
		f.css["margin-bottom"] = pt
	}
	line := el.SelectAttrValue("line", "")
	if line == "" {
		return
	}
	n, err := strconv.ParseFloat(line, 64)
	if err != nil || n <= 0 {
		return
	}
	switch el.SelectAttrValue("lineRule", "auto") {
	case "exact", "atLeast":
		f.css["line-height"] = formatNumber(n/twipsPerPoint) + "pt"
	default:
		f.css["line-height"] = formatNumber(n / lineUnit)
	}
}

func alignment(v string) string {
	switch v {
	case "left", "start":
		return "left"
	case "right", "end":
		return "right"
	case "center":
		return "center"
	case "both", "distribute":
		return "justify"
	}
	return ""
}

func fontName(el *etree.Element) string {
	for _, a := range []string{"ascii", "hAnsi", "cs", "eastAsia"} {
		if v := el.SelectAttrValue(a, ""); v != "" {
			if strings.ContainsAny(v, " ") {
				return `"` + v + `"`
			}
			return v
		}
	}
	return ""
}

func twips(v string) (string, bool) {
	if v == "" {
		return "", false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return "", false
	}
	return formatNumber(n/twipsPerPoint) + "pt", true
}

func firstTwips(el *etree.Element, attrs ...string) (string, bool) {
	for _, a := range attrs {
		if pt, ok := twips(el.SelectAttrValue(a, "")); ok {
			return pt, true
		}
	}
	return "", false
}

func halfPoints(v string) (string, bool) {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n <= 0 {
		return "", false
	}
	return formatNumber(n/2) + "pt", true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func setOrDelete(m map[string]string, key, value string, on bool) {
	if on {
		m[key] = value
		return
	}
	delete(m, key)
}
