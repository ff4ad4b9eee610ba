package postprocess

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"docconv/markup"
)

// PxToPt is pixel to point ratio used when converting font sizes. It is a
// heuristic policy value (96dpi screen), not a property of documents.
const PxToPt = 0.75

// NormalizeUnits converts font-size declarations expressed in pixels into
// points, keeping precision of the source value. Only style attributes and
// style blocks are looked at, text content is never touched. Point values
// are left alone, so repeated runs are no-op.
func NormalizeUnits(s string) string {
	if !strings.Contains(strings.ToLower(s), "px") {
		return s
	}
	tree, err := markup.Parse(s)
	if err != nil {
		return s
	}
	if !normalizeUnits(tree.Root) {
		return s
	}
	out, err := tree.Render()
	if err != nil {
		return s
	}
	return out
}

func normalizeUnits(root *html.Node) bool {
	return rewriteDeclarations(root, pxToPt)
}

func pxToPt(property, value string) (string, bool) {
	if property != "font-size" {
		return "", false
	}
	num, ok := pixels(value)
	if !ok {
		return "", false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return "", false
	}
	return formatLike(v*PxToPt, num) + "pt", true
}

// pixels returns numeric part of plain "<number>px" value.
func pixels(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if len(value) < 3 || !strings.EqualFold(value[len(value)-2:], "px") {
		return "", false
	}
	num := value[:len(value)-2]
	digits, dots := 0, 0
	for _, r := range num {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return "", false
		}
	}
	if digits == 0 || dots > 1 || strings.HasSuffix(num, ".") {
		return "", false
	}
	return num, true
}

// formatLike formats v with the same number of decimals src has, rounding
// half away from zero.
func formatLike(v float64, src string) string {
	decimals := 0
	if _, frac, ok := strings.Cut(src, "."); ok {
		decimals = len(frac)
	}
	scale := math.Pow10(decimals)
	return strconv.FormatFloat(math.Round(v*scale)/scale, 'f', decimals, 64)
}
