// Package debug produces human readable dumps used in debug reports.
package debug

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/net/html"
)

// maxText limits text node dumps.
const maxText = 80

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Counts writes map in natural key order, one "key: value" per line.
func (tw TreeWriter) Counts(depth int, label string, m map[string]int) {
	tw.Line(depth, "%s (%d)", label, len(m))
	keys := slices.Collect(maps.Keys(m))
	sort.Sort(natural.StringSlice(keys))
	for _, k := range keys {
		tw.Line(depth+1, "%s: %d", k, m[k])
	}
}

// Node writes markup tree starting at n. Whitespace only text nodes are
// skipped, long text is shortened.
func (tw TreeWriter) Node(depth int, n *html.Node) {
	switch n.Type {
	case html.DocumentNode:
		tw.Line(depth, "#document")
	case html.DoctypeNode:
		tw.Line(depth, "<!DOCTYPE %s>", n.Data)
		return
	case html.CommentNode:
		tw.TextBlock(depth, "#comment", shorten(n.Data))
		return
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			tw.TextBlock(depth, "#text", shorten(n.Data))
		}
		return
	case html.ElementNode:
		var sb strings.Builder
		sb.WriteString(n.Data)
		for _, a := range n.Attr {
			sb.WriteString(" ")
			sb.WriteString(a.Key)
			sb.WriteString("=")
			sb.WriteString(encodeText(shorten(a.Val)))
		}
		tw.Line(depth, "<%s>", sb.String())
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		tw.Node(depth+1, c)
	}
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func shorten(s string) string {
	if r := []rune(s); len(r) > maxText {
		return string(r[:maxText]) + "…"
	}
	return s
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
