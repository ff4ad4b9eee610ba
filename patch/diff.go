package patch

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/maruel/natural"
	"golang.org/x/net/html"

	"docconv/markup"
)

// DefaultPreviewLength is preview size (in runes) used when not configured.
const DefaultPreviewLength = 500

// DiffResult summarizes what changed between two versions of a document.
type DiffResult struct {
	HasChanges bool     `json:"hasChanges"`
	Added      []string `json:"added"`
	Removed    []string `json:"removed"`
	Modified   []string `json:"modified"`
	Preview    string   `json:"preview"`
}

var markdown = sync.OnceValue(func() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
})

// GenerateDiff compares two versions using default preview length.
func GenerateDiff(oldContent, newContent string) DiffResult {
	return generateDiff(oldContent, newContent, DefaultPreviewLength)
}

// Diff compares two versions using configured preview length.
func (e *Engine) Diff(oldContent, newContent string) DiffResult {
	return generateDiff(oldContent, newContent, e.previewLength)
}

func generateDiff(oldContent, newContent string, previewLength int) DiffResult {
	res := DiffResult{
		HasChanges: oldContent != newContent,
		Added:      []string{},
		Removed:    []string{},
		Modified:   []string{},
	}
	if !res.HasChanges {
		return res
	}

	before, after := elementsByTag(oldContent), elementsByTag(newContent)
	for tag, nodes := range after {
		prev := before[tag]
		if d := len(nodes) - len(prev); d > 0 {
			res.Added = append(res.Added, fmt.Sprintf("%s +%d", tag, d))
		}
		for i := range min(len(nodes), len(prev)) {
			if what := changed(prev[i], nodes[i]); len(what) > 0 {
				res.Modified = append(res.Modified, fmt.Sprintf("%s[%d] %s", tag, i+1, strings.Join(what, ",")))
			}
		}
	}
	for tag, nodes := range before {
		if d := len(nodes) - len(after[tag]); d > 0 {
			res.Removed = append(res.Removed, fmt.Sprintf("%s -%d", tag, d))
		}
	}
	sort.Sort(natural.StringSlice(res.Added))
	sort.Sort(natural.StringSlice(res.Removed))
	sort.Sort(natural.StringSlice(res.Modified))

	res.Preview = preview(newContent, previewLength)
	return res
}

func elementsByTag(content string) map[string][]*html.Node {
	out := make(map[string][]*html.Node)
	tree, err := markup.Parse(content)
	if err != nil {
		return out
	}
	for _, n := range markup.Elements(tree.Body()) {
		out[n.Data] = append(out[n.Data], n)
	}
	return out
}

// changed lists aspects which differ between positionally matched elements.
func changed(a, b *html.Node) []string {
	var what []string
	for _, key := range []string{"style", "class"} {
		va, _ := markup.Attr(a, key)
		vb, _ := markup.Attr(b, key)
		if strings.TrimSpace(va) != strings.TrimSpace(vb) {
			what = append(what, key)
		}
	}
	if strings.Join(strings.Fields(markup.Text(a)), " ") != strings.Join(strings.Fields(markup.Text(b)), " ") {
		what = append(what, "text")
	}
	return what
}

func preview(content string, limit int) string {
	if limit <= 0 {
		return ""
	}
	text, err := markdown().ConvertString(content)
	if err != nil {
		// markdown conversion is best effort, fall back to plain text
		if tree, perr := markup.Parse(content); perr == nil {
			text = strings.Join(strings.Fields(markup.Text(tree.Body())), " ")
		}
	}
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > limit {
		return string(r[:limit])
	}
	return text
}
