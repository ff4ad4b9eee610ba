package patch

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap/zaptest"

	"docconv/config"
)

func TestGenerateDiffNoChanges(t *testing.T) {
	d := GenerateDiff(`<p>a</p>`, `<p>a</p>`)
	if d.HasChanges {
		t.Error("expected no changes")
	}
	if len(d.Added)+len(d.Removed)+len(d.Modified) != 0 || d.Preview != "" {
		t.Errorf("unexpected diff: %+v", d)
	}
}

func TestGenerateDiff(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		added    []string
		removed  []string
		modified []string
	}{
		{
			name: "added span",
			old:  `<p>hi</p>`, new: `<p>hi<span>X</span></p>`,
			added:    []string{"span +1"},
			removed:  []string{},
			modified: []string{"p[1] text"},
		},
		{
			name: "removed paragraphs",
			old:  `<p>1</p><p>2</p><p>3</p><h1>t</h1>`, new: `<p>1</p><h1>t</h1>`,
			added:    []string{},
			removed:  []string{"p -2"},
			modified: []string{},
		},
		{
			name: "style change",
			old:  `<h1>t</h1><p>a</p>`, new: `<h1 style="color: red">t</h1><p class="x">a</p>`,
			added:    []string{},
			removed:  []string{},
			modified: []string{"h1[1] style", "p[1] class"},
		},
		{
			name: "natural order",
			old:  strings.Repeat(`<p>a</p>`, 12), new: strings.Repeat(`<p>b</p>`, 12),
			added:   []string{},
			removed: []string{},
			modified: []string{
				"p[1] text", "p[2] text", "p[3] text", "p[4] text", "p[5] text", "p[6] text",
				"p[7] text", "p[8] text", "p[9] text", "p[10] text", "p[11] text", "p[12] text",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := GenerateDiff(tt.old, tt.new)
			if !d.HasChanges {
				t.Fatal("expected changes")
			}
			if !slices.Equal(d.Added, tt.added) {
				t.Errorf("added = %q, want %q", d.Added, tt.added)
			}
			if !slices.Equal(d.Removed, tt.removed) {
				t.Errorf("removed = %q, want %q", d.Removed, tt.removed)
			}
			if !slices.Equal(d.Modified, tt.modified) {
				t.Errorf("modified = %q, want %q", d.Modified, tt.modified)
			}
		})
	}
}

func TestDiffPreview(t *testing.T) {
	e := NewEngine(&config.PatchConfig{MaxChanges: 1, PreviewLength: 10}, zaptest.NewLogger(t))
	d := e.Diff(`<p>a</p>`, `<h1>Заголовок документа</h1><p>text</p>`)
	if n := utf8.RuneCountInString(d.Preview); n != 10 {
		t.Errorf("preview length = %d (%q), want 10", n, d.Preview)
	}
	if !strings.HasPrefix(d.Preview, "# ") {
		t.Errorf("preview should be markdown, got %q", d.Preview)
	}

	d = GenerateDiff(`<p>a</p>`, `<p><strong>b</strong></p>`)
	if d.Preview != "**b**" {
		t.Errorf("preview = %q", d.Preview)
	}
}

func TestDiffPreviewDisabled(t *testing.T) {
	e := NewEngine(&config.PatchConfig{MaxChanges: 1, PreviewLength: 0}, zaptest.NewLogger(t))
	if d := e.Diff(`<p>a</p>`, `<p>b</p>`); d.Preview != "" {
		t.Errorf("expected empty preview, got %q", d.Preview)
	}
}
