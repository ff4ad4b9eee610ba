package sanitize

import (
	"strings"
	"sync"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		contains    []string
		notContains []string
	}{
		{
			name:        "script removed",
			in:          `<p>hello</p><script>alert(1)</script>`,
			contains:    []string{"<p>hello</p>"},
			notContains: []string{"<script", "alert(1)"},
		},
		{
			name:     "style attribute kept unchanged",
			in:       `<p style="margin-left: 36pt; text-indent: -18pt; font-family: 'Calibri'">x</p>`,
			contains: []string{`margin-left: 36pt; text-indent: -18pt; font-family: &#39;Calibri&#39;`},
		},
		{
			name:        "event handlers dropped",
			in:          `<p onclick="evil()" class="MsoNormal">x</p>`,
			contains:    []string{`class="MsoNormal"`},
			notContains: []string{"onclick"},
		},
		{
			name:        "javascript href dropped",
			in:          `<a href="javascript:alert(1)">x</a><a href="https://example.com/a">y</a>`,
			contains:    []string{`href="https://example.com/a"`},
			notContains: []string{"javascript:"},
		},
		{
			name:     "mailto and relative links kept",
			in:       `<a href="mailto:a@b.c">m</a><a href="#sec1">r</a>`,
			contains: []string{`href="mailto:a@b.c"`, `href="#sec1"`},
		},
		{
			name:     "data image kept",
			in:       `<img src="data:image/png;base64,iVBORw0KGgo=" alt="pic" width="10">`,
			contains: []string{`src="data:image/png;base64,iVBORw0KGgo="`, `alt="pic"`, `width="10"`},
		},
		{
			name:     "tables with spans",
			in:       `<table border="1"><tr><td colspan="2" rowspan="3">c</td></tr></table>`,
			contains: []string{`colspan="2"`, `rowspan="3"`, `<table border="1">`},
		},
		{
			name:     "style block kept",
			in:       `<style>p { color: red }</style><p>x</p>`,
			contains: []string{"<style>", "color: red"},
		},
		{
			name:        "iframe removed",
			in:          `<iframe src="https://example.com"></iframe><p>ok</p>`,
			contains:    []string{"<p>ok</p>"},
			notContains: []string{"iframe"},
		},
		{
			name:     "malformed input best effort",
			in:       `<p><b>unclosed`,
			contains: []string{"<p><b>unclosed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Sanitize() = %q, missing %q", got, s)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(got, s) {
					t.Errorf("Sanitize() = %q, must not contain %q", got, s)
				}
			}
		})
	}
}

func TestSanitizeDeterministicAndConcurrent(t *testing.T) {
	in := `<div class="header" style="margin-top: 1pt"><p>x</p></div><script>x</script>`
	want := Sanitize(in)

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			if got := Sanitize(in); got != want {
				t.Errorf("Sanitize() = %q, want %q", got, want)
			}
		})
	}
	wg.Wait()
}

func TestSanitizeEmpty(t *testing.T) {
	if got := Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q", got)
	}
}

func TestAttributes(t *testing.T) {
	tests := []struct {
		name  string
		tag   string
		attrs map[string]string
		want  map[string]string
	}{
		{
			name:  "global and element attributes kept",
			tag:   "td",
			attrs: map[string]string{"colspan": "2", "title": "a & b"},
			want:  map[string]string{"colspan": "2", "title": "a & b"},
		},
		{
			name:  "event handlers dropped",
			tag:   "p",
			attrs: map[string]string{"onclick": "x()", "OnLoad": "y()", "class": "note"},
			want:  map[string]string{"class": "note"},
		},
		{
			name:  "attribute of other element dropped",
			tag:   "p",
			attrs: map[string]string{"colspan": "2"},
			want:  map[string]string{},
		},
		{
			name:  "unsafe url dropped",
			tag:   "img",
			attrs: map[string]string{"src": "javascript:alert(1)", "alt": "pic"},
			want:  map[string]string{"alt": "pic"},
		},
		{
			name:  "malformed name skipped",
			tag:   "span",
			attrs: map[string]string{`a" onclick="x`: "1", "lang": "en"},
			want:  map[string]string{"lang": "en"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Attributes(tt.tag, tt.attrs)
			if len(got) != len(tt.want) {
				t.Fatalf("Attributes() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("Attributes()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
