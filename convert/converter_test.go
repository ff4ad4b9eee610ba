package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"docconv/archive"
	"docconv/common"
	"docconv/config"
)

const primaryHTML = `<!DOCTYPE html><html><head><style>p { margin-left: 1in }</style></head>` +
	`<body><p style="text-indent: 12pt; margin-left: 10pt; margin-right: 5pt; font-size: 16px; line-height: 5">Hi</p></body></html>`

// fakeInvoker writes prepared html into working area or fails.
type fakeInvoker struct {
	mu    sync.Mutex
	html  string
	err   error
	calls []string
	hook  func(ctx context.Context)
}

func (f *fakeInvoker) Invoke(ctx context.Context, inputPath, workDir string, _ time.Duration) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, workDir)
	f.mu.Unlock()

	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("input not persisted: %w", err)
	}
	if f.hook != nil {
		f.hook(ctx)
	}
	if f.err != nil {
		return "", f.err
	}
	out := filepath.Join(workDir, "out")
	if err := os.MkdirAll(out, 0755); err != nil {
		return "", err
	}
	name := filepath.Join(out, "source.html")
	return name, os.WriteFile(name, []byte(f.html), 0644)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error: %v", err)
	}
	cfg.Conversion.WorkDir = t.TempDir()
	return cfg
}

func minimalDocx(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprintf(fw, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`+
		`<w:body><w:p><w:r><w:t>%s</w:t></w:r></w:p></w:body></w:document>`, text)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func assertWorkDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("working areas left behind: %d", len(entries))
	}
}

func hasWarning(res *Result, sev common.Severity, substr string) bool {
	for _, w := range res.Warnings {
		if w.Severity == sev && strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

func TestConvertPrimary(t *testing.T) {
	cfg := testConfig(t)
	inv := &fakeInvoker{html: primaryHTML}
	c := NewConverter(cfg, zaptest.NewLogger(t), WithInvoker(inv))

	res, err := c.Convert(context.Background(), minimalDocx(t, "x"), "report.docx", ".DOCX")
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if res.Method != common.ConversionMethodPrimary {
		t.Errorf("method = %s, want primary", res.Method)
	}
	if res.Fidelity != 100 {
		t.Errorf("fidelity = %d, want 100", res.Fidelity)
	}
	if !strings.Contains(res.HTML, "font-size: 12pt") {
		t.Errorf("px units not normalized: %s", res.HTML)
	}
	if !strings.Contains(res.HTML, "line-height: 2") {
		t.Errorf("line height not clamped: %s", res.HTML)
	}
	if res.CSS != "p { margin-left: 1in }" {
		t.Errorf("css = %q", res.CSS)
	}
	if !res.Quality.HasInlineStyles || !res.Quality.HasTextIndent || !res.Quality.HasMargins {
		t.Errorf("unexpected quality: %+v", res.Quality)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", res.Warnings)
	}
	if len(inv.calls) != 1 {
		t.Errorf("invoker called %d times", len(inv.calls))
	}
	assertWorkDirEmpty(t, cfg.Conversion.WorkDir)
}

func TestConvertTimeoutFallsBack(t *testing.T) {
	cfg := testConfig(t)
	inv := &fakeInvoker{err: fmt.Errorf("%w after 30s", ErrConversionTimeout)}
	c := NewConverter(cfg, zaptest.NewLogger(t), WithInvoker(inv))

	res, err := c.Convert(context.Background(), minimalDocx(t, "Hello"), "a.docx", "docx")
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if res.Method != common.ConversionMethodFallback {
		t.Errorf("method = %s, want fallback", res.Method)
	}
	if !strings.Contains(res.HTML, "<p>Hello</p>") {
		t.Errorf("unexpected html: %s", res.HTML)
	}
	if !hasWarning(res, common.SeverityWarning, "reduced fidelity") {
		t.Errorf("fallback notice missing: %+v", res.Warnings)
	}
	if !hasWarning(res, common.SeverityWarning, "low formatting fidelity") {
		t.Errorf("low fidelity warning missing: %+v", res.Warnings)
	}
	assertWorkDirEmpty(t, cfg.Conversion.WorkDir)
}

func TestConvertPrimaryDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Conversion.Primary.Enable = false
	c := NewConverter(cfg, zaptest.NewLogger(t))

	res, err := c.Convert(context.Background(), minimalDocx(t, "Hello"), "a.docx", "docx")
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if res.Method != common.ConversionMethodFallback {
		t.Errorf("method = %s, want fallback", res.Method)
	}
}

func TestConvertBothFail(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		ext  string
		cfg  func(*config.Config)
	}{
		{name: "broken docx", data: []byte("definitely not a zip"), ext: "docx"},
		{name: "rtf has no fallback", data: []byte(`{\rtf1\ansi hello}`), ext: "rtf"},
		{name: "fallback disabled", data: minimalDocx(t, "x"), ext: "docx", cfg: func(c *config.Config) { c.Conversion.Fallback.Enable = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			if tt.cfg != nil {
				tt.cfg(cfg)
			}
			inv := &fakeInvoker{err: fmt.Errorf("%w after 1s", ErrConversionTimeout)}
			c := NewConverter(cfg, zaptest.NewLogger(t), WithInvoker(inv))

			res, err := c.Convert(context.Background(), tt.data, "in."+tt.ext, tt.ext)
			if res != nil {
				t.Errorf("unexpected result: %+v", res)
			}
			if !errors.Is(err, ErrConversionFailed) {
				t.Fatalf("expected ErrConversionFailed, got %v", err)
			}
			if !errors.Is(err, ErrConversionTimeout) {
				t.Errorf("primary cause lost: %v", err)
			}
			assertWorkDirEmpty(t, cfg.Conversion.WorkDir)
		})
	}
}

func TestConvertRejectsInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		ext  string
		want error
	}{
		{name: "pdf", data: []byte("%PDF-1.4"), ext: ".pdf", want: ErrUnsupportedFormat},
		{name: "no extension", data: []byte("x"), ext: "", want: ErrUnsupportedFormat},
		{name: "empty", data: nil, ext: "docx", want: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			// must not be created when input is rejected
			cfg.Conversion.WorkDir = filepath.Join(cfg.Conversion.WorkDir, "areas")
			inv := &fakeInvoker{html: primaryHTML}
			c := NewConverter(cfg, zaptest.NewLogger(t), WithInvoker(inv))

			_, err := c.Convert(context.Background(), tt.data, "file"+tt.ext, tt.ext)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if _, err := os.Stat(cfg.Conversion.WorkDir); !os.IsNotExist(err) {
				t.Errorf("filesystem touched for rejected input")
			}
			if len(inv.calls) != 0 {
				t.Errorf("converter invoked for rejected input")
			}
		})
	}
}

func TestConvertCancelled(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewConverter(cfg, zaptest.NewLogger(t), WithInvoker(&fakeInvoker{html: primaryHTML}))
	if _, err := c.Convert(ctx, minimalDocx(t, "x"), "a.docx", "docx"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	inv := &fakeInvoker{hook: func(context.Context) { cancel() }, err: context.Canceled}
	c = NewConverter(cfg, zaptest.NewLogger(t), WithInvoker(inv))
	res, err := c.Convert(ctx, minimalDocx(t, "x"), "a.docx", "docx")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res != nil {
		t.Errorf("no result expected after cancellation")
	}
	assertWorkDirEmpty(t, cfg.Conversion.WorkDir)
}

// echoInvoker renders text of input document as html, so every output
// carries marker of its own input. All calls are held until n of them run
// at the same time.
func echoInvoker(t *testing.T, n int) Invoker {
	t.Helper()
	var (
		mu      sync.Mutex
		arrived int
	)
	all := make(chan struct{})
	return invokerFunc(func(ctx context.Context, in, dir string, _ time.Duration) (string, error) {
		mu.Lock()
		if arrived++; arrived == n {
			close(all)
		}
		mu.Unlock()
		select {
		case <-all:
		case <-time.After(5 * time.Second):
			return "", errors.New("conversions did not overlap")
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", err
		}
		for _, e := range entries {
			if e.Name() != filepath.Base(in) {
				return "", fmt.Errorf("foreign file %s in working area", e.Name())
			}
		}

		data, err := os.ReadFile(in)
		if err != nil {
			return "", err
		}
		pkg, err := archive.Open(data)
		if err != nil {
			return "", err
		}
		doc, err := pkg.Read("word/document.xml")
		if err != nil {
			return "", err
		}
		_, rest, _ := strings.Cut(string(doc), "<w:t>")
		text, _, _ := strings.Cut(rest, "</w:t>")

		name := filepath.Join(dir, "out.html")
		return name, os.WriteFile(name, []byte("<p>"+text+"</p>"), 0644)
	})
}

func TestConvertConcurrentIsolation(t *testing.T) {
	cfg := testConfig(t)

	const n = 8
	c := NewConverter(cfg, zaptest.NewLogger(t), WithInvoker(echoInvoker(t, n)))

	results := make([]*Result, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		data := minimalDocx(t, fmt.Sprintf("marker-%02d", i))
		wg.Go(func() {
			results[i], errs[i] = c.Convert(context.Background(), data, fmt.Sprintf("doc%02d.docx", i), "docx")
		})
	}
	wg.Wait()

	for i := range n {
		if errs[i] != nil {
			t.Fatalf("Convert(%d) error: %v", i, errs[i])
		}
		if results[i].Method != common.ConversionMethodPrimary {
			t.Errorf("Convert(%d) method = %s, want primary", i, results[i].Method)
		}
		own := fmt.Sprintf("marker-%02d", i)
		if !strings.Contains(results[i].HTML, own) {
			t.Errorf("Convert(%d) html = %q, missing %s", i, results[i].HTML, own)
		}
		for j := range n {
			if other := fmt.Sprintf("marker-%02d", j); j != i && strings.Contains(results[i].HTML, other) {
				t.Errorf("Convert(%d) html = %q, contains %s of another conversion", i, results[i].HTML, other)
			}
		}
	}
	assertWorkDirEmpty(t, cfg.Conversion.WorkDir)
}

func TestConvertFixZip(t *testing.T) {
	cfg := testConfig(t)
	cfg.Conversion.FixZip = true
	var input string
	inv := &fakeInvoker{html: primaryHTML}
	c := NewConverter(cfg, zaptest.NewLogger(t), WithInvoker(invokerFunc(func(ctx context.Context, in, dir string, d time.Duration) (string, error) {
		input = in
		return inv.Invoke(ctx, in, dir, d)
	})))

	if _, err := c.Convert(context.Background(), minimalDocx(t, "x"), "a.docx", "docx"); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if filepath.Base(input) != "repaired.docx" {
		t.Errorf("primary converter got %q, want repaired archive", filepath.Base(input))
	}
}

type invokerFunc func(ctx context.Context, inputPath, workDir string, timeout time.Duration) (string, error)

func (f invokerFunc) Invoke(ctx context.Context, inputPath, workDir string, timeout time.Duration) (string, error) {
	return f(ctx, inputPath, workDir, timeout)
}

func TestConvertSniffWarning(t *testing.T) {
	cfg := testConfig(t)
	c := NewConverter(cfg, zaptest.NewLogger(t), WithInvoker(&fakeInvoker{html: primaryHTML}))

	res, err := c.Convert(context.Background(), []byte("plain text pretending"), "a.rtf", "rtf")
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if !hasWarning(res, common.SeverityWarning, "does not look like rtf") {
		t.Errorf("sniff warning missing: %+v", res.Warnings)
	}
}

func TestConvertDebugReport(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reporting.Destination = filepath.Join(t.TempDir(), "report.zip")
	rpt, err := cfg.Reporting.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	c := NewConverter(cfg, zaptest.NewLogger(t), WithInvoker(&fakeInvoker{html: primaryHTML}), WithReport(rpt))
	if _, err := c.Convert(context.Background(), minimalDocx(t, "x"), "dir/a.docx", "docx"); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	zr, err := zip.OpenReader(cfg.Reporting.Destination)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()
	var html, dump, area bool
	for _, f := range zr.File {
		switch {
		case strings.HasSuffix(f.Name, "/a.docx.html"):
			html = true
		case strings.HasSuffix(f.Name, "/a.docx.txt"):
			dump = true
		case strings.Contains(f.Name, "workarea-"):
			area = true
		}
	}
	if !html || !dump || !area {
		t.Errorf("report incomplete: html=%v dump=%v workarea=%v", html, dump, area)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want common.SourceFormat
		err  bool
	}{
		{in: "docx", want: common.SourceFormatDocx},
		{in: ".DOCX", want: common.SourceFormatDocx},
		{in: " .Rtf ", want: common.SourceFormatRtf},
		{in: ".doc", err: true},
		{in: "", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.err {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
			}
		})
	}
}
