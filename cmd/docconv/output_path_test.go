package main

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"docconv/common"
	"docconv/config"
	"docconv/convert"
	"docconv/state"
)

func setupTestEnvForOutputPath(t *testing.T, noDirs bool, transliterate bool, template string) *state.LocalEnv {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Conversion.FileNameTransliterate = transliterate
	cfg.Conversion.OutputNameTemplate = template

	return &state.LocalEnv{
		Log:    logger,
		Cfg:    cfg,
		NoDirs: noDirs,
	}
}

func testResult() *convert.Result {
	return &convert.Result{
		HTML:     `<h1>Quarterly Report</h1><p>text</p>`,
		Method:   common.ConversionMethodPrimary,
		Fidelity: 85,
	}
}

func TestBuildOutputPath(t *testing.T) {
	tests := []struct {
		name          string
		noDirs        bool
		transliterate bool
		template      string
		src           string
		ext           string
		expected      string
	}{
		{"no dirs", true, false, "", "docs/q1/report.docx", ".html", filepath.Join("/output", "report.html")},
		{"with dirs", false, false, "", "docs/q1/report.docx", ".html", filepath.Join("/output", "docs", "q1", "report.html")},
		{"json", true, false, "", "report.rtf", ".json", filepath.Join("/output", "report.json")},
		{"transliterate", true, true, "", "Отчет.docx", ".html", filepath.Join("/output", "otchet.html")},
		{"template", true, false, "{{ .Method }}/{{ .SourceFile }}-{{ .Fidelity }}", "report.docx", ".html", filepath.Join("/output", "primary", "report-85.html")},
		{"template title", true, false, "{{ .Title | lower }}", "report.docx", ".html", filepath.Join("/output", "quarterly report.html")},
		{"broken template falls back", true, false, "{{ .Title", "report.docx", ".html", filepath.Join("/output", "report.html")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, tt.transliterate, tt.template)

			result := buildOutputPath(testResult(), tt.src, "/output", tt.ext, env)
			if result != tt.expected {
				t.Errorf("buildOutputPath() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{"simple path", "reports/q1", []string{"reports", "q1"}},
		{"single segment", "q1", []string{"q1"}},
		{"with trailing slash", "reports/q1/", []string{"reports", "q1"}},
		{"three levels", "2026/reports/q1", []string{"2026", "reports", "q1"}},
		{"empty path", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndCleanPath(filepath.FromSlash(tt.path))
			if len(result) != len(tt.expected) {
				t.Errorf("splitAndCleanPath() length = %d, want %d", len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndCleanPath()[%d] = %q, want %q", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestCleanPathSegment(t *testing.T) {
	tests := []struct {
		name          string
		segment       string
		transliterate bool
		expected      string
	}{
		{"simple segment", "reports", false, "reports"},
		{"with spaces", "Annual Report", false, "Annual Report"},
		{"transliterate cyrillic", "Отчет", true, "otchet"},
		{"special chars", "report:final", false, "reportfinal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, true, tt.transliterate, "")

			result := cleanPathSegment(tt.segment, env)
			if result != tt.expected {
				t.Errorf("cleanPathSegment() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAssemblePathWithSubdirs_EmptyPath(t *testing.T) {
	env := setupTestEnvForOutputPath(t, true, false, "")

	result := assemblePathWithSubdirs("/output", "", ".html", env)
	if result != "/output" {
		t.Errorf("assemblePathWithSubdirs() with empty path = %q, want %q", result, "/output")
	}
}
