package config

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func openReport(t *testing.T) *Report {
	t.Helper()
	rc := ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	r, err := rc.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return r
}

func archiveNames(t *testing.T, path string) map[string]bool {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	return names
}

func TestReport_NilIsNoop(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("a", []byte("b"))
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy() on nil report error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() on nil report error = %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name() = %q, want empty", r.Name())
	}
}

func TestReport_StoreCopyRemovesTemporaryCopy(t *testing.T) {
	r := openReport(t)

	work := t.TempDir()
	if err := os.WriteFile(filepath.Join(work, "source.docx"), []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreCopy("workarea", work); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	copied := r.entries["workarea"].actual

	// source may disappear before report is closed
	if err := os.RemoveAll(work); err != nil {
		t.Fatal(err)
	}
	name := r.Name()
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := os.Stat(copied); !os.IsNotExist(err) {
		t.Errorf("expected temporary copy %s to be removed", copied)
	}
	names := archiveNames(t, name)
	if !names["workarea/source.docx"] {
		t.Errorf("archive entries = %v, want workarea/source.docx", names)
	}
	if !names["MANIFEST"] {
		t.Error("archive has no MANIFEST")
	}
}

func TestReport_ConcurrentStoreData(t *testing.T) {
	r := openReport(t)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.StoreData(fmt.Sprintf("conversion/%02d/result.html", i), []byte("<p>x</p>"))
		}()
	}
	wg.Wait()

	name := r.Name()
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := len(archiveNames(t, name)); got != 17 {
		t.Errorf("archive has %d entries, want 17", got)
	}
}

func TestReport_StoreDataVersionsDuplicates(t *testing.T) {
	r := openReport(t)
	r.StoreData("same", []byte("1"))
	r.StoreData("same", []byte("2"))
	if len(r.entries) != 2 {
		t.Errorf("entries = %d, want 2", len(r.entries))
	}
	r.Close()
}
