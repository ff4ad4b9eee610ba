// Package archive reads office (OOXML) packages, which are zip containers.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned when requested part does not exist in package.
var ErrNotFound = errors.New("part not found")

// maxPartSize limits single decompressed part, protects against zip bombs.
const maxPartSize = 256 << 20

// WalkFunc is called for each part visited by Walk. If an error is returned,
// processing stops.
type WalkFunc func(name string, file *zip.File) error

// Package is read only view of zip container kept in memory.
type Package struct {
	r     *zip.Reader
	parts map[string]*zip.File
}

// Open indexes package parts. Entries with path traversal components ("..")
// or absolute paths make whole package invalid.
func Open(data []byte) (*Package, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to open package: %w", err)
	}

	p := &Package{r: r, parts: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return nil, fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		p.parts[strings.ToLower(name)] = f
	}
	return p, nil
}

// Has reports whether part exists. Part names are case-insensitive.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[strings.ToLower(strings.TrimPrefix(name, "/"))]
	return ok
}

// Read returns decompressed content of the part.
func (p *Package) Read(name string) ([]byte, error) {
	f, ok := p.parts[strings.ToLower(strings.TrimPrefix(name, "/"))]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open part %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read part %s: %w", name, err)
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("part %s is too large", name)
	}
	return data, nil
}

// Walk calls walkFn for every part whose name starts with prefix, in
// archive order. Like part lookup, prefix matching is case-insensitive.
func (p *Package) Walk(prefix string, walkFn WalkFunc) error {
	prefix = strings.ToLower(strings.TrimPrefix(prefix, "/"))
	for _, f := range p.r.File {
		if f.FileInfo().IsDir() || !strings.HasPrefix(strings.ToLower(f.Name), prefix) {
			continue
		}
		if err := walkFn(f.Name, f); err != nil {
			return err
		}
	}
	return nil
}

// Resolve makes package part name from relationship target relative to
// source part directory.
func Resolve(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Join(path.Dir(base), target)
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
