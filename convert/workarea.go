package convert

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"docconv/common"
	"docconv/misc"
)

// workArea is isolated directory holding files of a single conversion.
type workArea struct {
	id  string
	dir string
}

// newWorkArea creates uniquely named directory under base (system temporary
// directory when empty). Name hash mixes content, name and time so that
// concurrent conversions of the same file never share a directory.
func newWorkArea(base string, data []byte, name string) (*workArea, error) {
	if base != "" {
		if err := os.MkdirAll(base, 0755); err != nil {
			return nil, fmt.Errorf("unable to create work directory: %w", err)
		}
	}

	h := sha256.New()
	h.Write(data)
	h.Write([]byte(name))
	fmt.Fprintf(h, "%d", time.Now().UnixNano())
	id := hex.EncodeToString(h.Sum(nil))[:16]

	dir, err := os.MkdirTemp(base, misc.GetAppName()+"-"+id+"-")
	if err != nil {
		return nil, fmt.Errorf("unable to create working area: %w", err)
	}
	return &workArea{id: id, dir: dir}, nil
}

// store persists source document as "source.<ext>".
func (w *workArea) store(data []byte, format common.SourceFormat) (string, error) {
	name := filepath.Join(w.dir, "source"+format.Ext())
	if err := os.WriteFile(name, data, 0644); err != nil {
		return "", fmt.Errorf("unable to store source document: %w", err)
	}
	return name, nil
}

// remove deletes working area, failure is only logged.
func (w *workArea) remove(log *zap.Logger) {
	if err := os.RemoveAll(w.dir); err != nil {
		log.Warn("Unable to clean up working area", zap.String("dir", w.dir), zap.Error(err))
	}
}
