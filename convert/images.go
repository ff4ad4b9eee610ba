package convert

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/tiff"
)

// ErrUnsupportedImage is returned for data which is not recognizable image.
var ErrUnsupportedImage = errors.New("unsupported image")

// imageInliner turns images into data URIs. Formats browsers are unable to
// display (TIFF, BMP) are optionally re-encoded to PNG.
type imageInliner struct {
	reencode bool
	log      *zap.Logger
}

func newImageInliner(reencode bool, log *zap.Logger) *imageInliner {
	return &imageInliner{reencode: reencode, log: log}
}

// Inline detects image type from content, contentType supplied by caller
// is only used for logging as packages often lie about it.
func (i *imageInliner) Inline(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty data", ErrUnsupportedImage)
	}

	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		if isSVG(data) {
			return dataURI("image/svg+xml", data), nil
		}
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, contentType)
	}

	mime := kind.MIME.Value
	switch kind.Extension {
	case "tif", "bmp":
		if !i.reencode {
			break
		}
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("unable to decode %s image: %w", kind.Extension, err)
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return "", fmt.Errorf("unable to encode image: %w", err)
		}
		i.log.Debug("Image re-encoded", zap.String("from", mime), zap.Int("size", len(data)), zap.Int("new_size", buf.Len()))
		data, mime = buf.Bytes(), "image/png"
	}
	return dataURI(mime, data), nil
}

func isSVG(data []byte) bool {
	head := data[:min(len(data), 1024)]
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
