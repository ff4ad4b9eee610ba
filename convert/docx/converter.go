// Package docx converts Office Open XML word processing documents into
// HTML in process. It is used as fallback when external converter is not
// available or fails, so it favors robustness over completeness.
package docx

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docconv/archive"
)

const (
	documentPart = "word/document.xml"
	mediaPrefix  = "word/media/"
)

// ErrNotDocx is returned when data is not word processing package.
var ErrNotDocx = errors.New("not a word processing document")

// ImageInliner turns image bytes into value usable as img src attribute,
// usually data URI. contentType may be empty when unknown.
type ImageInliner func(data []byte, contentType string) (string, error)

// Result is produced markup (body content only) and conversion warnings.
type Result struct {
	HTML     string
	Warnings []string
}

// Converter is safe for concurrent use, every Convert call keeps its own
// state.
type Converter struct {
	inline ImageInliner
	log    *zap.Logger
}

// NewConverter creates converter. When inline is nil images are dropped
// with warning.
func NewConverter(inline ImageInliner, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{inline: inline, log: log.Named("docx")}
}

// Convert transforms raw package bytes into HTML.
func (c *Converter) Convert(ctx context.Context, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pkg, err := archive.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotDocx, err)
	}
	if !pkg.Has(documentPart) {
		return nil, fmt.Errorf("%w: %s is missing", ErrNotDocx, documentPart)
	}

	doc, err := readPart(pkg, documentPart)
	if err != nil {
		return nil, err
	}

	w := &writer{
		ctx:        ctx,
		pkg:        pkg,
		inline:     c.inline,
		log:        c.log,
		styles:     parseStyles(optionalXML(pkg, "word/styles.xml", c.log)),
		numbering:  parseNumbering(optionalXML(pkg, "word/numbering.xml", c.log)),
		referenced: make(map[string]struct{}),
	}

	body := child(doc.root, "body")
	if body == nil {
		return nil, fmt.Errorf("%w: document has no body", ErrNotDocx)
	}

	root := element(atom.Div)
	sect := child(body, "sectPr")
	w.region(root, doc, sect, "headerReference", relHeader, "header")
	if err := w.blocks(root, doc, body); err != nil {
		return nil, err
	}
	w.region(root, doc, sect, "footerReference", relFooter, "footer")
	if err := w.unreferencedMedia(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&sb, n); err != nil {
			return nil, fmt.Errorf("unable to render html: %w", err)
		}
	}

	c.log.Debug("Document converted",
		zap.Int("html", sb.Len()),
		zap.Int("images", w.images),
		zap.Int("warnings", len(w.warnings)))

	return &Result{HTML: sb.String(), Warnings: w.warnings}, nil
}

func optionalXML(pkg *archive.Package, name string, log *zap.Logger) *etree.Element {
	if !pkg.Has(name) {
		return nil
	}
	root, err := readXML(pkg, name)
	if err != nil {
		log.Warn("Unable to read optional part, ignoring", zap.String("part", name), zap.Error(err))
		return nil
	}
	return root
}

// writer carries state of single conversion.
type writer struct {
	ctx       context.Context
	pkg       *archive.Package
	inline    ImageInliner
	log       *zap.Logger
	styles    *styles
	numbering *numbering

	images     int
	referenced map[string]struct{}
	warnings   []string
}

// unreferencedMedia reports media parts no drawing of the document points
// to, such content is lost in conversion.
func (w *writer) unreferencedMedia() error {
	var lost []string
	err := w.pkg.Walk(mediaPrefix, func(name string, _ *zip.File) error {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if _, ok := w.referenced[strings.ToLower(name)]; !ok {
			lost = append(lost, path.Base(name))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(lost) > 0 {
		w.log.Debug("Unreferenced media", zap.Strings("parts", lost))
		w.warn(fmt.Sprintf("%d embedded media file(s) not referenced by document", len(lost)))
	}
	return nil
}

func (w *writer) warn(msg string) {
	if !slices.Contains(w.warnings, msg) {
		w.warnings = append(w.warnings, msg)
	}
}

// region renders default page header or footer of the section.
func (w *writer) region(parent *html.Node, doc *part, sect *etree.Element, refTag, relType, class string) {
	var id string
	for _, ref := range children(sect, refTag) {
		if t := ref.SelectAttrValue("type", "default"); t == "default" || id == "" {
			id = ref.SelectAttrValue("id", "")
		}
	}
	if id == "" {
		return
	}
	rel, ok := doc.relTarget(id, relType)
	if !ok || rel.External {
		return
	}
	p, err := readPart(w.pkg, rel.Target)
	if err != nil {
		w.log.Warn("Unable to read page "+class+", ignoring", zap.String("part", rel.Target), zap.Error(err))
		w.warn("page " + class + " could not be read")
		return
	}
	div := element(atom.Div, "class", class)
	if err := w.blocks(div, p, p.root); err != nil {
		return
	}
	if hasContent(div) {
		parent.AppendChild(div)
	}
}
