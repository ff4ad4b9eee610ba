// Package convert turns office documents into styled html. External
// converter is tried first, in process docx converter is used as fallback.
package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docconv/archive"
	"docconv/common"
	"docconv/config"
	"docconv/convert/docx"
	"docconv/fidelity"
	"docconv/markup"
	"docconv/postprocess"
	"docconv/sanitize"
	"docconv/state"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConversionTimeout = errors.New("conversion timed out")
	ErrConversionFailed  = errors.New("conversion failed")
)

// LowFidelity is score below which result is flagged with warning.
const LowFidelity = 50

type Warning struct {
	Message  string          `json:"message"`
	Severity common.Severity `json:"severity"`
}

// Result of a single conversion.
type Result struct {
	HTML     string
	CSS      string
	Method   common.ConversionMethod
	Warnings []Warning
	Fidelity int
	Quality  fidelity.QualityReport
}

func (r *Result) warn(sev common.Severity, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Message: fmt.Sprintf(format, args...), Severity: sev})
}

// Converter drives conversion pipeline. It keeps no per-conversion state
// and is safe for concurrent use.
type Converter struct {
	cfg      *config.ConversionConfig
	post     postprocess.Options
	primary  Invoker
	fallback *docx.Converter
	images   *imageInliner
	rpt      *config.Report
	log      *zap.Logger
}

type Option func(*Converter)

// WithInvoker replaces external converter.
func WithInvoker(inv Invoker) Option {
	return func(c *Converter) { c.primary = inv }
}

// WithReport enables storing of intermediate results in debug report.
func WithReport(rpt *config.Report) Option {
	return func(c *Converter) { c.rpt = rpt }
}

func NewConverter(cfg *config.Config, log *zap.Logger, opts ...Option) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("convert")

	c := &Converter{
		cfg:    &cfg.Conversion,
		post:   postprocess.OptionsFromConfig(&cfg.PostProcess),
		images: newImageInliner(cfg.Conversion.Fallback.ReencodeImages, log),
		log:    log,
	}
	if cfg.Conversion.Primary.Enable {
		c.primary = NewSOfficeInvoker(&cfg.Conversion.Primary, log)
	}
	var inline docx.ImageInliner
	if cfg.Conversion.Fallback.InlineImages {
		inline = c.images.Inline
	}
	c.fallback = docx.NewConverter(inline, log)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseFormat accepts extension with or without leading dot, in any case.
func ParseFormat(ext string) (common.SourceFormat, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	format, err := common.ParseSourceFormat(name)
	if err != nil {
		return format, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return format, nil
}

// Convert produces html for document data. fileName is used for logging
// and working area naming only, ext selects source format.
func (c *Converter) Convert(ctx context.Context, data []byte, fileName, ext string) (*Result, error) {
	format, err := ParseFormat(ext)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := state.LoggerFromContext(ctx, c.log).With(zap.String("file", fileName), zap.Stringer("format", format))
	log.Debug("Conversion starting", zap.Int("size", len(data)))
	defer func(start time.Time) {
		log.Debug("Conversion finished", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	res := &Result{}
	if msg := sniff(data, format); msg != "" {
		res.warn(common.SeverityWarning, "%s", msg)
	}

	area, err := newWorkArea(c.cfg.WorkDir, data, fileName)
	if err != nil {
		return nil, err
	}
	defer area.remove(log)
	log = log.With(zap.String("work_area", area.id))

	raw, err := c.produce(ctx, area, data, format, res, log)
	if c.rpt != nil {
		if err := c.rpt.StoreCopy("workarea-"+area.id, area.dir); err != nil {
			log.Warn("Unable to store working area in report", zap.Error(err))
		}
	}
	if err != nil {
		return nil, err
	}

	c.finish(raw, res)

	if res.Method == common.ConversionMethodFallback {
		log.Info("Document converted with fallback", zap.Int("fidelity", res.Fidelity))
	} else {
		log.Debug("Document converted", zap.Int("fidelity", res.Fidelity))
	}
	if c.rpt != nil {
		c.storeDebug(area.id, fileName, res)
	}
	return res, nil
}

// produce runs converters in order and returns raw html.
func (c *Converter) produce(ctx context.Context, area *workArea, data []byte, format common.SourceFormat, res *Result, log *zap.Logger) (string, error) {
	var causes error

	if c.primary != nil {
		out, warnings, err := c.runPrimary(ctx, area, data, format, log)
		if err == nil {
			res.Method = common.ConversionMethodPrimary
			for _, w := range warnings {
				res.warn(common.SeverityInfo, "%s", w)
			}
			return out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Warn("Primary conversion failed", zap.Error(err))
		causes = multierr.Append(causes, fmt.Errorf("primary: %w", err))
	} else {
		causes = multierr.Append(causes, errors.New("primary: disabled"))
	}

	switch {
	case format != common.SourceFormatDocx:
		causes = multierr.Append(causes, fmt.Errorf("fallback: %s is not supported", format))
	case !c.cfg.Fallback.Enable:
		causes = multierr.Append(causes, errors.New("fallback: disabled"))
	default:
		fb, err := c.fallback.Convert(ctx, data)
		if err == nil && strings.TrimSpace(fb.HTML) == "" {
			err = errors.New("empty output")
		}
		if err == nil {
			res.Method = common.ConversionMethodFallback
			res.warn(common.SeverityWarning, "high fidelity converter unavailable, document converted with reduced fidelity")
			for _, w := range fb.Warnings {
				res.warn(common.SeverityInfo, "%s", w)
			}
			return fb.HTML, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Warn("Fallback conversion failed", zap.Error(err))
		causes = multierr.Append(causes, fmt.Errorf("fallback: %w", err))
	}

	return "", fmt.Errorf("%w: %w", ErrConversionFailed, causes)
}

func (c *Converter) runPrimary(ctx context.Context, area *workArea, data []byte, format common.SourceFormat, log *zap.Logger) (string, []string, error) {
	input, err := area.store(data, format)
	if err != nil {
		return "", nil, err
	}
	if c.cfg.FixZip && format == common.SourceFormatDocx {
		fixed := filepath.Join(area.dir, "repaired"+format.Ext())
		if err := archive.Repair(input, fixed); err != nil {
			log.Warn("Unable to repair source archive, using original", zap.Error(err))
		} else {
			input = fixed
		}
	}

	out, err := c.primary.Invoke(ctx, input, area.dir, c.cfg.Primary.Timeout)
	if err != nil {
		return "", nil, err
	}

	var inline func([]byte, string) (string, error)
	if c.cfg.Fallback.InlineImages {
		inline = c.images.Inline
	}
	return readPrimaryOutput(out, maxPrimaryOutput, inline, log)
}

// finish runs post processing pipeline over raw html.
func (c *Converter) finish(raw string, res *Result) {
	res.HTML = postprocess.Fix(sanitize.Sanitize(raw), c.post)
	res.CSS = extractCSS(res.HTML)
	res.Fidelity = fidelity.Score(res.HTML)
	res.Quality = fidelity.Analyze(res.HTML)

	if res.Quality.HasMsoMarkupArtifacts {
		res.warn(common.SeverityInfo, "document contains Microsoft Office specific markup")
	}
	if res.Fidelity < LowFidelity {
		res.warn(common.SeverityWarning, "low formatting fidelity (%d of %d), missing: %s",
			res.Fidelity, fidelity.MaxScore, strings.Join(fidelity.Missing(res.HTML), ", "))
	}
}

// extractCSS collects text of style blocks.
func extractCSS(s string) string {
	tree, err := markup.Parse(s)
	if err != nil {
		return ""
	}
	var sheets []string
	markup.Walk(tree.Root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Style {
			if text := strings.TrimSpace(markup.Text(n)); text != "" {
				sheets = append(sheets, text)
			}
			return false
		}
		return true
	})
	return strings.Join(sheets, "\n")
}

// sniff checks that content matches declared format.
func sniff(data []byte, format common.SourceFormat) string {
	switch format {
	case common.SourceFormatDocx:
		if !filetype.IsArchive(data) && !filetype.IsDocument(data) {
			return "content does not look like docx package"
		}
	case common.SourceFormatRtf:
		if !filetype.Is(data, "rtf") {
			return "content does not look like rtf document"
		}
	}
	return ""
}
