package patch

import (
	"fmt"
	"maps"
	"slices"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"docconv/common"
	"docconv/config"
	"docconv/css"
	"docconv/markup"
	"docconv/sanitize"
)

// Engine applies patches. It holds no mutable state and may be shared.
type Engine struct {
	maxChanges    int
	previewLength int
	log           *zap.Logger
}

func NewEngine(cfg *config.PatchConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{previewLength: DefaultPreviewLength, log: log.Named("patch")}
	if cfg != nil {
		e.maxChanges, e.previewLength = cfg.MaxChanges, cfg.PreviewLength
	}
	return e
}

// Apply validates patch and applies its changes in order. Nothing is
// applied when validation fails. Fragments are returned as fragments, full
// documents as full documents.
func (e *Engine) Apply(content string, p *DocumentPatch) (string, error) {
	if err := p.Validate(e.maxChanges); err != nil {
		return "", err
	}

	tree, err := markup.Parse(content)
	if err != nil {
		return "", fmt.Errorf("unable to parse document: %w", err)
	}
	doc := goquery.NewDocumentFromNode(tree.Root)

	for i, c := range p.Changes {
		sel, _ := parseSelector(c.Selector)
		matched := doc.FindMatcher(sel)
		e.log.Debug("Applying change",
			zap.Int("index", i), zap.Stringer("operation", c.Operation), zap.Stringer("selector", sel), zap.Int("matched", matched.Length()))
		if matched.Length() == 0 {
			continue
		}
		switch c.Operation {
		case common.OperationReplace, common.OperationModify:
			style := css.FormatMap(c.Style)
			matched.Each(func(_ int, s *goquery.Selection) {
				existing, _ := s.Attr("style")
				s.SetAttr("style", css.Append(existing, style))
				e.setAttributes(s, c.Attributes)
			})
		case common.OperationAdd:
			matched.AppendHtml(sanitize.Sanitize(c.Content))
		case common.OperationRemove:
			matched.Remove()
		}
	}

	out, err := tree.Render()
	if err != nil {
		return "", fmt.Errorf("unable to render document: %w", err)
	}
	return out, nil
}

// setAttributes sets attributes allowed on element by sanitizing policy,
// the rest is dropped.
func (e *Engine) setAttributes(s *goquery.Selection, attrs map[string]string) {
	if len(attrs) == 0 {
		return
	}
	tag := goquery.NodeName(s)
	kept := sanitize.Attributes(tag, attrs)
	if len(kept) < len(attrs) {
		e.log.Debug("Dropped disallowed attributes", zap.String("element", tag), zap.Int("requested", len(attrs)), zap.Int("kept", len(kept)))
	}
	for _, k := range slices.Sorted(maps.Keys(kept)) {
		s.SetAttr(k, kept[k])
	}
}
