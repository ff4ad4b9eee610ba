package convert

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"docconv/markup"
	"docconv/utils/debug"
)

// String returns readable description of conversion result. It exists
// solely for manual inspection during debugging.
func (r *Result) String() string {
	if r == nil {
		return "<nil Result>"
	}
	tw := debug.NewTreeWriter()
	tw.Line(0, "Result: method=%s fidelity=%d html=%d css=%d", r.Method, r.Fidelity, len(r.HTML), len(r.CSS))
	tw.Line(1, "Quality: %+v", r.Quality)
	if len(r.Warnings) > 0 {
		tw.Line(1, "Warnings: %d", len(r.Warnings))
		for i, w := range r.Warnings {
			tw.Line(2, "[%d] %s: %s", i, w.Severity, w.Message)
		}
	}

	tree, err := markup.Parse(r.HTML)
	if err != nil {
		tw.Line(1, "Unable to parse html: %v", err)
		return tw.String()
	}
	counts := make(map[string]int)
	for _, n := range markup.Elements(tree.Root) {
		counts[n.Data]++
	}
	tw.Counts(1, "Elements", counts)
	if !tree.Fragment {
		tw.Node(1, tree.Root)
		return tw.String()
	}
	for n := tree.Root.FirstChild; n != nil; n = n.NextSibling {
		tw.Node(1, n)
	}
	return tw.String()
}

// storeDebug puts final html and its tree dump into debug report.
func (c *Converter) storeDebug(id, fileName string, res *Result) {
	fileName = filepath.Base(fileName)
	c.rpt.StoreData(fmt.Sprintf("result-%s/%s.html", id, fileName), []byte(res.HTML))
	c.rpt.StoreData(fmt.Sprintf("result-%s/%s.txt", id, fileName), []byte(res.String()))
	c.log.Debug("Conversion result stored in report", zap.String("work_area", id))
}
