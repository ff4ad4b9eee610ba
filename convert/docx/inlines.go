package docx

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// inlines renders paragraph level content (runs, hyperlinks, fields) of el
// into n.
func (w *writer) inlines(n *html.Node, p *part, el *etree.Element) {
	for _, c := range el.ChildElements() {
		switch c.Tag {
		case "r":
			w.run(n, p, c)

		case "hyperlink":
			href := ""
			if id := c.SelectAttrValue("id", ""); id != "" {
				if rel, ok := p.relTarget(id, relHyperlink); ok {
					href = rel.Target
				}
			}
			if anchor := c.SelectAttrValue("anchor", ""); anchor != "" {
				href += "#" + anchor
			}
			a := element(atom.A, "href", href)
			w.inlines(a, p, c)
			n.AppendChild(a)

		case "bookmarkStart":
			if name := c.SelectAttrValue("name", ""); name != "" && !strings.HasPrefix(name, "_") {
				n.AppendChild(element(atom.A, "id", name))
			}

		case "ins", "smartTag", "customXml", "fldSimple", "dir", "bdo":
			w.inlines(n, p, c)

		case "sdt":
			if content := child(c, "sdtContent"); content != nil {
				w.inlines(n, p, content)
			}

		case "oMath", "oMathPara":
			w.warn("equations are not supported")

		case "pPr", "del", "bookmarkEnd", "proofErr", "commentRangeStart", "commentRangeEnd",
			"permStart", "permEnd", "moveFromRangeStart", "moveFromRangeEnd", "lastRenderedPageBreak":

		default:
			w.log.Debug("Unexpected paragraph content, ignoring", zap.String("tag", c.Tag))
		}
	}
}

func (w *writer) run(n *html.Node, p *part, r *etree.Element) {
	rPr := child(r, "rPr")

	var rf runFormat
	for _, st := range w.styles.chain(val(child(rPr, "rStyle"))) {
		rf.apply(st.rPr)
	}
	rf.apply(rPr)

	// innermost node receiving run content
	target := n
	wrap := func(a atom.Atom) {
		e := element(a)
		target.AppendChild(e)
		target = e
	}

	if decl := rf.declarations(true); len(decl) > 0 {
		span := element(atom.Span)
		setStyle(span, decl)
		target.AppendChild(span)
		target = span
	}
	if rf.bold {
		wrap(atom.Strong)
	}
	if rf.italic {
		wrap(atom.Em)
	}
	if rf.underline {
		wrap(atom.U)
	}
	if rf.strike {
		wrap(atom.S)
	}
	switch rf.vertAlign {
	case "superscript":
		wrap(atom.Sup)
	case "subscript":
		wrap(atom.Sub)
	}

	for _, c := range r.ChildElements() {
		switch c.Tag {
		case "t":
			appendText(target, c.Text())
		case "tab", "ptab":
			appendText(target, "\t")
		case "br", "cr":
			if c.SelectAttrValue("type", "") == "page" {
				target.AppendChild(element(atom.Br, "style", "page-break-after: always"))
			} else {
				target.AppendChild(element(atom.Br))
			}
		case "noBreakHyphen":
			appendText(target, "\u2011")
		case "softHyphen":
			appendText(target, "\u00ad")
		case "sym":
			if code, err := strconv.ParseUint(c.SelectAttrValue("char", ""), 16, 32); err == nil && code >= 0x20 {
				appendText(target, string(rune(code)))
			}
		case "drawing":
			w.drawing(target, p, c)
		case "pict", "object":
			if img := c.FindElement(".//imagedata"); img != nil {
				w.image(target, p, img.SelectAttrValue("id", ""), "", 0, 0)
			}
		case "footnoteReference", "endnoteReference":
			w.warn("footnotes and endnotes are not supported")
		}
	}

	// drop formatting wrappers without content
	if target != n && !hasContent(n.LastChild) {
		n.RemoveChild(n.LastChild)
	}
}

func appendText(n *html.Node, s string) {
	if s == "" {
		return
	}
	if last := n.LastChild; last != nil && last.Type == html.TextNode {
		last.Data += s
		return
	}
	n.AppendChild(text(s))
}

func (w *writer) drawing(n *html.Node, p *part, d *etree.Element) {
	blip := d.FindElement(".//blip")
	if blip == nil {
		w.warn("drawing without picture skipped")
		return
	}

	var width, height int
	if ext := d.FindElement(".//extent"); ext != nil {
		if cx, err := strconv.Atoi(ext.SelectAttrValue("cx", "")); err == nil {
			width = cx / emuPerPixel
		}
		if cy, err := strconv.Atoi(ext.SelectAttrValue("cy", "")); err == nil {
			height = cy / emuPerPixel
		}
	}
	alt := ""
	if pr := d.FindElement(".//docPr"); pr != nil {
		alt = pr.SelectAttrValue("descr", pr.SelectAttrValue("name", ""))
	}

	id := blip.SelectAttrValue("embed", "")
	if id == "" {
		id = blip.SelectAttrValue("link", "")
	}
	w.image(n, p, id, alt, width, height)
}

func (w *writer) image(n *html.Node, p *part, id, alt string, width, height int) {
	rel, ok := p.relTarget(id, relImage)
	if !ok {
		w.warn(fmt.Sprintf("image %q has no relationship, skipped", id))
		return
	}
	if !rel.External {
		w.referenced[strings.ToLower(rel.Target)] = struct{}{}
	}

	var src string
	switch {
	case rel.External:
		if !strings.HasPrefix(rel.Target, "http://") && !strings.HasPrefix(rel.Target, "https://") {
			w.warn("linked image " + rel.Target + " skipped")
			return
		}
		src = rel.Target

	case w.inline == nil:
		w.warn("embedded images are not inlined")
		return

	default:
		data, err := w.pkg.Read(rel.Target)
		if err != nil {
			w.log.Warn("Unable to read image", zap.String("part", rel.Target), zap.Error(err))
			w.warn("image " + path.Base(rel.Target) + " could not be read")
			return
		}
		contentType := ""
		if t := filetype.GetType(strings.TrimPrefix(strings.ToLower(path.Ext(rel.Target)), ".")); t != filetype.Unknown {
			contentType = t.MIME.Value
		}
		if src, err = w.inline(data, contentType); err != nil {
			w.log.Warn("Unable to inline image", zap.String("part", rel.Target), zap.Error(err))
			w.warn("image " + path.Base(rel.Target) + " skipped: " + err.Error())
			return
		}
		w.images++
	}

	img := element(atom.Img, "src", src, "alt", alt)
	if width > 0 {
		img.Attr = append(img.Attr, html.Attribute{Key: "width", Val: strconv.Itoa(width)})
	}
	if height > 0 {
		img.Attr = append(img.Attr, html.Attribute{Key: "height", Val: strconv.Itoa(height)})
	}
	n.AppendChild(img)
}
