package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// listLevel is open list element at nesting level.
type listLevel struct {
	node *html.Node
	kind listKind
}

// blocks renders block level content of container (body, table cell,
// header, content control) into parent.
func (w *writer) blocks(parent *html.Node, p *part, container *etree.Element) error {
	var lists []listLevel

	for _, el := range container.ChildElements() {
		if err := w.ctx.Err(); err != nil {
			return err
		}

		switch el.Tag {
		case "p":
			numID, ilvl, isItem := w.listItem(el)
			if !isItem {
				lists = nil
				w.paragraph(parent, p, el)
				continue
			}
			level, _ := strconv.Atoi(ilvl)
			level = max(0, min(level, 8))
			lists = w.openList(parent, lists, level, w.numbering.kind(numID, ilvl))
			li := element(atom.Li)
			lists[len(lists)-1].node.AppendChild(li)
			w.paragraphContent(li, p, el)

		case "tbl":
			lists = nil
			if err := w.table(parent, p, el); err != nil {
				return err
			}

		case "sdt":
			if content := child(el, "sdtContent"); content != nil {
				if err := w.blocks(parent, p, content); err != nil {
					return err
				}
			}

		case "customXml", "ins", "smartTag":
			if err := w.blocks(parent, p, el); err != nil {
				return err
			}

		case "sectPr", "tcPr", "bookmarkStart", "bookmarkEnd", "proofErr", "permStart", "permEnd", "del":

		default:
			w.warn("unsupported element " + el.Tag + " skipped")
		}
	}
	return nil
}

// listItem reports numbering of paragraph, from direct properties or
// paragraph style.
func (w *writer) listItem(p *etree.Element) (numID, ilvl string, ok bool) {
	pPr := child(p, "pPr")
	numPr := child(pPr, "numPr")
	if numPr == nil {
		for _, st := range w.styles.chain(val(child(pPr, "pStyle"))) {
			if np := child(st.pPr, "numPr"); np != nil {
				numPr = np
			}
		}
	}
	if numPr == nil {
		return "", "", false
	}
	numID = val(child(numPr, "numId"))
	if numID == "" || numID == "0" {
		return "", "", false
	}
	ilvl = val(child(numPr, "ilvl"))
	if ilvl == "" {
		ilvl = "0"
	}
	return numID, ilvl, true
}

// openList makes sure list of kind is open at level and returns updated
// stack of open lists.
func (w *writer) openList(parent *html.Node, lists []listLevel, level int, kind listKind) []listLevel {
	if len(lists) > level+1 {
		lists = lists[:level+1]
	}
	if len(lists) == level+1 && lists[level].kind != kind {
		lists = lists[:level]
	}
	for len(lists) < level+1 {
		a := atom.Ul
		if kind == listOrdered {
			a = atom.Ol
		}
		list := element(a)
		if len(lists) == 0 {
			parent.AppendChild(list)
		} else {
			top := lists[len(lists)-1].node
			if li := lastElementChild(top); li != nil {
				li.AppendChild(list)
			} else {
				top.AppendChild(list)
			}
		}
		lists = append(lists, listLevel{node: list, kind: kind})
	}
	return lists
}

func (w *writer) paragraph(parent *html.Node, p *part, el *etree.Element) {
	pPr := child(el, "pPr")
	styleID := val(child(pPr, "pStyle"))
	if styleID == "" {
		styleID = w.styles.defaultPar
	}

	tag := atom.P
	level := headingLevel(w.styles.name(styleID))
	if level == 0 {
		if lvl, err := strconv.Atoi(val(child(pPr, "outlineLvl"))); err == nil && lvl >= 0 && lvl < 6 {
			level = lvl + 1
		}
	}
	if level > 0 {
		tag = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}[level-1]
	}

	n := element(tag)
	parent.AppendChild(n)
	w.paragraphContent(n, p, el)
}

// paragraphContent sets paragraph formatting on n and renders runs into it.
func (w *writer) paragraphContent(n *html.Node, p *part, el *etree.Element) {
	pPr := child(el, "pPr")
	explicit := val(child(pPr, "pStyle"))
	styleID := explicit
	if styleID == "" {
		styleID = w.styles.defaultPar
	}

	var pf paraFormat
	var rf runFormat
	pf.apply(w.styles.defaultPPr)
	rf.apply(w.styles.defaultRPr)
	for _, st := range w.styles.chain(styleID) {
		pf.apply(st.pPr)
		rf.apply(st.rPr)
	}
	pf.apply(pPr)

	decl := rf.declarations(false)
	for k, v := range pf.css {
		decl[k] = v
	}
	if n.DataAtom == atom.Li {
		// list indentation is provided by list element
		delete(decl, "margin-left")
		delete(decl, "text-indent")
	}
	setStyle(n, decl)
	if explicit != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: className(w.styles.name(explicit))})
	}

	w.inlines(n, p, el)
	if !hasContent(n) && n.DataAtom == atom.P {
		// keep empty paragraphs visible
		n.AppendChild(element(atom.Br))
	}
}

func (w *writer) table(parent *html.Node, p *part, el *etree.Element) error {
	tbl := element(atom.Table)
	decl := map[string]string{"border-collapse": "collapse"}
	tblPr := child(el, "tblPr")
	bordered := hasBorders(child(tblPr, "tblBorders"))
	if styleID := val(child(tblPr, "tblStyle")); styleID != "" {
		for _, st := range w.styles.chain(styleID) {
			bordered = bordered || hasBorders(child(st.tblPr, "tblBorders"))
		}
	}
	if a := alignment(val(child(tblPr, "jc"))); a == "center" {
		decl["margin-left"] = "auto"
		decl["margin-right"] = "auto"
	}
	setStyle(tbl, decl)
	if bordered {
		tbl.Attr = append(tbl.Attr, html.Attribute{Key: "border", Val: "1"})
	}
	parent.AppendChild(tbl)

	// cells started by vMerge="restart" per grid column
	merges := make(map[int]*html.Node)

	for _, tr := range children(el, "tr") {
		row := element(atom.Tr)
		tbl.AppendChild(row)

		col := 0
		for _, tc := range children(tr, "tc") {
			tcPr := child(tc, "tcPr")
			span := 1
			if v, err := strconv.Atoi(val(child(tcPr, "gridSpan"))); err == nil && v > 1 {
				span = v
			}

			if vm := child(tcPr, "vMerge"); vm != nil && val(vm) != "restart" {
				if start, ok := merges[col]; ok {
					incrementRowspan(start)
					col += span
					continue
				}
			} else {
				delete(merges, col)
			}

			cell := element(atom.Td)
			if span > 1 {
				cell.Attr = append(cell.Attr, html.Attribute{Key: "colspan", Val: strconv.Itoa(span)})
			}
			cellDecl := make(map[string]string)
			if wd := child(tcPr, "tcW"); wd != nil && wd.SelectAttrValue("type", "dxa") == "dxa" {
				if pt, ok := twips(wd.SelectAttrValue("w", "")); ok && pt != "0pt" {
					cellDecl["width"] = pt
				}
			}
			if shd := child(tcPr, "shd"); shd != nil {
				if c := shd.SelectAttrValue("fill", ""); c != "" && !strings.EqualFold(c, "auto") {
					cellDecl["background-color"] = "#" + strings.ToLower(c)
				}
			}
			if va := val(child(tcPr, "vAlign")); va != "" {
				if va == "center" {
					va = "middle"
				}
				cellDecl["vertical-align"] = va
			}
			if bordered {
				cellDecl["border"] = "0.5pt solid #000000"
			}
			setStyle(cell, cellDecl)
			if vm := child(tcPr, "vMerge"); vm != nil && val(vm) == "restart" {
				merges[col] = cell
			}

			row.AppendChild(cell)
			if err := w.blocks(cell, p, tc); err != nil {
				return err
			}
			col += span
		}
	}
	return nil
}

func hasBorders(borders *etree.Element) bool {
	if borders == nil {
		return false
	}
	for _, b := range borders.ChildElements() {
		if v := val(b); v != "" && v != "nil" && v != "none" {
			return true
		}
	}
	return false
}

func incrementRowspan(n *html.Node) {
	for i, a := range n.Attr {
		if a.Key == "rowspan" {
			v, _ := strconv.Atoi(a.Val)
			n.Attr[i].Val = strconv.Itoa(max(v, 1) + 1)
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "rowspan", Val: "2"})
}

// headingLevel extracts the heading level from a paragraph style name.
// e.g. "heading 1" -> 1, "Title" -> 1, "Subtitle" -> 2.
func headingLevel(style string) int {
	lower := strings.ToLower(strings.ReplaceAll(style, " ", ""))

	switch lower {
	case "title":
		return 1
	case "subtitle":
		return 2
	}

	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if rest, ok := strings.CutPrefix(lower, prefix); ok {
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}

// className makes css class name from style name, Word output keeps names
// recognizable ("Normal" -> "docx-normal").
func className(style string) string {
	var sb strings.Builder
	sb.WriteString("docx-")
	for _, r := range strings.ToLower(style) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('-')
		}
	}
	return sb.String()
}
