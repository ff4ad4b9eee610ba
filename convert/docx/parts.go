package docx

import (
	"fmt"
	"path"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"docconv/archive"
)

const (
	relImage     = "/image"
	relHyperlink = "/hyperlink"
	relHeader    = "/header"
	relFooter    = "/footer"
)

type relationship struct {
	Type     string
	Target   string
	External bool
}

// part is XML part of the package together with its relationships.
type part struct {
	name string
	root *etree.Element
	rels map[string]relationship
}

func readXML(pkg *archive.Package, name string) (*etree.Element, error) {
	data, err := pkg.Read(name)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", name, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%s has no root element", name)
	}
	return root, nil
}

func readPart(pkg *archive.Package, name string) (*part, error) {
	root, err := readXML(pkg, name)
	if err != nil {
		return nil, err
	}
	p := &part{name: name, root: root, rels: make(map[string]relationship)}

	relsName := path.Join(path.Dir(name), "_rels", path.Base(name)+".rels")
	if !pkg.Has(relsName) {
		return p, nil
	}
	rels, err := readXML(pkg, relsName)
	if err != nil {
		return nil, err
	}
	for _, r := range rels.ChildElements() {
		if r.Tag != "Relationship" {
			continue
		}
		id := r.SelectAttrValue("Id", "")
		if id == "" {
			continue
		}
		p.rels[id] = relationship{
			Type:     r.SelectAttrValue("Type", ""),
			Target:   r.SelectAttrValue("Target", ""),
			External: strings.EqualFold(r.SelectAttrValue("TargetMode", ""), "External"),
		}
	}
	return p, nil
}

// relTarget returns package part name or external URL relationship points
// to, checking relationship type suffix.
func (p *part) relTarget(id, typ string) (relationship, bool) {
	r, ok := p.rels[id]
	if !ok || !strings.HasSuffix(r.Type, typ) {
		return relationship{}, false
	}
	if !r.External {
		r.Target = archive.Resolve(p.name, r.Target)
	}
	return r, true
}

type style struct {
	id      string
	name    string
	typ     string
	basedOn string
	pPr     *etree.Element
	rPr     *etree.Element
	tblPr   *etree.Element
}

// styles are paragraph, character and table styles from styles.xml with
// document defaults.
type styles struct {
	byID       map[string]*style
	defaultPPr *etree.Element
	defaultRPr *etree.Element
	defaultPar string
}

func parseStyles(root *etree.Element) *styles {
	s := &styles{byID: make(map[string]*style)}
	if root == nil {
		return s
	}
	if defs := child(root, "docDefaults"); defs != nil {
		s.defaultPPr = child(child(defs, "pPrDefault"), "pPr")
		s.defaultRPr = child(child(defs, "rPrDefault"), "rPr")
	}
	for _, el := range children(root, "style") {
		st := &style{
			id:      el.SelectAttrValue("styleId", ""),
			typ:     el.SelectAttrValue("type", ""),
			name:    val(child(el, "name")),
			basedOn: val(child(el, "basedOn")),
			pPr:     child(el, "pPr"),
			rPr:     child(el, "rPr"),
			tblPr:   child(el, "tblPr"),
		}
		if st.id == "" {
			continue
		}
		if st.name == "" {
			st.name = st.id
		}
		s.byID[st.id] = st
		if st.typ == "paragraph" && isOn(el.SelectAttr("default")) {
			s.defaultPar = st.id
		}
	}
	return s
}

// chain returns style with its ancestors, root first.
func (s *styles) chain(id string) []*style {
	var out []*style
	seen := make(map[string]bool)
	for id != "" && !seen[id] && len(out) < 16 {
		seen[id] = true
		st, ok := s.byID[id]
		if !ok {
			break
		}
		out = append(out, st)
		id = st.basedOn
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (s *styles) name(id string) string {
	if st, ok := s.byID[id]; ok {
		return st.name
	}
	return id
}

type listKind int

const (
	listBullet listKind = iota
	listOrdered
)

// numbering maps numId and level to list kind.
type numbering struct {
	abstract map[string]map[string]string // abstractNumId -> ilvl -> numFmt
	nums     map[string]string            // numId -> abstractNumId
}

func parseNumbering(root *etree.Element) *numbering {
	n := &numbering{abstract: make(map[string]map[string]string), nums: make(map[string]string)}
	if root == nil {
		return n
	}
	for _, a := range children(root, "abstractNum") {
		levels := make(map[string]string)
		for _, lvl := range children(a, "lvl") {
			levels[lvl.SelectAttrValue("ilvl", "0")] = val(child(lvl, "numFmt"))
		}
		n.abstract[a.SelectAttrValue("abstractNumId", "")] = levels
	}
	for _, num := range children(root, "num") {
		n.nums[num.SelectAttrValue("numId", "")] = val(child(num, "abstractNumId"))
	}
	return n
}

func (n *numbering) kind(numID, ilvl string) listKind {
	switch n.abstract[n.nums[numID]][ilvl] {
	case "bullet", "none", "":
		return listBullet
	}
	return listOrdered
}

func child(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func children(el *etree.Element, tag string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// val returns w:val attribute of element, empty for nil element.
func val(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return el.SelectAttrValue("val", "")
}

// isOn interprets OOXML boolean attribute, absent value means true.
func isOn(a *etree.Attr) bool {
	if a == nil {
		return false
	}
	switch strings.ToLower(a.Value) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

// toggle interprets OOXML on/off property element such as <w:b/>.
func toggle(el *etree.Element) bool {
	if el == nil {
		return false
	}
	a := el.SelectAttr("val")
	return a == nil || isOn(a)
}
