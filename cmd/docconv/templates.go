package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"
	"golang.org/x/net/html/atom"

	"docconv/config"
	"docconv/convert"
	"docconv/markup"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	SourceFile string
	Format     string
	Method     string
	Fidelity   int
	Date       string
}

// documentTitle returns title element text or, when absent, text of the
// first heading.
func documentTitle(s string) string {
	tree, err := markup.Parse(s)
	if err != nil {
		return ""
	}
	for _, a := range []atom.Atom{atom.Title, atom.H1, atom.H2} {
		if n := markup.FindFirst(tree.Root, a); n != nil {
			if t := strings.Join(strings.Fields(markup.Text(n)), " "); t != "" {
				return t
			}
		}
	}
	return ""
}

func expandTemplate(res *convert.Result, src string, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Title:      documentTitle(res.HTML),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Format:     strings.TrimPrefix(strings.ToLower(filepath.Ext(src)), "."),
		Method:     res.Method.String(),
		Fidelity:   res.Fidelity,
		Date:       time.Now().Format("2006-01-02"),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
