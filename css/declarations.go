// Package css works with CSS declarations found in style attributes and
// style blocks of converted documents. It does not attempt to compute
// cascade, only to read and rewrite individual declarations.
package css

import (
	"errors"
	"io"
	"maps"
	"slices"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

func (d Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Value + " !important"
	}
	return d.Property + ": " + d.Value
}

// RewriteFunc receives property (lower case) and raw value of a
// declaration and returns replacement value and true when value should be
// changed.
type RewriteFunc func(property, value string) (string, bool)

// ParseInline parses content of a style attribute. Malformed declarations
// are skipped.
func ParseInline(style string) []Declaration {
	if strings.TrimSpace(style) == "" {
		return nil
	}

	var decls []Declaration
	parser := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if skippable(parser.Err()) {
				continue
			}
			return decls
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			d := makeDeclaration(data, parser.Values())
			if d.Property != "" {
				decls = append(decls, d)
			}
		}
	}
}

// Lookup returns value of the last declaration of property in decls.
func Lookup(decls []Declaration, property string) (string, bool) {
	property = strings.ToLower(property)
	for i := len(decls) - 1; i >= 0; i-- {
		if decls[i].Property == property {
			return decls[i].Value, true
		}
	}
	return "", false
}

// Format renders declarations as style attribute value.
func Format(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "; ")
}

// FormatMap renders property map as style attribute value. Keys are
// converted to dash-case and sorted, so output does not depend on map
// iteration order. When several keys name the same property the one sorting
// first wins ("font-size" over "fontSize"). Entries with empty key or value
// are skipped.
func FormatMap(m map[string]string) string {
	raw := slices.Sorted(maps.Keys(m))
	keys := make([]string, 0, len(raw))
	values := make(map[string]string, len(raw))
	for _, k := range raw {
		v := strings.TrimSpace(m[k])
		k = DashCase(strings.TrimSpace(k))
		if k == "" || v == "" {
			continue
		}
		if _, dup := values[k]; dup {
			continue
		}
		keys = append(keys, k)
		values[k] = v
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+values[k])
	}
	return strings.Join(parts, "; ")
}

// Append joins existing style attribute value with additional declarations
// so that later declarations win.
func Append(existing, addition string) string {
	existing = strings.TrimRight(strings.TrimSpace(existing), ";")
	addition = strings.TrimSpace(addition)
	switch {
	case existing == "":
		return addition
	case addition == "":
		return existing
	}
	return strings.TrimSpace(existing) + "; " + addition
}

// DashCase converts camelCase property names ("marginLeft") to their CSS
// form ("margin-left"). Names already in dash-case are only lower-cased.
func DashCase(name string) string {
	var sb strings.Builder
	sb.Grow(len(name) + 4)
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// RewriteInline applies fn to every declaration of style attribute value.
// When nothing changes original text is returned as is.
func RewriteInline(style string, fn RewriteFunc) (string, bool) {
	decls := ParseInline(style)
	changed := false
	for i := range decls {
		if v, ok := fn(decls[i].Property, decls[i].Value); ok && v != decls[i].Value {
			decls[i].Value = v
			changed = true
		}
	}
	if !changed {
		return style, false
	}
	return Format(decls), true
}

func makeDeclaration(property []byte, values []css.Token) Declaration {
	d := Declaration{Property: strings.ToLower(strings.TrimSpace(string(property)))}
	raw := joinTokens(values)
	if i := strings.LastIndex(raw, "!"); i >= 0 && strings.EqualFold(strings.TrimSpace(raw[i+1:]), "important") {
		d.Important = true
		raw = strings.TrimSpace(raw[:i])
	}
	d.Value = raw
	return d
}

// joinTokens builds raw value text collapsing whitespace runs.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	pendingSpace := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			pendingSpace = sb.Len() > 0
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		sb.Write(t.Data)
	}
	return sb.String()
}

// skippable reports whether parser may continue after error.
func skippable(err error) bool {
	if err == nil || errors.Is(err, io.EOF) {
		return false
	}
	var perr *parse.Error
	return errors.As(err, &perr)
}
