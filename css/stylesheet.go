package css

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// RewriteStylesheet applies fn to every declaration of style sheet text and
// returns re-serialized sheet. Rules, at-rules and comments are kept, but
// formatting is normalized. When fn changes nothing original text is
// returned unmodified.
func RewriteStylesheet(sheet string, fn RewriteFunc) (string, bool) {
	if strings.TrimSpace(sheet) == "" {
		return sheet, false
	}

	var sb strings.Builder
	sb.Grow(len(sheet))

	changed := false
	parser := css.NewParser(parse.NewInputString(sheet), false)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if skippable(parser.Err()) {
				continue
			}
			if !changed {
				return sheet, false
			}
			return strings.TrimSpace(sb.String()), true

		case css.CommentGrammar:
			sb.Write(data)
			sb.WriteByte('\n')

		case css.AtRuleGrammar:
			sb.Write(data)
			if v := joinTokens(parser.Values()); v != "" {
				sb.WriteByte(' ')
				sb.WriteString(v)
			}
			sb.WriteString(";\n")

		case css.BeginAtRuleGrammar:
			sb.Write(data)
			if v := joinTokens(parser.Values()); v != "" {
				sb.WriteByte(' ')
				sb.WriteString(v)
			}
			sb.WriteString(" {\n")

		case css.BeginRulesetGrammar:
			sb.WriteString(strings.TrimSpace(joinTokens(parser.Values())))
			sb.WriteString(" {\n")

		case css.EndRulesetGrammar, css.EndAtRuleGrammar:
			sb.WriteString("}\n")

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			d := makeDeclaration(data, parser.Values())
			if d.Property == "" {
				continue
			}
			if v, ok := fn(d.Property, d.Value); ok && v != d.Value {
				d.Value = v
				changed = true
			}
			sb.WriteString("  ")
			sb.WriteString(d.String())
			sb.WriteString(";\n")

		case css.TokenGrammar:
			sb.Write(data)
		}
	}
}
