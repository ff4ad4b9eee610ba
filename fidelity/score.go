// Package fidelity estimates how much of source document formatting
// survived conversion.
package fidelity

import (
	"regexp"
	"strings"
)

// Checklist weights, they add up to MaxScore.
const (
	WeightTextIndent  = 20
	WeightMarginLeft  = 15
	WeightMarginRight = 15
	WeightFontSize    = 20
	WeightLineHeight  = 15
	WeightInlineStyle = 15

	MaxScore = 100
)

var inlineStyle = regexp.MustCompile(`(?i)<[a-z][^>]*\sstyle\s*=`)

type feature struct {
	name   string
	weight int
	found  func(lower string) bool
}

func contains(token string) func(string) bool {
	return func(lower string) bool { return strings.Contains(lower, token) }
}

var checklist = []feature{
	{"text-indent", WeightTextIndent, contains("text-indent")},
	{"margin-left", WeightMarginLeft, contains("margin-left")},
	{"margin-right", WeightMarginRight, contains("margin-right")},
	{"font-size", WeightFontSize, contains("font-size")},
	{"line-height", WeightLineHeight, contains("line-height")},
	{"inline-style", WeightInlineStyle, inlineStyle.MatchString},
}

// Score returns value in [0, MaxScore]: sum of weights of formatting
// features present in markup. Presence of a feature can only add points.
func Score(html string) int {
	lower := strings.ToLower(html)
	score := 0
	for _, f := range checklist {
		if f.found(lower) {
			score += f.weight
		}
	}
	return min(score, MaxScore)
}

// Missing lists checklist features absent from markup.
func Missing(html string) []string {
	lower := strings.ToLower(html)
	var out []string
	for _, f := range checklist {
		if !f.found(lower) {
			out = append(out, f.name)
		}
	}
	return out
}
