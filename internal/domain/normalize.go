package domain

import (
	"strings"
	"unicode"
)

// NormalizeAnswer prepares an answer for comparison with a card's back:
//   - trims leading/trailing whitespace
//   - applies Unicode case folding
//
// Inner whitespace and punctuation are preserved, so "ice cream" and
// "icecream" remain different answers.
func NormalizeAnswer(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return foldCase(text)
}

// AnswersMatch reports whether two answers are equal after normalization.
func AnswersMatch(given, expected string) bool {
	return NormalizeAnswer(given) == NormalizeAnswer(expected)
}

// foldCase maps every rune to its lowercase simple fold. strings.ToLower
// alone leaves some title-case and special forms (e.g. 'ſ') unmatched.
func foldCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		b.WriteRune(lowerFold(r))
	}
	return b.String()
}

// lowerFold returns the smallest lowercase rune in r's case-folding orbit.
func lowerFold(r rune) rune {
	best := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if unicode.IsLower(f) && (f < best || !unicode.IsLower(best)) {
			best = f
		}
	}
	return best
}
