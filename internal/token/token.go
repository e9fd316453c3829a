// Package token normalizes corpus text into the lowercase, punctuation-free
// tokens the rest of the pipeline indexes and queries.
//
// Normalization: discard any character that is neither whitespace nor
// printable (invalid UTF-8 bytes decode to the printable U+FFFD and are kept),
// map every ASCII punctuation character to a space, Unicode case-fold, then
// split on whitespace. Given identical input bytes and the same case-folding
// table, the result is deterministic.
package token

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Tokens returns the tokens of text in order of appearance, duplicates
// included. Used where positional order matters, e.g. phrase verification.
func Tokens(text string) []string {
	normalized := normalize(text)
	return strings.Fields(normalized)
}

// UniqueTokens returns the distinct tokens of text as a set. Used for
// indexing and for parsing query terms, where order doesn't matter.
func UniqueTokens(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range Tokens(text) {
		out[t] = struct{}{}
	}
	return out
}

// normalize applies the discard/map/fold pipeline but does not split.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case !unicode.IsPrint(r):
			// discard: neither whitespace nor printable
			continue
		case isASCIIPunct(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return folder.String(b.String())
}

// isASCIIPunct reports whether r is one of the ASCII punctuation characters
// (the printable, non-alphanumeric, non-space ASCII range). Non-ASCII
// punctuation (e.g. Unicode em-dash) is left untouched, matching the
// original's "ASCII punctuation" scope.
func isASCIIPunct(r rune) bool {
	if r > unicode.MaxASCII {
		return false
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
