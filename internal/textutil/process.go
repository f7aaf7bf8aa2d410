package textutil

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Process converts text to its comparison form: NFKC normalized, case folded,
// every rune that is not a letter, mark, or digit replaced by a space, and
// whitespace collapsed. Full-width Latin letters fold to ASCII.
func Process(text string) string {
	folded := folder.String(norm.NFKC.String(text))
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			return r
		}
		return ' '
	}, folded)
	return strings.Join(strings.Fields(mapped), " ")
}

// SortTokens processes text and returns its tokens sorted and space-joined.
func SortTokens(text string) string {
	tokens := strings.Fields(Process(text))
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}
