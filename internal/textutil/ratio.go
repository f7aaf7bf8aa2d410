package textutil

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Ratio returns the normalized insertion/deletion similarity of a and b in
// the range 0 to 100. Two empty strings score 0.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 0
	}
	return 200 * float64(edlib.LCS(a, b)) / float64(total)
}

// TokenSortRatio compares a and b after sorting their processed tokens, so
// "go let's" and "Let's go!" score 100. Either side empty after processing
// scores 0.
func TokenSortRatio(a, b string) float64 {
	sa, sb := SortTokens(a), SortTokens(b)
	if sa == "" || sb == "" {
		return 0
	}
	return Ratio(sa, sb)
}
