// Package textutil provides text processing utilities for fuzzy phrase
// matching and filename sanitization.
//
// TokenSortRatio scores two phrases from 0 to 100 regardless of word order:
// both sides are folded to a comparison form (NFKC, case folded, punctuation
// removed), their tokens sorted, and the results compared with a normalized
// insertion/deletion similarity over runes.
package textutil
