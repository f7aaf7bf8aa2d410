package textutil

import (
	"path/filepath"
	"strings"
	"unicode"
)

var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename and
// drops control characters. Slashes, backslashes, colons, and asterisks become
// dashes. The result is trimmed of surrounding whitespace and dots.
func SanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	return strings.Trim(fileNameReplacer.Replace(name), " .")
}

// DownloadName sanitizes name for a Content-Disposition header and forces the
// given extension. An empty result falls back to fallback.
func DownloadName(name, fallback, ext string) string {
	clean := SanitizeFileName(name)
	if clean == "" {
		clean = fallback
	}
	if !strings.EqualFold(filepath.Ext(clean), ext) {
		clean += ext
	}
	return clean
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
