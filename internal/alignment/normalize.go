package alignment

import "strings"

// Normalize drops carriage returns and collapses every whitespace run,
// newlines included, to a single space with no leading or trailing space.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(text, "\r", "")), " ")
}
