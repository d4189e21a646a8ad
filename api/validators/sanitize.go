package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims input, collapses inner whitespace runs, and truncates
// to maxLen runes.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 || utf8.RuneCountInString(cleaned) <= maxLen {
		return cleaned
	}
	runes := []rune(cleaned)
	return strings.TrimSpace(string(runes[:maxLen]))
}
