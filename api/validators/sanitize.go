package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims whitespace, strips control characters, and truncates
// to maxLen bytes. Order notes and payment refs end up on kitchen displays
// and receipts, so they are cleaned rather than rejected.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(input))

	if maxLen > 0 && len(cleaned) > maxLen {
		return cleaned[:maxLen]
	}
	return cleaned
}
