package validators

import "strings"

// SanitizeString trims whitespace and caps length. Merchant-supplied free
// text (order numbers, callback URLs) is bounded before it reaches storage.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
