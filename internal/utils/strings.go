package utils

import "strings"

// ParseCSV splits a comma-separated flag value and returns trimmed non-empty
// entries, or nil when none remain.
func ParseCSV(s string) []string {
	var result []string
	for _, v := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// NormalizeSymbol upper-cases a ticker and strips surrounding whitespace.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
