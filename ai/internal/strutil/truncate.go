// Package strutil provides rune-safe string helpers shared by the post-processing stages.
package strutil

import "unicode/utf8"

// Ellipsis is the suffix appended by Truncate.
const Ellipsis = "..."

// Truncate shortens s to at most maxLen runes, ending with Ellipsis when anything was cut.
// Returns empty string if maxLen <= 0 to prevent slice bounds panic.
func Truncate(s string, maxLen int) string {
	return TruncateWithSuffix(s, maxLen, Ellipsis)
}

// TruncateWithSuffix shortens s so that the result, suffix included, is at most maxLen runes.
// When maxLen is not larger than the suffix the runes are cut without a suffix.
func TruncateWithSuffix(s string, maxLen int, suffix string) string {
	if s == "" || maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	n := utf8.RuneCountInString(suffix)
	if maxLen <= n {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-n]) + suffix
}
