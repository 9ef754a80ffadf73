// Package postprocess repairs model output so the structure of the original text survives
// enhancement. Normalize is provider-agnostic cleanup; Process applies the format and platform
// rules.
package postprocess

import (
	"regexp"
	"strings"
)

var (
	// leadingTag matches bracketed labels such as "[ENHANCED]" or "[ANSWER]:".
	leadingTag = regexp.MustCompile(`^\s*\[[A-Z][A-Z _-]{1,30}\][ \t]*:?[ \t]*\n?`)

	// metaLine matches an introductory sentence announcing the result.
	metaLine = regexp.MustCompile(`(?i)^\s*(?:(?:sure|certainly|of course|okay|ok)[,!.]?[ \t]*)?(?:here(?:'s| is| are)|below is)[ \t]+(?:the|your|an?)[ \t]+[^\n:]{0,60}(?:version|text|rewrite|rewritten|enhanced|improved|revised|polished|prompt|message|email|answer)[^\n:]{0,20}:[ \t]*\n+`)

	// trailingOffer matches a closing offer of further help appended after the result.
	trailingOffer = regexp.MustCompile(`(?is)\n+[ \t]*(?:let me know if|i hope this helps|hope this helps|feel free to|would you like me to|if you(?:'d| would) like)[^\n]*\s*$`)

	// wrappingFence matches output wrapped in a single markdown or plain-text fence.
	wrappingFence = regexp.MustCompile("(?s)^```(?:markdown|md|text|plaintext)?[ \t]*\n(.*?)\n?```$")
)

var quotePairs = [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}}

// Normalize strips the labels, preambles and offers models add around the actual result.
// It is applied to every provider's raw output before Process.
func Normalize(raw string) string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))

	for {
		next := strings.TrimSpace(leadingTag.ReplaceAllString(s, ""))
		if next == s {
			break
		}
		s = next
	}

	if loc := metaLine.FindStringIndex(s); loc != nil && loc[1] < len(s) {
		s = strings.TrimSpace(s[loc[1]:])
	}
	if loc := trailingOffer.FindStringIndex(s); loc != nil && loc[0] > 0 {
		s = strings.TrimSpace(s[:loc[0]])
	}
	if m := wrappingFence.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	return unquote(s)
}

// unquote removes one pair of quotes wrapping the whole text when the text contains no other
// occurrence of that quote character.
func unquote(s string) string {
	for _, q := range quotePairs {
		if len(s) < len(q[0])+len(q[1])+1 {
			continue
		}
		if !strings.HasPrefix(s, q[0]) || !strings.HasSuffix(s, q[1]) {
			continue
		}
		inner := s[len(q[0]) : len(s)-len(q[1])]
		if strings.Contains(inner, q[0]) || strings.Contains(inner, q[1]) {
			continue
		}
		return strings.TrimSpace(inner)
	}
	return s
}
