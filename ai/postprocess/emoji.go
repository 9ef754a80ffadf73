package postprocess

import (
	"regexp"
	"sync"
)

// emojiPattern covers the pictographic blocks plus the joiners and selectors that glue
// multi-codepoint emoji together.
var emojiPattern = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{1F1E6}-\x{1F1FF}\x{2300}-\x{23FF}\x{FE0F}\x{200D}\x{20E3}]`)
})

// HasEmoji reports whether text contains any emoji.
func HasEmoji(text string) bool {
	return emojiPattern().MatchString(text)
}

// StripEmoji removes every emoji from text.
func StripEmoji(text string) string {
	return emojiPattern().ReplaceAllString(text, "")
}
