package postprocess

import (
	"regexp"
	"strings"

	"github.com/hrygo/clipsense/ai/catalog"
)

var (
	excessNewlines = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)
	spaceRun       = regexp.MustCompile(`[ \t]{2,}`)
)

// Process applies, in order: emoji gating, format repair, the platform cosmetic pass and
// whitespace normalization. It is pure and total; a rule that does not match is skipped.
func Process(output string, platform catalog.Platform, original string, format catalog.Format) string {
	output = strings.ReplaceAll(output, "\r\n", "\n")

	if !HasEmoji(original) {
		output = StripEmoji(output)
	}
	output = repairFormat(output, original, format)
	output = applyPlatform(output, platform, format)
	return normalizeWhitespace(output, format)
}

func normalizeWhitespace(s string, format catalog.Format) string {
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)
	switch format {
	case catalog.FormatCode, catalog.FormatJSON, catalog.FormatList, catalog.FormatTable,
		catalog.FormatEmail, catalog.FormatChat, catalog.FormatThread:
		return s
	default:
		return spaceRun.ReplaceAllString(s, " ")
	}
}
