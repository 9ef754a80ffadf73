package postprocess

import (
	"regexp"

	"github.com/hrygo/clipsense/ai/catalog"
	"github.com/hrygo/clipsense/ai/internal/strutil"
)

// TwitterLimit is the maximum post length in characters.
const TwitterLimit = 280

var (
	sentenceEnd  = regexp.MustCompile(`([.!?])[ \t]+`)
	markdownBold = regexp.MustCompile(`\*\*([^*\n]+?)\*\*`)
	markdownItal = regexp.MustCompile(`__([^_\n]+?)__`)
)

// applyPlatform performs the platform-specific cosmetic pass.
func applyPlatform(output string, platform catalog.Platform, format catalog.Format) string {
	switch platform {
	case catalog.PlatformWhatsApp:
		switch format {
		case catalog.FormatCode, catalog.FormatList, catalog.FormatJSON, catalog.FormatTable:
			return output
		}
		return sentenceEnd.ReplaceAllString(output, "$1\n")
	case catalog.PlatformSlack:
		output = markdownBold.ReplaceAllString(output, "*$1*")
		return markdownItal.ReplaceAllString(output, "_${1}_")
	case catalog.PlatformTwitter:
		return strutil.Truncate(normalizeWhitespace(output, format), TwitterLimit)
	default:
		return output
	}
}
