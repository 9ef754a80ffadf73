// Package classifier scores captured text against the pattern catalog and picks the best
// matching platform, tone and structural format.
package classifier

import (
	"strings"
	"unicode/utf8"

	"github.com/hrygo/clipsense/ai/catalog"
)

// Result is the outcome of a classification. Confidence is the winning platform's
// accumulated score, used for ranking and threshold gating only.
type Result struct {
	Platform   catalog.Platform `json:"platform"`
	Tone       catalog.Tone     `json:"tone"`
	Format     catalog.Format   `json:"format"`
	Confidence int              `json:"confidence"`
}

// Classifier is stateless after construction and safe for concurrent use.
type Classifier struct {
	catalog *catalog.Catalog
}

// New creates a classifier over c. A nil catalog uses catalog.Default().
func New(c *catalog.Catalog) *Classifier {
	if c == nil {
		c = catalog.Default()
	}
	return &Classifier{catalog: c}
}

// Classify never fails: unmatched input degrades to general/neutral defaults.
func (c *Classifier) Classify(text string) Result {
	format := c.DetectFormat(text)
	platform, confidence := c.detectPlatform(text)
	tone := c.detectTone(text, format)

	return Result{
		Platform:   platform,
		Tone:       tone,
		Format:     format,
		Confidence: confidence,
	}
}

// DetectFormat runs the exclusive format chain: email, code, list, table, json, chat,
// thread, then message or text by length.
func (c *Classifier) DetectFormat(text string) catalog.Format {
	rules := c.catalog.Formats

	if EmailScore(rules, text) >= rules.EmailThreshold {
		return catalog.FormatEmail
	}
	if rules.CodeFence.MatchString(text) || codeKeywordHits(rules, text) >= rules.CodeKeywordThreshold {
		return catalog.FormatCode
	}
	if catalog.LongestRun(rules.ListLine, text) >= rules.ListMinRun {
		return catalog.FormatList
	}
	if catalog.CountLines(rules.TableRow, text) > 0 {
		return catalog.FormatTable
	}
	if rules.JSONObject.MatchString(text) {
		return catalog.FormatJSON
	}
	if catalog.LongestRun(catalog.SpeakerLines{Pattern: rules.ChatLine}, text) >= rules.ChatMinRun {
		return catalog.FormatChat
	}
	if catalog.CountLines(rules.QuoteLine, text) > 0 {
		return catalog.FormatThread
	}

	if utf8.RuneCountInString(text) < rules.MessageMaxLen {
		return catalog.FormatMessage
	}
	return catalog.FormatText
}

// EmailScore accumulates the weights of every email signal present in text.
func EmailScore(rules catalog.FormatRules, text string) int {
	score := 0
	for _, r := range rules.EmailSignals {
		if r.Pattern.MatchString(text) {
			score += r.Weight
		}
	}
	return score
}

func codeKeywordHits(rules catalog.FormatRules, text string) int {
	hits := 0
	for _, re := range rules.CodeKeywords {
		if re.MatchString(text) {
			hits++
		}
	}
	return hits
}

func (c *Classifier) detectPlatform(text string) (catalog.Platform, int) {
	lower := strings.ToLower(text)

	best, bestScore := catalog.PlatformGeneral, 0
	for _, sig := range c.catalog.Platforms {
		score := signatureScore(sig.Signature, text, lower)
		if sig.Platform == catalog.PlatformEmail && score < c.catalog.EmailPlatformThreshold {
			score = 0
		}
		if score > bestScore {
			best, bestScore = sig.Platform, score
		}
	}
	return best, bestScore
}

func (c *Classifier) detectTone(text string, format catalog.Format) catalog.Tone {
	lower := strings.ToLower(text)

	best, bestScore := catalog.ToneNeutral, 0
	for _, sig := range c.catalog.Tones {
		score := signatureScore(sig.Signature, text, lower)
		if score > bestScore {
			best, bestScore = sig.Tone, score
		}
	}
	if bestScore > 0 {
		return best
	}
	return fallbackTone(format)
}

// fallbackTone infers a register from structure alone when no tone signal fired.
func fallbackTone(format catalog.Format) catalog.Tone {
	switch format {
	case catalog.FormatCode, catalog.FormatJSON:
		return catalog.ToneTechnical
	case catalog.FormatEmail:
		return catalog.ToneFormal
	case catalog.FormatChat:
		return catalog.ToneCasual
	default:
		return catalog.ToneNeutral
	}
}

// signatureScore is 2 per matching pattern (or the rule's own weight) plus 1 per keyword
// found as a case-insensitive substring. lower must be strings.ToLower(text).
func signatureScore(sig catalog.Signature, text, lower string) int {
	score := 0
	for _, r := range sig.Rules {
		if r.Pattern.MatchString(text) {
			score += r.Weight
		}
	}
	for _, kw := range sig.Keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			score += catalog.KeywordWeight
		}
	}
	return score
}
