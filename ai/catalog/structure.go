package catalog

import (
	"regexp"
	"strings"
)

// Structural patterns shared by format detection and post-processing repair.
// Line patterns (no (?m) flag) are meant to be applied to a single line.
var (
	EmailHeaderLine    = regexp.MustCompile(`(?mi)^(?:from|to|subject|date|cc|bcc):[^\n]*$`)
	SignatureDelimiter = regexp.MustCompile(`(?m)^--[ \t]*$`)
	ClosingLine        = regexp.MustCompile(`(?mi)^[ \t]*(?:best regards|kind regards|warm regards|regards|sincerely|best|thank you|thanks|cheers|yours truly),?[ \t]*$`)
	SalutationLine     = regexp.MustCompile(`(?mi)^[ \t]*(?:dear|hello|hi|hey)\b[^\n,]{0,40},[ \t]*$`)
	EmailAddress       = regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`)

	CodeFence  = regexp.MustCompile("(?s)```.*?```")
	InlineCode = regexp.MustCompile("`[^`\n]+`")

	ListLine   = regexp.MustCompile(`^[ \t]*(?:[-*•+]|\d{1,3}[.)])[ \t]+\S`)
	TableRow   = regexp.MustCompile(`^[^|\n]*\|[^|\n]*\|[^\n]*$`)
	JSONObject = regexp.MustCompile(`(?s)^\s*\{\s*"[^"\n]+"\s*:.*\}\s*$`)
	ChatLine   = regexp.MustCompile(`^[ \t]*(?:\[[^\]\n]{1,20}\][ \t]*)?([A-Z][\w.'-]*(?: [A-Z][\w.'-]*)?):[ \t]+\S`)
	QuoteLine  = regexp.MustCompile(`^[ \t]*>`)
)

// headerLabels name a field rather than a speaker when they open a "Label: value" line.
var headerLabels = map[string]struct{}{
	"subject": {}, "date": {}, "time": {}, "note": {}, "notes": {}, "from": {}, "to": {},
	"cc": {}, "bcc": {}, "re": {}, "fwd": {}, "when": {}, "where": {}, "location": {},
	"agenda": {}, "status": {}, "priority": {}, "summary": {}, "deadline": {}, "reminder": {},
	"attendees": {}, "ps": {}, "p.s.": {}, "todo": {}, "update": {},
}

// IsHeaderLabel reports whether label is a field name such as "Subject" or "Date".
func IsHeaderLabel(label string) bool {
	_, ok := headerLabels[strings.ToLower(label)]
	return ok
}

// LineMatcher reports whether a single line matches. *regexp.Regexp satisfies it.
type LineMatcher interface {
	MatchString(line string) bool
}

// SpeakerLines matches chat lines of Pattern whose label is a speaker. The first capture
// group of Pattern, when present, is the label.
type SpeakerLines struct {
	Pattern *regexp.Regexp
}

// ChatLines matches built-in chat lines.
var ChatLines = SpeakerLines{Pattern: ChatLine}

// Speaker returns the speaker label of line.
func (s SpeakerLines) Speaker(line string) (string, bool) {
	m := s.Pattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	if len(m) < 2 {
		return m[0], true
	}
	if IsHeaderLabel(m[1]) {
		return "", false
	}
	return m[1], true
}

func (s SpeakerLines) MatchString(line string) bool {
	_, ok := s.Speaker(line)
	return ok
}

// Lines splits text on newlines, tolerating CRLF input.
func Lines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// CountLines returns how many lines of text match re.
func CountLines(re LineMatcher, text string) int {
	n := 0
	for _, line := range Lines(text) {
		if re.MatchString(line) {
			n++
		}
	}
	return n
}

// LongestRun returns the longest run of consecutive lines matching re.
func LongestRun(re LineMatcher, text string) int {
	best, run := 0, 0
	for _, line := range Lines(text) {
		if re.MatchString(line) {
			run++
			if run > best {
				best = run
			}
			continue
		}
		run = 0
	}
	return best
}

// Speakers returns the chat speaker labels of text in order of appearance, one per chat line.
func Speakers(text string) []string {
	var speakers []string
	for _, line := range Lines(text) {
		if speaker, ok := ChatLines.Speaker(line); ok {
			speakers = append(speakers, speaker)
		}
	}
	return speakers
}
