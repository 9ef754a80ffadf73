package postprocess

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hrygo/clipsense/ai/catalog"
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n+`)
	numberedMarker = regexp.MustCompile(`^[ \t]*\d{1,3}([.)])`)
	bulletMarker   = regexp.MustCompile(`^[ \t]*([-*•+])`)
)

// maxSignatureLines bounds how far from the end a closing line may sit to open a signature.
const maxSignatureLines = 6

// repairFormat restores structure the model dropped. Exactly one branch runs per format.
func repairFormat(output, original string, format catalog.Format) string {
	switch format {
	case catalog.FormatEmail:
		return repairEmail(output, original)
	case catalog.FormatCode:
		return repairCode(output, original)
	case catalog.FormatList:
		return repairList(output, original)
	case catalog.FormatChat:
		return repairChat(output, original)
	case catalog.FormatThread:
		return repairThread(output, original)
	case catalog.FormatMessage:
		return repairMessage(output, original)
	default:
		return output
	}
}

func repairEmail(output, original string) string {
	if headers := catalog.EmailHeaderLine.FindAllString(original, -1); len(headers) > 0 &&
		!catalog.EmailHeaderLine.MatchString(output) {
		output = strings.Join(headers, "\n") + "\n\n" + output
	}
	if sig := signatureBlock(original); sig != "" && signatureBlock(output) == "" && !strings.Contains(output, sig) {
		output = strings.TrimRight(output, " \t\n") + "\n\n" + sig
	}
	return output
}

// signatureBlock returns the trailing signature of text: everything from a "--" delimiter, or
// from the last closing line ("Regards," ...) that is followed by content near the end.
func signatureBlock(text string) string {
	lines := catalog.Lines(strings.TrimRight(text, " \t\n"))

	for i, line := range lines {
		if catalog.SignatureDelimiter.MatchString(line) && i < len(lines)-1 {
			return strings.Join(lines[i:], "\n")
		}
	}

	for i := len(lines) - 2; i >= 0 && i >= len(lines)-maxSignatureLines; i-- {
		if !catalog.ClosingLine.MatchString(lines[i]) {
			continue
		}
		if strings.TrimSpace(strings.Join(lines[i+1:], "")) == "" {
			continue
		}
		return strings.Join(lines[i:], "\n")
	}
	return ""
}

func repairCode(output, original string) string {
	blocks := catalog.CodeFence.FindAllString(original, -1)
	if len(blocks) == 0 {
		blocks = catalog.InlineCode.FindAllString(original, -1)
	}
	if len(blocks) == 0 {
		return output
	}
	if catalog.CodeFence.MatchString(output) || catalog.InlineCode.MatchString(output) {
		return output
	}
	return strings.TrimRight(output, " \t\n") + "\n\n" + strings.Join(blocks, "\n\n")
}

func repairList(output, original string) string {
	if catalog.CountLines(catalog.ListLine, original) == 0 || catalog.CountLines(catalog.ListLine, output) > 0 {
		return output
	}

	items := paragraphs(output)
	if len(items) < 2 {
		items = nonBlankLines(output)
	}

	numbered, sep, bullet := listStyle(original)
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if numbered {
			sb.WriteString(strconv.Itoa(i+1) + sep + " ")
		} else {
			sb.WriteString(bullet + " ")
		}
		sb.WriteString(strings.Join(strings.Fields(item), " "))
	}
	return sb.String()
}

// listStyle reports the marker style of the first list line in text.
func listStyle(text string) (numbered bool, sep, bullet string) {
	for _, line := range catalog.Lines(text) {
		if !catalog.ListLine.MatchString(line) {
			continue
		}
		if m := numberedMarker.FindStringSubmatch(line); m != nil {
			return true, m[1], ""
		}
		if m := bulletMarker.FindStringSubmatch(line); m != nil {
			return false, "", m[1]
		}
	}
	return false, "", "-"
}

func repairChat(output, original string) string {
	speakers := catalog.Speakers(original)
	if len(speakers)-catalog.CountLines(catalog.ChatLines, output) < 1 {
		return output
	}
	paras := paragraphs(output)
	if len(paras) != len(speakers) {
		return output
	}
	for i, p := range paras {
		if !catalog.ChatLines.MatchString(p) {
			paras[i] = speakers[i] + ": " + p
		}
	}
	return strings.Join(paras, "\n\n")
}

func repairThread(output, original string) string {
	var quoted []string
	for _, line := range catalog.Lines(original) {
		if catalog.QuoteLine.MatchString(line) {
			quoted = append(quoted, line)
		}
	}
	if len(quoted) == 0 || catalog.CountLines(catalog.QuoteLine, output) > 0 {
		return output
	}
	return strings.Join(quoted, "\n") + "\n\n" + output
}

// repairMessage removes email-style salutations and closings the model added to a casual message.
func repairMessage(output, original string) string {
	if catalog.ClosingLine.MatchString(original) || catalog.SalutationLine.MatchString(original) {
		return output
	}

	lines := catalog.Lines(output)
	kept := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if catalog.SalutationLine.MatchString(line) {
			continue
		}
		if catalog.ClosingLine.MatchString(line) && isSignoffTail(lines[i+1:]) {
			break
		}
		kept = append(kept, line)
	}

	if strings.TrimSpace(strings.Join(kept, "")) == "" {
		return output
	}
	return strings.Join(kept, "\n")
}

// isSignoffTail reports whether the lines after a closing are at most a short name block.
func isSignoffTail(rest []string) bool {
	n := 0
	for _, line := range rest {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		n++
		if n > 2 || len(strings.Fields(trimmed)) > 4 {
			return false
		}
	}
	return true
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(strings.TrimSpace(text), -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nonBlankLines(text string) []string {
	var out []string
	for _, line := range catalog.Lines(text) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
