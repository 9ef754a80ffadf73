package prompt

import (
	"strings"

	"github.com/hrygo/clipsense/ai/catalog"
)

// platformGuidelines is keyed by platform, then tone. Every platform carries a formal entry,
// which is the in-platform fallback for tones without a dedicated entry.
var platformGuidelines = map[catalog.Platform]map[catalog.Tone]string{
	catalog.PlatformEmail: {
		catalog.ToneFormal:       "Email: keep a clear subject focus, a courteous opening and closing only where the original has them, and short paragraphs.",
		catalog.ToneProfessional: "Email: be direct and polite, lead with the request or decision, and keep action items explicit.",
		catalog.ToneUrgent:       "Email: state the urgency and the deadline in the first sentence, then the required action.",
		catalog.ToneFriendly:     "Email: warm but concise; keep the personal touches the author wrote.",
	},
	catalog.PlatformWhatsApp: {
		catalog.ToneFormal: "WhatsApp: short sentences that read well on a phone; no headings or signatures.",
		catalog.ToneCasual: "WhatsApp: conversational and brief; keep the author's informal phrasing.",
	},
	catalog.PlatformSlack: {
		catalog.ToneFormal:    "Slack: concise and skimmable; use *bold* sparingly and keep channel names and @mentions untouched.",
		catalog.ToneCasual:    "Slack: friendly and brief, one idea per line; keep emoji shortcodes and @mentions as written.",
		catalog.ToneTechnical: "Slack: precise technical wording; keep code in backticks and mention links and identifiers exactly.",
		catalog.ToneUrgent:    "Slack: lead with the impact and the ask; keep it to a few short lines.",
	},
	catalog.PlatformTwitter: {
		catalog.ToneFormal: "Twitter/X: stay within 280 characters; keep hashtags and @handles exactly as written.",
		catalog.ToneCasual: "Twitter/X: punchy and conversational within 280 characters; keep hashtags and @handles.",
	},
	catalog.PlatformLinkedIn: {
		catalog.ToneFormal:       "LinkedIn: professional and positive; short paragraphs, no slang.",
		catalog.ToneProfessional: "LinkedIn: confident and specific about outcomes; avoid buzzword stacking.",
	},
	catalog.PlatformDiscord: {
		catalog.ToneFormal: "Discord: community-friendly and clear; keep mentions, roles and channel references intact.",
		catalog.ToneCasual: "Discord: relaxed and brief; keep the author's slang and emotes.",
	},
	catalog.PlatformGitHub: {
		catalog.ToneFormal:    "GitHub: precise and actionable; keep issue/PR references, code spans and file paths exact.",
		catalog.ToneTechnical: "GitHub: technical and reproducible; preserve code blocks, commands and error output verbatim.",
	},
	catalog.PlatformTeams: {
		catalog.ToneFormal:       "Microsoft Teams: professional and concise; keep meeting details (time, link, attendees) unchanged.",
		catalog.ToneProfessional: "Microsoft Teams: clear next steps and owners; keep it brief.",
	},
	catalog.PlatformTelegram: {
		catalog.ToneFormal: "Telegram: clear and compact; keep links and @usernames intact.",
	},
	catalog.PlatformSMS: {
		catalog.ToneFormal: "SMS: very short and plain; no formatting, greetings or signatures.",
		catalog.ToneCasual: "SMS: short and casual, like a text to a friend.",
	},
	catalog.PlatformGeneral: {
		catalog.ToneFormal:       "Use clear, correct and polite language.",
		catalog.ToneCasual:       "Keep the relaxed, conversational register of the original.",
		catalog.ToneUrgent:       "Make the urgency and the required action unmistakable up front.",
		catalog.ToneTechnical:    "Use precise technical terminology and keep identifiers and code exact.",
		catalog.ToneProfessional: "Be professional, direct and specific.",
		catalog.ToneFriendly:     "Keep a warm, approachable tone.",
		catalog.ToneBusiness:     "Be businesslike: outcomes, numbers and next steps first.",
		catalog.ToneNeutral:      "Keep a neutral, clear register.",
	},
}

// formatGuidelines is prefixed to the platform guideline when the format is not plain text.
var formatGuidelines = map[catalog.Format]string{
	catalog.FormatEmail:   "The input is an email. Keep its header lines, greeting and signature block exactly where they are.",
	catalog.FormatCode:    "The input contains code. Never change code inside fences or backticks; only improve the surrounding prose.",
	catalog.FormatList:    "The input is a list. Keep it a list with the same marker style and one item per line.",
	catalog.FormatTable:   "The input is a table. Keep the pipe-delimited rows and column order.",
	catalog.FormatJSON:    "The input is JSON. Keep it valid JSON with the same keys and structure.",
	catalog.FormatChat:    "The input is a chat transcript. Keep every \"Speaker: message\" line and the speaker order.",
	catalog.FormatThread:  "The input quotes earlier messages with '>'. Keep the quoted lines unchanged and only improve the reply.",
	catalog.FormatMessage: "The input is a short message. Keep it a short message: do not turn it into an email and do not add greetings, sign-offs or signatures.",
}

// Guidelines resolves the guideline block for a classification. Unknown platforms fall back
// to general, unknown tones to the platform's formal entry and then to general/formal.
func Guidelines(platform catalog.Platform, tone catalog.Tone, format catalog.Format) string {
	var parts []string
	if format != catalog.FormatText {
		if g, ok := formatGuidelines[format]; ok {
			parts = append(parts, g)
		}
	}
	parts = append(parts, platformGuideline(platform, tone))
	return strings.Join(parts, "\n")
}

func platformGuideline(platform catalog.Platform, tone catalog.Tone) string {
	byTone, ok := platformGuidelines[platform]
	if !ok {
		byTone = platformGuidelines[catalog.PlatformGeneral]
	}
	if g, ok := byTone[tone]; ok {
		return g
	}
	if g, ok := byTone[catalog.ToneFormal]; ok {
		return g
	}
	return platformGuidelines[catalog.PlatformGeneral][catalog.ToneFormal]
}
