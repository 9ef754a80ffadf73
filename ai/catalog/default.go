package catalog

import "regexp"

// Default thresholds.
const (
	DefaultEmailFormatThreshold   = 3
	DefaultEmailPlatformThreshold = 4
	DefaultCodeKeywordThreshold   = 3
	DefaultMessageMaxLen          = 500
)

func rule(expr string) Rule {
	return Rule{Pattern: regexp.MustCompile(expr), Weight: PatternWeight}
}

func weighted(expr string, weight int) Rule {
	return Rule{Pattern: regexp.MustCompile(expr), Weight: weight}
}

// Default returns a fresh copy of the built-in catalog. The result is safe to extend with
// LoadOverrides without affecting other callers.
func Default() *Catalog {
	return &Catalog{
		Platforms:              defaultPlatforms(),
		Tones:                  defaultTones(),
		Formats:                defaultFormats(),
		EmailPlatformThreshold: DefaultEmailPlatformThreshold,
	}
}

func defaultPlatforms() []PlatformSignature {
	return []PlatformSignature{
		{Platform: PlatformEmail, Signature: Signature{
			Rules: []Rule{
				rule(`(?mi)^(?:from|to|subject|cc|bcc):`),
				rule(`(?mi)^[ \t]*(?:best regards|kind regards|regards|sincerely|yours truly),?[ \t]*$`),
				rule(`(?i)\bdear\s+\w+`),
				rule(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`),
			},
			Keywords: []string{"please find attached", "attached", "regards", "sincerely", "inbox", "email"},
		}},
		{Platform: PlatformWhatsApp, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\bwhatsapp\b`),
				rule(`(?i)\bwa\.me/`),
				rule(`(?i)\bvoice (?:note|message)s?\b`),
			},
			Keywords: []string{"whatsapp", "group chat", "forwarded", "blue ticks", "last seen"},
		}},
		{Platform: PlatformSlack, Signature: Signature{
			Rules: []Rule{
				rule(`<@[A-Z0-9]+>`),
				rule(`(?:^|\s)#[a-z0-9][a-z0-9_-]*-[a-z0-9_-]+`),
				rule(`:[a-z][a-z0-9_+-]*:`),
				rule(`(?i)\bslack\b`),
			},
			Keywords: []string{"slack", "channel", "huddle", "workspace", "standup", "thread"},
		}},
		{Platform: PlatformTwitter, Signature: Signature{
			Rules: []Rule{
				rule(`(?:^|\s)#[A-Za-z]\w+`),
				rule(`(?:^|\s)@\w{1,15}\b`),
				rule(`\bRT\b`),
				rule(`(?i)\b(?:twitter|tweet|x\.com)\b`),
			},
			Keywords: []string{"tweet", "retweet", "followers", "trending", "hashtag"},
		}},
		{Platform: PlatformLinkedIn, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\blinkedin\b`),
				rule(`(?i)\b(?:excited|thrilled|humbled|proud) to (?:announce|share)\b`),
				rule(`(?i)#(?:hiring|opentowork|leadership)\b`),
			},
			Keywords: []string{"network", "connection", "career", "recruiter", "opportunity", "endorse"},
		}},
		{Platform: PlatformDiscord, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\bdiscord\b`),
				rule(`<@!?\d+>`),
				rule(`(?i)\b(?:guild|raid|mods?)\b`),
			},
			Keywords: []string{"discord", "server", "voice channel", "nitro", "emote"},
		}},
		{Platform: PlatformGitHub, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\b(?:pull request|merge request|code review)\b`),
				rule(`(?:^|\s)#\d+\b`),
				rule(`(?i)\b(?:LGTM|nit:)`),
				rule(`(?i)\b(?:commit|rebase|repo)\b`),
			},
			Keywords: []string{"github", "pull request", "branch", "merge", "repository", "issue"},
		}},
		{Platform: PlatformTeams, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\b(?:microsoft|ms) teams\b`),
				rule(`(?i)\b(?:meeting invite|join the meeting|teams call)\b`),
			},
			Keywords: []string{"teams", "meeting", "calendar", "sharepoint", "outlook"},
		}},
		{Platform: PlatformTelegram, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\btelegram\b`),
				rule(`(?i)\bt\.me/`),
			},
			Keywords: []string{"telegram", "sticker", "supergroup", "bot"},
		}},
		{Platform: PlatformSMS, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\b(?:sms|txt|text me)\b`),
				rule(`(?i)\b(?:u|ur|thx|pls|plz)\b`),
			},
			Keywords: []string{"text message", "call me", "reply stop"},
		}},
		{Platform: PlatformGeneral},
	}
}

func defaultTones() []ToneSignature {
	return []ToneSignature{
		{Tone: ToneFormal, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\b(?:dear|sincerely|respectfully|hereby|pursuant|kindly)\b`),
				rule(`(?i)\b(?:i am writing to|please be advised|i would like to request)\b`),
			},
			Keywords: []string{"regards", "furthermore", "therefore", "accordingly"},
		}},
		{Tone: ToneCasual, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\b(?:hey|yo|lol|haha|gonna|wanna|kinda|sup)\b`),
				rule(`!{2,}`),
			},
			Keywords: []string{"cool", "awesome", "btw", "omg", "dude"},
		}},
		{Tone: ToneUrgent, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\b(?:urgent|asap|immediately|emergency|critical)\b`),
				rule(`(?i)\b(?:deadline|right away|time[- ]sensitive)\b`),
			},
			Keywords: []string{"right now", "quickly", "priority", "blocker"},
		}},
		{Tone: ToneTechnical, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\b(?:api|function|database|server|deploy|bug|stack trace|endpoint)\b`),
				rule("```"),
			},
			Keywords: []string{"implementation", "config", "latency", "algorithm", "refactor"},
		}},
		{Tone: ToneProfessional, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\b(?:per our|as discussed|following up|follow up|action items?)\b`),
				rule(`(?i)\b(?:stakeholders?|deliverables?)\b`),
			},
			Keywords: []string{"meeting", "schedule", "project", "update"},
		}},
		{Tone: ToneFriendly, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\b(?:thanks so much|hope you|glad|happy to|cheers)\b`),
				rule(`:\)|😊|🙂`),
			},
			Keywords: []string{"appreciate", "lovely", "great to", "welcome"},
		}},
		{Tone: ToneBusiness, Signature: Signature{
			Rules: []Rule{
				rule(`(?i)\b(?:revenue|roi|kpi|q[1-4]|budget|invoice|contract|proposal)\b`),
				rule(`(?i)\b(?:clients?|customers?|vendors?)\b`),
			},
			Keywords: []string{"pricing", "quarter", "sales", "market", "strategy"},
		}},
		{Tone: ToneNeutral},
	}
}

func defaultFormats() FormatRules {
	return FormatRules{
		EmailSignals: []Rule{
			weighted(`(?mi)^subject:[ \t]*\S`, 2),
			weighted(`(?mi)^(?:from|to):[ \t]*\S`, 2),
			weighted(`(?mi)^(?:cc|bcc|date):[ \t]*\S`, 1),
			{Pattern: ClosingLine, Weight: 2},
			{Pattern: SalutationLine, Weight: 1},
			{Pattern: SignatureDelimiter, Weight: 1},
			{Pattern: EmailAddress, Weight: 1},
			weighted(`(?i)\b(?:please find attached|i hope this (?:email|message) finds you)\b`, 1),
		},
		EmailThreshold: DefaultEmailFormatThreshold,

		CodeFence: CodeFence,
		CodeKeywords: []*regexp.Regexp{
			regexp.MustCompile(`\bfunction\s+\w*\s*\(`),
			regexp.MustCompile(`\b(?:const|let|var)\s+\w+\s*=`),
			regexp.MustCompile(`\breturn\b[^\n]*;`),
			regexp.MustCompile(`(?m)^\s*import\s+[\w{*"']`),
			regexp.MustCompile(`\bdef\s+\w+\s*\(`),
			regexp.MustCompile(`\bfunc\s+(?:\([^)]*\)\s*)?\w*\s*\(`),
			regexp.MustCompile(`\bclass\s+\w+\s*[:{(]`),
			regexp.MustCompile(`=>`),
			regexp.MustCompile(`\bconsole\.log\(`),
			regexp.MustCompile(`#include\s*<`),
			regexp.MustCompile(`(?m)^\s*package\s+\w+\s*;?\s*$`),
			regexp.MustCompile(`(?m)[;{}]\s*$`),
			regexp.MustCompile(`\b(?:public|private|static)\s+\w+`),
		},
		CodeKeywordThreshold: DefaultCodeKeywordThreshold,

		ListLine:   ListLine,
		ListMinRun: 2,
		TableRow:   TableRow,
		JSONObject: JSONObject,
		ChatLine:   ChatLine,
		ChatMinRun: 2,
		QuoteLine:  QuoteLine,

		MessageMaxLen: DefaultMessageMaxLen,
	}
}
