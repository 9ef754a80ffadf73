// Package catalog holds the static signature tables used to classify captured text by
// platform, tone and structural format.
//
// Tables are ordered slices: the classifier walks them in declaration order and keeps the
// first entry on equal scores, so reordering entries changes tie-break behavior.
package catalog

import (
	"fmt"
	"regexp"
)

// Platform is the communication context inferred from text.
type Platform string

const (
	PlatformEmail    Platform = "email"
	PlatformWhatsApp Platform = "whatsapp"
	PlatformSlack    Platform = "slack"
	PlatformTwitter  Platform = "twitter"
	PlatformLinkedIn Platform = "linkedin"
	PlatformDiscord  Platform = "discord"
	PlatformGitHub   Platform = "github"
	PlatformTeams    Platform = "teams"
	PlatformTelegram Platform = "telegram"
	PlatformSMS      Platform = "sms"
	PlatformGeneral  Platform = "general"
)

// Platforms lists every platform tag in catalog declaration order.
var Platforms = []Platform{
	PlatformEmail, PlatformWhatsApp, PlatformSlack, PlatformTwitter, PlatformLinkedIn,
	PlatformDiscord, PlatformGitHub, PlatformTeams, PlatformTelegram, PlatformSMS, PlatformGeneral,
}

// Tone is the register inferred from text.
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	ToneUrgent       Tone = "urgent"
	ToneTechnical    Tone = "technical"
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneBusiness     Tone = "business"
	ToneNeutral      Tone = "neutral"
)

// Tones lists every tone tag in catalog declaration order.
var Tones = []Tone{
	ToneFormal, ToneCasual, ToneUrgent, ToneTechnical,
	ToneProfessional, ToneFriendly, ToneBusiness, ToneNeutral,
}

// Format is the structural shape of text.
type Format string

const (
	FormatEmail   Format = "email"
	FormatCode    Format = "code"
	FormatList    Format = "list"
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatChat    Format = "chat"
	FormatThread  Format = "thread"
	FormatMessage Format = "message"
	FormatText    Format = "text"
)

// Scoring weights shared by platform and tone signatures.
const (
	PatternWeight = 2
	KeywordWeight = 1
)

// Rule is a weighted regex signal.
type Rule struct {
	Pattern *regexp.Regexp
	Weight  int
}

// Signature is the set of signals that identify one tag.
type Signature struct {
	Rules    []Rule
	Keywords []string // matched as case-insensitive substrings
}

// Empty reports whether the signature carries no signals at all.
func (s Signature) Empty() bool {
	return len(s.Rules) == 0 && len(s.Keywords) == 0
}

// PlatformSignature binds a signature to a platform tag.
type PlatformSignature struct {
	Platform Platform
	Signature
}

// ToneSignature binds a signature to a tone tag.
type ToneSignature struct {
	Tone Tone
	Signature
}

// FormatRules drives structural format detection. Detection is an exclusive chain, tested
// in the order the fields are declared.
type FormatRules struct {
	// Email is an accumulated score; the format is declared only at EmailThreshold or above.
	EmailSignals   []Rule
	EmailThreshold int

	// Code matches on a fence or on CodeKeywordThreshold distinct keyword patterns.
	CodeFence            *regexp.Regexp
	CodeKeywords         []*regexp.Regexp
	CodeKeywordThreshold int

	// Line-oriented rules are tested per line and need MinRun consecutive hits.
	ListLine   *regexp.Regexp
	ListMinRun int

	TableRow   *regexp.Regexp
	JSONObject *regexp.Regexp

	ChatLine   *regexp.Regexp
	ChatMinRun int

	QuoteLine *regexp.Regexp

	// Unmatched text shorter than MessageMaxLen is a message, otherwise plain text.
	MessageMaxLen int
}

// Catalog is the complete, read-only classification table.
type Catalog struct {
	Platforms []PlatformSignature
	Tones     []ToneSignature
	Formats   FormatRules

	// EmailPlatformThreshold zeroes the email platform score below this value.
	EmailPlatformThreshold int
}

// Platform returns the signature for tag p.
func (c *Catalog) Platform(p Platform) (PlatformSignature, bool) {
	for _, sig := range c.Platforms {
		if sig.Platform == p {
			return sig, true
		}
	}
	return PlatformSignature{}, false
}

// Tone returns the signature for tag t.
func (c *Catalog) Tone(t Tone) (ToneSignature, bool) {
	for _, sig := range c.Tones {
		if sig.Tone == t {
			return sig, true
		}
	}
	return ToneSignature{}, false
}

// Validate checks that every closed-enum tag is declared exactly once and that only the
// default tags (general, neutral) are allowed to carry no signals.
func (c *Catalog) Validate() error {
	seenPlatforms := make(map[Platform]bool, len(c.Platforms))
	for _, sig := range c.Platforms {
		if !IsPlatform(string(sig.Platform)) {
			return fmt.Errorf("unknown platform tag %q", sig.Platform)
		}
		if seenPlatforms[sig.Platform] {
			return fmt.Errorf("platform %q declared twice", sig.Platform)
		}
		seenPlatforms[sig.Platform] = true
		if sig.Empty() && sig.Platform != PlatformGeneral {
			return fmt.Errorf("platform %q has no rules or keywords", sig.Platform)
		}
	}
	for _, p := range Platforms {
		if !seenPlatforms[p] {
			return fmt.Errorf("platform %q missing from catalog", p)
		}
	}

	seenTones := make(map[Tone]bool, len(c.Tones))
	for _, sig := range c.Tones {
		if !IsTone(string(sig.Tone)) {
			return fmt.Errorf("unknown tone tag %q", sig.Tone)
		}
		if seenTones[sig.Tone] {
			return fmt.Errorf("tone %q declared twice", sig.Tone)
		}
		seenTones[sig.Tone] = true
		if sig.Empty() && sig.Tone != ToneNeutral {
			return fmt.Errorf("tone %q has no rules or keywords", sig.Tone)
		}
	}
	for _, t := range Tones {
		if !seenTones[t] {
			return fmt.Errorf("tone %q missing from catalog", t)
		}
	}

	f := c.Formats
	if len(f.EmailSignals) == 0 || f.EmailThreshold <= 0 {
		return fmt.Errorf("email format rules are incomplete")
	}
	if f.CodeFence == nil || len(f.CodeKeywords) == 0 || f.CodeKeywordThreshold <= 0 {
		return fmt.Errorf("code format rules are incomplete")
	}
	if f.ListLine == nil || f.TableRow == nil || f.JSONObject == nil || f.ChatLine == nil || f.QuoteLine == nil {
		return fmt.Errorf("structural format rules are incomplete")
	}
	return nil
}

// IsPlatform reports whether s names a declared platform tag.
func IsPlatform(s string) bool {
	for _, p := range Platforms {
		if string(p) == s {
			return true
		}
	}
	return false
}

// IsTone reports whether s names a declared tone tag.
func IsTone(s string) bool {
	for _, t := range Tones {
		if string(t) == s {
			return true
		}
	}
	return false
}
