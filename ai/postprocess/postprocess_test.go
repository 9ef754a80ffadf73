package postprocess

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/hrygo/clipsense/ai/catalog"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "  Hello there.  ", "Hello there."},
		{"enhanced tag", "[ENHANCED] Hello there.", "Hello there."},
		{"answer tag with colon", "[ANSWER]: 42", "42"},
		{"stacked tags", "[ENHANCED]\n[RESULT] Done.", "Done."},
		{"meta line", "Here is the enhanced version:\n\nPlease review the PR.", "Please review the PR."},
		{"sure meta line", "Sure! Here's the improved text:\nShip it today.", "Ship it today."},
		{"trailing offer", "Ship it today.\n\nLet me know if you'd like any changes!", "Ship it today."},
		{"wrapping quotes", `"Ship it today."`, "Ship it today."},
		{"curly quotes", "“Ship it today.”", "Ship it today."},
		{"inner quotes kept", `"a" and "b"`, `"a" and "b"`},
		{"markdown fence", "```markdown\n- one\n- two\n```", "- one\n- two"},
		{"code fence kept", "```go\nfmt.Println()\n```", "```go\nfmt.Println()\n```"},
		{"crlf", "line one\r\nline two", "line one\nline two"},
		{"only meta line kept", "Here is the enhanced version:", "Here is the enhanced version:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestEmoji(t *testing.T) {
	assert.True(t, HasEmoji("Great! 🎉"))
	assert.True(t, HasEmoji("ok 👍🏽"))
	assert.True(t, HasEmoji("sun ☀️"))
	assert.False(t, HasEmoji("no emoji here, just text: 100% café"))
	assert.Equal(t, "Great! ", StripEmoji("Great! 🎉"))
}

func TestProcess_EmojiGating(t *testing.T) {
	got := Process("Great! 🎉", catalog.PlatformGeneral, "great", catalog.FormatMessage)
	assert.NotContains(t, got, "🎉")
	assert.Equal(t, "Great!", got)

	got = Process("Great! 🎉", catalog.PlatformGeneral, "great 🎉", catalog.FormatMessage)
	assert.Contains(t, got, "🎉", "emoji kept when the original used them")
}

func TestProcess_EmailRoundTrip(t *testing.T) {
	original := "From: alice@example.com\nTo: team@example.com\nSubject: Q3 plan\n\nHi team,\n\nwe need finish plan by friday.\n\nRegards,\nAlice"
	output := "We need to finish the plan by Friday."

	got := Process(output, catalog.PlatformEmail, original, catalog.FormatEmail)

	headers := "From: alice@example.com\nTo: team@example.com\nSubject: Q3 plan"
	signature := "Regards,\nAlice"
	assert.True(t, strings.HasPrefix(got, headers), got)
	assert.True(t, strings.HasSuffix(got, signature), got)
	assert.Less(t, strings.Index(got, headers), strings.Index(got, output))
	assert.Less(t, strings.Index(got, output), strings.Index(got, signature))
}

func TestProcess_EmailKeepsExistingStructure(t *testing.T) {
	original := "Subject: hi\n\nbody\n\nThanks,\nBo"
	output := "Subject: hi\n\nImproved body.\n\nThanks,\nBo"
	assert.Equal(t, output, Process(output, catalog.PlatformEmail, original, catalog.FormatEmail))
}

func TestProcess_EmailSignatureDelimiter(t *testing.T) {
	original := "Subject: x\n\nbody\n--\nBo Smith\nACME"
	got := Process("Better body.", catalog.PlatformEmail, original, catalog.FormatEmail)
	assert.True(t, strings.HasSuffix(got, "--\nBo Smith\nACME"), got)
}

func TestProcess_Code(t *testing.T) {
	original := "why does this fail?\n```go\nx := 1\n```"
	got := Process("Why does this fail?", catalog.PlatformGeneral, original, catalog.FormatCode)
	assert.Equal(t, "Why does this fail?\n\n```go\nx := 1\n```", got)

	kept := "Why does `x` fail?"
	assert.Equal(t, kept, Process(kept, catalog.PlatformGeneral, "why does `x` fail", catalog.FormatCode))
}

func TestProcess_List(t *testing.T) {
	t.Run("paragraphs become bullets", func(t *testing.T) {
		original := "- buy milk\n- call mom"
		got := Process("Buy milk.\n\nCall Mom.", catalog.PlatformGeneral, original, catalog.FormatList)
		assert.Equal(t, "- Buy milk.\n- Call Mom.", got)
	})

	t.Run("numbered style is kept", func(t *testing.T) {
		original := "1) first\n2) second"
		got := Process("First step\nSecond step", catalog.PlatformGeneral, original, catalog.FormatList)
		assert.Equal(t, "1) First step\n2) Second step", got)
	})

	t.Run("existing list untouched", func(t *testing.T) {
		out := "* Buy milk\n* Call Mom"
		assert.Equal(t, out, Process(out, catalog.PlatformGeneral, "- a\n- b", catalog.FormatList))
	})
}

func TestProcess_Chat(t *testing.T) {
	original := "Alice: can u ship\nBob: tmrw"
	got := Process("Can you ship it?\n\nTomorrow.", catalog.PlatformGeneral, original, catalog.FormatChat)
	assert.Equal(t, "Alice: Can you ship it?\n\nBob: Tomorrow.", got)

	mismatch := "Can you ship it tomorrow?"
	assert.Equal(t, mismatch, Process(mismatch, catalog.PlatformGeneral, original, catalog.FormatChat))
}

func TestProcess_Thread(t *testing.T) {
	original := "> can we move the meeting?\n> it clashes\nsure, thursday works"
	got := Process("Sure, Thursday works.", catalog.PlatformGeneral, original, catalog.FormatThread)
	assert.Equal(t, "> can we move the meeting?\n> it clashes\n\nSure, Thursday works.", got)
}

func TestProcess_MessageStripsFormality(t *testing.T) {
	tests := []struct {
		name     string
		original string
		output   string
		want     string
	}{
		{"salutation and closing added", "can u send the file",
			"Hi Sam,\nCould you send the file?\n\nBest regards,\nJo", "Could you send the file?"},
		{"closing kept when original had one", "thanks,\nsend the file",
			"Thanks,\nPlease send the file.", "Thanks,\nPlease send the file."},
		{"plain output untouched", "send file", "Please send the file.", "Please send the file."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Process(tt.output, catalog.PlatformGeneral, tt.original, catalog.FormatMessage))
		})
	}
}

func TestProcess_Platforms(t *testing.T) {
	t.Run("whatsapp breaks sentences", func(t *testing.T) {
		got := Process("On my way. Be there soon! Ok?", catalog.PlatformWhatsApp, "omw", catalog.FormatMessage)
		assert.Equal(t, "On my way.\nBe there soon!\nOk?", got)
	})

	t.Run("whatsapp leaves lists alone", func(t *testing.T) {
		out := "- Milk. Eggs.\n- Bread."
		assert.Equal(t, out, Process(out, catalog.PlatformWhatsApp, "- milk\n- bread", catalog.FormatList))
	})

	t.Run("slack markdown", func(t *testing.T) {
		got := Process("This is **important** and __subtle__.", catalog.PlatformSlack, "x", catalog.FormatMessage)
		assert.Equal(t, "This is *important* and _subtle_.", got)
	})

	t.Run("twitter truncation", func(t *testing.T) {
		output := strings.Repeat("abcdefghi ", 30)
		got := Process(output, catalog.PlatformTwitter, "tweet", catalog.FormatMessage)
		assert.Equal(t, TwitterLimit, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("short tweet untouched", func(t *testing.T) {
		assert.Equal(t, "Shipping today #golang", Process("Shipping today #golang", catalog.PlatformTwitter, "x", catalog.FormatMessage))
	})
}

func TestProcess_Whitespace(t *testing.T) {
	assert.Equal(t, "a b\n\nc", Process("  a    b\n\n\n\n\nc  ", catalog.PlatformGeneral, "x", catalog.FormatText))
	assert.Equal(t, "a    b\n\nc", Process("a    b\n\n \n\nc", catalog.PlatformGeneral, "x", catalog.FormatTable))
	assert.Equal(t, "Alice:  hi", Process("Alice:  hi", catalog.PlatformGeneral, "Alice: hi", catalog.FormatChat))
}

func TestProcess_Total(t *testing.T) {
	inputs := []string{"", "\n\n", "```", ">", "--", "Regards,", "| a | b |", "{"}
	for _, in := range inputs {
		for _, f := range []catalog.Format{catalog.FormatEmail, catalog.FormatCode, catalog.FormatList,
			catalog.FormatTable, catalog.FormatJSON, catalog.FormatChat, catalog.FormatThread,
			catalog.FormatMessage, catalog.FormatText} {
			assert.NotPanics(t, func() {
				_ = Process(in, catalog.PlatformTwitter, in, f)
				_ = Process(in, catalog.PlatformWhatsApp, in, f)
			})
		}
	}
}
