package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/clipsense/ai/catalog"
	"github.com/hrygo/clipsense/ai/classifier"
	"github.com/hrygo/clipsense/ai/configloader"
)

type failingStore struct{}

func (failingStore) Load(Mode) (string, error) { return "", errors.New("disk on fire") }

func fixedComposer(store TemplateStore) *Composer {
	c := NewComposer(store)
	c.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	c.nonce = func() string { return "abc123" }
	return c
}

func TestComposer_Compose(t *testing.T) {
	c := fixedComposer(nil)
	result := classifier.Result{Platform: catalog.PlatformSlack, Tone: catalog.ToneCasual, Format: catalog.FormatMessage}

	spec := c.Compose("can u check the deploy", result, ModeGeneral, Options{})

	assert.Equal(t, ModeGeneral, spec.Mode)
	assert.Contains(t, spec.SystemPrompt, fallbackGeneralTemplate)
	assert.Contains(t, spec.SystemPrompt, preservationDirective)
	assert.Contains(t, spec.SystemPrompt, formatGuidelines[catalog.FormatMessage])
	assert.Contains(t, spec.SystemPrompt, platformGuidelines[catalog.PlatformSlack][catalog.ToneCasual])
	assert.Equal(t, "can u check the deploy", spec.UserPrompt)
}

func TestComposer_ComposeIsDeterministicWithoutRegenerate(t *testing.T) {
	c := NewComposer(nil)
	result := classifier.Result{Platform: catalog.PlatformGeneral, Tone: catalog.ToneNeutral, Format: catalog.FormatText}

	a := c.Compose("hello", result, ModeAgent, Options{})
	b := c.Compose("hello", result, ModeAgent, Options{})
	assert.Equal(t, a, b)
	assert.Contains(t, a.SystemPrompt, fallbackAgentTemplate)
}

func TestComposer_UserPrompt(t *testing.T) {
	c := fixedComposer(nil)
	result := classifier.Result{Platform: catalog.PlatformGeneral, Tone: catalog.ToneNeutral, Format: catalog.FormatMessage}

	t.Run("instructions are prefixed", func(t *testing.T) {
		spec := c.Compose("text", result, ModeGeneral, Options{Instructions: "  make it shorter "})
		assert.Equal(t, "Additional instructions: make it shorter\n\ntext", spec.UserPrompt)
	})

	t.Run("blank instructions are ignored", func(t *testing.T) {
		spec := c.Compose("text", result, ModeGeneral, Options{Instructions: "   "})
		assert.Equal(t, "text", spec.UserPrompt)
	})

	t.Run("regenerate appends a nonce", func(t *testing.T) {
		spec := c.Compose("text", result, ModeGeneral, Options{Regenerate: true})
		assert.Contains(t, spec.UserPrompt, "2026-03-01T12:00:00Z-abc123")
		assert.Contains(t, spec.UserPrompt, "materially different")
		assert.True(t, len(spec.UserPrompt) > len("text"))
	})
}

func TestComposer_AnswerMode(t *testing.T) {
	c := fixedComposer(nil)
	result := classifier.Result{Platform: catalog.PlatformEmail, Tone: catalog.ToneFormal, Format: catalog.FormatEmail}

	spec := c.Compose("What is a goroutine?", result, ModeAnswer, Options{})
	assert.Equal(t, ModeAnswer, spec.Mode)
	assert.Equal(t, fallbackAnswerTemplate, spec.SystemPrompt)
	assert.NotContains(t, spec.SystemPrompt, preservationDirective)
	assert.Equal(t, "What is a goroutine?", spec.UserPrompt)
}

func TestComposer_TemplateFailureFallsBack(t *testing.T) {
	c := fixedComposer(failingStore{})
	spec := c.ComposeAnswer("q", Options{})
	assert.Equal(t, fallbackAnswerTemplate, spec.SystemPrompt)
}

func TestGuidelines(t *testing.T) {
	testCases := []struct {
		name     string
		platform catalog.Platform
		tone     catalog.Tone
		format   catalog.Format
		want     string
	}{
		{"exact entry", catalog.PlatformGitHub, catalog.ToneTechnical, catalog.FormatText,
			platformGuidelines[catalog.PlatformGitHub][catalog.ToneTechnical]},
		{"tone falls back to platform formal", catalog.PlatformTwitter, catalog.ToneBusiness, catalog.FormatText,
			platformGuidelines[catalog.PlatformTwitter][catalog.ToneFormal]},
		{"unknown platform falls back to general", catalog.Platform("myspace"), catalog.ToneFriendly, catalog.FormatText,
			platformGuidelines[catalog.PlatformGeneral][catalog.ToneFriendly]},
		{"unknown tone on unknown platform", catalog.Platform("myspace"), catalog.Tone("snarky"), catalog.FormatText,
			platformGuidelines[catalog.PlatformGeneral][catalog.ToneFormal]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Guidelines(tc.platform, tc.tone, tc.format))
		})
	}

	t.Run("format block comes first", func(t *testing.T) {
		g := Guidelines(catalog.PlatformGeneral, catalog.ToneNeutral, catalog.FormatList)
		assert.Equal(t, formatGuidelines[catalog.FormatList]+"\n"+platformGuidelines[catalog.PlatformGeneral][catalog.ToneNeutral], g)
	})
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Agent ")
	require.NoError(t, err)
	assert.Equal(t, ModeAgent, m)

	_, err = ParseMode("poem")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestFileTemplateStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agent.md"), []byte("  Custom agent template\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplatesFile), []byte("general: YAML general template\n"), 0o600))

	store := NewFileTemplateStore(configloader.NewLoader(dir))

	got, err := store.Load(ModeAgent)
	require.NoError(t, err)
	assert.Equal(t, "Custom agent template", got)

	got, err = store.Load(ModeGeneral)
	require.NoError(t, err)
	assert.Equal(t, "YAML general template", got)

	got, err = store.Load(ModeAnswer)
	require.NoError(t, err)
	assert.Equal(t, fallbackAnswerTemplate, got)
}

func TestFileTemplateStore_EmptyDirectory(t *testing.T) {
	store := NewFileTemplateStore(configloader.NewLoader(t.TempDir()))
	for _, mode := range Modes {
		got, err := store.Load(mode)
		require.NoError(t, err)
		assert.Equal(t, FallbackTemplate(mode), got)
	}
}
