// Package prompt composes the system and user prompts for an enhancement request.
package prompt

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/clipsense/ai/classifier"
)

// Spec is a fully composed prompt pair. It is built fresh per request and passed by value.
type Spec struct {
	Mode         Mode
	SystemPrompt string
	UserPrompt   string
}

// Options adjusts how the user prompt is built.
type Options struct {
	// Instructions are free-form caller directions prefixed to the text when non-blank.
	Instructions string
	// Regenerate appends a uniqueness nonce asking for a materially different variant.
	Regenerate bool
}

// preservationDirective is appended to every enhancement system prompt.
const preservationDirective = `Preserve the original structural format exactly. Do not convert a short message into an email, do not add greetings, sign-offs or signatures that are not in the original, and do not add headings, bullet points or emoji the original does not use.
Return only the resulting text, with no preamble, labels or commentary.`

// Composer selects templates and appends dynamically generated guidance. It never calls the
// completion service.
type Composer struct {
	templates TemplateStore
	now       func() time.Time
	nonce     func() string
}

// NewComposer creates a composer. A nil store serves the built-in templates.
func NewComposer(store TemplateStore) *Composer {
	if store == nil {
		store = BuiltinTemplates{}
	}
	return &Composer{
		templates: store,
		now:       time.Now,
		nonce:     shortuuid.New,
	}
}

// Compose builds the enhancement prompt for text classified as result.
// ModeAnswer is delegated to ComposeAnswer.
func (c *Composer) Compose(text string, result classifier.Result, mode Mode, opts Options) Spec {
	if mode == ModeAnswer {
		return c.ComposeAnswer(text, opts)
	}
	if mode != ModeAgent {
		mode = ModeGeneral
	}

	var sb strings.Builder
	sb.WriteString(c.template(mode))
	sb.WriteString("\n\n")
	sb.WriteString(preservationDirective)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Context: platform=%s, tone=%s, format=%s.\n", result.Platform, result.Tone, result.Format)
	sb.WriteString(Guidelines(result.Platform, result.Tone, result.Format))

	return Spec{
		Mode:         mode,
		SystemPrompt: sb.String(),
		UserPrompt:   c.userPrompt(text, opts),
	}
}

// ComposeAnswer builds a direct-answer prompt: the model answers text instead of rewriting it.
func (c *Composer) ComposeAnswer(text string, opts Options) Spec {
	return Spec{
		Mode:         ModeAnswer,
		SystemPrompt: c.template(ModeAnswer),
		UserPrompt:   c.userPrompt(text, opts),
	}
}

func (c *Composer) template(mode Mode) string {
	text, err := c.templates.Load(mode)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			slog.Warn("prompt: template load failed, using built-in", "mode", mode, "error", err)
		}
		return FallbackTemplate(mode)
	}
	return text
}

func (c *Composer) userPrompt(text string, opts Options) string {
	var sb strings.Builder
	if instructions := strings.TrimSpace(opts.Instructions); instructions != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n\n", instructions)
	}
	sb.WriteString(text)
	if opts.Regenerate {
		fmt.Fprintf(&sb, "\n\n(Variation request %s-%s: produce a materially different variant from any previous version while keeping the meaning and format.)",
			c.now().UTC().Format(time.RFC3339Nano), c.nonce())
	}
	return sb.String()
}
