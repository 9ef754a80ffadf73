package prompt

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hrygo/clipsense/ai/configloader"
)

// Mode is the enhancement objective requested by the caller.
type Mode string

const (
	ModeAgent   Mode = "agent"
	ModeGeneral Mode = "general"
	ModeAnswer  Mode = "answer"
)

// Modes lists every mode in a stable order.
var Modes = []Mode{ModeAgent, ModeGeneral, ModeAnswer}

// ErrUnknownMode is returned by ParseMode for unrecognized input.
var ErrUnknownMode = errors.New("unknown enhancement mode")

// ParseMode normalizes s into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAgent, ModeGeneral, ModeAnswer:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// TemplateStore supplies the mode-specific base system prompt.
type TemplateStore interface {
	Load(mode Mode) (string, error)
}

// Built-in fallbacks used when no template file is available.
const (
	fallbackAgentTemplate = `You are a prompt engineer who rewrites rough requests into clear, complete instructions for an AI coding assistant.
Restate the goal, list concrete requirements and constraints, keep every technical detail (file names, identifiers, error messages, code) exactly as given, and order the steps logically.
Return only the rewritten prompt.`

	fallbackGeneralTemplate = `You are a writing assistant who improves text while keeping the author's voice and intent.
Fix grammar, spelling and clarity, tighten wording, and keep every fact, name, number and link unchanged.
Return only the improved text.`

	fallbackAnswerTemplate = `You are a concise, knowledgeable assistant.
The user's text is a question or request addressed to you: answer it directly and accurately.
Do not rewrite, rephrase or improve the user's text, and do not comment on it. Return only the answer.`
)

// FallbackTemplate returns the built-in template for mode.
func FallbackTemplate(mode Mode) string {
	switch mode {
	case ModeAgent:
		return fallbackAgentTemplate
	case ModeAnswer:
		return fallbackAnswerTemplate
	default:
		return fallbackGeneralTemplate
	}
}

// BuiltinTemplates serves the built-in templates only.
type BuiltinTemplates struct{}

// Load implements TemplateStore.
func (BuiltinTemplates) Load(mode Mode) (string, error) {
	return FallbackTemplate(mode), nil
}

// FileTemplateStore reads "<mode>.md" from its loader, then the "templates.yaml" map, and
// finally falls back to the built-in template for the mode.
type FileTemplateStore struct {
	loader *configloader.Loader

	once     sync.Once
	fromYAML map[Mode]string
}

// TemplatesFile is the optional YAML map of mode to template text.
const TemplatesFile = "templates.yaml"

// NewFileTemplateStore creates a template store backed by loader.
func NewFileTemplateStore(loader *configloader.Loader) *FileTemplateStore {
	return &FileTemplateStore{loader: loader}
}

// Load implements TemplateStore. It never returns an empty template.
func (s *FileTemplateStore) Load(mode Mode) (string, error) {
	if data, err := s.loader.Read(string(mode) + ".md"); err == nil {
		if text := strings.TrimSpace(string(data)); text != "" {
			return text, nil
		}
	}

	s.once.Do(s.loadYAML)
	if text := strings.TrimSpace(s.fromYAML[mode]); text != "" {
		return text, nil
	}

	return FallbackTemplate(mode), nil
}

func (s *FileTemplateStore) loadYAML() {
	if !s.loader.Exists(TemplatesFile) {
		return
	}
	raw := map[string]string{}
	if err := s.loader.Load(TemplatesFile, &raw); err != nil {
		slog.Warn("prompt: ignoring invalid templates file", "file", TemplatesFile, "error", err)
		return
	}
	s.fromYAML = make(map[Mode]string, len(raw))
	for k, v := range raw {
		if m, err := ParseMode(k); err == nil {
			s.fromYAML[m] = v
		}
	}
}
