package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Provider is a completion backend. Implementations surface HTTP failures as *ProviderError.
type Provider interface {
	// Name returns the provider identifier (openai, gemini, deepseek, ...).
	Name() string

	// Complete sends one system/user prompt pair and returns the raw model output.
	// An empty model selects the provider's configured default.
	Complete(ctx context.Context, systemPrompt, userPrompt, model string) (string, error)
}

// ProviderError carries the HTTP-level failure details reported by a provider.
type ProviderError struct {
	Provider string
	Status   int    // HTTP status, 0 when the request never got a response
	Code     string // provider error code, e.g. "rate_limit_exceeded" or "RESOURCE_EXHAUSTED"
	Type     string // provider error type, e.g. "invalid_request_error"
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Provider)
	if e.Status != 0 {
		fmt.Fprintf(&sb, ": status %d", e.Status)
	}
	if e.Code != "" {
		fmt.Fprintf(&sb, " (%s)", e.Code)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	} else if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Config represents completion provider configuration.
type Config struct {
	Provider    string // openai, gemini, deepseek, openrouter, siliconflow, ollama
	Model       string // optional, has default per provider
	APIKey      string
	BaseURL     string   // optional, has default per provider
	MaxTokens   int      // default: 2048
	Temperature *float32 // nil selects 0.7; zero is honored
	Timeout     int      // Request timeout in seconds (default: 60)
}

const (
	defaultMaxTokens   = 2048
	defaultTemperature = 0.7
	defaultTimeout     = 60
)

func (c Config) withDefaults() Config {
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Temperature == nil {
		t := float32(defaultTemperature)
		c.Temperature = &t
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Defaults is the endpoint and model a provider uses when none is configured.
type Defaults struct {
	BaseURL string
	Model   string
}

var providerDefaults = map[string]Defaults{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"gemini": {
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		Model:   "gemini-2.0-flash",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"siliconflow": {
		BaseURL: "https://api.siliconflow.cn/v1",
		Model:   "Qwen/Qwen2.5-72B-Instruct",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "openai/gpt-4o-mini",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

// LookupDefaults returns the defaults of a known provider. Unknown names report false.
func LookupDefaults(provider string) (Defaults, bool) {
	d, ok := providerDefaults[provider]
	return d, ok
}

// NewProvider creates the provider named by cfg.Provider. Unknown names are treated as a
// generic OpenAI-compatible endpoint and require a BaseURL.
func NewProvider(cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm: nil config")
	}
	c := cfg.withDefaults()
	if c.Provider == "" {
		c.Provider = "openai"
	}
	d, known := providerDefaults[c.Provider]
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Model == "" {
		c.Model = d.Model
	}

	switch {
	case c.Provider == "gemini":
		return newGeminiProvider(c), nil
	case known:
		return newOpenAIProvider(c), nil
	case c.BaseURL == "":
		return nil, fmt.Errorf("llm: provider %q requires a base URL", c.Provider)
	default:
		slog.Info("Using generic OpenAI-compatible provider", "provider", c.Provider)
		return newOpenAIProvider(c), nil
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
