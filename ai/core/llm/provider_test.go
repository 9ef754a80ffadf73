package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{"openai", Config{Provider: "openai", APIKey: "k"}, "openai", false},
		{"empty provider defaults to openai", Config{APIKey: "k"}, "openai", false},
		{"gemini", Config{Provider: "gemini", APIKey: "k"}, "gemini", false},
		{"deepseek", Config{Provider: "deepseek", APIKey: "k"}, "deepseek", false},
		{"ollama", Config{Provider: "ollama"}, "ollama", false},
		{"generic with base url", Config{Provider: "acme", BaseURL: "https://llm.acme.test/v1"}, "acme", false},
		{"generic without base url", Config{Provider: "acme"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			p, err := NewProvider(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}

	_, err := NewProvider(nil)
	assert.Error(t, err)
}

func TestConfig_Defaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, defaultMaxTokens, c.MaxTokens)
	require.NotNil(t, c.Temperature)
	assert.InDelta(t, defaultTemperature, *c.Temperature, 0.001)
	assert.Equal(t, defaultTimeout, c.Timeout)

	low := float32(0.2)
	c = Config{MaxTokens: 512, Temperature: &low, Timeout: 5}.withDefaults()
	assert.Equal(t, 512, c.MaxTokens)
	assert.InDelta(t, 0.2, *c.Temperature, 0.001)
	assert.Equal(t, 5, c.Timeout)

	zero := float32(0)
	c = Config{Temperature: &zero}.withDefaults()
	assert.Zero(t, *c.Temperature, "explicit zero temperature is kept")
}

func TestLookupDefaults(t *testing.T) {
	tests := []struct {
		provider string
		baseURL  string
		model    string
	}{
		{"openai", "https://api.openai.com/v1", "gpt-4o-mini"},
		{"gemini", "https://generativelanguage.googleapis.com/v1beta", "gemini-2.0-flash"},
		{"deepseek", "https://api.deepseek.com", "deepseek-chat"},
		{"siliconflow", "https://api.siliconflow.cn/v1", "Qwen/Qwen2.5-72B-Instruct"},
		{"openrouter", "https://openrouter.ai/api/v1", "openai/gpt-4o-mini"},
		{"ollama", "http://localhost:11434/v1", "llama3.1"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			d, ok := LookupDefaults(tt.provider)
			require.True(t, ok)
			assert.Equal(t, tt.baseURL, d.BaseURL)
			assert.Equal(t, tt.model, d.Model)
		})
	}

	_, ok := LookupDefaults("acme")
	assert.False(t, ok)
}

func TestStringifyCode(t *testing.T) {
	assert.Equal(t, "", stringifyCode(nil))
	assert.Equal(t, "", stringifyCode(0), "null codes decode as int 0")
	assert.Equal(t, "429", stringifyCode(429))
	assert.Equal(t, "invalid_api_key", stringifyCode("invalid_api_key"))
}

func TestProviderError(t *testing.T) {
	inner := errors.New("boom")
	err := &ProviderError{Provider: "openai", Status: 429, Code: "rate_limit_exceeded", Message: "slow down", Err: inner}
	assert.Equal(t, "openai: status 429 (rate_limit_exceeded): slow down", err.Error())
	assert.ErrorIs(t, err, inner)

	assert.Equal(t, "gemini: boom", (&ProviderError{Provider: "gemini", Err: inner}).Error())
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Improved text"},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`))
	}))
	defer srv.Close()

	p, err := NewProvider(&Config{Provider: "openai", APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini"})
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "system", "user", "")
	require.NoError(t, err)
	assert.Equal(t, "Improved text", out)
	assert.Equal(t, "gpt-4o-mini", got.Model, "empty model uses configured default")
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "system", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)

	_, err = p.Complete(context.Background(), "s", "u", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got.Model)
}

func TestOpenAIProvider_ZeroTemperature(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	zero := float32(0)
	p, err := NewProvider(&Config{Provider: "openai", APIKey: "k", BaseURL: srv.URL, Model: "m", Temperature: &zero})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "s", "u", "")
	require.NoError(t, err)
	temperature, ok := got["temperature"].(float64)
	require.True(t, ok, "temperature must be sent even when zero")
	assert.InDelta(t, 0, temperature, 1e-6)
}

func TestOpenAIProvider_HTTPErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantCode   string
		wantType   string
		wantMsgSub string
	}{
		{"rate limited", http.StatusTooManyRequests,
			`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`,
			"rate_limit_exceeded", "requests", "Rate limit"},
		{"invalid key", http.StatusUnauthorized,
			`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			"invalid_api_key", "invalid_request_error", "Incorrect API key"},
		{"server error", http.StatusInternalServerError,
			`{"error":{"message":"The server had an error","type":"server_error","code":null}}`,
			"", "server_error", "server had an error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := NewProvider(&Config{Provider: "openai", APIKey: "k", BaseURL: srv.URL, Model: "m"})
			require.NoError(t, err)

			_, err = p.Complete(context.Background(), "s", "u", "")
			var pe *ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.status, pe.Status)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.Equal(t, tt.wantType, pe.Type)
			assert.Contains(t, pe.Message, tt.wantMsgSub)
		})
	}
}

func TestGeminiProvider_Complete(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		assert.False(t, r.URL.Query().Has("key"), "api key must not be sent in the URL")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello "},{"text":"there"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	p, err := NewProvider(&Config{Provider: "gemini", APIKey: "g-key", BaseURL: srv.URL + "/", Model: "gemini-2.0-flash"})
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "be helpful", "say hi", "")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be helpful", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "say hi", got.Contents[0].Parts[0].Text)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, defaultMaxTokens, got.GenerationConfig.MaxOutputTokens)
	require.NotNil(t, got.GenerationConfig.Temperature)
	assert.InDelta(t, defaultTemperature, *got.GenerationConfig.Temperature, 0.001)
}

func TestGeminiProvider_ZeroTemperature(t *testing.T) {
	var got struct {
		GenerationConfig map[string]any `json:"generationConfig"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	zero := float32(0)
	p, err := NewProvider(&Config{Provider: "gemini", APIKey: "k", BaseURL: srv.URL, Model: "m", Temperature: &zero})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "s", "u", "")
	require.NoError(t, err)
	temperature, ok := got.GenerationConfig["temperature"]
	require.True(t, ok, "zero temperature must be sent")
	assert.InDelta(t, 0, temperature, 1e-9)
}

func TestGeminiProvider_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	p, err := NewProvider(&Config{Provider: "gemini", APIKey: "SECRET-KEY-123", BaseURL: baseURL, Model: "m", Timeout: 2})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "s", "u", "")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
}

func TestNewProvider_FillsDefaultModel(t *testing.T) {
	var model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		model = strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/models/"), ":generateContent")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	p, err := NewProvider(&Config{Provider: "gemini", APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "s", "u", "")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", model)
}

func TestGeminiProvider_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{"structured error", http.StatusTooManyRequests,
			`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`,
			"RESOURCE_EXHAUSTED", "Resource has been exhausted"},
		{"bad key", http.StatusBadRequest,
			`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			"INVALID_ARGUMENT", "API key not valid. Please pass a valid API key."},
		{"plain body", http.StatusServiceUnavailable, "upstream overloaded", "", "upstream overloaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := NewProvider(&Config{Provider: "gemini", APIKey: "k", BaseURL: srv.URL, Model: "m"})
			require.NoError(t, err)

			_, err = p.Complete(context.Background(), "s", "u", "")
			var pe *ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.status, pe.Status)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.Equal(t, tt.wantMsg, pe.Message)
		})
	}
}

func TestGeminiProvider_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	p, err := NewProvider(&Config{Provider: "gemini", APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "s", "u", "")
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "empty response")
}
