package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/sashabaranov/go-openai"
)

type openaiProvider struct {
	client      *openai.Client
	name        string
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

func newOpenAIProvider(cfg Config) *openaiProvider {
	timeout := time.Duration(cfg.Timeout) * time.Second
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = newHTTPClient(timeout)

	return &openaiProvider{
		client:      openai.NewClientWithConfig(clientConfig),
		name:        cfg.Provider,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: *cfg.Temperature,
		timeout:     timeout,
	}
}

func (p *openaiProvider) Name() string { return p.name }

func (p *openaiProvider) Complete(ctx context.Context, systemPrompt, userPrompt, model string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if model == "" {
		model = p.model
	}

	slog.Debug("LLM: completion request",
		"provider", p.name,
		"model", model,
		"system_len", len(systemPrompt),
		"user_len", len(userPrompt),
	)

	startTime := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   p.maxTokens,
		Temperature: openaiTemperature(p.temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", p.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: p.name, Message: "empty response from LLM"}
	}

	slog.Debug("LLM: completion received",
		"provider", p.name,
		"content_length", len(resp.Choices[0].Message.Content),
		"total_tokens", resp.Usage.TotalTokens,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return resp.Choices[0].Message.Content, nil
}

// wrapError maps go-openai failures onto ProviderError. Transport failures keep the
// underlying error so network classification still sees it.
func (p *openaiProvider) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider: p.name,
			Status:   apiErr.HTTPStatusCode,
			Code:     stringifyCode(apiErr.Code),
			Type:     apiErr.Type,
			Message:  apiErr.Message,
			Err:      err,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{
			Provider: p.name,
			Status:   reqErr.HTTPStatusCode,
			Message:  string(reqErr.Body),
			Err:      err,
		}
	}
	return fmt.Errorf("%s completion failed: %w", p.name, err)
}

// openaiTemperature keeps a zero temperature on the wire. go-openai drops 0 through omitempty,
// so the smallest positive float stands in for it.
func openaiTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// stringifyCode normalizes APIError.Code. go-openai decodes a JSON null code as int 0.
func stringifyCode(code any) string {
	switch v := code.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		if v == 0 {
			return ""
		}
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}
