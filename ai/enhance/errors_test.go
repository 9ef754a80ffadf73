package enhance

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hrygo/clipsense/ai/core/llm"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"401", &llm.ProviderError{Status: 401}, InvalidCredentials},
		{"403", &llm.ProviderError{Status: 403}, InvalidCredentials},
		{"429", &llm.ProviderError{Status: 429}, RateLimited},
		{"500", &llm.ProviderError{Status: 500}, ProviderServerError},
		{"502", &llm.ProviderError{Status: 502}, ProviderServerError},
		{"503", &llm.ProviderError{Status: 503}, ServiceUnavailable},
		{"400", &llm.ProviderError{Status: 400, Message: "bad"}, InvalidRequest},
		{"422", &llm.ProviderError{Status: 422}, InvalidRequest},
		{"gemini bad key", &llm.ProviderError{Status: 400, Code: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, InvalidCredentials},
		{"code only", &llm.ProviderError{Code: "RESOURCE_EXHAUSTED"}, RateLimited},
		{"type only", &llm.ProviderError{Type: "invalid_request_error"}, InvalidRequest},
		{"wrapped provider error", fmt.Errorf("call: %w", &llm.ProviderError{Status: 429}), RateLimited},
		{"net error", timeoutErr{}, NetworkError},
		{"connection reset", errors.New("read tcp: connection reset by peer"), NetworkError},
		{"dial", errors.New("dial tcp 1.2.3.4:443: connect: connection refused"), NetworkError},
		{"deadline", context.DeadlineExceeded, NetworkError},
		{"cancelled", context.Canceled, Unknown},
		{"other", errors.New("something odd"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.Nil(t, Classify(nil))
}

func TestClassify_Idempotent(t *testing.T) {
	first := Classify(&llm.ProviderError{Status: 429})
	assert.Same(t, first, Classify(first))
	assert.Same(t, first, Classify(fmt.Errorf("wrapped: %w", first)))
}

func TestUserMessage(t *testing.T) {
	kinds := []ErrorKind{InvalidCredentials, RateLimited, ProviderServerError, ServiceUnavailable, NetworkError, InvalidRequest, Unknown}
	seen := map[string]bool{}
	for _, k := range kinds {
		msg := UserMessage(k)
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "messages are distinct per kind")
		seen[msg] = true
	}
	assert.Equal(t, UserMessage(Unknown), UserMessage("bogus"))

	err := Classify(&llm.ProviderError{Status: 400, Message: "model `x` does not exist"})
	assert.Equal(t, "Invalid request: model `x` does not exist", err.Message)
}

func TestRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 3, p.MaxAttempts)

	assert.Equal(t, time.Second, p.Delay(RateLimited, 1))
	assert.Equal(t, 2*time.Second, p.Delay(RateLimited, 2))
	assert.Equal(t, 4*time.Second, p.Delay(RateLimited, 3))
	assert.Equal(t, time.Second, p.Delay(NetworkError, 1))
	assert.Equal(t, 2*time.Second, p.Delay(ProviderServerError, 2))
	assert.Equal(t, 3*time.Second, p.Delay(Unknown, 3))

	assert.False(t, p.Retryable(InvalidCredentials))
	assert.False(t, p.Retryable(InvalidRequest))
	assert.True(t, p.Retryable(RateLimited))
	assert.True(t, p.Retryable(Unknown))

	assert.Equal(t, p, RetryPolicy{}.withDefaults())
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
