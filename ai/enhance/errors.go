package enhance

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/hrygo/clipsense/ai/core/llm"
)

// ErrorKind is the closed set of failure categories surfaced to callers.
type ErrorKind string

const (
	InvalidCredentials  ErrorKind = "invalid_credentials"
	RateLimited         ErrorKind = "rate_limited"
	ProviderServerError ErrorKind = "server_error"
	ServiceUnavailable  ErrorKind = "service_unavailable"
	NetworkError        ErrorKind = "network_error"
	InvalidRequest      ErrorKind = "invalid_request"
	Unknown             ErrorKind = "unknown"
)

// Error is the only error type returned by Orchestrator.Enhance.
type Error struct {
	Kind    ErrorKind
	Message string // stable, human-readable
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrEmptyResult is reported when the provider output is empty after normalization.
var ErrEmptyResult = errors.New("empty result after post-processing")

var userMessages = map[ErrorKind]string{
	InvalidCredentials:  "Invalid API key. Check your key in settings.",
	RateLimited:         "Rate limit reached. Please wait a moment and try again.",
	ProviderServerError: "The AI provider returned a server error. Please try again.",
	ServiceUnavailable:  "The AI service is temporarily unavailable. Please try again later.",
	NetworkError:        "Network error. Check your connection and try again.",
	InvalidRequest:      "The request was rejected by the AI provider.",
	Unknown:             "Something went wrong while enhancing your text.",
}

// UserMessage returns the stable message for kind.
func UserMessage(kind ErrorKind) string {
	if msg, ok := userMessages[kind]; ok {
		return msg
	}
	return userMessages[Unknown]
}

// Classify maps err onto the error taxonomy: by HTTP status first, then provider error code,
// then a fixed list of substrings. The result is nil only for a nil err.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	kind := classifyKind(err)
	msg := UserMessage(kind)

	var pe *llm.ProviderError
	if kind == InvalidRequest && errors.As(err, &pe) && pe.Message != "" {
		msg = fmt.Sprintf("Invalid request: %s", pe.Message)
	}
	if kind == Unknown && errors.Is(err, context.Canceled) {
		msg = "The request was cancelled."
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

func classifyKind(err error) ErrorKind {
	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		if kind, ok := kindForStatus(pe.Status, pe.Message); ok {
			return kind
		}
		if kind, ok := kindForCode(pe.Code); ok {
			return kind
		}
		if kind, ok := kindForCode(pe.Type); ok {
			return kind
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		return Unknown
	case errors.Is(err, context.DeadlineExceeded):
		return NetworkError
	case isNetworkError(err), isTimeoutError(err):
		return NetworkError
	}
	return Unknown
}

func kindForStatus(status int, message string) (ErrorKind, bool) {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return InvalidCredentials, true
	case status == http.StatusTooManyRequests:
		return RateLimited, true
	case status == http.StatusServiceUnavailable:
		return ServiceUnavailable, true
	case status >= 500 && status <= 599:
		return ProviderServerError, true
	case status == http.StatusBadRequest, status == http.StatusNotFound, status == http.StatusUnprocessableEntity:
		// Gemini reports a bad key as 400 INVALID_ARGUMENT.
		if isCredentialMessage(message) {
			return InvalidCredentials, true
		}
		return InvalidRequest, true
	}
	return "", false
}

func kindForCode(code string) (ErrorKind, bool) {
	switch strings.ToLower(code) {
	case "":
		return "", false
	case "invalid_api_key", "unauthenticated", "permission_denied", "authentication_error":
		return InvalidCredentials, true
	case "rate_limit_exceeded", "resource_exhausted", "insufficient_quota", "requests":
		return RateLimited, true
	case "unavailable", "overloaded_error":
		return ServiceUnavailable, true
	case "internal", "server_error", "api_error":
		return ProviderServerError, true
	case "invalid_argument", "invalid_request_error", "context_length_exceeded", "model_not_found":
		return InvalidRequest, true
	}
	return "", false
}

func isCredentialMessage(message string) bool {
	msg := strings.ToLower(message)
	for _, pattern := range []string{"api key not valid", "invalid api key", "incorrect api key", "api_key_invalid"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// isNetworkError checks if an error is network-related (transient).
func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	networkPatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"network is unreachable",
		"no such host",
		"temporary failure",
		"dial tcp",
		"eof",
		"connection lost",
	}

	for _, pattern := range networkPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}

// isTimeoutError checks if an error is timeout-related (transient).
func isTimeoutError(err error) bool {
	errMsg := strings.ToLower(err.Error())
	timeoutPatterns := []string{
		"timeout",
		"timed out",
		"deadline exceeded",
		"tls handshake",
	}

	for _, pattern := range timeoutPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
