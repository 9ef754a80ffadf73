package enhance

import (
	"context"
	"time"
)

// RetryPolicy decides whether and when a failed provider call is retried.
type RetryPolicy struct {
	MaxAttempts int           // total attempts including the first (default: 3)
	BaseDelay   time.Duration // default: 1s
}

// DefaultRetryPolicy returns the default policy: 3 attempts, 1s base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	return p
}

// Retryable reports whether a failure of kind may be retried.
func (p RetryPolicy) Retryable(kind ErrorKind) bool {
	switch kind {
	case InvalidCredentials, InvalidRequest:
		return false
	default:
		return true
	}
}

// Delay returns the wait before the attempt following a failed attempt (1-based).
// Rate limits back off exponentially, everything else linearly.
func (p RetryPolicy) Delay(kind ErrorKind, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if kind == RateLimited {
		return p.BaseDelay * time.Duration(1<<(attempt-1))
	}
	return p.BaseDelay * time.Duration(attempt)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
