package store

import "github.com/pkg/errors"

// Enhancement is one finished enhancement request kept in history.
type Enhancement struct {
	ID         string `json:"id"`
	RequestID  string `json:"request_id"`
	Mode       string `json:"mode"`
	Platform   string `json:"platform"`
	Tone       string `json:"tone"`
	Format     string `json:"format"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Status     string `json:"status"` // "success" or the error kind
	Input      string `json:"input"`
	Output     string `json:"output"`
	CacheHit   bool   `json:"cache_hit"`
	Attempts   int32  `json:"attempts"`
	DurationMs int64  `json:"duration_ms"`
	ProviderMs int64  `json:"provider_ms"`
	CreatedTs  int64  `json:"created_ts"`
}

// StatusSuccess marks an enhancement that produced output.
const StatusSuccess = "success"

// FindEnhancement specifies conditions for listing history entries, newest first.
type FindEnhancement struct {
	Mode    *string
	Status  *string
	SinceTs *int64
	Limit   int
}

// DeleteEnhancement removes entries created before BeforeTs.
type DeleteEnhancement struct {
	BeforeTs int64
}

// Limits for FindEnhancement.
const (
	DefaultListLimit = 20
	MaxListLimit     = 1000
)

// Validate checks the find options and applies the default limit.
func (f *FindEnhancement) Validate() error {
	if f.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if f.Limit == 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		return errors.Errorf("limit too large: max %d", MaxListLimit)
	}
	return nil
}
