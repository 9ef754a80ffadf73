// Package tracing records the timed stages of a single request.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Span represents a single stage in a trace.
type Span struct {
	tracer    *Tracer
	name      string
	startTime time.Time
	metadata  map[string]any
	err       error
	ended     bool
}

// Record is a completed span.
type Record struct {
	Name     string         `json:"name"`
	Duration time.Duration  `json:"duration"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Tracer collects the spans of one request. It is safe for concurrent use.
type Tracer struct {
	mu      sync.Mutex
	logger  *slog.Logger
	enabled bool
	records []Record
	now     func() time.Time
}

// NewTracer creates a tracer that logs completed spans to logger at debug level.
// A disabled tracer hands out inert spans.
func NewTracer(logger *slog.Logger, enabled bool) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracer{logger: logger, enabled: enabled, now: time.Now}
}

// StartSpan begins a new span.
func (t *Tracer) StartSpan(name string) *Span {
	if t == nil || !t.enabled {
		return &Span{name: name}
	}
	return &Span{
		tracer:    t,
		name:      name,
		startTime: t.now(),
		metadata:  make(map[string]any),
	}
}

// SetMetadata adds metadata to the span.
func (s *Span) SetMetadata(key string, value any) {
	if s.tracer == nil {
		return
	}
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.metadata[key] = value
}

// RecordError records an error in the span.
func (s *Span) RecordError(err error) {
	if s.tracer == nil || err == nil {
		return
	}
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.err = err
}

// End completes the span. Calling End twice has no effect.
func (s *Span) End() {
	t := s.tracer
	if t == nil {
		return
	}

	t.mu.Lock()
	if s.ended {
		t.mu.Unlock()
		return
	}
	s.ended = true
	rec := Record{Name: s.name, Duration: t.now().Sub(s.startTime)}
	if len(s.metadata) > 0 {
		rec.Metadata = make(map[string]any, len(s.metadata))
		for k, v := range s.metadata {
			rec.Metadata[k] = v
		}
	}
	if s.err != nil {
		rec.Error = s.err.Error()
	}
	t.records = append(t.records, rec)
	t.mu.Unlock()

	t.logger.Debug("span completed",
		"name", rec.Name,
		"duration_ms", rec.Duration.Milliseconds(),
		"metadata", rec.Metadata,
	)
}

// Records returns the completed spans in completion order.
func (t *Tracer) Records() []Record {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Total returns the summed duration of completed spans named name.
func (t *Tracer) Total(name string) time.Duration {
	var d time.Duration
	for _, r := range t.Records() {
		if r.Name == name {
			d += r.Duration
		}
	}
	return d
}

type tracerKey struct{}

// ToContext attaches the tracer to ctx.
func ToContext(ctx context.Context, t *Tracer) context.Context {
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext extracts the tracer from context, or a disabled tracer.
func FromContext(ctx context.Context) *Tracer {
	if t, ok := ctx.Value(tracerKey{}).(*Tracer); ok {
		return t
	}
	return &Tracer{enabled: false}
}

// WithSpan wraps a function with a span.
func WithSpan(ctx context.Context, name string, fn func(context.Context) error) error {
	span := FromContext(ctx).StartSpan(name)
	defer span.End()

	err := fn(ctx)
	span.RecordError(err)
	return err
}
