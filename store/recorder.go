package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/hrygo/clipsense/ai/enhance"
)

// Recorder adapts a Store to the orchestrator's history hook.
type Recorder struct {
	store *Store
}

// NewRecorder creates a history recorder backed by s.
func NewRecorder(s *Store) *Recorder {
	return &Recorder{store: s}
}

// RecordOutcome implements enhance.HistoryRecorder.
func (r *Recorder) RecordOutcome(ctx context.Context, o enhance.Outcome) error {
	_, err := r.store.CreateEnhancement(ctx, FromOutcome(o))
	return err
}

// FromOutcome converts a finished request into a history entry.
func FromOutcome(o enhance.Outcome) *Enhancement {
	status := StatusSuccess
	if !o.Succeeded() {
		status = string(o.Kind)
	}
	return &Enhancement{
		ID:         uuid.NewString(),
		RequestID:  o.RequestID,
		Mode:       string(o.Mode),
		Platform:   string(o.Result.Platform),
		Tone:       string(o.Result.Tone),
		Format:     string(o.Result.Format),
		Provider:   o.Provider,
		Model:      o.Model,
		Status:     status,
		Input:      o.Input,
		Output:     o.Output,
		CacheHit:   o.CacheHit,
		Attempts:   int32(o.Attempts),
		DurationMs: o.Duration.Milliseconds(),
		ProviderMs: o.ProviderTime.Milliseconds(),
		CreatedTs:  o.CreatedAt.Unix(),
	}
}
