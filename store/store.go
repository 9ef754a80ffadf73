// Package store persists enhancement history.
package store

import (
	"context"
)

// Store provides database access to all raw objects.
type Store struct {
	driver Driver
}

// New creates a new instance of Store.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) CreateEnhancement(ctx context.Context, create *Enhancement) (*Enhancement, error) {
	return s.driver.CreateEnhancement(ctx, create)
}

func (s *Store) ListEnhancements(ctx context.Context, find *FindEnhancement) ([]*Enhancement, error) {
	if find == nil {
		find = &FindEnhancement{}
	}
	if err := find.Validate(); err != nil {
		return nil, err
	}
	return s.driver.ListEnhancements(ctx, find)
}

// PruneEnhancements removes history entries created before beforeTs and returns how many were removed.
func (s *Store) PruneEnhancements(ctx context.Context, beforeTs int64) (int64, error) {
	return s.driver.DeleteEnhancements(ctx, &DeleteEnhancement{BeforeTs: beforeTs})
}
