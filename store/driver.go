package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate brings the schema up to the latest version.
	Migrate(ctx context.Context) error
	// SchemaVersion returns the latest applied migration version, or "" for a fresh database.
	SchemaVersion(ctx context.Context) (string, error)

	CreateEnhancement(ctx context.Context, create *Enhancement) (*Enhancement, error)
	ListEnhancements(ctx context.Context, find *FindEnhancement) ([]*Enhancement, error)
	DeleteEnhancements(ctx context.Context, delete *DeleteEnhancement) (int64, error)
}
