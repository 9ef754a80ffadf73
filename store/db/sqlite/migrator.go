package sqlite

import (
	"context"
	"log/slog"
	"sort"

	"github.com/pkg/errors"

	"github.com/hrygo/clipsense/internal/version"
)

// migrations maps a schema version to the statements that bring the previous version up to it.
// Applied versions are recorded in migration_history and never re-run.
var migrations = map[string][]string{
	"0.1.0": {
		`CREATE TABLE enhancement (
			id TEXT NOT NULL PRIMARY KEY,
			request_id TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL,
			platform TEXT NOT NULL DEFAULT '',
			tone TEXT NOT NULL DEFAULT '',
			format TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			input TEXT NOT NULL DEFAULT '',
			output TEXT NOT NULL DEFAULT '',
			cache_hit INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
		)`,
	},
	"0.2.0": {
		`ALTER TABLE enhancement ADD COLUMN provider_ms INTEGER NOT NULL DEFAULT 0`,
		`CREATE INDEX idx_enhancement_created_ts ON enhancement (created_ts)`,
		`CREATE INDEX idx_enhancement_mode ON enhancement (mode)`,
	},
}

const createMigrationHistory = `CREATE TABLE IF NOT EXISTS migration_history (
	version TEXT NOT NULL PRIMARY KEY,
	created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
)`

// LatestSchemaVersion is the version Migrate brings the schema up to.
func LatestSchemaVersion() string {
	return version.Latest(migrationVersions())
}

func migrationVersions() []string {
	versions := make([]string, 0, len(migrations))
	for v := range migrations {
		versions = append(versions, v)
	}
	sort.Sort(version.SortVersion(versions))
	return versions
}

// Migrate applies every migration newer than the recorded schema version, each in its own transaction.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, createMigrationHistory); err != nil {
		return errors.Wrap(err, "failed to create migration_history table")
	}

	current, err := d.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, v := range migrationVersions() {
		if current != "" && version.IsVersionGreaterOrEqualThan(current, v) {
			continue
		}
		if err := d.applyMigration(ctx, v, migrations[v]); err != nil {
			return err
		}
		slog.Debug("applied history migration", "version", v)
	}
	return nil
}

func (d *DB) applyMigration(ctx context.Context, v string, statements []string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start migration transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to apply migration %s", v)
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO migration_history (version) VALUES (?)", v); err != nil {
		return errors.Wrapf(err, "failed to record migration %s", v)
	}
	return errors.Wrapf(tx.Commit(), "failed to commit migration %s", v)
}

// SchemaVersion returns the latest applied migration version, or "" for a fresh database.
func (d *DB) SchemaVersion(ctx context.Context) (string, error) {
	exists, err := d.tableExists(ctx, "migration_history")
	if err != nil || !exists {
		return "", err
	}

	rows, err := d.db.QueryContext(ctx, "SELECT version FROM migration_history")
	if err != nil {
		return "", errors.Wrap(err, "failed to list migration history")
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return "", errors.Wrap(err, "failed to scan migration history")
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return version.Latest(versions), nil
}
