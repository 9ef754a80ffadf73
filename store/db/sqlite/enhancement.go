package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hrygo/clipsense/store"
)

// CreateEnhancement inserts a history entry. A missing ID or timestamp is filled in.
func (d *DB) CreateEnhancement(ctx context.Context, create *store.Enhancement) (*store.Enhancement, error) {
	entry := *create
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedTs == 0 {
		entry.CreatedTs = time.Now().Unix()
	}

	stmt := `
		INSERT INTO enhancement (
			id, request_id, mode, platform, tone, format, provider, model, status,
			input, output, cache_hit, attempts, duration_ms, provider_ms, created_ts
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.ExecContext(ctx, stmt,
		entry.ID,
		entry.RequestID,
		entry.Mode,
		entry.Platform,
		entry.Tone,
		entry.Format,
		entry.Provider,
		entry.Model,
		entry.Status,
		entry.Input,
		entry.Output,
		entry.CacheHit,
		entry.Attempts,
		entry.DurationMs,
		entry.ProviderMs,
		entry.CreatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create enhancement")
	}
	return &entry, nil
}

// ListEnhancements lists history entries, newest first.
func (d *DB) ListEnhancements(ctx context.Context, find *store.FindEnhancement) ([]*store.Enhancement, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.Mode != nil {
		where, args = append(where, "mode = ?"), append(args, *find.Mode)
	}
	if find.Status != nil {
		where, args = append(where, "status = ?"), append(args, *find.Status)
	}
	if find.SinceTs != nil {
		where, args = append(where, "created_ts >= ?"), append(args, *find.SinceTs)
	}

	query := `SELECT id, request_id, mode, platform, tone, format, provider, model, status,
			input, output, cache_hit, attempts, duration_ms, provider_ms, created_ts
		FROM enhancement
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, rowid DESC`

	if find.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list enhancements")
	}
	defer rows.Close()

	var list []*store.Enhancement
	for rows.Next() {
		var e store.Enhancement
		err := rows.Scan(
			&e.ID,
			&e.RequestID,
			&e.Mode,
			&e.Platform,
			&e.Tone,
			&e.Format,
			&e.Provider,
			&e.Model,
			&e.Status,
			&e.Input,
			&e.Output,
			&e.CacheHit,
			&e.Attempts,
			&e.DurationMs,
			&e.ProviderMs,
			&e.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan enhancement")
		}
		list = append(list, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// DeleteEnhancements removes entries created before delete.BeforeTs.
func (d *DB) DeleteEnhancements(ctx context.Context, delete *store.DeleteEnhancement) (int64, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM enhancement WHERE created_ts < ?`, delete.BeforeTs)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete enhancements")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count deleted enhancements")
	}
	return n, nil
}
