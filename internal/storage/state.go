package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// LoadWatermark returns the persisted scan watermark, or the zero time when
// none has been saved.
func (db *DB) LoadWatermark(ctx context.Context) (time.Time, error) {
	return db.loadState(ctx, stateKeyWatermark)
}

// SaveWatermark persists the scan watermark.
func (db *DB) SaveWatermark(ctx context.Context, at time.Time) error {
	return db.saveState(ctx, stateKeyWatermark, at)
}

// LoadLastRun returns the last run time of a scheduled task, or the zero time.
func (db *DB) LoadLastRun(ctx context.Context, task string) (time.Time, error) {
	return db.loadState(ctx, taskStateKey(task))
}

// SaveLastRun persists the last run time of a scheduled task.
func (db *DB) SaveLastRun(ctx context.Context, task string, at time.Time) error {
	return db.saveState(ctx, taskStateKey(task), at)
}

func taskStateKey(task string) string {
	return stateKeyTaskPrefix + task
}

func (db *DB) loadState(ctx context.Context, key string) (time.Time, error) {
	query, args, err := psql.Select("value_at").
		From(tableScannerState).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("build load state query: %w", err)
	}

	var at pgtype.Timestamptz

	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&at); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}

		return time.Time{}, fmt.Errorf("load state %s: %w", key, err)
	}

	return fromTimestamptz(at), nil
}

func (db *DB) saveState(ctx context.Context, key string, at time.Time) error {
	query, args, err := psql.Insert(tableScannerState).
		Columns("key", "value_at").
		Values(key, toTimestamptz(at)).
		Suffix("ON CONFLICT (key) DO UPDATE SET value_at = EXCLUDED.value_at, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build save state query: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}

	return nil
}
