package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvisoryLock is a session-level advisory lock held on a dedicated pool
// connection until Release is called.
type AdvisoryLock struct {
	conn   *pgxpool.Conn
	lockID int64
}

// TryAcquireAdvisoryLock attempts to take lockID without blocking. It returns
// nil and no error when another session holds the lock.
func (db *DB) TryAcquireAdvisoryLock(ctx context.Context, lockID int64) (*AdvisoryLock, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		conn.Release()

		return nil, fmt.Errorf("try acquire advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()

		return nil, nil
	}

	return &AdvisoryLock{conn: conn, lockID: lockID}, nil
}

// Release unlocks and returns the connection to the pool.
func (l *AdvisoryLock) Release(ctx context.Context) error {
	defer l.conn.Release()

	if _, err := l.conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", l.lockID); err != nil {
		return fmt.Errorf("release advisory lock: %w", err)
	}

	return nil
}

// TryLockScan takes the cross-instance scan lock without blocking.
func (db *DB) TryLockScan(ctx context.Context) (func(context.Context) error, bool, error) {
	lock, err := db.TryAcquireAdvisoryLock(ctx, ScanLockID)
	if err != nil {
		return nil, false, err
	}

	if lock == nil {
		return nil, false, nil
	}

	return lock.Release, true, nil
}
