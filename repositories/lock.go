package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrLockNotAcquired means another execution already holds the lock for the
// same configuration.
var ErrLockNotAcquired = errors.New("draw execution lock not acquired")

// DrawLocker serializes draw executions per (event, configuration). The
// product runs multiple stateless request handlers, so the lock must live in
// the database, not in process memory.
type DrawLocker interface {
	// BeginExecution opens the execution transaction and takes an exclusive
	// lock scoped to it. Returns ErrLockNotAcquired without blocking when a
	// concurrent execution holds the lock.
	BeginExecution(ctx context.Context, eventID, configID int) (DrawExecution, error)
}

// DrawExecution is one locked execute-then-persist sequence. The advisory
// lock is transaction-scoped, so Commit and Rollback both release it - a
// caller that times out mid-flight cannot leave the lock stuck.
type DrawExecution interface {
	Executor() SQLExecutor
	Commit() error
	Rollback() error
}

type postgresDrawLocker struct {
	db *sql.DB
}

func NewPostgresDrawLocker(db *sql.DB) DrawLocker {
	return &postgresDrawLocker{db: db}
}

func (l *postgresDrawLocker) BeginExecution(ctx context.Context, eventID, configID int) (DrawExecution, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin draw execution transaction: %w", err)
	}

	var acquired bool
	err = tx.QueryRowContext(ctx, `SELECT pg_try_advisory_xact_lock($1, $2)`, eventID, configID).Scan(&acquired)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to acquire draw execution lock: %w", err)
	}
	if !acquired {
		_ = tx.Rollback()
		return nil, ErrLockNotAcquired
	}

	return &postgresDrawExecution{tx: tx}, nil
}

type postgresDrawExecution struct {
	tx *sql.Tx
}

func (e *postgresDrawExecution) Executor() SQLExecutor { return e.tx }
func (e *postgresDrawExecution) Commit() error         { return e.tx.Commit() }
func (e *postgresDrawExecution) Rollback() error       { return e.tx.Rollback() }
