// Package lock serializes result table writes between ParcelLink processes
// with MySQL named locks.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLockTimeout is returned when another process holds the lock past the timeout.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Timeout values for lock acquisition, in seconds.
const (
	// TimeoutImmediate returns at once if the lock is taken.
	TimeoutImmediate = 0

	// TimeoutShort fails fast when another trace is saving.
	TimeoutShort = 1

	// TimeoutMedium waits out a typical concurrent save.
	TimeoutMedium = 10

	// TimeoutInfinite waits until the lock is free.
	// MySQL treats negative values as infinite wait.
	TimeoutInfinite = -1
)

// maxLockNameLen is the longest name GET_LOCK accepts.
const maxLockNameLen = 64

// AdvisoryLock is a MySQL named lock. GET_LOCK is bound to the session that
// took it, so the lock pins one pooled connection from acquire to release.
type AdvisoryLock struct {
	db       *sql.DB
	conn     *sql.Conn
	lockName string
	held     bool
}

// NewAdvisoryLock creates a lock with the given name. Nothing is acquired yet.
func NewAdvisoryLock(db *sql.DB, lockName string) *AdvisoryLock {
	return &AdvisoryLock{
		db:       db,
		lockName: lockName,
	}
}

// AcquireLock tries to take the lock, waiting up to timeoutSeconds.
// It returns false without error when the timeout is reached.
//
// MySQL GET_LOCK() return values:
//   - 1: lock obtained
//   - 0: timeout reached
//   - NULL: an error occurred (thread killed, out of memory)
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.held {
		return true, nil
	}

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to reserve connection: %w", err)
	}

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.lockName, timeoutSeconds).Scan(&result); err != nil {
		conn.Close()
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}

	if !result.Valid {
		conn.Close()
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q", a.lockName)
	}

	switch result.Int64 {
	case 1:
		a.conn = conn
		a.held = true
		return true, nil
	case 0:
		conn.Close()
		return false, nil
	default:
		conn.Close()
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// ReleaseLock releases the lock and returns its connection to the pool.
// It returns false when this instance did not hold the lock.
//
// MySQL RELEASE_LOCK() return values:
//   - 1: released
//   - 0: held by another session
//   - NULL: no such lock
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) (bool, error) {
	if !a.held {
		return false, nil
	}

	conn := a.conn
	a.conn = nil
	a.held = false
	defer conn.Close()

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.lockName).Scan(&result); err != nil {
		return false, fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}

	if !result.Valid {
		return false, fmt.Errorf("RELEASE_LOCK returned NULL for lock %q (lock did not exist)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected RELEASE_LOCK return value: %d", result.Int64)
	}
}

// IsHeld reports whether this instance holds the lock.
func (a *AdvisoryLock) IsHeld() bool {
	return a.held
}

// LockName returns the name of the lock.
func (a *AdvisoryLock) LockName() string {
	return a.lockName
}

// TryAcquire is AcquireLock with TimeoutImmediate.
func (a *AdvisoryLock) TryAcquire(ctx context.Context) (bool, error) {
	return a.AcquireLock(ctx, TimeoutImmediate)
}

// AcquireOrFail acquires the lock or returns ErrLockTimeout.
func (a *AdvisoryLock) AcquireOrFail(ctx context.Context, timeoutSeconds int) error {
	acquired, err := a.AcquireLock(ctx, timeoutSeconds)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another process", ErrLockTimeout, a.lockName)
	}
	return nil
}

// WithLock runs fn while holding the lock. The lock is released when fn
// returns or panics; a release failure is reported only if fn succeeded.
func (a *AdvisoryLock) WithLock(ctx context.Context, timeoutSeconds int, fn func() error) (err error) {
	if err := a.AcquireOrFail(ctx, timeoutSeconds); err != nil {
		return err
	}

	defer func() {
		// The run context may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, releaseErr := a.ReleaseLock(releaseCtx); releaseErr != nil && err == nil {
			err = fmt.Errorf("failed to release lock: %w", releaseErr)
		}
	}()

	return fn()
}

// ResultLockName returns the lock name guarding result tables with the given prefix.
// Names look like "parcellink:results:link_" and are cut to the MySQL limit.
func ResultLockName(prefix string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, prefix)

	name := "parcellink:results:" + sanitized
	if len(name) > maxLockNameLen {
		name = name[:maxLockNameLen]
	}
	return name
}

// NewResultLock creates the lock for result tables sharing prefix.
//
// Example:
//
//	l := lock.NewResultLock(db, cfg.Output.TablePrefix)
//	err := l.WithLock(ctx, lock.TimeoutMedium, func() error {
//	    _, err := writer.Write(ctx, runID, tables)
//	    return err
//	})
//	if errors.Is(err, lock.ErrLockTimeout) {
//	    // another trace is saving results
//	}
func NewResultLock(db *sql.DB, prefix string) *AdvisoryLock {
	return NewAdvisoryLock(db, ResultLockName(prefix))
}
