package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrInvalidState is returned when a conditional status update matches
	// no row because the record is not in the expected state.
	ErrInvalidState = errors.New("record not in expected state")

	// ErrTimeout is returned when a store operation exceeds its deadline.
	// Callers may safely retry.
	ErrTimeout = errors.New("store operation timed out")
)

// SQLExecutor defines an interface that can be satisfied by *sql.DB or *sql.Tx.
// This allows repository methods to be used within transactions or with a
// direct DB connection.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// scanner is an interface satisfied by *sql.Row and *sql.Rows.
// This allows for generic scanning helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

// wrapDBError classifies a driver error: deadline/cancellation becomes the
// retryable ErrTimeout, everything else wraps ErrDatabaseError.
func wrapDBError(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s", ErrTimeout, op)
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, op, err)
}
