package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sangkips/clientes-service/internal/db"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateTaxID     = errors.New("tax id already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const uniqueViolation = "23505"

// StoreError wraps a failure of the underlying store. Op names the step that
// failed; the wrapped error is for server-side logs only.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "customers: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// classify leaves domain outcomes untouched and turns anything else into a
// StoreError for op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	switch {
	case errors.Is(err, db.ErrUnavailable),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrDuplicateTaxID),
		errors.Is(err, ErrInvalidCredentials),
		errors.As(err, &storeErr):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &StoreError{Op: op + ": wait for connection", Err: err}
	}
	return &StoreError{Op: op, Err: err}
}

// duplicateFromConstraint maps a unique violation raised by the insert to the
// matching duplicate error. Another writer can win the race between the
// existence checks and the insert.
func duplicateFromConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case db.EmailUniqueConstraint:
		return ErrDuplicateEmail
	case db.TaxIDUniqueConstraint:
		return ErrDuplicateTaxID
	}
	return nil
}
