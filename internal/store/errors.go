package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a uniqueness constraint is violated.
var ErrConflict = errors.New("conflict")

// uniqueViolation is the postgres error code for unique_violation.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a postgres unique constraint
// violation. Concurrent inserts racing on username/email surface here,
// so callers can treat the loser as a normal conflict.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
