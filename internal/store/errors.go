package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert violates a uniqueness constraint
// that cannot be resolved by regenerating identifiers (e.g. email).
var ErrConflict = errors.New("uniqueness conflict")

// ErrUserIDTaken is returned when a freshly generated user id collides
// with an existing one. Callers may regenerate and retry.
var ErrUserIDTaken = errors.New("user id taken")
