package services

import (
	"errors"
	"fmt"
)

// ErrAlreadyLoggedIn is returned when a user logs in again without an
// intervening logoff.
var ErrAlreadyLoggedIn = errors.New("already signed in")

// ErrPasswordMismatch is returned when credential verification fails.
var ErrPasswordMismatch = errors.New("password mismatch")

// ErrNotSignedIn is returned when an operation requires an active session.
var ErrNotSignedIn = errors.New("not signed in")

// ErrSelfFollow is returned when self-follow is disabled by policy and a
// user attempts to follow themselves.
var ErrSelfFollow = errors.New("cannot follow yourself")

// ValidationError reports a request field that is empty or too long.
type ValidationError struct {
	Field  string
	Value  string
	Length int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q, len %d, incorrect size requirement", e.Field, e.Value, e.Length)
}

// DuplicateUsernameError reports an attempt to register a handle that is
// already taken.
type DuplicateUsernameError struct {
	Username string
}

func (e *DuplicateUsernameError) Error() string {
	return fmt.Sprintf("username %s is already taken", e.Username)
}
