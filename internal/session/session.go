// Package session tracks which user identities currently hold a live
// login. Entries are transient: they are created on login, removed on
// logoff, and swept when a staleness check finds them expired.
package session

import (
	"context"
	"time"
)

// Store holds the login markers keyed by public user id. Implementations
// must make Put atomic: when two logins race for the same user, exactly
// one Put reports success.
type Store interface {
	// Get returns the login timestamp for the user and whether a
	// session entry exists.
	Get(ctx context.Context, userID int64) (time.Time, bool, error)

	// Put records a login marker. It returns false without modifying
	// the store when a marker already exists.
	Put(ctx context.Context, userID int64, at time.Time) (bool, error)

	// Delete removes the login marker. Deleting an absent marker is a
	// no-op.
	Delete(ctx context.Context, userID int64) error
}
