package types

import "time"

// User represents a registered snaplife identity.
// It contains login credentials, profile data, and denormalized counters.
type User struct {
	// ID is the database row identifier.
	ID int `json:"-" db:"id"`

	// UserID is the opaque public identifier handed to clients.
	// It is generated at creation and unique across all users.
	UserID int64 `json:"userid" db:"user_id"`

	// Username is the unique login handle, 1-40 characters.
	Username string `json:"username" db:"user_name"`

	// FirstName is the user's first name, 1-40 characters.
	FirstName string `json:"firstname" db:"first_name"`

	// LastName is the user's last name, 1-40 characters.
	LastName string `json:"lastname" db:"last_name"`

	// PasswordHash stores the salted signature of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// SaltHash is the per-user random salt used to compute PasswordHash.
	SaltHash string `json:"-" db:"salt_hash"`

	// Email is the user's unique email address. A placeholder of the form
	// "{username}@noemail.set" is synthesized when none is supplied.
	Email string `json:"email" db:"email"`

	// About is free-form profile text, at most 255 characters.
	About string `json:"about" db:"about"`

	// ProfileURL points at the profile image in the blob store, if any.
	ProfileURL string `json:"profileurl" db:"profile_url"`

	// IsActive reports whether the user currently holds a live session.
	IsActive bool `json:"isactive" db:"is_active"`

	// FollowerCount is the denormalized count of inbound follow edges.
	// It always equals the number of follow rows targeting this user.
	FollowerCount int `json:"followercount" db:"follower_count"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"creation_date"`

	// LastLoginDate is the timestamp of the most recent successful login.
	LastLoginDate time.Time `json:"last_login_date" db:"last_login_date"`
}
