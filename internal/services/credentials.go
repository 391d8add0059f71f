package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/snaplife/apiserver/types"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes      = 16
	signatureIters = 4096
	signatureBytes = 32
)

// NewSalt returns a fresh random per-user salt, hex encoded.
func NewSalt() (string, error) {
	var buf [saltBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

// SignPassword derives the salted signature stored for a password.
// It is deterministic for a given (password, salt) pair; the plaintext
// is never persisted.
func SignPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), signatureIters, signatureBytes, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword recomputes the salted signature of the candidate and
// compares it against the stored one in constant time. A mismatch is a
// boolean false, never an error.
func VerifyPassword(user types.User, candidate string) bool {
	challenge := SignPassword(candidate, user.SaltHash)
	return subtle.ConstantTimeCompare([]byte(challenge), []byte(user.PasswordHash)) == 1
}
