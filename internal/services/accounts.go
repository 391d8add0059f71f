package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/snaplife/apiserver/internal/events"
	"github.com/snaplife/apiserver/internal/session"
	"github.com/snaplife/apiserver/internal/store"
	"github.com/snaplife/apiserver/types"
)

const (
	fieldMaxLength    = 40
	userIDMaxAttempts = 3
)

// BlobStore defines the object store operations account management uses.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys []string) error
}

// EventPublisher emits account lifecycle events for the mailer service.
type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, event events.AccountEvent) (string, error)
}

// CreateAccountParams carries the validated inputs for account creation.
type CreateAccountParams struct {
	Username     string
	FirstName    string
	LastName     string
	Password     string
	Email        string
	About        string
	ProfileImage []byte
}

// AccountService creates and destroys user identities, enforcing
// uniqueness and cascading cleanup of owned blobs.
type AccountService struct {
	users    UserRepository
	posts    PostRepository
	sessions session.Store
	blobs    BlobStore
	events   EventPublisher
	logger   *slog.Logger
}

func NewAccountService(users UserRepository, posts PostRepository, sessions session.Store, blobs BlobStore, publisher EventPublisher, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		users:    users,
		posts:    posts,
		sessions: sessions,
		blobs:    blobs,
		events:   publisher,
		logger:   logger,
	}
}

// Create registers a new identity. The username must be unused; a fresh
// salt and public user id are generated, and id generation is retried a
// bounded number of times when the random id collides.
func (s *AccountService) Create(ctx context.Context, params CreateAccountParams) (types.User, error) {
	if err := validateRequired("username", params.Username); err != nil {
		return types.User{}, err
	}
	if err := validateRequired("firstname", params.FirstName); err != nil {
		return types.User{}, err
	}
	if err := validateRequired("lastname", params.LastName); err != nil {
		return types.User{}, err
	}
	if err := validateRequired("password", params.Password); err != nil {
		return types.User{}, err
	}
	if len(params.About) > aboutMaxLength {
		return types.User{}, &ValidationError{Field: "about", Value: params.About, Length: len(params.About)}
	}

	if _, err := s.users.GetByUsername(ctx, params.Username); err == nil {
		return types.User{}, &DuplicateUsernameError{Username: params.Username}
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	salt, err := NewSalt()
	if err != nil {
		return types.User{}, err
	}

	email := params.Email
	if email == "" {
		email = fmt.Sprintf("%s@noemail.set", params.Username)
	}

	user := types.User{
		Username:     params.Username,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		SaltHash:     salt,
		PasswordHash: SignPassword(params.Password, salt),
		Email:        email,
		About:        params.About,
	}

	user.UserID = newUserID()
	regenerate := true
	if len(params.ProfileImage) > 0 {
		url, err := s.blobs.Upload(ctx, profileImageKey(user.UserID), params.ProfileImage, "image/png")
		if err != nil {
			return types.User{}, fmt.Errorf("uploading profile image: %w", err)
		}
		user.ProfileURL = url
		regenerate = false
	}

	created, err := s.createWithRetry(ctx, user, regenerate)
	if err != nil {
		return types.User{}, err
	}
	s.publish(ctx, events.TypeAccountCreated, created)
	return created, nil
}

// Delete removes an identity after verifying its password. Blob cleanup
// runs before the record delete and is best-effort: object store
// failures are logged, never allowed to abort the deletion.
func (s *AccountService) Delete(ctx context.Context, username, password string) (int64, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return 0, err
	}

	if !VerifyPassword(user, password) {
		return 0, ErrPasswordMismatch
	}

	if err := s.sessions.Delete(ctx, user.UserID); err != nil {
		return 0, err
	}

	imageNames, err := s.posts.ImageNamesByUser(ctx, user.UserID)
	if err != nil {
		return 0, err
	}
	if err := s.blobs.RemoveMany(ctx, imageNames); err != nil {
		s.logger.Warn("post image cleanup failed", "userid", user.UserID, "error", err)
	}
	if user.ProfileURL != "" {
		if err := s.blobs.Remove(ctx, profileImageKey(user.UserID)); err != nil {
			s.logger.Warn("profile image cleanup failed", "userid", user.UserID, "error", err)
		}
	}

	if err := s.users.Delete(ctx, user.UserID); err != nil {
		return 0, err
	}

	s.publish(ctx, events.TypeAccountDeleted, user)
	return user.UserID, nil
}

func (s *AccountService) createWithRetry(ctx context.Context, user types.User, regenerate bool) (types.User, error) {
	var lastErr error
	for attempt := 0; attempt < userIDMaxAttempts; attempt++ {
		created, err := s.users.Create(ctx, user)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, store.ErrUserIDTaken) {
			return types.User{}, err
		}
		lastErr = err
		if !regenerate {
			// the uploaded profile image is keyed by the user id;
			// regenerating would orphan it
			break
		}
		user.UserID = newUserID()
	}
	return types.User{}, fmt.Errorf("allocating user id: %w", lastErr)
}

func (s *AccountService) publish(ctx context.Context, eventType string, user types.User) {
	if s.events == nil {
		return
	}
	_, err := s.events.PublishAccountEvent(ctx, events.AccountEvent{
		Type:     eventType,
		UserID:   user.UserID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		s.logger.Warn("account event publish failed", "type", eventType, "userid", user.UserID, "error", err)
	}
}

func validateRequired(field, value string) error {
	if len(value) == 0 || len(value) > fieldMaxLength {
		return &ValidationError{Field: field, Value: value, Length: len(value)}
	}
	return nil
}

// newUserID derives a positive 32-bit identifier from a random UUID.
func newUserID() int64 {
	id := uuid.New()
	return int64(uint32(id.ID()) & 0x7fffffff)
}

func profileImageKey(userID int64) string {
	return fmt.Sprintf("profilepic/%d.png", userID)
}
