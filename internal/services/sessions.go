package services

import (
	"context"
	"time"

	"github.com/snaplife/apiserver/internal/session"
	"github.com/snaplife/apiserver/types"
)

// SessionService is the single source of truth for "is user X signed
// in". Login and logoff move a per-user state machine between LoggedOut
// and LoggedIn; staleness expiry is pull-based and runs on the online
// check rather than on a background timer.
type SessionService struct {
	users      UserRepository
	store      session.Store
	staleAfter time.Duration
	now        func() time.Time
}

func NewSessionService(users UserRepository, store session.Store, staleAfter time.Duration) *SessionService {
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	return &SessionService{
		users:      users,
		store:      store,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Login verifies the credentials and transitions the user to LoggedIn.
// A second login without an intervening logoff fails with
// ErrAlreadyLoggedIn; the session store insert is atomic, so concurrent
// logins for the same user cannot both succeed.
func (s *SessionService) Login(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return types.User{}, err
	}

	if _, active, err := s.store.Get(ctx, user.UserID); err != nil {
		return types.User{}, err
	} else if active {
		return types.User{}, ErrAlreadyLoggedIn
	}

	if !VerifyPassword(user, password) {
		return types.User{}, ErrPasswordMismatch
	}

	now := s.now()
	ok, err := s.store.Put(ctx, user.UserID, now)
	if err != nil {
		return types.User{}, err
	}
	if !ok {
		return types.User{}, ErrAlreadyLoggedIn
	}

	if err := s.users.SetActivity(ctx, user.UserID, true, &now); err != nil {
		return types.User{}, err
	}
	user.IsActive = true
	user.LastLoginDate = now
	return user, nil
}

// Logoff transitions the user to LoggedOut. Logging off a user without
// a session entry is a no-op, not an error.
func (s *SessionService) Logoff(ctx context.Context, userID int64) error {
	if _, err := s.users.GetByUserID(ctx, userID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		return err
	}
	return s.users.SetActivity(ctx, userID, false, nil)
}

// Online reports whether the user is currently signed in. When the last
// login is older than the staleness window the session is expired as a
// side effect, regardless of who asked.
func (s *SessionService) Online(ctx context.Context, username string) (bool, types.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, types.User{}, err
	}

	_, active, err := s.store.Get(ctx, user.UserID)
	if err != nil {
		return false, types.User{}, err
	}
	if !active {
		return false, user, nil
	}

	if s.now().Sub(user.LastLoginDate) >= s.staleAfter {
		if err := s.store.Delete(ctx, user.UserID); err != nil {
			return false, types.User{}, err
		}
		if err := s.users.SetActivity(ctx, user.UserID, false, nil); err != nil {
			return false, types.User{}, err
		}
		user.IsActive = false
		return false, user, nil
	}

	return true, user, nil
}
