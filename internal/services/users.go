package services

import (
	"context"
	"time"

	"github.com/snaplife/apiserver/types"
)

const aboutMaxLength = 255

// UserRepository defines persistence operations for user identities.
type UserRepository interface {
	GetByUserID(ctx context.Context, userID int64) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetActivity(ctx context.Context, userID int64, active bool, lastLogin *time.Time) error
	UpdateAbout(ctx context.Context, userID int64, about string) error
	CountFollowers(ctx context.Context, userID int64) (int, error)
	Delete(ctx context.Context, userID int64) error
}

// PostRepository defines the post persistence operations account
// management depends on.
type PostRepository interface {
	CountByUser(ctx context.Context, userID int64) (int, error)
	ImageNamesByUser(ctx context.Context, userID int64) ([]string, error)
}

// UserService encapsulates profile use-cases: the about text and the
// per-user counters.
type UserService struct {
	users UserRepository
	posts PostRepository
}

func NewUserService(users UserRepository, posts PostRepository) *UserService {
	return &UserService{users: users, posts: posts}
}

func (s *UserService) GetByUserID(ctx context.Context, userID int64) (types.User, error) {
	return s.users.GetByUserID(ctx, userID)
}

func (s *UserService) Description(ctx context.Context, userID int64) (string, error) {
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.About, nil
}

func (s *UserService) SetDescription(ctx context.Context, userID int64, about string) error {
	if len(about) > aboutMaxLength {
		return &ValidationError{Field: "description", Value: about, Length: len(about)}
	}
	return s.users.UpdateAbout(ctx, userID, about)
}

// Count returns the user's post or follower count depending on countType
// ("posts" or "followers").
func (s *UserService) Count(ctx context.Context, userID int64, countType string) (int, bool, error) {
	switch countType {
	case "posts":
		count, err := s.posts.CountByUser(ctx, userID)
		return count, true, err
	case "followers":
		count, err := s.users.CountFollowers(ctx, userID)
		return count, true, err
	default:
		return 0, false, nil
	}
}
