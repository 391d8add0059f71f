package services

import (
	"context"

	"github.com/snaplife/apiserver/internal/session"
	"github.com/snaplife/apiserver/types"
)

// FollowRepository defines persistence operations for the follow graph.
// Both operations are transactional: the edge change and the follower
// counter move together, and the counter only moves when an edge was
// actually inserted or removed.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followedID int64) (count int, inserted bool, err error)
	Unfollow(ctx context.Context, followerID, followedID int64) (count int, removed bool, err error)
}

// FollowService maintains directed follow edges between users.
type FollowService struct {
	users     UserRepository
	follows   FollowRepository
	store     session.Store
	allowSelf bool
}

func NewFollowService(users UserRepository, follows FollowRepository, store session.Store, allowSelf bool) *FollowService {
	return &FollowService{
		users:     users,
		follows:   follows,
		store:     store,
		allowSelf: allowSelf,
	}
}

// Follow adds an edge from the signed-in follower to the named target
// and returns the target plus its new follower count. Following a user
// twice is idempotent at the edge level.
func (s *FollowService) Follow(ctx context.Context, followerID int64, targetUsername string) (types.User, int, error) {
	target, err := s.resolve(ctx, followerID, targetUsername)
	if err != nil {
		return types.User{}, 0, err
	}
	if !s.allowSelf && target.UserID == followerID {
		return types.User{}, 0, ErrSelfFollow
	}

	count, _, err := s.follows.Follow(ctx, followerID, target.UserID)
	if err != nil {
		return types.User{}, 0, err
	}
	target.FollowerCount = count
	return target, count, nil
}

// Unfollow removes the edge if present and returns the target's new
// follower count. Unfollowing an absent edge leaves the count unchanged.
func (s *FollowService) Unfollow(ctx context.Context, followerID int64, targetUsername string) (types.User, int, error) {
	target, err := s.resolve(ctx, followerID, targetUsername)
	if err != nil {
		return types.User{}, 0, err
	}

	count, _, err := s.follows.Unfollow(ctx, followerID, target.UserID)
	if err != nil {
		return types.User{}, 0, err
	}
	target.FollowerCount = count
	return target, count, nil
}

func (s *FollowService) resolve(ctx context.Context, followerID int64, targetUsername string) (types.User, error) {
	if _, err := s.users.GetByUserID(ctx, followerID); err != nil {
		return types.User{}, err
	}

	if _, active, err := s.store.Get(ctx, followerID); err != nil {
		return types.User{}, err
	} else if !active {
		return types.User{}, ErrNotSignedIn
	}

	return s.users.GetByUsername(ctx, targetUsername)
}
