package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/snaplife/apiserver/types"
)

// FollowRepository handles persistence for the follow graph. Edge
// changes and the denormalized follower counter always move together in
// one transaction.
type FollowRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Follow inserts the follower->followed edge if it does not exist and
// returns the followed user's follower count afterwards. The counter is
// incremented only when an edge was actually inserted, so repeated
// calls for the same pair never double-count.
func (r *FollowRepository) Follow(ctx context.Context, followerID, followedID int64) (int, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	edge := types.FollowEdge{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now(),
	}
	const insert = `
		INSERT INTO follows (follower_id, followed_id, creation_date)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`
	result, err := tx.ExecContext(ctx, insert, edge.FollowerID, edge.FollowedID, edge.CreatedAt)
	if err != nil {
		return 0, false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	inserted := affected == 1

	count, err := adjustFollowerCount(ctx, tx, followedID, inserted, +1)
	if err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return count, inserted, nil
}

// Unfollow removes the edge if present and returns the followed user's
// follower count afterwards. The counter is decremented only when an
// edge was actually removed; unfollowing an absent edge is a no-op.
func (r *FollowRepository) Unfollow(ctx context.Context, followerID, followedID int64) (int, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const remove = `
		DELETE FROM follows
		WHERE follower_id = $1 AND followed_id = $2`
	result, err := tx.ExecContext(ctx, remove, followerID, followedID)
	if err != nil {
		return 0, false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	removed := affected == 1

	count, err := adjustFollowerCount(ctx, tx, followedID, removed, -1)
	if err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return count, removed, nil
}

func adjustFollowerCount(ctx context.Context, tx *sql.Tx, userID int64, changed bool, delta int) (int, error) {
	var count int
	if changed {
		const update = `
			UPDATE users
			SET follower_count = follower_count + $2
			WHERE user_id = $1
			RETURNING follower_count`
		if err := tx.QueryRowContext(ctx, update, userID, delta).Scan(&count); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, ErrNotFound
			}
			return 0, err
		}
		return count, nil
	}

	const query = `SELECT follower_count FROM users WHERE user_id = $1`
	if err := tx.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return count, nil
}
