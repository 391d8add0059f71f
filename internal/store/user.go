package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/snaplife/apiserver/types"
)

const userColumns = `id, user_id, user_name, first_name, last_name, password_hash, salt_hash,
		email, about, profile_url, is_active, follower_count, creation_date, last_login_date`

// UserRepository handles persistence for user identities.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID int64) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, userID))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_name = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.LastLoginDate = now

	const query = `
		INSERT INTO users (user_id, user_name, first_name, last_name, password_hash, salt_hash,
			email, about, profile_url, is_active, follower_count, creation_date, last_login_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.UserID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.SaltHash,
		user.Email,
		user.About,
		user.ProfileURL,
		user.IsActive,
		user.FollowerCount,
		user.CreatedAt,
		user.LastLoginDate,
	).Scan(&user.ID); err != nil {
		return types.User{}, mapUniqueViolation(err)
	}
	return user, nil
}

// SetActivity updates the live-session flag and, when lastLogin is
// non-nil, the last login timestamp.
func (r *UserRepository) SetActivity(ctx context.Context, userID int64, active bool, lastLogin *time.Time) error {
	var (
		result sql.Result
		err    error
	)
	if lastLogin != nil {
		const query = `
			UPDATE users
			SET is_active = $2, last_login_date = $3
			WHERE user_id = $1`
		result, err = r.db.ExecContext(ctx, query, userID, active, *lastLogin)
	} else {
		const query = `
			UPDATE users
			SET is_active = $2
			WHERE user_id = $1`
		result, err = r.db.ExecContext(ctx, query, userID, active)
	}
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateAbout(ctx context.Context, userID int64, about string) error {
	const query = `UPDATE users SET about = $2 WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, userID, about)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) CountFollowers(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(1) FROM follows WHERE followed_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes a user inside a single transaction. Outbound follow
// edges vanish with the row, so the follower counters of the users this
// account followed are decremented first to keep them consistent.
func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const decrement = `
		UPDATE users
		SET follower_count = follower_count - 1
		WHERE user_id IN (SELECT followed_id FROM follows WHERE follower_id = $1)`
	if _, err := tx.ExecContext(ctx, decrement, userID); err != nil {
		return err
	}

	const remove = `DELETE FROM users WHERE user_id = $1`
	result, err := tx.ExecContext(ctx, remove, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (r *UserRepository) scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.UserID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.SaltHash,
		&user.Email,
		&user.About,
		&user.ProfileURL,
		&user.IsActive,
		&user.FollowerCount,
		&user.CreatedAt,
		&user.LastLoginDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if pqErr.Constraint == "users_user_id_key" {
			return ErrUserIDTaken
		}
		return ErrConflict
	}
	return err
}
