package session

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresStore keeps session entries in the sessions table so multiple
// server instances observe the same login state. The insert relies on
// the primary key for its compare-and-set semantics.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID int64) (time.Time, bool, error) {
	const query = `SELECT logged_in_at FROM sessions WHERE user_id = $1`
	var at time.Time
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return at, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, userID int64, at time.Time) (bool, error) {
	const query = `
		INSERT INTO sessions (user_id, logged_in_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`
	result, err := s.db.ExecContext(ctx, query, userID, at)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID int64) error {
	const query = `DELETE FROM sessions WHERE user_id = $1`
	_, err := s.db.ExecContext(ctx, query, userID)
	return err
}
