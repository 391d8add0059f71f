package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/snaplife/apiserver/types"
)

// PostRepository handles persistence for posts. The post endpoints live
// in a separate service; this repository covers what account management
// needs: counting posts and collecting image keys for blob cleanup.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	post.CreatedAt = time.Now()

	const query = `
		INSERT INTO posts (post_id, user_id, image_name, image_url, message, message_title,
			view_count, like_count, report_count, creation_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		post.PostID,
		post.UserID,
		post.ImageName,
		post.ImageURL,
		post.Message,
		post.MessageTitle,
		post.ViewCount,
		post.LikeCount,
		post.ReportCount,
		post.CreatedAt,
	).Scan(&post.ID); err != nil {
		return types.Post{}, mapUniqueViolation(err)
	}
	return post, nil
}

func (r *PostRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(1) FROM posts WHERE user_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ImageNamesByUser returns the blob store keys backing the user's
// posts, skipping posts without an image.
func (r *PostRepository) ImageNamesByUser(ctx context.Context, userID int64) ([]string, error) {
	const query = `
		SELECT image_name
		FROM posts
		WHERE user_id = $1 AND image_name <> ''`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
