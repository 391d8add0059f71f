package types

import "time"

// Post represents a published image with an optional caption.
// Post mutation endpoints live outside this service; the type exists so
// account deletion can cascade over owned posts and their backing images.
type Post struct {
	// ID is the database row identifier.
	ID int `json:"-" db:"id"`

	// PostID is the opaque public identifier of the post.
	PostID int64 `json:"postid" db:"post_id"`

	// UserID identifies the owning user.
	UserID int64 `json:"userid" db:"user_id"`

	// ImageName is the blob store key of the backing image.
	ImageName string `json:"imagename" db:"image_name"`

	// ImageURL is the public URL of the backing image.
	ImageURL string `json:"imageurl" db:"image_url"`

	// Message is the post caption.
	Message string `json:"message" db:"message"`

	// MessageTitle is an optional title for the post.
	MessageTitle string `json:"title" db:"message_title"`

	// ViewCount, LikeCount and ReportCount are simple counters maintained
	// by the post endpoints.
	ViewCount   int `json:"viewcount" db:"view_count"`
	LikeCount   int `json:"likecount" db:"like_count"`
	ReportCount int `json:"reportcount" db:"report_count"`

	// CreatedAt is the timestamp when the post was created.
	CreatedAt time.Time `json:"created_at" db:"creation_date"`
}
