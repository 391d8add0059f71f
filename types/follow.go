package types

import "time"

// FollowEdge is a directed relation meaning "follower observes the
// followed user's content". At most one edge exists per ordered pair.
type FollowEdge struct {
	// FollowerID is the public id of the user who follows.
	FollowerID int64 `json:"followerid" db:"follower_id"`

	// FollowedID is the public id of the user being followed.
	FollowedID int64 `json:"followedid" db:"followed_id"`

	// CreatedAt is the timestamp when the edge was created.
	CreatedAt time.Time `json:"created_at" db:"creation_date"`
}
