package followservice

import "database/sql"

const DefaultFollowsLimit = 15

// Status describes the follow edges between a user and a blogger in both directions.
type Status struct {
	IsFollowing         bool `json:"isFollowing"`
	IsFollowedByBlogger bool `json:"isFollowedByBlogger"`
}

type FollowModel struct {
	db *sql.DB
}

type FollowService struct {
	m *FollowModel
}
