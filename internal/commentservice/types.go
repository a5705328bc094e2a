package commentservice

import (
	"database/sql"
	"time"

	"github.com/sushihentaime/blogsphere/internal/userservice"
)

const DefaultCommentsLimit = 20

type Comment struct {
	ID        int64                  `json:"id"`
	BlogID    int64                  `json:"blogId"`
	Content   string                 `json:"content"`
	User      userservice.PublicUser `json:"user"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`

	// blogAuthorID is loaded for permission checks only.
	blogAuthorID int64
}

type CommentModel struct {
	db *sql.DB
}

type CommentService struct {
	m *CommentModel
}
