package blogservice

import (
	"context"
	"database/sql"
	"log/slog"
	"slices"
	"time"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

const DefaultBlogsLimit = 10

// Media uploads and deletes cover images.
type Media interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Delete(ctx context.Context, remoteURL string)
}

type Blog struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	// Content is stored in Markdown format.
	Content    string                  `json:"content"`
	Tags       []string                `json:"tags"`
	CoverImage string                  `json:"coverImage"`
	AuthorID   int64                   `json:"authorId"`
	Author     *userservice.PublicUser `json:"author,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
	UpdatedAt  time.Time               `json:"updatedAt"`
	Version    int                     `json:"-"`
}

// clone returns a copy that shares no slices or pointers with b.
func (b Blog) clone() Blog {
	b.Tags = slices.Clone(b.Tags)
	if b.Author != nil {
		author := *b.Author
		b.Author = &author
	}
	return b
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m      *BlogModel
	c      *common.Cache
	media  Media
	logger *slog.Logger
}

type CreateBlogRequest struct {
	Title          string
	Content        string
	Tags           []string
	CoverImagePath string
	AuthorID       int64
}

// UpdateBlogRequest changes only the fields that are set.
type UpdateBlogRequest struct {
	ID             int64
	UserID         int64
	Title          *string
	Content        *string
	Tags           []string
	CoverImagePath string
}
