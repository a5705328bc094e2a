package commentservice

import (
	"context"
	"database/sql"

	"github.com/sushihentaime/blogsphere/internal/common"
)

func NewCommentService(db *sql.DB) *CommentService {
	return &CommentService{m: newCommentModel(db)}
}

// CreateComment adds a comment by userID to a blog and returns it with its author.
func (s *CommentService) CreateComment(ctx context.Context, blogID, userID int64, content string) (*Comment, error) {
	v := common.NewValidator()
	common.ValidateID(v, blogID, "blogId")
	validateContent(v, content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	id, err := s.m.insert(ctx, blogID, userID, content)
	if err != nil {
		return nil, err
	}

	return s.m.getByID(ctx, id)
}

// DeleteComment removes a comment. Only the comment's author or the author of
// the blog it belongs to may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID int64) error {
	v := common.NewValidator()
	common.ValidateID(v, commentID, "commentId")
	if !v.Valid() {
		return v.ValidationError()
	}

	c, err := s.m.getByID(ctx, commentID)
	if err != nil {
		return err
	}

	if c.User.ID != userID && c.blogAuthorID != userID {
		return common.ErrNotOwner
	}

	return s.m.delete(ctx, commentID)
}

// GetBlogComments returns a page of a blog's comments, newest first.
func (s *CommentService) GetBlogComments(ctx context.Context, blogID int64, page, limit int) (common.Page[Comment], error) {
	v := common.NewValidator()
	common.ValidateID(v, blogID, "blogId")
	if !v.Valid() {
		return common.Page[Comment]{}, v.ValidationError()
	}

	p := common.NewPagination(page, limit, DefaultCommentsLimit)

	comments, total, err := s.m.listByBlog(ctx, blogID, p)
	if err != nil {
		return common.Page[Comment]{}, err
	}

	return common.NewPage(comments, total, p), nil
}
