package likeservice

import (
	"context"
	"database/sql"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

func NewLikeService(db *sql.DB) *LikeService {
	return &LikeService{m: newLikeModel(db)}
}

// ToggleBlogLike likes the blog, or unlikes it if the user already did, and
// reports whether the blog is liked afterwards.
func (s *LikeService) ToggleBlogLike(ctx context.Context, userID, blogID int64) (bool, error) {
	return s.toggle(ctx, blogTarget, userID, blogID)
}

func (s *LikeService) ToggleCommentLike(ctx context.Context, userID, commentID int64) (bool, error) {
	return s.toggle(ctx, commentTarget, userID, commentID)
}

func (s *LikeService) toggle(ctx context.Context, t target, userID, targetID int64) (bool, error) {
	v := common.NewValidator()
	common.ValidateID(v, targetID, t.param)
	if !v.Valid() {
		return false, v.ValidationError()
	}

	return s.m.toggle(ctx, t, userID, targetID)
}

func (s *LikeService) IsBlogLiked(ctx context.Context, userID, blogID int64) (bool, error) {
	return s.exists(ctx, blogTarget, userID, blogID)
}

func (s *LikeService) IsCommentLiked(ctx context.Context, userID, commentID int64) (bool, error) {
	return s.exists(ctx, commentTarget, userID, commentID)
}

func (s *LikeService) exists(ctx context.Context, t target, userID, targetID int64) (bool, error) {
	v := common.NewValidator()
	common.ValidateID(v, targetID, t.param)
	if !v.Valid() {
		return false, v.ValidationError()
	}

	return s.m.exists(ctx, t, userID, targetID)
}

func (s *LikeService) CountBlogLikes(ctx context.Context, blogID int64) (int, error) {
	return s.count(ctx, blogTarget, blogID)
}

func (s *LikeService) CountCommentLikes(ctx context.Context, commentID int64) (int, error) {
	return s.count(ctx, commentTarget, commentID)
}

func (s *LikeService) count(ctx context.Context, t target, targetID int64) (int, error) {
	v := common.NewValidator()
	common.ValidateID(v, targetID, t.param)
	if !v.Valid() {
		return 0, v.ValidationError()
	}

	return s.m.count(ctx, t, targetID)
}

// GetBlogLikers returns the users who liked a blog.
func (s *LikeService) GetBlogLikers(ctx context.Context, blogID int64) ([]userservice.PublicUser, error) {
	v := common.NewValidator()
	common.ValidateID(v, blogID, "blogId")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.likers(ctx, blogID)
}

// LikedBlogIDs returns the ids of the blogs a user liked, most recent first.
func (s *LikeService) LikedBlogIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.m.likedBlogIDs(ctx, userID)
}

// CountByUser returns how many likes a user has given.
func (s *LikeService) CountByUser(ctx context.Context, userID int64) (int, error) {
	return s.m.countByUser(ctx, userID)
}
