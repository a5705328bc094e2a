package followservice

import (
	"context"
	"database/sql"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

var ErrSelfFollow = common.ValidationError{Errors: map[string]string{"bloggerId": "you cannot follow yourself"}}

func NewFollowService(db *sql.DB) *FollowService {
	return &FollowService{m: newFollowModel(db)}
}

// ToggleFollow makes followerID follow bloggerID, or unfollow if already
// following, and reports whether the edge exists afterwards.
func (s *FollowService) ToggleFollow(ctx context.Context, followerID, bloggerID int64) (bool, error) {
	v := common.NewValidator()
	common.ValidateID(v, bloggerID, "bloggerId")
	if !v.Valid() {
		return false, v.ValidationError()
	}

	if followerID == bloggerID {
		return false, ErrSelfFollow
	}

	return s.m.toggle(ctx, followerID, bloggerID)
}

// RemoveFollower deletes the edge followerID -> bloggerID on the blogger's behalf.
func (s *FollowService) RemoveFollower(ctx context.Context, bloggerID, followerID int64) error {
	v := common.NewValidator()
	common.ValidateID(v, followerID, "followerId")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.delete(ctx, followerID, bloggerID)
}

// GetFollowers returns a page of the users following bloggerID.
func (s *FollowService) GetFollowers(ctx context.Context, bloggerID int64, page, limit int) ([]userservice.PublicUser, error) {
	v := common.NewValidator()
	common.ValidateID(v, bloggerID, "bloggerId")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.followers(ctx, bloggerID, common.NewPagination(page, limit, DefaultFollowsLimit))
}

// GetFollowings returns a page of the users userID follows.
func (s *FollowService) GetFollowings(ctx context.Context, userID int64, page, limit int) ([]userservice.PublicUser, error) {
	v := common.NewValidator()
	common.ValidateID(v, userID, "userId")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.followings(ctx, userID, common.NewPagination(page, limit, DefaultFollowsLimit))
}

// Counts returns the follower and following totals of a user.
func (s *FollowService) Counts(ctx context.Context, userID int64) (followers, following int, err error) {
	v := common.NewValidator()
	common.ValidateID(v, userID, "userId")
	if !v.Valid() {
		return 0, 0, v.ValidationError()
	}

	return s.m.counts(ctx, userID)
}

// GetStatus reports whether userID follows bloggerID and whether bloggerID follows back.
func (s *FollowService) GetStatus(ctx context.Context, userID, bloggerID int64) (Status, error) {
	v := common.NewValidator()
	common.ValidateID(v, bloggerID, "bloggerId")
	if !v.Valid() {
		return Status{}, v.ValidationError()
	}

	following, err := s.m.exists(ctx, userID, bloggerID)
	if err != nil {
		return Status{}, err
	}

	followedBy, err := s.m.exists(ctx, bloggerID, userID)
	if err != nil {
		return Status{}, err
	}

	return Status{IsFollowing: following, IsFollowedByBlogger: followedBy}, nil
}
