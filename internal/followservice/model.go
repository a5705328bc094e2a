package followservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

func newFollowModel(db *sql.DB) *FollowModel {
	return &FollowModel{db: db}
}

// toggle creates the follower -> blogger edge, or removes it when the unique
// key reports it already exists. It returns whether the edge exists afterwards.
func (m *FollowModel) toggle(ctx context.Context, followerID, bloggerID int64) (bool, error) {
	_, err := m.db.ExecContext(ctx, `INSERT INTO follows (follower_id, blogger_id) VALUES ($1, $2)`, followerID, bloggerID)
	switch {
	case err == nil:
		return true, nil
	case common.UniqueError(err, "follows_follower_blogger_key"):
		// already following
	case common.ForeignKeyError(err, "follows_blogger_id_fkey"), common.ForeignKeyError(err, "follows_follower_id_fkey"):
		return false, common.ErrRecordNotFound
	case common.CheckError(err, "follows_no_self_follow_check"):
		return false, ErrSelfFollow
	default:
		return false, err
	}

	if err := m.delete(ctx, followerID, bloggerID); err != nil && !errors.Is(err, common.ErrRecordNotFound) {
		return false, err
	}

	return false, nil
}

func (m *FollowModel) delete(ctx context.Context, followerID, bloggerID int64) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM follows WHERE follower_id = $1 AND blogger_id = $2`, followerID, bloggerID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return common.ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (m *FollowModel) exists(ctx context.Context, followerID, bloggerID int64) (bool, error) {
	var ok bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND blogger_id = $2)`, followerID, bloggerID).Scan(&ok)
	return ok, err
}

// listUsers returns one page of the users on the other end of userID's edges.
// match is the column holding userID and join the column holding the other user.
func (m *FollowModel) listUsers(ctx context.Context, match, join string, userID int64, p common.Pagination) ([]userservice.PublicUser, error) {
	query := fmt.Sprintf(`
		SELECT u.id, u.username, u.fullname, u.profile_pic, u.banner_pic, u.bio
		FROM follows f
		JOIN users u ON u.id = f.%s
		WHERE f.%s = $1
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $2 OFFSET $3`, join, match)

	rows, err := m.db.QueryContext(ctx, query, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []userservice.PublicUser{}
	for rows.Next() {
		var u userservice.PublicUser
		if err := rows.Scan(&u.ID, &u.Username, &u.Fullname, &u.ProfilePic, &u.BannerPic, &u.Bio); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (m *FollowModel) followers(ctx context.Context, bloggerID int64, p common.Pagination) ([]userservice.PublicUser, error) {
	return m.listUsers(ctx, "blogger_id", "follower_id", bloggerID, p)
}

func (m *FollowModel) followings(ctx context.Context, userID int64, p common.Pagination) ([]userservice.PublicUser, error) {
	return m.listUsers(ctx, "follower_id", "blogger_id", userID, p)
}

// counts returns how many users follow userID and how many userID follows.
func (m *FollowModel) counts(ctx context.Context, userID int64) (followers, following int, err error) {
	query := `
		SELECT
			count(*) FILTER (WHERE blogger_id = $1),
			count(*) FILTER (WHERE follower_id = $1)
		FROM follows
		WHERE blogger_id = $1 OR follower_id = $1`

	err = m.db.QueryRowContext(ctx, query, userID).Scan(&followers, &following)
	return followers, following, err
}
