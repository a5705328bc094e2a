package likeservice

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

func newLikeModel(db *sql.DB) *LikeModel {
	return &LikeModel{db: db}
}

// toggle inserts the like and, when the unique key reports it already exists,
// deletes it instead. It returns whether the like exists afterwards.
func (m *LikeModel) toggle(ctx context.Context, t target, userID, targetID int64) (bool, error) {
	insert := fmt.Sprintf(`INSERT INTO likes (user_id, %s) VALUES ($1, $2)`, t.column)

	_, err := m.db.ExecContext(ctx, insert, userID, targetID)
	switch {
	case err == nil:
		return true, nil
	case common.UniqueError(err, t.uniqueKey):
		// already liked
	case common.ForeignKeyError(err, t.foreignKey), common.ForeignKeyError(err, "likes_user_id_fkey"):
		return false, common.ErrRecordNotFound
	default:
		return false, err
	}

	remove := fmt.Sprintf(`DELETE FROM likes WHERE user_id = $1 AND %s = $2`, t.column)

	if _, err := m.db.ExecContext(ctx, remove, userID, targetID); err != nil {
		return false, err
	}

	return false, nil
}

func (m *LikeModel) exists(ctx context.Context, t target, userID, targetID int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND %s = $2)`, t.column)

	var ok bool
	err := m.db.QueryRowContext(ctx, query, userID, targetID).Scan(&ok)
	return ok, err
}

func (m *LikeModel) count(ctx context.Context, t target, targetID int64) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM likes WHERE %s = $1`, t.column)

	var n int
	err := m.db.QueryRowContext(ctx, query, targetID).Scan(&n)
	return n, err
}

// likers returns the users who liked a blog, most recent first.
func (m *LikeModel) likers(ctx context.Context, blogID int64) ([]userservice.PublicUser, error) {
	query := `
		SELECT u.id, u.username, u.fullname, u.profile_pic, u.banner_pic, u.bio
		FROM likes l
		JOIN users u ON u.id = l.user_id
		WHERE l.blog_id = $1
		ORDER BY l.created_at DESC, l.id DESC`

	rows, err := m.db.QueryContext(ctx, query, blogID)
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

// likedBlogIDs returns the blogs a user liked, most recent like first.
func (m *LikeModel) likedBlogIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT blog_id
		FROM likes
		WHERE user_id = $1 AND blog_id IS NOT NULL
		ORDER BY created_at DESC, id DESC`

	rows, err := m.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (m *LikeModel) countByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `SELECT count(*) FROM likes WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}
