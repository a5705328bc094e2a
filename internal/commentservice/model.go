package commentservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sushihentaime/blogsphere/internal/common"
)

const commentSelect = `
	SELECT count(*) OVER(), c.id, c.blog_id, c.content, c.created_at, c.updated_at, b.author_id,
		u.id, u.username, u.fullname, u.profile_pic, u.banner_pic, u.bio
	FROM comments c
	JOIN blogs b ON b.id = c.blog_id
	JOIN users u ON u.id = c.user_id`

func newCommentModel(db *sql.DB) *CommentModel {
	return &CommentModel{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(row scanner, total *int) (*Comment, error) {
	var c Comment

	err := row.Scan(
		total,
		&c.ID,
		&c.BlogID,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.blogAuthorID,
		&c.User.ID,
		&c.User.Username,
		&c.User.Fullname,
		&c.User.ProfilePic,
		&c.User.BannerPic,
		&c.User.Bio,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (m *CommentModel) insert(ctx context.Context, blogID, userID int64, content string) (int64, error) {
	query := `
		INSERT INTO comments (blog_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int64
	err := m.db.QueryRowContext(ctx, query, blogID, userID, content).Scan(&id)
	if err != nil {
		switch {
		case common.ForeignKeyError(err, "comments_blog_id_fkey"), common.ForeignKeyError(err, "comments_user_id_fkey"):
			return 0, common.ErrRecordNotFound
		case common.CheckError(err, "comments_content_check"):
			return 0, common.ValidationError{Errors: map[string]string{"content": "must be provided"}}
		default:
			return 0, err
		}
	}

	return id, nil
}

func (m *CommentModel) getByID(ctx context.Context, id int64) (*Comment, error) {
	var total int
	c, err := scanComment(m.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id), &total)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return c, nil
}

func (m *CommentModel) delete(ctx context.Context, id int64) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
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

// listByBlog returns one page of a blog's comments, newest first.
func (m *CommentModel) listByBlog(ctx context.Context, blogID int64, p common.Pagination) ([]Comment, int, error) {
	query := commentSelect + `
		WHERE c.blog_id = $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := m.db.QueryContext(ctx, query, blogID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	total := 0
	comments := []Comment{}
	for rows.Next() {
		c, err := scanComment(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		comments = append(comments, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(comments) == 0 && p.Page > 1 {
		err := m.db.QueryRowContext(ctx, `SELECT count(*) FROM comments WHERE blog_id = $1`, blogID).Scan(&total)
		if err != nil {
			return nil, 0, err
		}
	}

	return comments, total, nil
}
