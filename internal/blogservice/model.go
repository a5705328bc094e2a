package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

// blogSelect joins each blog with the public fields of its author. The first
// column is the total row count of the filtered set.
const blogSelect = `
	SELECT count(*) OVER(), b.id, b.title, b.content, b.tags, b.cover_image, b.author_id,
		b.created_at, b.updated_at, b.version,
		u.username, u.fullname, u.profile_pic, u.banner_pic, u.bio
	FROM blogs b
	JOIN users u ON u.id = b.author_id`

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBlog(row scanner, total *int) (*Blog, error) {
	var b Blog
	var tags pq.StringArray
	author := userservice.PublicUser{}

	err := row.Scan(
		total,
		&b.ID,
		&b.Title,
		&b.Content,
		&tags,
		&b.CoverImage,
		&b.AuthorID,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.Version,
		&author.Username,
		&author.Fullname,
		&author.ProfilePic,
		&author.BannerPic,
		&author.Bio,
	)
	if err != nil {
		return nil, err
	}

	b.Tags = []string(tags)
	if b.Tags == nil {
		b.Tags = []string{}
	}

	author.ID = b.AuthorID
	b.Author = &author

	return &b, nil
}

func (m *BlogModel) insert(ctx context.Context, b *Blog) error {
	query := `
		INSERT INTO blogs (title, content, author_id, tags, cover_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at, version`

	err := m.db.QueryRowContext(ctx, query, b.Title, b.Content, b.AuthorID, pq.Array(b.Tags), b.CoverImage).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt, &b.Version)
	if err != nil {
		switch {
		case common.ForeignKeyError(err, "blogs_author_id_fkey"):
			return common.ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) getByID(ctx context.Context, id int64) (*Blog, error) {
	query := blogSelect + ` WHERE b.id = $1`

	var total int
	b, err := scanBlog(m.db.QueryRowContext(ctx, query, id), &total)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return b, nil
}

// update writes the editable fields, guarded by the version read earlier.
func (m *BlogModel) update(ctx context.Context, b *Blog) error {
	query := `
		UPDATE blogs
		SET title = $1, content = $2, tags = $3, cover_image = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version, updated_at`

	err := m.db.QueryRowContext(ctx, query, b.Title, b.Content, pq.Array(b.Tags), b.CoverImage, b.ID, b.Version).Scan(&b.Version, &b.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return common.ErrEditConflict
		default:
			return err
		}
	}

	return nil
}

// delete removes the blog and strips it from every saved-blog list in one
// transaction. It returns the ids of the users whose lists changed.
func (m *BlogModel) delete(ctx context.Context, id int64) ([]int64, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return nil, common.ErrRecordNotFound
		default:
			return nil, fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	query := `
		UPDATE users
		SET saved_blogs = array_remove(saved_blogs, $1)
		WHERE $1 = ANY(saved_blogs)
		RETURNING id`

	userRows, err := tx.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer userRows.Close()

	var users []int64
	for userRows.Next() {
		var uid int64
		if err := userRows.Scan(&uid); err != nil {
			return nil, err
		}
		users = append(users, uid)
	}

	if err := userRows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return users, nil
}

// list returns one page of blogs matching where, newest first. where may
// reference args as $1..$n.
func (m *BlogModel) list(ctx context.Context, where string, args []any, p common.Pagination) ([]Blog, int, error) {
	n := len(args)
	query := fmt.Sprintf(`%s %s ORDER BY b.created_at DESC, b.id DESC LIMIT $%d OFFSET $%d`, blogSelect, where, n+1, n+2)

	rows, err := m.db.QueryContext(ctx, query, append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	total := 0
	blogs := []Blog{}
	for rows.Next() {
		b, err := scanBlog(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		blogs = append(blogs, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// past the last page the window count is unavailable
	if len(blogs) == 0 && p.Page > 1 {
		err := m.db.QueryRowContext(ctx, `SELECT count(*) FROM blogs b `+where, args...).Scan(&total)
		if err != nil {
			return nil, 0, err
		}
	}

	return blogs, total, nil
}

func (m *BlogModel) listAll(ctx context.Context, p common.Pagination) ([]Blog, int, error) {
	return m.list(ctx, "", nil, p)
}

// listByAuthor returns every blog by the author, newest first.
func (m *BlogModel) listByAuthor(ctx context.Context, authorID int64) ([]Blog, error) {
	blogs, _, err := m.list(ctx, `WHERE b.author_id = $1`, []any{authorID}, common.Pagination{Page: 1, Limit: 1 << 30})
	return blogs, err
}

// search matches every word of query case-insensitively against the title and each tag.
func (m *BlogModel) search(ctx context.Context, query string, p common.Pagination) ([]Blog, int, error) {
	words := strings.Fields(query)
	patterns := make([]string, 0, len(words))
	for _, w := range words {
		patterns = append(patterns, regexp.QuoteMeta(w))
	}

	where := `WHERE b.title ~* ANY($1) OR EXISTS (SELECT 1 FROM unnest(b.tags) t WHERE t ~* ANY($1))`

	return m.list(ctx, where, []any{pq.Array(patterns)}, p)
}

// listByIDs returns the blogs with the given ids in the order of ids. Unknown ids are skipped.
func (m *BlogModel) listByIDs(ctx context.Context, ids []int64) ([]Blog, error) {
	if len(ids) == 0 {
		return []Blog{}, nil
	}

	found, _, err := m.list(ctx, `WHERE b.id = ANY($1)`, []any{pq.Array(ids)}, common.Pagination{Page: 1, Limit: len(ids)})
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]Blog, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}

	blogs := make([]Blog, 0, len(found))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			blogs = append(blogs, b)
		}
	}

	return blogs, nil
}

func (m *BlogModel) countByAuthor(ctx context.Context, authorID int64) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `SELECT count(*) FROM blogs WHERE author_id = $1`, authorID).Scan(&n)
	return n, err
}
