package userservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sushihentaime/blogsphere/internal/common"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
)

const userColumns = `id, username, fullname, email, password, verified, profile_pic, banner_pic, bio, saved_blogs, otp_hash, otp_expiry, created_at, updated_at, version`

func newUserModel(db *sql.DB) *UserModel {
	return &UserModel{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var u User
	var saved pq.Int64Array

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Fullname,
		&u.Email,
		&u.Password.hash,
		&u.Verified,
		&u.ProfilePic,
		&u.BannerPic,
		&u.Bio,
		&saved,
		&u.otpHash,
		&u.otpExpiry,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	u.SavedBlogs = []int64(saved)
	if u.SavedBlogs == nil {
		u.SavedBlogs = []int64{}
	}

	return &u, nil
}

func (m *UserModel) insert(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, fullname, email, password, profile_pic, banner_pic, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	args := []any{
		u.Username,
		u.Fullname,
		u.Email,
		u.Password.hash,
		u.ProfilePic,
		u.BannerPic,
		u.Bio,
	}

	created, err := scanUser(m.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case common.UniqueError(err, "users_username_key"):
			return ErrDuplicateUsername
		case common.UniqueError(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	*u = *created

	return nil
}

func (m *UserModel) getByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUser(m.db.QueryRowContext(ctx, query, id))
}

func (m *UserModel) getByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUser(m.db.QueryRowContext(ctx, query, email))
}

// getByLogin matches either the email or the username.
func (m *UserModel) getByLogin(ctx context.Context, login string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR username = $1 LIMIT 1`

	return scanUser(m.db.QueryRowContext(ctx, query, login))
}

func (m *UserModel) verify(ctx context.Context, email string) error {
	query := `
		UPDATE users
		SET verified = true, version = version + 1
		WHERE email = $1`

	return m.execOne(ctx, query, email)
}

func (m *UserModel) updatePassword(ctx context.Context, id int64, pwd Password, version int) error {
	query := `
		UPDATE users
		SET password = $1, version = version + 1
		WHERE id = $2 AND version = $3`

	return m.execVersioned(ctx, query, pwd.hash, id, version)
}

func (m *UserModel) setOTP(ctx context.Context, id int64, hash []byte, expiry time.Time) error {
	query := `
		UPDATE users
		SET otp_hash = $1, otp_expiry = $2
		WHERE id = $3`

	return m.execOne(ctx, query, hash, expiry, id)
}

func (m *UserModel) clearOTP(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET otp_hash = NULL, otp_expiry = NULL
		WHERE id = $1`

	return m.execOne(ctx, query, id)
}

// resetPassword replaces the password and consumes the OTP in one statement.
func (m *UserModel) resetPassword(ctx context.Context, id int64, pwd Password, version int) error {
	query := `
		UPDATE users
		SET password = $1, otp_hash = NULL, otp_expiry = NULL, version = version + 1
		WHERE id = $2 AND version = $3`

	return m.execVersioned(ctx, query, pwd.hash, id, version)
}

func (m *UserModel) updateProfile(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET fullname = $1, bio = $2, profile_pic = $3, banner_pic = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version, updated_at`

	err := m.db.QueryRowContext(ctx, query, u.Fullname, u.Bio, u.ProfilePic, u.BannerPic, u.ID, u.Version).Scan(&u.Version, &u.UpdatedAt)
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

// list returns verified users other than exclude, newest first. q filters on
// username or fullname, case-insensitively.
func (m *UserModel) list(ctx context.Context, q string, exclude int64, p common.Pagination) ([]PublicUser, int, error) {
	query := `
		SELECT count(*) OVER(), id, username, fullname, profile_pic, banner_pic, bio
		FROM users
		WHERE verified AND id <> $1
		AND ($2 = '' OR username ILIKE '%' || $2 || '%' OR fullname ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	rows, err := m.db.QueryContext(ctx, query, exclude, q, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	total := 0
	users := []PublicUser{}
	for rows.Next() {
		var u PublicUser
		if err := rows.Scan(&total, &u.ID, &u.Username, &u.Fullname, &u.ProfilePic, &u.BannerPic, &u.Bio); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// the window count is absent when the page is past the end
	if len(users) == 0 && p.Page > 1 {
		total, err = m.count(ctx, q, exclude)
		if err != nil {
			return nil, 0, err
		}
	}

	return users, total, nil
}

func (m *UserModel) count(ctx context.Context, q string, exclude int64) (int, error) {
	query := `
		SELECT count(*)
		FROM users
		WHERE verified AND id <> $1
		AND ($2 = '' OR username ILIKE '%' || $2 || '%' OR fullname ILIKE '%' || $2 || '%')`

	var total int
	err := m.db.QueryRowContext(ctx, query, exclude, q).Scan(&total)
	return total, err
}

// toggleSavedBlog adds blogID to the user's saved list, or removes it if present,
// and reports whether it is saved afterwards.
func (m *UserModel) toggleSavedBlog(ctx context.Context, userID, blogID int64) (bool, error) {
	query := `
		UPDATE users
		SET saved_blogs = CASE
			WHEN $2 = ANY(saved_blogs) THEN array_remove(saved_blogs, $2)
			ELSE array_append(saved_blogs, $2)
		END
		WHERE id = $1
		RETURNING $2 = ANY(saved_blogs)`

	var saved bool
	err := m.db.QueryRowContext(ctx, query, userID, blogID).Scan(&saved)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return false, common.ErrRecordNotFound
		default:
			return false, err
		}
	}

	return saved, nil
}

func (m *UserModel) blogExists(ctx context.Context, blogID int64) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM blogs WHERE id = $1)`, blogID).Scan(&exists)
	return exists, err
}

func (m *UserModel) execOne(ctx context.Context, query string, args ...any) error {
	res, err := m.db.ExecContext(ctx, query, args...)
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

func (m *UserModel) execVersioned(ctx context.Context, query string, args ...any) error {
	err := m.execOne(ctx, query, args...)
	if errors.Is(err, common.ErrRecordNotFound) {
		return common.ErrEditConflict
	}

	return err
}
