package userservice

import (
	"context"
	"database/sql"
	"log/slog"
	"slices"
	"time"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/tokenservice"
)

const (
	DefaultBloggersLimit = 20

	otpDigits = 6
)

// Media uploads and deletes profile and banner images.
type Media interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Delete(ctx context.Context, remoteURL string)
}

type Config struct {
	// BaseURL prefixes the verification link sent by email.
	BaseURL   string
	OTPExpiry time.Duration
}

type UserService struct {
	m      *UserModel
	mb     common.MessageProducer
	c      *common.Cache
	tokens *tokenservice.TokenService
	media  Media
	logger *slog.Logger
	cfg    Config
}

type UserModel struct {
	db *sql.DB
}

type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Fullname   string    `json:"fullname"`
	Email      string    `json:"email"`
	Password   Password  `json:"-"`
	Verified   bool      `json:"isVerified"`
	ProfilePic string    `json:"profilePic"`
	BannerPic  string    `json:"bannerPic"`
	Bio        string    `json:"bio"`
	SavedBlogs []int64   `json:"savedBlogs"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Version    int       `json:"-"`

	otpHash   []byte
	otpExpiry *time.Time
}

// clone returns a copy that shares no slices or pointers with u.
func (u User) clone() User {
	u.SavedBlogs = slices.Clone(u.SavedBlogs)
	u.Password.hash = slices.Clone(u.Password.hash)
	u.otpHash = slices.Clone(u.otpHash)
	if u.otpExpiry != nil {
		expiry := *u.otpExpiry
		u.otpExpiry = &expiry
	}
	return u
}

// PublicUser is the subset of a user that may be shown to other users.
type PublicUser struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Fullname   string `json:"fullname"`
	ProfilePic string `json:"profilePic"`
	BannerPic  string `json:"bannerPic"`
	Bio        string `json:"bio"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// Session is the outcome of resolving a request's tokens. RenewedAccessToken is
// set when the access token had expired and a new one was minted from the
// refresh token; the caller must hand it back to the client.
type Session struct {
	User               *User
	RenewedAccessToken string
}

type AuthTokens struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RegisterRequest struct {
	Username       string
	Fullname       string
	Email          string
	Password       string
	Bio            string
	ProfilePicPath string
	BannerPicPath  string
}

type UpdateProfileRequest struct {
	Fullname *string `json:"fullname"`
	Bio      *string `json:"bio"`
}

// verificationMessage is published on user.created.
type verificationMessage struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Link     string `json:"link"`
}

// otpMessage is published on user.otp.
type otpMessage struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	OTP      string `json:"otp"`
	Minutes  int    `json:"minutes"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Fullname:   u.Fullname,
		ProfilePic: u.ProfilePic,
		BannerPic:  u.BannerPic,
		Bio:        u.Bio,
	}
}

func (u *User) Identity() tokenservice.Identity {
	return tokenservice.Identity{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Fullname: u.Fullname,
	}
}
