package tokenservice

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Identity is the set of user attributes embedded in an access token.
type Identity struct {
	ID       int64
	Email    string
	Username string
	Fullname string
}

type AccessClaims struct {
	UserID   int64  `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID int64 `json:"_id"`
	jwt.RegisteredClaims
}

type VerificationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Config holds one secret and lifetime per token kind. Secrets must differ.
type Config struct {
	AccessSecret       string
	AccessExpiry       time.Duration
	RefreshSecret      string
	RefreshExpiry      time.Duration
	VerificationSecret string
	VerificationExpiry time.Duration
}

type TokenService struct {
	cfg Config
	now func() time.Time
}
