package tokenservice

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func NewTokenService(cfg Config) *TokenService {
	return &TokenService{cfg: cfg, now: time.Now}
}

func (s *TokenService) registeredClaims(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()

	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// IssueAccessToken signs a short-lived token carrying the full identity.
func (s *TokenService) IssueAccessToken(id Identity) (string, error) {
	claims := AccessClaims{
		UserID:           id.ID,
		Email:            id.Email,
		Username:         id.Username,
		Fullname:         id.Fullname,
		RegisteredClaims: s.registeredClaims(strconv.FormatInt(id.ID, 10), s.cfg.AccessExpiry),
	}

	return sign(claims, s.cfg.AccessSecret)
}

// IssueRefreshToken signs a long-lived token carrying only the user id.
func (s *TokenService) IssueRefreshToken(id Identity) (string, error) {
	claims := RefreshClaims{
		UserID:           id.ID,
		RegisteredClaims: s.registeredClaims(strconv.FormatInt(id.ID, 10), s.cfg.RefreshExpiry),
	}

	return sign(claims, s.cfg.RefreshSecret)
}

// IssueVerificationToken signs the token mailed to a new account to prove ownership of email.
func (s *TokenService) IssueVerificationToken(email string) (string, error) {
	claims := VerificationClaims{
		Email:            email,
		RegisteredClaims: s.registeredClaims(email, s.cfg.VerificationExpiry),
	}

	return sign(claims, s.cfg.VerificationSecret)
}

func (s *TokenService) VerifyAccessToken(token string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := s.verify(token, s.cfg.AccessSecret, &claims); err != nil {
		return nil, err
	}

	return &claims, nil
}

func (s *TokenService) VerifyRefreshToken(token string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.verify(token, s.cfg.RefreshSecret, &claims); err != nil {
		return nil, err
	}

	return &claims, nil
}

func (s *TokenService) VerifyVerificationToken(token string) (*VerificationClaims, error) {
	var claims VerificationClaims
	if err := s.verify(token, s.cfg.VerificationSecret, &claims); err != nil {
		return nil, err
	}

	return &claims, nil
}

func sign(claims jwt.Claims, secret string) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}

	return token, nil
}

// verify parses token into claims. Expiry is reported as ErrTokenExpired and every
// other failure (bad signature, wrong algorithm, malformed input) as ErrTokenInvalid.
func (s *TokenService) verify(token, secret string, claims jwt.Claims) error {
	if token == "" {
		return ErrTokenInvalid
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return ErrTokenExpired
		default:
			return ErrTokenInvalid
		}
	}

	if !parsed.Valid {
		return ErrTokenInvalid
	}

	return nil
}
