package userservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/tokenservice"
)

// ResolveSession authenticates a request from its access and refresh tokens.
//
// A valid access token resolves directly. An expired access token falls back to
// the refresh token, and on success the returned Session carries a newly minted
// access token. Every other failure is ErrAuthenticationFailure; no renewal is
// attempted for a forged or malformed access token.
func (s *UserService) ResolveSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	if accessToken == "" {
		return nil, ErrAuthenticationFailure
	}

	claims, err := s.tokens.VerifyAccessToken(accessToken)
	switch {
	case err == nil:
		u, err := s.sessionUser(ctx, claims.UserID)
		if err != nil {
			return nil, err
		}
		return &Session{User: u}, nil

	case errors.Is(err, tokenservice.ErrTokenExpired):
		return s.renewSession(ctx, refreshToken)

	default:
		return nil, ErrAuthenticationFailure
	}
}

func (s *UserService) renewSession(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrAuthenticationFailure
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}

	u, err := s.sessionUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccessToken(u.Identity())
	if err != nil {
		return nil, err
	}

	s.logger.Info("access token renewed", slog.Int64("user_id", u.ID))

	return &Session{User: u, RenewedAccessToken: access}, nil
}

// sessionUser loads the token's subject. A deleted account fails authentication.
func (s *UserService) sessionUser(ctx context.Context, id int64) (*User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		var vErr common.ValidationError
		switch {
		case errors.Is(err, common.ErrRecordNotFound), errors.As(err, &vErr):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	return u, nil
}
