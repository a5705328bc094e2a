package tokenservice

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	return Config{
		AccessSecret:       "access-secret",
		AccessExpiry:       15 * time.Minute,
		RefreshSecret:      "refresh-secret",
		RefreshExpiry:      24 * time.Hour,
		VerificationSecret: "verification-secret",
		VerificationExpiry: time.Hour,
	}
}

func testIdentity() Identity {
	return Identity{ID: 42, Email: "testuser@example.com", Username: "testuser", Fullname: "Test User"}
}

// issuedAt returns a service whose clock is shifted by offset.
func issuedAt(offset time.Duration) *TokenService {
	s := NewTokenService(testConfig())
	s.now = func() time.Time { return time.Now().Add(offset) }
	return s
}

func TestAccessToken(t *testing.T) {
	s := NewTokenService(testConfig())

	token, err := s.IssueAccessToken(testIdentity())
	assert.NoError(t, err)

	claims, err := s.VerifyAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "testuser@example.com", claims.Email)
	assert.Equal(t, "testuser", claims.Username)
	assert.Equal(t, "Test User", claims.Fullname)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 2*time.Second)
}

func TestVerifyToken(t *testing.T) {
	s := NewTokenService(testConfig())

	access, err := s.IssueAccessToken(testIdentity())
	assert.NoError(t, err)

	refresh, err := s.IssueRefreshToken(testIdentity())
	assert.NoError(t, err)

	expired, err := issuedAt(-time.Hour).IssueAccessToken(testIdentity())
	assert.NoError(t, err)

	foreign := NewTokenService(Config{AccessSecret: "someone-else", AccessExpiry: time.Minute})
	forged, err := foreign.IssueAccessToken(testIdentity())
	assert.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{UserID: 42}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	testCases := []struct {
		name        string
		token       string
		expectedErr error
	}{
		{name: "valid token", token: access, expectedErr: nil},
		{name: "expired token", token: expired, expectedErr: ErrTokenExpired},
		{name: "refresh token as access token", token: refresh, expectedErr: ErrTokenInvalid},
		{name: "wrong secret", token: forged, expectedErr: ErrTokenInvalid},
		{name: "unsigned token", token: none, expectedErr: ErrTokenInvalid},
		{name: "malformed token", token: "not.a.token", expectedErr: ErrTokenInvalid},
		{name: "empty token", token: "", expectedErr: ErrTokenInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.VerifyAccessToken(tc.token)
			assert.Equal(t, tc.expectedErr, err)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	s := NewTokenService(testConfig())

	token, err := s.IssueRefreshToken(testIdentity())
	assert.NoError(t, err)

	claims, err := s.VerifyRefreshToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)

	_, err = s.VerifyAccessToken(token)
	assert.Equal(t, ErrTokenInvalid, err)

	expired, err := issuedAt(-48 * time.Hour).IssueRefreshToken(testIdentity())
	assert.NoError(t, err)

	_, err = s.VerifyRefreshToken(expired)
	assert.Equal(t, ErrTokenExpired, err)
}

func TestVerificationToken(t *testing.T) {
	s := NewTokenService(testConfig())

	token, err := s.IssueVerificationToken("testuser@example.com")
	assert.NoError(t, err)

	claims, err := s.VerifyVerificationToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "testuser@example.com", claims.Email)

	_, err = s.VerifyAccessToken(token)
	assert.Equal(t, ErrTokenInvalid, err)
}

func TestTokensAreUnique(t *testing.T) {
	s := NewTokenService(testConfig())

	a, err := s.IssueAccessToken(testIdentity())
	assert.NoError(t, err)

	b, err := s.IssueAccessToken(testIdentity())
	assert.NoError(t, err)

	assert.NotEqual(t, a, b)
}
