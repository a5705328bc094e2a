package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/mediaservice"
	"github.com/sushihentaime/blogsphere/internal/tokenservice"
)

type testEnv struct {
	s        *UserService
	db       *sql.DB
	media    *mediaservice.MockMedia
	created  <-chan amqp.Delivery
	otps     <-chan amqp.Delivery
	cleanup  func() error
	password string
}

func setupTestEnvironment(t *testing.T) *testEnv {
	db := common.TestDB("file://../../migrations", t)

	mb, err := common.NewMessageBroker(common.TestRabbitMQ(t))
	require.NoError(t, err)
	require.NoError(t, common.SetupUserExchange(mb))

	created, err := mb.Consume(common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue)
	require.NoError(t, err)

	otps, err := mb.Consume(common.UserOTPKey, common.UserExchange, common.UserOTPQueue)
	require.NoError(t, err)

	t.Cleanup(func() {
		mb.Close()
	})

	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	media := new(mediaservice.MockMedia)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := Config{BaseURL: "http://localhost:8080", OTPExpiry: 10 * time.Minute}

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM blogs")
		if err != nil {
			return err
		}

		_, err = db.Exec("DELETE FROM users")
		if err != nil {
			return err
		}

		cache.Flush()

		return nil
	}

	return &testEnv{
		s:        NewUserService(db, mb, cache, tokenservice.NewTokenService(testTokenConfig()), media, logger, cfg),
		db:       db,
		media:    media,
		created:  created,
		otps:     otps,
		cleanup:  cleanup,
		password: "TestPassword123!",
	}
}

func testRegisterRequest() RegisterRequest {
	return RegisterRequest{
		Username: "testuser",
		Fullname: "Test User",
		Email:    "testuser@example.com",
		Password: "TestPassword123!",
	}
}

func nextMessage(t *testing.T, msgs <-chan amqp.Delivery, v any) {
	t.Helper()

	select {
	case d := <-msgs:
		require.NoError(t, d.Ack(false))
		require.NoError(t, json.Unmarshal(d.Body, v))
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

// register creates an account and returns the token from its verification link.
func (e *testEnv) register(t *testing.T, req RegisterRequest) (*User, string) {
	t.Helper()

	u, err := e.s.Register(context.Background(), req)
	require.NoError(t, err)

	var msg verificationMessage
	nextMessage(t, e.created, &msg)

	link, err := url.Parse(msg.Link)
	require.NoError(t, err)

	return u, link.Query().Get("token")
}

func (e *testEnv) isVerified(t *testing.T, email string) bool {
	var verified bool
	err := e.db.QueryRow("SELECT verified FROM users WHERE email = $1", email).Scan(&verified)
	require.NoError(t, err)
	return verified
}

func TestRegister(t *testing.T) {
	e := setupTestEnvironment(t)

	withImages := testRegisterRequest()
	withImages.ProfilePicPath = "/tmp/uploads/profile.png"
	withImages.BannerPicPath = "/tmp/uploads/banner.png"

	testCases := []struct {
		name        string
		existing    *RegisterRequest
		req         RegisterRequest
		setup       func()
		expectedErr error
	}{
		{
			name: "valid user",
			req:  testRegisterRequest(),
		},
		{
			name: "valid user with images",
			req:  withImages,
			setup: func() {
				e.media.On("Upload", "/tmp/uploads/profile.png").Return("https://res.cloudinary.com/demo/image/upload/v1/BlogApp/profile.png", nil).Once()
				e.media.On("Upload", "/tmp/uploads/banner.png").Return("https://res.cloudinary.com/demo/image/upload/v1/BlogApp/banner.png", nil).Once()
			},
		},
		{
			name:        "duplicate username",
			existing:    &RegisterRequest{Username: "testuser", Fullname: "Other", Email: "other@example.com", Password: "TestPassword123!"},
			req:         testRegisterRequest(),
			expectedErr: ErrDuplicateUsername,
		},
		{
			name:        "duplicate email",
			existing:    &RegisterRequest{Username: "other", Fullname: "Other", Email: "testuser@example.com", Password: "TestPassword123!"},
			req:         testRegisterRequest(),
			expectedErr: ErrDuplicateEmail,
		},
		{
			name: "empty payload",
			req:  RegisterRequest{},
			expectedErr: common.ValidationError{Errors: map[string]string{
				"email":    "must be provided",
				"fullname": "must be provided",
				"password": "must be provided",
				"username": "must be provided",
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.existing != nil {
				e.register(t, *tc.existing)
			}

			if tc.setup != nil {
				tc.setup()
			}

			u, err := e.s.Register(context.Background(), tc.req)
			assert.Equal(t, tc.expectedErr, err)

			if err == nil {
				var msg verificationMessage
				nextMessage(t, e.created, &msg)
				assert.Equal(t, tc.req.Email, msg.Email)
				assert.Contains(t, msg.Link, "http://localhost:8080/api/v1/user/register/verify-token?token=")

				assert.False(t, u.Verified)
				assert.False(t, e.isVerified(t, tc.req.Email))
				assert.Equal(t, []int64{}, u.SavedBlogs)

				if tc.req.ProfilePicPath != "" {
					assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/BlogApp/profile.png", u.ProfilePic)
					assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/BlogApp/banner.png", u.BannerPic)
				}
			}

			e.media.AssertExpectations(t)

			t.Cleanup(func() {
				assert.NoError(t, e.cleanup())
			})
		})
	}
}

func TestVerifyEmail(t *testing.T) {
	e := setupTestEnvironment(t)
	ctx := context.Background()

	u, token := e.register(t, testRegisterRequest())
	other, otherToken := e.register(t, RegisterRequest{Username: "other", Fullname: "Other", Email: "other@example.com", Password: "TestPassword123!"})

	t.Cleanup(func() {
		assert.NoError(t, e.cleanup())
	})

	// unverified accounts cannot log in
	_, err := e.s.Login(ctx, u.Username, e.password)
	assert.Equal(t, ErrNotVerified, err)

	err = e.s.VerifyEmail(ctx, otherToken, u.Email)
	assert.Equal(t, ErrVerificationMismatch, err)
	assert.False(t, e.isVerified(t, u.Email))

	err = e.s.VerifyEmail(ctx, "garbage", u.Email)
	assert.Equal(t, tokenservice.ErrTokenInvalid, err)
	assert.False(t, e.isVerified(t, u.Email))

	err = e.s.VerifyEmail(ctx, "", "")
	assert.Equal(t, common.ValidationError{Errors: map[string]string{"token": "must be provided", "email": "must be provided"}}, err)

	err = e.s.VerifyEmail(ctx, token, u.Email)
	assert.NoError(t, err)
	assert.True(t, e.isVerified(t, u.Email))
	assert.False(t, e.isVerified(t, other.Email))

	err = e.s.ResendVerification(ctx, u.Email)
	assert.Equal(t, ErrAlreadyVerified, err)

	err = e.s.ResendVerification(ctx, other.Email)
	assert.NoError(t, err)

	var msg verificationMessage
	nextMessage(t, e.created, &msg)
	assert.Equal(t, other.Email, msg.Email)
}

func TestLogin(t *testing.T) {
	e := setupTestEnvironment(t)
	ctx := context.Background()

	u, token := e.register(t, testRegisterRequest())
	require.NoError(t, e.s.VerifyEmail(ctx, token, u.Email))

	t.Cleanup(func() {
		assert.NoError(t, e.cleanup())
	})

	testCases := []struct {
		name        string
		login       string
		password    string
		expectedErr error
	}{
		{name: "by username", login: "testuser", password: e.password},
		{name: "by email", login: "testuser@example.com", password: e.password},
		{name: "wrong password", login: "testuser", password: "WrongPassword123!", expectedErr: ErrInvalidCredentials},
		{name: "unknown user", login: "nobody", password: e.password, expectedErr: ErrInvalidCredentials},
		{
			name:        "missing fields",
			expectedErr: common.ValidationError{Errors: map[string]string{"emailOrUsername": "must be provided", "password": "must be provided"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := e.s.Login(ctx, tc.login, tc.password)
			assert.Equal(t, tc.expectedErr, err)

			if err == nil {
				assert.Equal(t, u.ID, res.User.ID)
				assert.NotEmpty(t, res.AccessToken)
				assert.NotEmpty(t, res.RefreshToken)

				session, err := e.s.ResolveSession(ctx, res.AccessToken, res.RefreshToken)
				assert.NoError(t, err)
				assert.Equal(t, u.ID, session.User.ID)
				assert.Empty(t, session.RenewedAccessToken)
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	e := setupTestEnvironment(t)
	ctx := context.Background()

	u, token := e.register(t, testRegisterRequest())
	require.NoError(t, e.s.VerifyEmail(ctx, token, u.Email))

	t.Cleanup(func() {
		assert.NoError(t, e.cleanup())
	})

	err := e.s.ChangePassword(ctx, u.ID, "WrongPassword123!", "NewPassword123!")
	assert.Equal(t, ErrIncorrectPassword, err)

	err = e.s.ChangePassword(ctx, u.ID, e.password, "weak")
	assert.IsType(t, common.ValidationError{}, err)

	err = e.s.ChangePassword(ctx, u.ID, e.password, "NewPassword123!")
	assert.NoError(t, err)

	_, err = e.s.Login(ctx, u.Username, e.password)
	assert.Equal(t, ErrInvalidCredentials, err)

	_, err = e.s.Login(ctx, u.Username, "NewPassword123!")
	assert.NoError(t, err)
}

func TestPasswordResetWithOTP(t *testing.T) {
	e := setupTestEnvironment(t)
	ctx := context.Background()

	u, token := e.register(t, testRegisterRequest())
	require.NoError(t, e.s.VerifyEmail(ctx, token, u.Email))

	t.Cleanup(func() {
		assert.NoError(t, e.cleanup())
	})

	// no OTP requested yet
	assert.Equal(t, ErrInvalidOTP, e.s.VerifyOTP(ctx, u.Email, "123456"))

	require.NoError(t, e.s.SendOTP(ctx, u.Email))

	var msg otpMessage
	nextMessage(t, e.otps, &msg)
	assert.Equal(t, u.Email, msg.Email)
	assert.Equal(t, 10, msg.Minutes)
	assert.Regexp(t, OTPRX, msg.OTP)

	wrong := "000000"
	if msg.OTP == wrong {
		wrong = "111111"
	}

	assert.Equal(t, ErrInvalidOTP, e.s.VerifyOTP(ctx, u.Email, wrong))
	assert.NoError(t, e.s.VerifyOTP(ctx, u.Email, msg.OTP))

	// verifying does not consume the code
	assert.NoError(t, e.s.ResetPassword(ctx, u.Email, msg.OTP, "NewPassword123!"))

	// resetting does
	assert.Equal(t, ErrInvalidOTP, e.s.ResetPassword(ctx, u.Email, msg.OTP, "OtherPassword123!"))

	_, err := e.s.Login(ctx, u.Email, "NewPassword123!")
	assert.NoError(t, err)

	assert.Equal(t, common.ErrRecordNotFound, e.s.SendOTP(ctx, "nobody@example.com"))
}

func TestExpiredOTPIsCleared(t *testing.T) {
	e := setupTestEnvironment(t)
	ctx := context.Background()

	u, _ := e.register(t, testRegisterRequest())

	t.Cleanup(func() {
		assert.NoError(t, e.cleanup())
	})

	require.NoError(t, e.s.SendOTP(ctx, u.Email))

	var msg otpMessage
	nextMessage(t, e.otps, &msg)

	_, err := e.db.Exec("UPDATE users SET otp_expiry = NOW() - interval '1 minute' WHERE id = $1", u.ID)
	require.NoError(t, err)

	assert.Equal(t, ErrOTPExpired, e.s.VerifyOTP(ctx, u.Email, msg.OTP))

	var cleared bool
	err = e.db.QueryRow("SELECT otp_hash IS NULL AND otp_expiry IS NULL FROM users WHERE id = $1", u.ID).Scan(&cleared)
	require.NoError(t, err)
	assert.True(t, cleared)

	assert.Equal(t, ErrInvalidOTP, e.s.ResetPassword(ctx, u.Email, msg.OTP, "NewPassword123!"))
}

func TestChangeProfilePic(t *testing.T) {
	e := setupTestEnvironment(t)
	ctx := context.Background()

	u, _ := e.register(t, testRegisterRequest())

	t.Cleanup(func() {
		assert.NoError(t, e.cleanup())
	})

	first := "https://res.cloudinary.com/demo/image/upload/v1/BlogApp/first.png"
	second := "https://res.cloudinary.com/demo/image/upload/v1/BlogApp/second.png"

	e.media.On("Upload", "/tmp/uploads/first.png").Return(first, nil).Once()

	updated, err := e.s.ChangeProfilePic(ctx, u.ID, "/tmp/uploads/first.png")
	require.NoError(t, err)
	assert.Equal(t, first, updated.ProfilePic)

	// a failed upload keeps the current picture
	e.media.On("Upload", "/tmp/uploads/broken.png").Return("", mediaservice.ErrUploadFailed).Once()

	_, err = e.s.ChangeProfilePic(ctx, u.ID, "/tmp/uploads/broken.png")
	assert.ErrorIs(t, err, mediaservice.ErrUploadFailed)

	e.media.On("Upload", "/tmp/uploads/second.png").Return(second, nil).Once()
	e.media.On("Delete", first).Return().Once()

	updated, err = e.s.ChangeProfilePic(ctx, u.ID, "/tmp/uploads/second.png")
	require.NoError(t, err)
	assert.Equal(t, second, updated.ProfilePic)

	_, err = e.s.ChangeBannerPic(ctx, u.ID, "")
	assert.Equal(t, common.ValidationError{Errors: map[string]string{"bannerPic": "must be provided"}}, err)

	e.media.AssertExpectations(t)
}

func TestUpdateProfile(t *testing.T) {
	e := setupTestEnvironment(t)
	ctx := context.Background()

	u, _ := e.register(t, testRegisterRequest())

	t.Cleanup(func() {
		assert.NoError(t, e.cleanup())
	})

	// warm the cache
	_, err := e.s.GetByID(ctx, u.ID)
	require.NoError(t, err)

	bio := "Writes about Go."
	updated, err := e.s.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, "Test User", updated.Fullname)

	cached, err := e.s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, bio, cached.Bio)

	_, err = e.s.UpdateProfile(ctx, u.ID, UpdateProfileRequest{})
	assert.IsType(t, common.ValidationError{}, err)
}

func TestToggleSaveBlog(t *testing.T) {
	e := setupTestEnvironment(t)
	ctx := context.Background()

	t.Cleanup(func() {
		assert.NoError(t, e.cleanup())
	})

	userID := common.InsertTestUser(t, e.db, "reader")
	authorID := common.InsertTestUser(t, e.db, "author")
	first := common.InsertTestBlog(t, e.db, authorID, "First Blog")
	second := common.InsertTestBlog(t, e.db, authorID, "Second Blog")

	saved, err := e.s.ToggleSaveBlog(ctx, userID, first)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = e.s.ToggleSaveBlog(ctx, userID, second)
	require.NoError(t, err)
	assert.True(t, saved)

	ok, err := e.s.IsBlogSaved(ctx, userID, first)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := e.s.SavedBlogIDs(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []int64{second, first}, ids)

	saved, err = e.s.ToggleSaveBlog(ctx, userID, first)
	require.NoError(t, err)
	assert.False(t, saved)

	ok, err = e.s.IsBlogSaved(ctx, userID, first)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = e.s.ToggleSaveBlog(ctx, userID, second+1000)
	assert.True(t, errors.Is(err, common.ErrRecordNotFound))
}

func TestGetByIDReturnsCopies(t *testing.T) {
	e := setupTestEnvironment(t)
	ctx := context.Background()

	t.Cleanup(func() {
		assert.NoError(t, e.cleanup())
	})

	userID := common.InsertTestUser(t, e.db, "reader")
	authorID := common.InsertTestUser(t, e.db, "author")

	for _, title := range []string{"First Blog", "Second Blog"} {
		_, err := e.s.ToggleSaveBlog(ctx, userID, common.InsertTestBlog(t, e.db, authorID, title))
		require.NoError(t, err)
	}

	first, err := e.s.GetByID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, first.SavedBlogs, 2)

	want := append([]int64(nil), first.SavedBlogs...)

	first.SavedBlogs[0] = -1
	first.Username = "mallory"

	second, err := e.s.GetByID(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, want, second.SavedBlogs)
	assert.Equal(t, "reader", second.Username)
}

func TestGetBloggers(t *testing.T) {
	e := setupTestEnvironment(t)
	ctx := context.Background()

	t.Cleanup(func() {
		assert.NoError(t, e.cleanup())
	})

	me := common.InsertTestUser(t, e.db, "me")
	for _, name := range []string{"alice", "bob", "carol", "alicia"} {
		common.InsertTestUser(t, e.db, name)
	}

	page, err := e.s.GetBloggers(ctx, "", me, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalDocs)
	assert.Len(t, page.Docs, 3)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)

	page, err = e.s.GetBloggers(ctx, "ali", me, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalDocs)
	assert.Equal(t, DefaultBloggersLimit, page.Limit)

	page, err = e.s.GetBloggers(ctx, "", me, 9, 3)
	require.NoError(t, err)
	assert.Empty(t, page.Docs)
	assert.Equal(t, 4, page.TotalDocs)
	assert.False(t, page.HasNextPage)
}
