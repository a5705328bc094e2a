package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/tokenservice"
)

var (
	ErrInvalidCredentials    = errors.New("invalid email, username or password")
	ErrNotVerified           = errors.New("email address is not verified")
	ErrAlreadyVerified       = errors.New("email address is already verified")
	ErrIncorrectPassword     = errors.New("incorrect password")
	ErrVerificationMismatch  = errors.New("verification token does not match email")
	ErrAuthenticationFailure = errors.New("unauthorized access")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, c *common.Cache, tokens *tokenservice.TokenService, media Media, logger *slog.Logger, cfg Config) *UserService {
	return &UserService{
		m:      newUserModel(db),
		mb:     mb,
		c:      c,
		tokens: tokens,
		media:  media,
		logger: logger,
		cfg:    cfg,
	}
}

// Register creates an unverified account, uploads any supplied images and
// publishes a user.created event carrying the verification link.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	v := common.NewValidator()
	validateUsername(v, req.Username)
	validateFullname(v, req.Fullname)
	validateEmail(v, req.Email)
	validatePassword(v, req.Password)
	validateBio(v, req.Bio)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Username: req.Username,
		Fullname: req.Fullname,
		Email:    req.Email,
		Bio:      req.Bio,
	}

	if err := u.Password.set(req.Password); err != nil {
		return nil, err
	}

	var err error
	if req.ProfilePicPath != "" {
		u.ProfilePic, err = s.media.Upload(ctx, req.ProfilePicPath)
		if err != nil {
			return nil, err
		}
	}

	if req.BannerPicPath != "" {
		u.BannerPic, err = s.media.Upload(ctx, req.BannerPicPath)
		if err != nil {
			s.discardImages(ctx, u.ProfilePic)
			return nil, err
		}
	}

	if err := s.m.insert(ctx, &u); err != nil {
		s.discardImages(ctx, u.ProfilePic, u.BannerPic)
		return nil, err
	}

	if err := s.publishVerification(ctx, &u); err != nil {
		return nil, err
	}

	return &u, nil
}

// VerifyEmail marks the account verified when token was issued for email.
func (s *UserService) VerifyEmail(ctx context.Context, token, email string) error {
	v := common.NewValidator()
	v.Required(map[string]string{"token": token, "email": email})
	if !v.Valid() {
		return v.ValidationError()
	}

	claims, err := s.tokens.VerifyVerificationToken(token)
	if err != nil {
		return err
	}

	if claims.Email != email {
		return ErrVerificationMismatch
	}

	u, err := s.m.getByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.m.verify(ctx, email); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyUser(u.ID))

	return nil
}

// ResendVerification publishes a fresh verification link for an unverified account.
func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	v := common.NewValidator()
	validateEmail(v, email)
	if !v.Valid() {
		return v.ValidationError()
	}

	u, err := s.m.getByEmail(ctx, email)
	if err != nil {
		return err
	}

	if u.Verified {
		return ErrAlreadyVerified
	}

	return s.publishVerification(ctx, u)
}

func (s *UserService) publishVerification(ctx context.Context, u *User) error {
	token, err := s.tokens.IssueVerificationToken(u.Email)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/v1/user/register/verify-token?token=%s&email=%s", s.cfg.BaseURL, url.QueryEscape(token), url.QueryEscape(u.Email))

	data, err := json.Marshal(verificationMessage{Email: u.Email, Username: u.Username, Link: link})
	if err != nil {
		return err
	}

	return s.mb.Publish(ctx, data, common.UserCreatedKey, common.UserExchange)
}

// Login authenticates by email or username and issues an access/refresh token pair.
func (s *UserService) Login(ctx context.Context, login, password string) (*AuthTokens, error) {
	v := common.NewValidator()
	v.Required(map[string]string{"emailOrUsername": login, "password": password})
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u, err := s.m.getByLogin(ctx, login)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, ErrInvalidCredentials
		default:
			return nil, err
		}
	}

	ok, err := u.Password.compare(password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !u.Verified {
		return nil, ErrNotVerified
	}

	access, err := s.tokens.IssueAccessToken(u.Identity())
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.IssueRefreshToken(u.Identity())
	if err != nil {
		return nil, err
	}

	return &AuthTokens{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	v := common.NewValidator()
	v.Required(map[string]string{"oldPassword": oldPassword})
	validateNewPassword(v, newPassword)
	if !v.Valid() {
		return v.ValidationError()
	}

	u, err := s.m.getByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := u.Password.compare(oldPassword)
	if err != nil {
		return err
	}

	if !ok {
		return ErrIncorrectPassword
	}

	if err := u.Password.set(newPassword); err != nil {
		return err
	}

	if err := s.m.updatePassword(ctx, u.ID, u.Password, u.Version); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyUser(u.ID))

	return nil
}

// GetByID returns the user with the given id, served from the cache when possible.
func (s *UserService) GetByID(ctx context.Context, id int64) (*User, error) {
	v := common.NewValidator()
	common.ValidateID(v, id, "userId")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyUser(id)); ok {
		u := cached.(User).clone()
		return &u, nil
	}

	u, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyUser(id), u.clone())

	return u, nil
}

// GetUserProfile returns the public view of a user.
func (s *UserService) GetUserProfile(ctx context.Context, id int64) (*PublicUser, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p := u.Public()
	return &p, nil
}

// GetBloggers pages through verified users other than the requester.
func (s *UserService) GetBloggers(ctx context.Context, q string, requesterID int64, page, limit int) (common.Page[PublicUser], error) {
	p := common.NewPagination(page, limit, DefaultBloggersLimit)

	users, total, err := s.m.list(ctx, q, requesterID, p)
	if err != nil {
		return common.Page[PublicUser]{}, err
	}

	return common.NewPage(users, total, p), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*User, error) {
	v := common.NewValidator()
	if req.Fullname == nil && req.Bio == nil {
		v.AddError("fullname", "fullname or bio must be provided")
	}
	if req.Fullname != nil {
		validateFullname(v, *req.Fullname)
	}
	if req.Bio != nil {
		validateBio(v, *req.Bio)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u, err := s.m.getByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Fullname != nil {
		u.Fullname = *req.Fullname
	}

	if req.Bio != nil {
		u.Bio = *req.Bio
	}

	if err := s.m.updateProfile(ctx, u); err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyUser(u.ID))

	return u, nil
}

func (s *UserService) ChangeProfilePic(ctx context.Context, userID int64, localPath string) (*User, error) {
	return s.changeImage(ctx, userID, localPath, "profilePic", func(u *User) *string { return &u.ProfilePic })
}

func (s *UserService) ChangeBannerPic(ctx context.Context, userID int64, localPath string) (*User, error) {
	return s.changeImage(ctx, userID, localPath, "bannerPic", func(u *User) *string { return &u.BannerPic })
}

// changeImage uploads the new image first and only deletes the previous one
// after the user row points at the replacement.
func (s *UserService) changeImage(ctx context.Context, userID int64, localPath, field string, target func(*User) *string) (*User, error) {
	v := common.NewValidator()
	v.Required(map[string]string{field: localPath})
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u, err := s.m.getByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	remote, err := s.media.Upload(ctx, localPath)
	if err != nil {
		return nil, err
	}

	image := target(u)
	previous := *image
	*image = remote

	if err := s.m.updateProfile(ctx, u); err != nil {
		s.discardImages(ctx, remote)
		return nil, err
	}

	s.c.Delete(common.CacheKeyUser(u.ID))
	s.discardImages(ctx, previous)

	return u, nil
}

func (s *UserService) discardImages(ctx context.Context, urls ...string) {
	for _, u := range urls {
		if u != "" {
			s.media.Delete(ctx, u)
		}
	}
}

// ToggleSaveBlog saves the blog for the user, or unsaves it if already saved.
func (s *UserService) ToggleSaveBlog(ctx context.Context, userID, blogID int64) (bool, error) {
	v := common.NewValidator()
	common.ValidateID(v, blogID, "blogId")
	if !v.Valid() {
		return false, v.ValidationError()
	}

	exists, err := s.m.blogExists(ctx, blogID)
	if err != nil {
		return false, err
	}

	if !exists {
		return false, common.ErrRecordNotFound
	}

	saved, err := s.m.toggleSavedBlog(ctx, userID, blogID)
	if err != nil {
		return false, err
	}

	s.c.Delete(common.CacheKeyUser(userID))

	return saved, nil
}

func (s *UserService) IsBlogSaved(ctx context.Context, userID, blogID int64) (bool, error) {
	v := common.NewValidator()
	common.ValidateID(v, blogID, "blogId")
	if !v.Valid() {
		return false, v.ValidationError()
	}

	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, id := range u.SavedBlogs {
		if id == blogID {
			return true, nil
		}
	}

	return false, nil
}

// SavedBlogIDs returns the saved blog ids of a user, most recently saved first.
func (s *UserService) SavedBlogIDs(ctx context.Context, userID int64) ([]int64, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(u.SavedBlogs))
	for i := len(u.SavedBlogs) - 1; i >= 0; i-- {
		ids = append(ids, u.SavedBlogs[i])
	}

	return ids, nil
}
