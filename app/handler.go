package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	err := app.parseMultipart(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	profilePic, err := app.saveFormFile(r, "profilePic")
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	bannerPic, err := app.saveFormFile(r, "bannerPic")
	if err != nil {
		app.removeUploads(profilePic)
		app.serverErrorResponse(w, r, err)
		return
	}
	defer app.removeUploads(profilePic, bannerPic)

	user, err := app.userService.Register(r.Context(), userservice.RegisterRequest{
		Username:       r.PostFormValue("username"),
		Fullname:       r.PostFormValue("fullname"),
		Email:          r.PostFormValue("email"),
		Password:       r.PostFormValue("password"),
		Bio:            r.PostFormValue("bio"),
		ProfilePicPath: profilePic,
		BannerPicPath:  bannerPic,
	})
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.conflictErrorResponse(w, r, "a user with this email address already exists", map[string]string{"email": "already exists"})
		case errors.Is(err, userservice.ErrDuplicateUsername):
			app.conflictErrorResponse(w, r, "this username is already taken", map[string]string{"username": "already exists"})
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	app.writeResponse(w, r, http.StatusCreated, user, "user registered, check your email to verify your account")
}

func (app *application) verifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	err := app.userService.VerifyEmail(r.Context(), qs.Get("token"), qs.Get("email"))
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrVerificationMismatch):
			app.badRequestErrorResponse(w, r, err)
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	app.writeResponse(w, r, http.StatusOK, nil, "email verified")
}

func (app *application) resendVerificationHandler(w http.ResponseWriter, r *http.Request) {
	email := httprouter.ParamsFromContext(r.Context()).ByName("email")

	err := app.userService.ResendVerification(r.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrAlreadyVerified):
			app.badRequestErrorResponse(w, r, err)
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	app.writeResponse(w, r, http.StatusOK, nil, "verification link sent")
}

type loginUserRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input loginUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	tokens, err := app.userService.Login(r.Context(), input.EmailOrUsername, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrInvalidCredentials):
			app.invalidCredentialsErrorResponse(w, r)
		case errors.Is(err, userservice.ErrNotVerified):
			app.forbiddenErrorResponse(w, r, "please verify your email address before logging in")
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	app.setAuthCookies(w, tokens.AccessToken, tokens.RefreshToken)
	app.writeResponse(w, r, http.StatusOK, tokens, "user logged in")
}

func (app *application) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	app.clearAuthCookies(w)
	app.writeResponse(w, r, http.StatusOK, nil, "user logged out")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (app *application) changePasswordHandler(w http.ResponseWriter, r *http.Request) {
	var input changePasswordRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	err = app.userService.ChangePassword(r.Context(), user.ID, input.OldPassword, input.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrIncorrectPassword):
			app.badRequestErrorResponse(w, r, err)
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	app.writeResponse(w, r, http.StatusOK, nil, "password changed")
}

type otpRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (app *application) otpErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, userservice.ErrInvalidOTP), errors.Is(err, userservice.ErrOTPExpired):
		app.badRequestErrorResponse(w, r, err)
	default:
		app.serviceErrorResponse(w, r, err)
	}
}

func (app *application) sendOTPHandler(w http.ResponseWriter, r *http.Request) {
	var input otpRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.userService.SendOTP(r.Context(), input.Email)
	if err != nil {
		app.otpErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, nil, "otp sent to your email address")
}

func (app *application) verifyOTPHandler(w http.ResponseWriter, r *http.Request) {
	var input otpRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.userService.VerifyOTP(r.Context(), input.Email, input.OTP)
	if err != nil {
		app.otpErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, envelope{"verified": true}, "otp verified")
}

func (app *application) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var input otpRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.userService.ResetPassword(r.Context(), input.Email, input.OTP, input.NewPassword)
	if err != nil {
		app.otpErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, nil, "password reset")
}

func (app *application) changeProfilePicHandler(w http.ResponseWriter, r *http.Request) {
	app.changeImage(w, r, "profilePic", app.userService.ChangeProfilePic)
}

func (app *application) changeBannerPicHandler(w http.ResponseWriter, r *http.Request) {
	app.changeImage(w, r, "bannerPic", app.userService.ChangeBannerPic)
}

type changeImageFunc func(ctx context.Context, userID int64, localPath string) (*userservice.User, error)

func (app *application) changeImage(w http.ResponseWriter, r *http.Request, field string, change changeImageFunc) {
	err := app.parseMultipart(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	path, err := app.saveFormFile(r, field)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	defer app.removeUploads(path)

	user, err := change(r.Context(), app.getUserContext(r).ID, path)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, user, field+" updated")
}

func (app *application) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.UpdateProfileRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.UpdateProfile(r.Context(), app.getUserContext(r).ID, input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, user, "profile updated")
}

func (app *application) getBloggersHandler(w http.ResponseWriter, r *http.Request) {
	page, limit, err := app.readPageLimitParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	bloggers, err := app.userService.GetBloggers(r.Context(), r.URL.Query().Get("q"), app.getUserContext(r).ID, page, limit)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, bloggers, "bloggers fetched")
}

type userProfileResponse struct {
	*userservice.PublicUser
	Followers int `json:"followers"`
	Following int `json:"following"`
}

func (app *application) userProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "userId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	profile, err := app.userService.GetUserProfile(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	followers, following, err := app.followService.Counts(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, userProfileResponse{profile, followers, following}, "user profile fetched")
}

func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	app.writeResponse(w, r, http.StatusOK, app.getUserContext(r), "current user fetched")
}

func (app *application) savedBlogsHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := app.userService.SavedBlogIDs(r.Context(), app.getUserContext(r).ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.GetBlogsByIDs(r.Context(), ids)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, blogs, "saved blogs fetched")
}
