package userservice

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sushihentaime/blogsphere/internal/common"
)

var (
	ErrInvalidOTP = errors.New("invalid otp")
	ErrOTPExpired = errors.New("otp has expired")
)

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func hashOTP(otp string) []byte {
	sum := sha256.Sum256([]byte(otp))
	return sum[:]
}

// SendOTP stores a fresh one-time password for the account and publishes it on user.otp.
// A previous, unused OTP is overwritten.
func (s *UserService) SendOTP(ctx context.Context, email string) error {
	v := common.NewValidator()
	validateEmail(v, email)
	if !v.Valid() {
		return v.ValidationError()
	}

	u, err := s.m.getByEmail(ctx, email)
	if err != nil {
		return err
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}

	if err := s.m.setOTP(ctx, u.ID, hashOTP(otp), time.Now().Add(s.cfg.OTPExpiry)); err != nil {
		return err
	}

	data, err := json.Marshal(otpMessage{
		Email:    u.Email,
		Username: u.Username,
		OTP:      otp,
		Minutes:  int(s.cfg.OTPExpiry.Minutes()),
	})
	if err != nil {
		return err
	}

	return s.mb.Publish(ctx, data, common.UserOTPKey, common.UserExchange)
}

// VerifyOTP checks the code without consuming it.
func (s *UserService) VerifyOTP(ctx context.Context, email, otp string) error {
	v := common.NewValidator()
	validateEmail(v, email)
	validateOTP(v, otp)
	if !v.Valid() {
		return v.ValidationError()
	}

	u, err := s.m.getByEmail(ctx, email)
	if err != nil {
		return err
	}

	return s.checkOTP(ctx, u, otp)
}

// ResetPassword sets a new password once the OTP checks out, consuming the OTP.
func (s *UserService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	v := common.NewValidator()
	validateEmail(v, email)
	validateOTP(v, otp)
	validateNewPassword(v, newPassword)
	if !v.Valid() {
		return v.ValidationError()
	}

	u, err := s.m.getByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.checkOTP(ctx, u, otp); err != nil {
		return err
	}

	if err := u.Password.set(newPassword); err != nil {
		return err
	}

	if err := s.m.resetPassword(ctx, u.ID, u.Password, u.Version); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyUser(u.ID))

	return nil
}

// checkOTP compares otp with the stored hash. An expired OTP is cleared.
func (s *UserService) checkOTP(ctx context.Context, u *User, otp string) error {
	if u.otpHash == nil || u.otpExpiry == nil {
		return ErrInvalidOTP
	}

	if time.Now().After(*u.otpExpiry) {
		if err := s.m.clearOTP(ctx, u.ID); err != nil {
			return err
		}
		return ErrOTPExpired
	}

	if subtle.ConstantTimeCompare(u.otpHash, hashOTP(otp)) != 1 {
		return ErrInvalidOTP
	}

	return nil
}
