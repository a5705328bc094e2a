package userservice

import (
	"regexp"
	"strings"

	"github.com/sushihentaime/blogsphere/internal/common"
)

var (
	EmailRX     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	UsernameRX  = regexp.MustCompile("^[a-zA-Z0-9]+$")
	UppercaseRX = regexp.MustCompile("[A-Z]")
	LowercaseRX = regexp.MustCompile("[a-z]")
	NumberRX    = regexp.MustCompile("[0-9]")
	SymbolRX    = regexp.MustCompile(`[#?!@$%^&*_\\-]`)
	OTPRX       = regexp.MustCompile(`^[0-9]{6}$`)
)

func validateUsername(v *common.Validator, username string) {
	v.Check(username != "", "username", "must be provided")
	v.Check(v.CheckStringLength(username, 3, 25), "username", "must be between 3 and 25 characters long")
	v.Check(UsernameRX.MatchString(username), "username", "must only contain letters and numbers")
}

func validateFullname(v *common.Validator, fullname string) {
	v.Check(strings.TrimSpace(fullname) != "", "fullname", "must be provided")
	v.Check(len(fullname) <= 100, "fullname", "must not be more than 100 characters long")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(EmailRX.MatchString(email), "email", "must be a valid email address")
}

func validatePassword(v *common.Validator, password string) {
	checkPassword(v, "password", password)
}

func validateNewPassword(v *common.Validator, password string) {
	checkPassword(v, "newPassword", password)
}

func checkPassword(v *common.Validator, field, password string) {
	v.Check(password != "", field, "must be provided")

	value := v.CheckStringLength(password, 8, 72) && UppercaseRX.MatchString(password) && LowercaseRX.MatchString(password) && NumberRX.MatchString(password) && SymbolRX.MatchString(password)
	v.Check(value, field, "must be between 8 and 72 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one symbol")
}

func validateBio(v *common.Validator, bio string) {
	v.Check(len(bio) <= 500, "bio", "must not be more than 500 characters long")
}

func validateOTP(v *common.Validator, otp string) {
	v.Check(otp != "", "otp", "must be provided")
	v.Check(OTPRX.MatchString(otp), "otp", "must be a 6 digit code")
}
