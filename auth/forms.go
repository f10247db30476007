package auth

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Field messages.
const (
	MsgUsernameInvalid  = "Username must have at least 4 letters, digits or underscores."
	MsgEmailInvalid     = "Enter a valid email address."
	MsgPhoneInvalid     = "Phone number must have at least 10 characters."
	MsgPasswordWeak     = "Password must have at least 8 characters including upper case, lower case and a digit."
	MsgPasswordShort    = "Password must have at least 6 characters."
	MsgPasswordMismatch = "Passwords do not match."
	MsgTermsRequired    = "You must accept the terms and conditions."
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{4,}$`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	lowerPattern    = regexp.MustCompile(`[a-z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

// RegisterForm is the sign-up form as submitted.
type RegisterForm struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	AcceptTerms     bool   `json:"accept_terms"`
}

func (f *RegisterForm) normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
}

// Validate runs the cosmetic sign-up checks.
func (f RegisterForm) Validate() error {
	f.normalize()
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Username,
			validation.Required.Error(MsgUsernameInvalid),
			validation.Match(usernamePattern).Error(MsgUsernameInvalid)),
		validation.Field(&f.Email,
			validation.Required.Error(MsgEmailInvalid),
			is.EmailFormat.Error(MsgEmailInvalid)),
		validation.Field(&f.Phone,
			validation.Required.Error(MsgPhoneInvalid),
			validation.RuneLength(10, 0).Error(MsgPhoneInvalid)),
		validation.Field(&f.Password,
			validation.Required.Error(MsgPasswordWeak),
			validation.RuneLength(8, 0).Error(MsgPasswordWeak),
			validation.Match(upperPattern).Error(MsgPasswordWeak),
			validation.Match(lowerPattern).Error(MsgPasswordWeak),
			validation.Match(digitPattern).Error(MsgPasswordWeak)),
		validation.Field(&f.ConfirmPassword, validation.By(func(any) error {
			if f.ConfirmPassword != f.Password {
				return errors.New(MsgPasswordMismatch)
			}
			return nil
		})),
		validation.Field(&f.AcceptTerms,
			validation.Required.Error(MsgTermsRequired)),
	)
	return toValidationError(err)
}

// LoginForm is the sign-in form as submitted.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate runs the cosmetic sign-in checks.
func (f LoginForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Email,
			validation.Required.Error(MsgEmailInvalid),
			is.EmailFormat.Error(MsgEmailInvalid)),
		validation.Field(&f.Password,
			validation.Required.Error(MsgPasswordShort),
			validation.RuneLength(6, 0).Error(MsgPasswordShort)),
	)
	return toValidationError(err)
}
