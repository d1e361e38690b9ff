package verification

import (
	"context"
	"strings"

	"github.com/backchair/storefront/internal/webservice"
)

const minPasswordLength = 6

// Registration creates a new account in three phases: profile submission, code
// confirmation and password creation.
type Registration struct {
	remote Remote
}

// NewRegistration builds a Registration.
func NewRegistration(remote Remote) *Registration {
	return &Registration{remote: remote}
}

// SignUp submits the profile. otpRequired is true when the service answered 602
// and a code must be confirmed before a password can be set.
func (r *Registration) SignUp(ctx context.Context, reg Registrant) (otpRequired bool, account *ProfileDetails, err error) {
	if err := reg.validate(); err != nil {
		return false, nil, err
	}
	env, err := call(ctx, r.remote, webservice.ActionSignUp, map[string]any{
		"firstName": reg.FirstName,
		"lastName":  reg.LastName,
		"email":     reg.Email,
		"phone":     reg.Phone,
	}, "", webservice.CodeOK, webservice.CodeOTPRequired)
	if err != nil {
		return false, nil, err
	}
	return env.ServerResponse.Code == webservice.CodeOTPRequired, profileFromRemote(env.Profile()), nil
}

// ConfirmCode verifies the registration code and returns the updated account data.
func (r *Registration) ConfirmCode(ctx context.Context, reg Registrant, account *ProfileDetails, code string) (*ProfileDetails, error) {
	env, err := call(ctx, r.remote, webservice.ActionVerifyOTP, map[string]any{
		"email": reg.Email,
		"otp":   code,
	}, account.accessToken())
	if err != nil {
		return nil, err
	}
	return mergeProfiles(profileFromRemote(env.Profile()), account), nil
}

// AddPassword sets the new account's password and returns the signed-in user.
func (r *Registration) AddPassword(ctx context.Context, reg Registrant, account *ProfileDetails, password string) (AuthenticatedUser, error) {
	env, err := call(ctx, r.remote, webservice.ActionAddPassword, map[string]any{
		"email":    reg.Email,
		"password": password,
	}, account.accessToken())
	if err != nil {
		return AuthenticatedUser{}, err
	}
	user, err := userFromProfile(profileFromRemote(env.Profile()), account, reg.asProfile())
	if err != nil {
		return AuthenticatedUser{}, malformed(webservice.ActionAddPassword, err)
	}
	return user, nil
}

// CreateAnonymous asks the service for a placeholder account instead of a password.
func (r *Registration) CreateAnonymous(ctx context.Context, reg Registrant, account *ProfileDetails) (AuthenticatedUser, error) {
	env, err := call(ctx, r.remote, webservice.ActionCreateAnonymous, map[string]any{
		"email": reg.Email,
		"phone": reg.Phone,
	}, account.accessToken())
	if err != nil {
		return AuthenticatedUser{}, err
	}
	user, err := userFromProfile(profileFromRemote(env.Profile()), account, reg.asProfile())
	if err != nil {
		return AuthenticatedUser{}, malformed(webservice.ActionCreateAnonymous, err)
	}
	return user, nil
}

func (reg *Registrant) normalize() {
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Phone = strings.TrimSpace(reg.Phone)
}

func (reg Registrant) validate() error {
	switch {
	case reg.FirstName == "":
		return requiredField("first_name", "first name")
	case reg.LastName == "":
		return requiredField("last_name", "last name")
	case reg.Email == "":
		return requiredField("email", "email")
	case reg.Phone == "":
		return requiredField("phone", "phone")
	}
	if id, err := Classify(reg.Email); err != nil || id.Type != Email {
		return &LocalValidationError{Field: "email", Reason: "invalid email address"}
	}
	if id, err := Classify(reg.Phone); err != nil || id.Type != Phone {
		return &LocalValidationError{Field: "phone", Reason: "invalid phone number"}
	}
	return nil
}

func validateNewPassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
