package verification

import (
	"context"
	"errors"

	"github.com/backchair/storefront/internal/webservice"
)

// PasswordAuthenticator checks an account password. The flow delegates password
// sign-in to it instead of the identity service.
type PasswordAuthenticator interface {
	Authenticate(ctx context.Context, id Identifier, password string) (AuthenticatedUser, error)
}

// ErrPasswordLoginUnavailable is returned when no PasswordAuthenticator is wired.
var ErrPasswordLoginUnavailable = errors.New("password login is not available")

// Login signs in an existing identifier with a one-time code or a password.
type Login struct {
	remote    Remote
	passwords PasswordAuthenticator
}

// NewLogin builds a Login. passwords may be nil, in which case only codes work.
func NewLogin(remote Remote, passwords PasswordAuthenticator) *Login {
	return &Login{remote: remote, passwords: passwords}
}

// SendCode asks the service to deliver a code by email or SMS. Calling it again
// is a resend.
func (l *Login) SendCode(ctx context.Context, id Identifier, profile *ProfileDetails) error {
	action, fields := webservice.ActionResendOTP, map[string]any{"email": id.Value}
	if id.Type == Phone {
		action, fields = webservice.ActionResendOTPBySMS, map[string]any{"phone": id.Value}
		if email := profile.email(); email != "" {
			fields["email"] = email
		}
	}
	_, err := call(ctx, l.remote, action, fields, profile.accessToken())
	return err
}

// VerifyCode submits the code and returns the signed-in user on success.
func (l *Login) VerifyCode(ctx context.Context, id Identifier, profile *ProfileDetails, code string) (AuthenticatedUser, error) {
	action := webservice.ActionVerifyOTP
	fields := map[string]any{"email": firstNonEmpty(profile.email(), id.Value), "otp": code}
	if id.Type == Phone {
		action = webservice.ActionLoginWithPhoneOTP
		fields = map[string]any{"phone": firstNonEmpty(profile.phone(), id.Value), "otp": code}
	}

	env, err := call(ctx, l.remote, action, fields, profile.accessToken())
	if err != nil {
		return AuthenticatedUser{}, err
	}
	user, err := userFromProfile(profileFromRemote(env.Profile()), profile)
	if err != nil {
		return AuthenticatedUser{}, malformed(action, err)
	}
	return user, nil
}

// Password delegates to the configured PasswordAuthenticator.
func (l *Login) Password(ctx context.Context, id Identifier, password string) (AuthenticatedUser, error) {
	if l.passwords == nil {
		return AuthenticatedUser{}, ErrPasswordLoginUnavailable
	}
	return l.passwords.Authenticate(ctx, id, password)
}
