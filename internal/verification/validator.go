package verification

import (
	"context"

	"github.com/backchair/storefront/internal/webservice"
)

// Validator asks the identity service whether an identifier belongs to an account.
type Validator struct {
	remote Remote
}

// NewValidator builds a Validator.
func NewValidator(remote Remote) *Validator {
	return &Validator{remote: remote}
}

// Validate sends a classified identifier to the service. A nil profile with a nil
// error means the identifier is valid but not registered yet.
func (v *Validator) Validate(ctx context.Context, id Identifier) (*ProfileDetails, error) {
	action, fields := webservice.ActionEmailValidation, map[string]any{"email": id.Value}
	if id.Type == Phone {
		action, fields = webservice.ActionPhoneValidation, map[string]any{"phone": id.Value}
	}

	env, err := call(ctx, v.remote, action, fields, "")
	if err != nil {
		return nil, err
	}
	return profileFromRemote(env.Profile()), nil
}
