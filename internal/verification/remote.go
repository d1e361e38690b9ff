package verification

import (
	"context"

	"github.com/backchair/storefront/internal/webservice"
)

// Remote is the slice of the identity service client the flow depends on.
// *webservice.Client satisfies it.
type Remote interface {
	Call(ctx context.Context, action string, fields map[string]any, accessToken string) (webservice.Envelope, error)
}

// call performs action and turns any code outside accept (default: 200) into a
// *webservice.RemoteRejection. Transport failures are passed through untouched.
func call(ctx context.Context, remote Remote, action string, fields map[string]any, token string, accept ...int) (webservice.Envelope, error) {
	env, err := remote.Call(ctx, action, fields, token)
	if err != nil {
		return webservice.Envelope{}, err
	}
	if len(accept) == 0 {
		accept = []int{webservice.CodeOK}
	}
	for _, code := range accept {
		if env.ServerResponse.Code == code {
			return env, nil
		}
	}
	return env, env.Rejection(action)
}

// malformed wraps a success response that lacks data the flow needs.
func malformed(action string, err error) error {
	return &webservice.TransportError{Action: action, Err: err}
}

// mergeProfiles overlays newer onto older, keeping older values where newer is blank.
func mergeProfiles(newer, older *ProfileDetails) *ProfileDetails {
	switch {
	case newer == nil && older == nil:
		return nil
	case newer == nil:
		cp := *older
		return &cp
	case older == nil:
		cp := *newer
		return &cp
	}
	return &ProfileDetails{
		UserID:      firstNonEmpty(newer.UserID, older.UserID),
		Username:    firstNonEmpty(newer.Username, older.Username),
		FirstName:   firstNonEmpty(newer.FirstName, older.FirstName),
		LastName:    firstNonEmpty(newer.LastName, older.LastName),
		Email:       firstNonEmpty(newer.Email, older.Email),
		Phone:       firstNonEmpty(newer.Phone, older.Phone),
		AccessToken: firstNonEmpty(newer.AccessToken, older.AccessToken),
	}
}
