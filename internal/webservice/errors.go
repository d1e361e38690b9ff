package webservice

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is wrapped by a TransportError when the service answers with no body.
var ErrEmptyResponse = errors.New("empty response from server")

// TransportError means the request could not complete: the host was unreachable,
// the call timed out, or the payload could not be decoded.
type TransportError struct {
	Action string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("identity service %s: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteRejection is a well-formed response carrying a non-success code. Message is
// the text supplied by the service and is shown to the user verbatim.
type RemoteRejection struct {
	Action  string
	Code    int
	Message string
}

func (e *RemoteRejection) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected with code %d", e.Action, e.Code)
	}
	return e.Message
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// AsRejection extracts a RemoteRejection from err.
func AsRejection(err error) (*RemoteRejection, bool) {
	var rr *RemoteRejection
	if errors.As(err, &rr) {
		return rr, true
	}
	return nil, false
}
