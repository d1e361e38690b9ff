package verification

import (
	"errors"
	"fmt"
)

// LocalValidationError is raised before any network call: bad identifier shape,
// password mismatch and similar input problems.
type LocalValidationError struct {
	Field  string
	Reason string
}

func (e *LocalValidationError) Error() string {
	return e.Reason
}

var (
	ErrInvalidIdentifier = &LocalValidationError{Field: "identifier", Reason: "please enter a valid email or phone number"}
	ErrPasswordMismatch  = &LocalValidationError{Field: "confirm_password", Reason: "passwords do not match"}
	ErrPasswordTooShort  = &LocalValidationError{Field: "password", Reason: "password must be at least 6 characters"}
	ErrPasswordRequired  = &LocalValidationError{Field: "password", Reason: "password is required"}
	ErrCodeRequired      = &LocalValidationError{Field: "code", Reason: "please enter the verification code"}
	ErrUnknownMethod     = &LocalValidationError{Field: "method", Reason: "login method must be password or code"}
)

// ErrSkipDisabled is returned by SkipAndLogin when anonymous accounts are switched off.
var ErrSkipDisabled = errors.New("skipping password creation is disabled")

// ErrMissingUserID means a success response did not identify the account.
var ErrMissingUserID = errors.New("response did not include a user id")

// StepError reports an operation attempted from a step that does not allow it.
type StepError struct {
	Op   string
	Step StepKind
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s is not allowed in step %s", e.Op, e.Step)
}

// IsLocalValidation reports whether err is a *LocalValidationError.
func IsLocalValidation(err error) bool {
	var lv *LocalValidationError
	return errors.As(err, &lv)
}

func requiredField(field, label string) *LocalValidationError {
	return &LocalValidationError{Field: field, Reason: label + " is required"}
}
