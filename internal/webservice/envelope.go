package webservice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Action names understood by the remote identity service.
const (
	ActionEmailValidation   = "emailValidation"
	ActionPhoneValidation   = "phoneValidation"
	ActionResendOTP         = "resendOTP"
	ActionResendOTPBySMS    = "resendOTPbySms"
	ActionVerifyOTP         = "verifyOTP"
	ActionLoginWithPhoneOTP = "loginWithPhoneOTP"
	ActionSignUp            = "signUp"
	ActionAddPassword       = "addPassword"
	ActionCreateAnonymous   = "createAnonymousUser"
)

// Response codes carried in serverResponse.code. Anything else is action specific
// and treated as an opaque rejection.
const (
	CodeOK          = 200
	CodeOTPRequired = 602
)

// Envelope is the response body shared by every action.
type Envelope struct {
	ServerResponse ServerResponse `json:"serverResponse"`
	Result         *Result        `json:"result,omitempty"`
}

// ServerResponse holds the action outcome.
type ServerResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Result is the optional payload of a successful call.
type Result struct {
	ProfileDetails *ProfileDetails `json:"profileDetails,omitempty"`
}

// ProfileDetails is the account record returned for known identifiers and after
// OTP verification.
type ProfileDetails struct {
	UserID      RemoteID `json:"userId,omitempty"`
	Username    string   `json:"username,omitempty"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	AccessToken string   `json:"accessToken,omitempty"`
}

// acceptedCodes lists the non-200 codes that are a normal answer for an action.
var acceptedCodes = map[string][]int{
	ActionSignUp: {CodeOTPRequired},
}

// Accepted reports whether the code is a normal answer for action: 200, or an
// action-specific code such as 602 for signUp.
func (e Envelope) Accepted(action string) bool {
	if e.OK() {
		return true
	}
	for _, code := range acceptedCodes[action] {
		if e.ServerResponse.Code == code {
			return true
		}
	}
	return false
}

// OK reports whether the call succeeded.
func (e Envelope) OK() bool {
	return e.ServerResponse.Code == CodeOK
}

// Profile returns the profile payload, or nil when the service sent none.
func (e Envelope) Profile() *ProfileDetails {
	if e.Result == nil {
		return nil
	}
	return e.Result.ProfileDetails
}

// Rejection converts the envelope into a *RemoteRejection for the given action.
func (e Envelope) Rejection(action string) *RemoteRejection {
	return &RemoteRejection{Action: action, Code: e.ServerResponse.Code, Message: e.ServerResponse.Message}
}

// RemoteID accepts both JSON numbers and strings; the backend is not consistent.
type RemoteID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *RemoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RemoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("userId: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*id = RemoteID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = RemoteID(n.String())
	return nil
}

// String returns the identifier as text.
func (id RemoteID) String() string {
	return string(id)
}
