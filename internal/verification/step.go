package verification

import "github.com/backchair/storefront/internal/webservice"

// StepKind names a step of the verification flow.
type StepKind string

const (
	KindInitial          StepKind = "initial"
	KindMethodChoice     StepKind = "method_choice"
	KindPasswordEntry    StepKind = "password_entry"
	KindOtpEntry         StepKind = "otp_entry"
	KindRegistering      StepKind = "registering"
	KindRegisterOtp      StepKind = "register_otp"
	KindPasswordCreation StepKind = "password_creation"
	KindDone             StepKind = "done"
)

// Step is the active stage of a flow. Every variant carries only the data that
// stage needs, so combinations such as "done but still waiting for a code" cannot
// be represented.
type Step interface {
	Kind() StepKind
	isStep()
}

// Initial waits for an identifier (login tab) or a profile (register tab).
type Initial struct{}

// MethodChoice follows a successful identifier validation. Profile is nil when
// the identifier is not yet registered.
type MethodChoice struct {
	Identifier Identifier
	Profile    *ProfileDetails
}

// PasswordEntry waits for the account password.
type PasswordEntry struct {
	Identifier Identifier
	Profile    *ProfileDetails
}

// OtpEntry waits for the one-time code that was sent out of band.
type OtpEntry struct {
	Identifier Identifier
	Profile    *ProfileDetails
}

// Registering is the register tab before the profile was accepted.
type Registering struct{}

// RegisterOtp waits for the code confirming a submitted registration.
type RegisterOtp struct {
	Registrant Registrant
	Account    *ProfileDetails
}

// PasswordCreation waits for the new account's password.
type PasswordCreation struct {
	Registrant Registrant
	Account    *ProfileDetails
}

// Done is terminal and holds the signed-in user.
type Done struct {
	User AuthenticatedUser
}

func (Initial) Kind() StepKind          { return KindInitial }
func (MethodChoice) Kind() StepKind     { return KindMethodChoice }
func (PasswordEntry) Kind() StepKind    { return KindPasswordEntry }
func (OtpEntry) Kind() StepKind         { return KindOtpEntry }
func (Registering) Kind() StepKind      { return KindRegistering }
func (RegisterOtp) Kind() StepKind      { return KindRegisterOtp }
func (PasswordCreation) Kind() StepKind { return KindPasswordCreation }
func (Done) Kind() StepKind             { return KindDone }

func (Initial) isStep()          {}
func (MethodChoice) isStep()     {}
func (PasswordEntry) isStep()    {}
func (OtpEntry) isStep()         {}
func (Registering) isStep()      {}
func (RegisterOtp) isStep()      {}
func (PasswordCreation) isStep() {}
func (Done) isStep()             {}

// KnownAccount reports whether validation found an existing account.
func (s MethodChoice) KnownAccount() bool {
	return s.Profile != nil
}

// ProfileDetails is the account data the remote service may return for an
// identifier it already knows.
type ProfileDetails struct {
	UserID      string `json:"user_id,omitempty"`
	Username    string `json:"username,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// AuthenticatedUser is the product of a completed flow.
type AuthenticatedUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AccessToken string `json:"access_token,omitempty"`
}

// Public returns a copy without the remote access token, for responses sent
// to the browser.
func (u AuthenticatedUser) Public() AuthenticatedUser {
	u.AccessToken = ""
	return u
}

// Registrant is the profile submitted on the register tab.
type Registrant struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// LoginMethod is the sign-in option picked in MethodChoice.
type LoginMethod string

const (
	MethodPassword    LoginMethod = "password"
	MethodOneTimeCode LoginMethod = "code"
)

func profileFromRemote(p *webservice.ProfileDetails) *ProfileDetails {
	if p == nil {
		return nil
	}
	return &ProfileDetails{
		UserID:      p.UserID.String(),
		Username:    p.Username,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Phone:       p.Phone,
		AccessToken: p.AccessToken,
	}
}

func (p *ProfileDetails) accessToken() string {
	if p == nil {
		return ""
	}
	return p.AccessToken
}

func (p *ProfileDetails) email() string {
	if p == nil {
		return ""
	}
	return p.Email
}

func (p *ProfileDetails) phone() string {
	if p == nil {
		return ""
	}
	return p.Phone
}

// userFromProfile materializes the signed-in user. Fields missing from the
// primary profile are filled from the fallbacks in order.
func userFromProfile(primary *ProfileDetails, fallbacks ...*ProfileDetails) (AuthenticatedUser, error) {
	var u AuthenticatedUser
	for _, p := range append([]*ProfileDetails{primary}, fallbacks...) {
		if p == nil {
			continue
		}
		u.ID = firstNonEmpty(u.ID, p.UserID)
		u.Username = firstNonEmpty(u.Username, p.Username)
		u.FirstName = firstNonEmpty(u.FirstName, p.FirstName)
		u.LastName = firstNonEmpty(u.LastName, p.LastName)
		u.Email = firstNonEmpty(u.Email, p.Email)
		u.Phone = firstNonEmpty(u.Phone, p.Phone)
		u.AccessToken = firstNonEmpty(u.AccessToken, p.AccessToken)
	}
	if u.ID == "" {
		return AuthenticatedUser{}, ErrMissingUserID
	}
	if u.Username == "" {
		u.Username = firstNonEmpty(u.Email, u.Phone)
	}
	return u, nil
}

func (r Registrant) asProfile() *ProfileDetails {
	return &ProfileDetails{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Phone: r.Phone}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
