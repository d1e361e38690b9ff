package verification

import (
	"context"
	"strings"
)

const minCodeLength = 4

// Services bundles the three independent operations a Flow sequences.
type Services struct {
	Validator    *Validator
	Login        *Login
	Registration *Registration

	// AllowAnonymousSkip enables SkipAndLogin during password creation.
	AllowAnonymousSkip bool
	// OnStep, when set, is called every time the flow enters a step.
	OnStep func(StepKind)
}

// NewServices wires the default services around a single remote client.
func NewServices(remote Remote, passwords PasswordAuthenticator) *Services {
	return &Services{
		Validator:    NewValidator(remote),
		Login:        NewLogin(remote, passwords),
		Registration: NewRegistration(remote),
	}
}

// Flow is the identity verification controller for one visitor. It holds the
// current step and moves between steps only on local input checks and remote
// responses. A Flow is not safe for concurrent use.
type Flow struct {
	svc  *Services
	step Step
}

// NewFlow starts a flow in the Initial step.
func NewFlow(svc *Services) *Flow {
	return &Flow{svc: svc, step: Initial{}}
}

// Step returns the active step.
func (f *Flow) Step() Step {
	return f.step
}

func (f *Flow) enter(s Step) {
	f.step = s
	if f.svc.OnStep != nil {
		f.svc.OnStep(s.Kind())
	}
}

// Reset discards identifier, profile and method and returns to Initial.
func (f *Flow) Reset() {
	f.enter(Initial{})
}

// ValidateIdentifier classifies raw and asks the service about it. Both a known
// and an unknown identifier lead to MethodChoice; failures leave the step as is.
func (f *Flow) ValidateIdentifier(ctx context.Context, raw string) error {
	if _, ok := f.step.(Initial); !ok {
		return f.stepError("validate identifier")
	}
	id, err := Classify(raw)
	if err != nil {
		return err
	}
	profile, err := f.svc.Validator.Validate(ctx, id)
	if err != nil {
		return err
	}
	f.enter(MethodChoice{Identifier: id, Profile: profile})
	return nil
}

// ChooseLoginMethod picks password or one-time code. Choosing a code sends it
// and moves to OtpEntry only once the service accepted the request.
func (f *Flow) ChooseLoginMethod(ctx context.Context, method LoginMethod) error {
	s, ok := f.step.(MethodChoice)
	if !ok {
		return f.stepError("choose login method")
	}
	switch method {
	case MethodPassword:
		f.enter(PasswordEntry{Identifier: s.Identifier, Profile: s.Profile})
		return nil
	case MethodOneTimeCode:
		if err := f.svc.Login.SendCode(ctx, s.Identifier, s.Profile); err != nil {
			return err
		}
		f.enter(OtpEntry{Identifier: s.Identifier, Profile: s.Profile})
		return nil
	default:
		return ErrUnknownMethod
	}
}

// RequestOneTimeCode sends (or resends) a code. Allowed from MethodChoice and OtpEntry.
func (f *Flow) RequestOneTimeCode(ctx context.Context) error {
	var (
		id      Identifier
		profile *ProfileDetails
	)
	switch s := f.step.(type) {
	case MethodChoice:
		id, profile = s.Identifier, s.Profile
	case OtpEntry:
		id, profile = s.Identifier, s.Profile
	default:
		return f.stepError("request one-time code")
	}
	if err := f.svc.Login.SendCode(ctx, id, profile); err != nil {
		return err
	}
	if _, ok := f.step.(MethodChoice); ok {
		f.enter(OtpEntry{Identifier: id, Profile: profile})
	}
	return nil
}

// ChangeMethod goes back from PasswordEntry or OtpEntry to MethodChoice.
func (f *Flow) ChangeMethod() error {
	switch s := f.step.(type) {
	case PasswordEntry:
		f.enter(MethodChoice{Identifier: s.Identifier, Profile: s.Profile})
	case OtpEntry:
		f.enter(MethodChoice{Identifier: s.Identifier, Profile: s.Profile})
	default:
		return f.stepError("change login method")
	}
	return nil
}

// SubmitPassword signs in with the account password.
func (f *Flow) SubmitPassword(ctx context.Context, password string) (AuthenticatedUser, error) {
	s, ok := f.step.(PasswordEntry)
	if !ok {
		return AuthenticatedUser{}, f.stepError("submit password")
	}
	if password == "" {
		return AuthenticatedUser{}, ErrPasswordRequired
	}
	user, err := f.svc.Login.Password(ctx, s.Identifier, password)
	if err != nil {
		return AuthenticatedUser{}, err
	}
	f.enter(Done{User: user})
	return user, nil
}

// VerifyOneTimeCode submits the code. On success the flow is Done and the user is
// returned to the caller, who owns writing it to the session cache. A rejected
// code leaves the flow in OtpEntry so the visitor can retry or resend.
func (f *Flow) VerifyOneTimeCode(ctx context.Context, code string) (AuthenticatedUser, error) {
	s, ok := f.step.(OtpEntry)
	if !ok {
		return AuthenticatedUser{}, f.stepError("verify one-time code")
	}
	code, err := normalizeCode(code)
	if err != nil {
		return AuthenticatedUser{}, err
	}
	user, err := f.svc.Login.VerifyCode(ctx, s.Identifier, s.Profile, code)
	if err != nil {
		return AuthenticatedUser{}, err
	}
	f.enter(Done{User: user})
	return user, nil
}

// BeginRegistration switches the Initial step to the register tab.
func (f *Flow) BeginRegistration() error {
	switch f.step.(type) {
	case Initial, Registering:
		f.enter(Registering{})
		return nil
	default:
		return f.stepError("begin registration")
	}
}

// Register submits a new profile. A 602 answer moves to RegisterOtp, a plain 200
// skips straight to PasswordCreation, anything else leaves the step unchanged.
func (f *Flow) Register(ctx context.Context, firstName, lastName, email, phone string) error {
	switch s := f.step.(type) {
	case Initial, Registering:
	case MethodChoice:
		if s.KnownAccount() {
			return f.stepError("register")
		}
	default:
		return f.stepError("register")
	}

	reg := Registrant{FirstName: firstName, LastName: lastName, Email: email, Phone: phone}
	reg.normalize()
	otpRequired, account, err := f.svc.Registration.SignUp(ctx, reg)
	if err != nil {
		return err
	}
	if otpRequired {
		f.enter(RegisterOtp{Registrant: reg, Account: account})
	} else {
		f.enter(PasswordCreation{Registrant: reg, Account: account})
	}
	return nil
}

// ConfirmRegistrationOtp verifies the registration code. It does not sign in.
func (f *Flow) ConfirmRegistrationOtp(ctx context.Context, code string) error {
	s, ok := f.step.(RegisterOtp)
	if !ok {
		return f.stepError("confirm registration code")
	}
	code, err := normalizeCode(code)
	if err != nil {
		return err
	}
	account, err := f.svc.Registration.ConfirmCode(ctx, s.Registrant, s.Account, code)
	if err != nil {
		return err
	}
	f.enter(PasswordCreation{Registrant: s.Registrant, Account: account})
	return nil
}

// CreatePassword sets the password of the new account and completes the flow.
// Mismatched or short passwords fail locally without contacting the service.
func (f *Flow) CreatePassword(ctx context.Context, password, confirm string) (AuthenticatedUser, error) {
	s, ok := f.step.(PasswordCreation)
	if !ok {
		return AuthenticatedUser{}, f.stepError("create password")
	}
	if err := validateNewPassword(password, confirm); err != nil {
		return AuthenticatedUser{}, err
	}
	user, err := f.svc.Registration.AddPassword(ctx, s.Registrant, s.Account, password)
	if err != nil {
		return AuthenticatedUser{}, err
	}
	f.enter(Done{User: user})
	return user, nil
}

// SkipAndLogin completes registration with a placeholder account instead of a
// password. It is refused unless Services.AllowAnonymousSkip is set.
func (f *Flow) SkipAndLogin(ctx context.Context) (AuthenticatedUser, error) {
	s, ok := f.step.(PasswordCreation)
	if !ok {
		return AuthenticatedUser{}, f.stepError("skip password creation")
	}
	if !f.svc.AllowAnonymousSkip {
		return AuthenticatedUser{}, ErrSkipDisabled
	}
	user, err := f.svc.Registration.CreateAnonymous(ctx, s.Registrant, s.Account)
	if err != nil {
		return AuthenticatedUser{}, err
	}
	f.enter(Done{User: user})
	return user, nil
}

func (f *Flow) stepError(op string) error {
	return &StepError{Op: op, Step: f.step.Kind()}
}

func normalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) < minCodeLength {
		return "", ErrCodeRequired
	}
	return code, nil
}
