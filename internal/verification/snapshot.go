package verification

import "fmt"

// Snapshot is the serializable form of a Flow, stored between HTTP requests.
type Snapshot struct {
	Step       StepKind           `json:"step"`
	Identifier *Identifier        `json:"identifier,omitempty"`
	Profile    *ProfileDetails    `json:"profile,omitempty"`
	Registrant *Registrant        `json:"registrant,omitempty"`
	User       *AuthenticatedUser `json:"user,omitempty"`
}

// Snapshot captures the active step.
func (f *Flow) Snapshot() Snapshot {
	switch s := f.step.(type) {
	case MethodChoice:
		return Snapshot{Step: s.Kind(), Identifier: &s.Identifier, Profile: s.Profile}
	case PasswordEntry:
		return Snapshot{Step: s.Kind(), Identifier: &s.Identifier, Profile: s.Profile}
	case OtpEntry:
		return Snapshot{Step: s.Kind(), Identifier: &s.Identifier, Profile: s.Profile}
	case RegisterOtp:
		return Snapshot{Step: s.Kind(), Registrant: &s.Registrant, Profile: s.Account}
	case PasswordCreation:
		return Snapshot{Step: s.Kind(), Registrant: &s.Registrant, Profile: s.Account}
	case Done:
		return Snapshot{Step: s.Kind(), User: &s.User}
	default:
		return Snapshot{Step: f.step.Kind()}
	}
}

// Restore rebuilds a Flow from a snapshot without firing OnStep.
func Restore(svc *Services, snap Snapshot) (*Flow, error) {
	step, err := snap.step()
	if err != nil {
		return nil, err
	}
	return &Flow{svc: svc, step: step}, nil
}

func (s Snapshot) step() (Step, error) {
	needIdentifier := func() error {
		if s.Identifier == nil {
			return fmt.Errorf("snapshot %s: missing identifier", s.Step)
		}
		return nil
	}
	needRegistrant := func() error {
		if s.Registrant == nil {
			return fmt.Errorf("snapshot %s: missing registrant", s.Step)
		}
		return nil
	}

	switch s.Step {
	case KindInitial, "":
		return Initial{}, nil
	case KindRegistering:
		return Registering{}, nil
	case KindMethodChoice:
		if err := needIdentifier(); err != nil {
			return nil, err
		}
		return MethodChoice{Identifier: *s.Identifier, Profile: s.Profile}, nil
	case KindPasswordEntry:
		if err := needIdentifier(); err != nil {
			return nil, err
		}
		return PasswordEntry{Identifier: *s.Identifier, Profile: s.Profile}, nil
	case KindOtpEntry:
		if err := needIdentifier(); err != nil {
			return nil, err
		}
		return OtpEntry{Identifier: *s.Identifier, Profile: s.Profile}, nil
	case KindRegisterOtp:
		if err := needRegistrant(); err != nil {
			return nil, err
		}
		return RegisterOtp{Registrant: *s.Registrant, Account: s.Profile}, nil
	case KindPasswordCreation:
		if err := needRegistrant(); err != nil {
			return nil, err
		}
		return PasswordCreation{Registrant: *s.Registrant, Account: s.Profile}, nil
	case KindDone:
		if s.User == nil {
			return nil, fmt.Errorf("snapshot %s: missing user", s.Step)
		}
		return Done{User: *s.User}, nil
	default:
		return nil, fmt.Errorf("snapshot: unknown step %q", s.Step)
	}
}
