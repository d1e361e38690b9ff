package verification

import (
	"regexp"
	"strings"
)

// IdentifierType says how an identifier was classified.
type IdentifierType string

const (
	Email IdentifierType = "email"
	Phone IdentifierType = "phone"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
)

// Identifier is a classified, user-supplied email address or phone number.
type Identifier struct {
	Value string         `json:"value"`
	Type  IdentifierType `json:"type"`
}

// Classify decides whether s is an email address or a phone number. It never
// touches the network. Input matching neither shape yields ErrInvalidIdentifier.
func Classify(s string) (Identifier, error) {
	v := strings.TrimSpace(s)
	switch {
	case emailPattern.MatchString(v):
		return Identifier{Value: v, Type: Email}, nil
	case phonePattern.MatchString(v):
		return Identifier{Value: v, Type: Phone}, nil
	default:
		return Identifier{}, ErrInvalidIdentifier
	}
}
