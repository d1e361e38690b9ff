package identity

import (
	"strings"
	"time"
)

// Customer is the local record of an account that completed verification.
// ID is the user id assigned by the remote identity service.
type Customer struct {
	ID           string
	Username     string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether a local password was set for the customer.
func (c Customer) HasPassword() bool {
	return len(c.PasswordHash) > 0
}

// emailKey and phoneKey are the lookup forms used by every repository.
func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func phoneKey(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
