package checkout

import (
	"errors"
	"strings"
	"time"
)

// Order statuses.
const (
	StatusPaid     = "paid"
	StatusDeclined = "declined"
)

var (
	ErrAmountMismatch  = errors.New("amount does not match the product price")
	ErrEmailRequired   = errors.New("email is required")
	ErrPaymentDeclined = errors.New("payment was declined")
)

// ShippingError names a missing shipping field.
type ShippingError struct {
	Field string
}

func (e *ShippingError) Error() string {
	return "shipping " + e.Field + " is required"
}

// Shipping is the delivery address.
type Shipping struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (s *Shipping) validate() error {
	s.Line1 = strings.TrimSpace(s.Line1)
	s.Line2 = strings.TrimSpace(s.Line2)
	s.City = strings.TrimSpace(s.City)
	s.State = strings.TrimSpace(s.State)
	s.PostalCode = strings.TrimSpace(s.PostalCode)
	s.Country = strings.TrimSpace(s.Country)

	for _, f := range []struct{ name, value string }{
		{"line1", s.Line1},
		{"city", s.City},
		{"state", s.State},
		{"postal_code", s.PostalCode},
		{"country", s.Country},
	} {
		if f.value == "" {
			return &ShippingError{Field: f.name}
		}
	}
	return nil
}

// Order is a placed purchase of the chair.
type Order struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Email            string    `json:"email"`
	AmountCents      int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Shipping         Shipping  `json:"shipping"`
	Status           string    `json:"status"`
	PaymentReference string    `json:"payment_reference"`
	CreatedAt        time.Time `json:"created_at"`
}

// IsValidation reports whether err is caused by the request payload.
func IsValidation(err error) bool {
	var se *ShippingError
	return errors.As(err, &se) || errors.Is(err, ErrAmountMismatch) || errors.Is(err, ErrEmailRequired)
}
