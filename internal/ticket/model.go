package ticket

import (
	"errors"
	"strings"
	"time"
)

// Ticket types offered by the support form.
const (
	TypeWarranty  = "warranty"
	TypeRepair    = "repair"
	TypeTechnical = "technical"
	TypeOther     = "other"
)

// StatusOpen is the status of every newly created ticket.
const StatusOpen = "open"

const minDescriptionLength = 10

var (
	ErrUserRequired        = errors.New("user is required")
	ErrInvalidType         = errors.New("type must be one of warranty, repair, technical, other")
	ErrDescriptionTooShort = errors.New("description must be at least 10 characters")
)

// Ticket is a customer support request.
type Ticket struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewTicket is the validated input for a ticket about to be stored.
type NewTicket struct {
	UserID      string
	Type        string
	Description string
}

func (n *NewTicket) validate() error {
	n.Type = strings.ToLower(strings.TrimSpace(n.Type))
	n.Description = strings.TrimSpace(n.Description)
	if n.UserID == "" {
		return ErrUserRequired
	}
	switch n.Type {
	case TypeWarranty, TypeRepair, TypeTechnical, TypeOther:
	default:
		return ErrInvalidType
	}
	if len([]rune(n.Description)) < minDescriptionLength {
		return ErrDescriptionTooShort
	}
	return nil
}

// IsValidation reports whether err is one of the input errors above.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUserRequired) || errors.Is(err, ErrInvalidType) || errors.Is(err, ErrDescriptionTooShort)
}
