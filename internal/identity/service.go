package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/backchair/storefront/internal/verification"
)

// ErrInvalidCredentials hides whether the identifier or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email, phone or password")

// Service manages the local customer directory.
type Service struct {
	repo Repository
	cost int
	now  func() time.Time
}

// NewService creates a new identity service. A cost outside bcrypt's range falls
// back to bcrypt.DefaultCost.
func NewService(repo Repository, cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, cost: cost, now: time.Now}
}

// Remember records the profile of a user who just completed verification.
func (s *Service) Remember(ctx context.Context, user verification.AuthenticatedUser) (Customer, error) {
	if user.ID == "" {
		return Customer{}, errors.New("customer id is required")
	}
	c, err := s.repo.Upsert(ctx, Customer{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return Customer{}, fmt.Errorf("remember customer: %w", err)
	}
	return c, nil
}

// SetPassword hashes and stores a password for an existing customer.
func (s *Service) SetPassword(ctx context.Context, customerID, password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePasswordHash(ctx, customerID, hash, s.now().UTC())
}

// Get returns a customer by id.
func (s *Service) Get(ctx context.Context, customerID string) (Customer, error) {
	return s.repo.FindByID(ctx, customerID)
}

// Authenticate verifies a password for an email or phone identifier. It satisfies
// verification.PasswordAuthenticator.
func (s *Service) Authenticate(ctx context.Context, id verification.Identifier, password string) (verification.AuthenticatedUser, error) {
	var (
		c   Customer
		err error
	)
	if id.Type == verification.Phone {
		c, err = s.repo.FindByPhone(ctx, id.Value)
	} else {
		c, err = s.repo.FindByEmail(ctx, id.Value)
	}
	if errors.Is(err, ErrCustomerNotFound) {
		return verification.AuthenticatedUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return verification.AuthenticatedUser{}, fmt.Errorf("lookup customer: %w", err)
	}
	if !c.HasPassword() {
		return verification.AuthenticatedUser{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password)); err != nil {
		return verification.AuthenticatedUser{}, ErrInvalidCredentials
	}
	return c.User(), nil
}

// User converts the customer into the signed-in user shape.
func (c Customer) User() verification.AuthenticatedUser {
	return verification.AuthenticatedUser{
		ID:        c.ID,
		Username:  c.Username,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
	}
}
