package identity

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/backchair/storefront/internal/verification"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), bcrypt.MinCost)
}

func TestRememberSetPasswordAndAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user := verification.AuthenticatedUser{ID: "42", Username: "ann", FirstName: "Ann", Email: "Ann@Example.com", Phone: "+1 555-123-4567"}
	if _, err := svc.Remember(ctx, user); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := svc.SetPassword(ctx, "42", "secret1"); err != nil {
		t.Fatalf("set password: %v", err)
	}

	got, err := svc.Authenticate(ctx, verification.Identifier{Value: "ann@example.com", Type: verification.Email}, "secret1")
	if err != nil {
		t.Fatalf("authenticate by email: %v", err)
	}
	if got.ID != "42" || got.FirstName != "Ann" {
		t.Fatalf("unexpected user %+v", got)
	}

	if _, err := svc.Authenticate(ctx, verification.Identifier{Value: "+15551234567", Type: verification.Phone}, "secret1"); err != nil {
		t.Fatalf("authenticate by phone: %v", err)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	email := verification.Identifier{Value: "a@b.com", Type: verification.Email}

	if _, err := svc.Authenticate(ctx, email, "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown customer: expected invalid credentials, got %v", err)
	}

	if _, err := svc.Remember(ctx, verification.AuthenticatedUser{ID: "1", Email: "a@b.com"}); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if _, err := svc.Authenticate(ctx, email, "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("no password: expected invalid credentials, got %v", err)
	}

	if err := svc.SetPassword(ctx, "1", "secret1"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, email, "wrong-one"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected invalid credentials, got %v", err)
	}
}

func TestRememberKeepsPasswordAndCreatedAt(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Remember(ctx, verification.AuthenticatedUser{ID: "7", Email: "old@b.com"})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := svc.SetPassword(ctx, "7", "secret1"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	second, err := svc.Remember(ctx, verification.AuthenticatedUser{ID: "7", Email: "new@b.com"})
	if err != nil {
		t.Fatalf("remember again: %v", err)
	}
	if !second.HasPassword() || !second.CreatedAt.Equal(first.CreatedAt) || second.Email != "new@b.com" {
		t.Fatalf("unexpected upsert result %+v", second)
	}
}

func TestSetPasswordUnknownCustomer(t *testing.T) {
	svc := newTestService()
	if err := svc.SetPassword(context.Background(), "nope", "secret1"); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
