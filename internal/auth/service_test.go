package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/backchair/storefront/internal/verification"
)

var testUser = verification.AuthenticatedUser{ID: "42", Username: "ann", Email: "ann@b.com"}

func exerciseService(t *testing.T, store SessionStore) {
	t.Helper()
	svc := NewService(store, "test-secret", time.Hour, nil)
	ctx := context.Background()

	token, err := svc.Issue(ctx, testUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	session, err := svc.Resolve(ctx, token.Value)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if session.User != testUser {
		t.Fatalf("unexpected session user %+v", session.User)
	}
	if err := svc.Revoke(ctx, token.Value); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Resolve(ctx, token.Value); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected revoked token to be invalid, got %v", err)
	}
}

func TestServiceWithMemoryStore(t *testing.T) {
	exerciseService(t, NewMemorySessionStore())
}

func TestServiceWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseService(t, NewRedisSessionStore(client))
}

func TestResolveRejectsForeignAndExpiredTokens(t *testing.T) {
	store := NewMemorySessionStore()
	svc := NewService(store, "test-secret", time.Hour, nil)
	other := NewService(store, "other-secret", time.Hour, nil)
	ctx := context.Background()

	token, err := other.Issue(ctx, testUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Resolve(ctx, token.Value); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected signature failure, got %v", err)
	}

	if _, err := svc.Resolve(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected malformed token failure, got %v", err)
	}

	token, err = svc.Issue(ctx, testUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Resolve(ctx, token.Value); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token failure, got %v", err)
	}
}

func TestResolveRejectsNoneAlgorithm(t *testing.T) {
	svc := NewService(NewMemorySessionStore(), "test-secret", time.Hour, nil)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID:        "sid",
		Subject:   "42",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected none algorithm to be refused, got %v", err)
	}
}

func TestIssueRequiresUserID(t *testing.T) {
	svc := NewService(NewMemorySessionStore(), "test-secret", time.Hour, nil)
	if _, err := svc.Issue(context.Background(), verification.AuthenticatedUser{}); err == nil {
		t.Fatalf("expected error for user without id")
	}
}
