package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/backchair/storefront/internal/metrics"
	"github.com/backchair/storefront/internal/verification"
)

const issuer = "backchair-storefront"

// ErrInvalidToken covers malformed, forged, expired and revoked tokens alike.
var ErrInvalidToken = errors.New("invalid session token")

// Service issues and resolves session tokens. The token only names a session;
// the user record lives in the SessionStore so logout takes effect immediately.
type Service struct {
	store   SessionStore
	secret  []byte
	ttl     time.Duration
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService builds a session service.
func NewService(store SessionStore, secret string, ttl time.Duration, m *metrics.Metrics) *Service {
	return &Service{store: store, secret: []byte(secret), ttl: ttl, metrics: m, now: time.Now}
}

// Token is a signed session token and its expiry.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type claims struct {
	jwt.RegisteredClaims
}

// Issue writes user to the session cache and returns a token naming the new session.
func (s *Service) Issue(ctx context.Context, user verification.AuthenticatedUser) (Token, error) {
	if user.ID == "" {
		return Token{}, errors.New("user id is required")
	}
	now := s.now().UTC().Truncate(time.Second)
	session := Session{
		ID:        uuid.NewString(),
		User:      user,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign session token: %w", err)
	}
	if err := s.store.Put(ctx, session); err != nil {
		return Token{}, fmt.Errorf("store session: %w", err)
	}
	s.metrics.IncSessions()
	return Token{Value: signed, ExpiresAt: session.ExpiresAt}, nil
}

// Resolve verifies token and loads the session it names.
func (s *Service) Resolve(ctx context.Context, token string) (Session, error) {
	c, err := s.parse(token)
	if err != nil {
		return Session{}, err
	}
	session, err := s.store.Get(ctx, c.ID)
	if errors.Is(err, ErrSessionNotFound) {
		return Session{}, ErrInvalidToken
	}
	if err != nil {
		return Session{}, err
	}
	if session.User.ID != c.Subject {
		return Session{}, ErrInvalidToken
	}
	return session, nil
}

// Revoke deletes the session named by token. Unknown sessions are not an error.
func (s *Service) Revoke(ctx context.Context, token string) error {
	c, err := s.parse(token)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, c.ID)
}

func (s *Service) parse(token string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || c.ID == "" {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
