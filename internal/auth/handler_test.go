package auth

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/backchair/storefront/internal/identity"
	"github.com/backchair/storefront/internal/logging"
	"github.com/backchair/storefront/internal/verification"
)

type stubAuthenticator struct{}

func (stubAuthenticator) Authenticate(_ context.Context, id verification.Identifier, password string) (verification.AuthenticatedUser, error) {
	if id.Value == "ann@b.com" && password == "secret1" {
		return testUser, nil
	}
	return verification.AuthenticatedUser{}, identity.ErrInvalidCredentials
}

func setupAuthApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := NewService(NewMemorySessionStore(), "test-secret", time.Hour, nil)
	h := NewHandler(stubAuthenticator{}, svc, logging.Discard(), false)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if token := TokenFromRequest(c); token != "" {
			if s, err := svc.Resolve(c.UserContext(), token); err == nil {
				SetSession(c, s)
			}
		}
		return c.Next()
	})
	app.Post("/api/login", h.Login)
	app.Post("/api/logout", h.Logout)
	app.Get("/api/user", h.Me)
	return app
}

func TestLoginMeLogout(t *testing.T) {
	app := setupAuthApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/login", strings.NewReader(`{"identifier":"ann@b.com","password":"secret1"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Token == "" || body.User.ID != "42" {
		t.Fatalf("unexpected login body %+v", body)
	}
	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == CookieName {
			cookie = c.Value
		}
	}
	if cookie != body.Token {
		t.Fatalf("expected session cookie to carry the token")
	}

	me := httptest.NewRequest(fiber.MethodGet, "/api/user", nil)
	me.Header.Set(fiber.HeaderAuthorization, "Bearer "+body.Token)
	resp, err = app.Test(me)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 from /api/user, got %d", resp.StatusCode)
	}

	logout := httptest.NewRequest(fiber.MethodPost, "/api/logout", nil)
	logout.Header.Set(fiber.HeaderCookie, CookieName+"="+body.Token)
	resp, err = app.Test(logout)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", resp.StatusCode)
	}

	me = httptest.NewRequest(fiber.MethodGet, "/api/user", nil)
	me.Header.Set(fiber.HeaderAuthorization, "Bearer "+body.Token)
	resp, err = app.Test(me)
	if err != nil {
		t.Fatalf("me after logout: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestLoginFailures(t *testing.T) {
	app := setupAuthApp(t)
	cases := []struct {
		body string
		want int
	}{
		{body: `{"identifier":"hello","password":"x"}`, want: fiber.StatusUnprocessableEntity},
		{body: `{"identifier":"ann@b.com","password":""}`, want: fiber.StatusUnprocessableEntity},
		{body: `{"identifier":"ann@b.com","password":"wrong"}`, want: fiber.StatusUnauthorized},
		{body: `not json`, want: fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(fiber.MethodPost, "/api/login", strings.NewReader(tc.body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("login %s: %v", tc.body, err)
		}
		if resp.StatusCode != tc.want {
			t.Fatalf("login %s: expected %d, got %d", tc.body, tc.want, resp.StatusCode)
		}
	}
}
