package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/backchair/storefront/internal/auth"
)

// Session resolves the session token of the request, if any, and attaches the
// session for later handlers. Anonymous requests continue untouched.
func Session(svc *auth.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.TokenFromRequest(c)
		if token == "" {
			return c.Next()
		}
		s, err := svc.Resolve(c.UserContext(), token)
		switch {
		case err == nil:
			auth.SetSession(c, s)
		case errors.Is(err, auth.ErrInvalidToken):
		default:
			logger.Error("resolve session", slog.Any("error", err))
		}
		return c.Next()
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := auth.CurrentUser(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, "not authenticated")
		}
		return c.Next()
	}
}
