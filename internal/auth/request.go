package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/backchair/storefront/internal/verification"
)

// CookieName is the HTTP-only cookie carrying the session token.
const CookieName = "session"

const sessionLocalsKey = "auth.session"

// TokenFromRequest returns the session token from the cookie or a bearer header.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(CookieName); token != "" {
		return token
	}
	authz := c.Get(fiber.HeaderAuthorization)
	if len(authz) > len("bearer ") && strings.EqualFold(authz[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}

// SetSession attaches a resolved session to the request.
func SetSession(c *fiber.Ctx, s Session) {
	c.Locals(sessionLocalsKey, s)
}

// CurrentUser returns the signed-in user of the request, if any.
func CurrentUser(c *fiber.Ctx) (verification.AuthenticatedUser, bool) {
	s, ok := c.Locals(sessionLocalsKey).(Session)
	if !ok {
		return verification.AuthenticatedUser{}, false
	}
	return s.User, true
}

// CurrentUserID is CurrentUser reduced to the user id.
func CurrentUserID(c *fiber.Ctx) (string, bool) {
	u, ok := CurrentUser(c)
	if !ok || u.ID == "" {
		return "", false
	}
	return u.ID, true
}

// WriteCookie sets the session cookie for token.
func WriteCookie(c *fiber.Ctx, token Token, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token.Value,
		Path:     "/",
		Expires:  token.ExpiresAt,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
