package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/backchair/storefront/internal/identity"
	"github.com/backchair/storefront/internal/verification"
)

// Handler exposes password login, logout and the current user.
type Handler struct {
	passwords    verification.PasswordAuthenticator
	svc          *Service
	logger       *slog.Logger
	secureCookie bool
}

// NewHandler wires the auth endpoints. secureCookie marks the session cookie Secure.
func NewHandler(passwords verification.PasswordAuthenticator, svc *Service, logger *slog.Logger, secureCookie bool) *Handler {
	return &Handler{passwords: passwords, svc: svc, logger: logger, secureCookie: secureCookie}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SessionResponse is returned whenever a session starts. User never carries the
// remote access token.
type SessionResponse struct {
	Token     string                         `json:"token"`
	ExpiresAt time.Time                      `json:"expires_at"`
	User      verification.AuthenticatedUser `json:"user"`
}

// Login checks an email or phone plus password against the customer directory.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	id, err := verification.Classify(req.Identifier)
	if err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	if req.Password == "" {
		return fiber.NewError(http.StatusUnprocessableEntity, verification.ErrPasswordRequired.Error())
	}

	user, err := h.passwords.Authenticate(c.UserContext(), id, req.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	if err != nil {
		h.logger.Error("password login failed", slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}
	token, err := h.StartSession(c, user)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(SessionResponse{Token: token.Value, ExpiresAt: token.ExpiresAt, User: user.Public()})
}

// StartSession writes user to the session cache and sets the session cookie. It
// is the single place a signed-in user enters the cache.
func (h *Handler) StartSession(c *fiber.Ctx, user verification.AuthenticatedUser) (Token, error) {
	token, err := h.svc.Issue(c.UserContext(), user)
	if err != nil {
		h.logger.Error("issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return Token{}, fiber.NewError(http.StatusInternalServerError, "could not start session")
	}
	WriteCookie(c, token, h.secureCookie)
	return token, nil
}

// Logout revokes the current session. It succeeds even without one.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if token := TokenFromRequest(c); token != "" {
		if err := h.svc.Revoke(c.UserContext(), token); err != nil && !errors.Is(err, ErrInvalidToken) {
			h.logger.Warn("revoke session", slog.Any("error", err))
		}
	}
	ClearCookie(c, h.secureCookie)
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

// Me returns the signed-in user.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	return c.Status(http.StatusOK).JSON(user.Public())
}
