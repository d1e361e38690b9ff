package ticket

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/backchair/storefront/internal/auth"
)

// Handler exposes the ticket endpoints. Both require a session.
type Handler struct {
	service *Service
}

// NewHandler constructs a ticket handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// List returns the caller's tickets.
func (h *Handler) List(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	tickets, err := h.service.List(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(tickets)
}

// Create opens a ticket for the caller.
func (h *Handler) Create(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	t, err := h.service.Open(c.UserContext(), NewTicket{
		UserID:      user.ID,
		Type:        req.Type,
		Description: req.Description,
	}, user.Email)
	if IsValidation(err) {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(t)
}
