package checkout

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/backchair/storefront/internal/auth"
)

// Handler exposes checkout endpoints. Both require a session.
type Handler struct {
	service *Service
}

// NewHandler constructs a checkout handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PaymentRequest is the body of POST /api/create-payment.
type PaymentRequest struct {
	Amount   int64    `json:"amount"`
	Shipping Shipping `json:"shipping"`
	Email    string   `json:"email"`
}

// CreatePayment places an order for the signed-in user.
func (h *Handler) CreatePayment(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	email := req.Email
	if email == "" {
		email = user.Email
	}

	order, err := h.service.Place(c.UserContext(), PlaceInput{
		UserID:      user.ID,
		Email:       email,
		AmountCents: req.Amount,
		Shipping:    req.Shipping,
	})
	switch {
	case IsValidation(err):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPaymentDeclined):
		return fiber.NewError(http.StatusPaymentRequired, err.Error())
	case err != nil:
		return err
	}
	return c.Status(http.StatusCreated).JSON(order)
}

// Orders lists the signed-in user's orders.
func (h *Handler) Orders(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	orders, err := h.service.Orders(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(orders)
}
