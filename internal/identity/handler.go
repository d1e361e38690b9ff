package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the signed-in customer's stored profile.
type Handler struct {
	service *Service
	current func(*fiber.Ctx) (string, bool)
}

// NewHandler constructs an identity HTTP handler. current resolves the customer id
// of the request, normally from the session set by middleware.
func NewHandler(service *Service, current func(*fiber.Ctx) (string, bool)) *Handler {
	return &Handler{service: service, current: current}
}

type accountResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Account returns the local customer record.
func (h *Handler) Account(c *fiber.Ctx) error {
	id, ok := h.current(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	customer, err := h.service.Get(c.UserContext(), id)
	if errors.Is(err, ErrCustomerNotFound) {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(accountResponse{
		ID:          customer.ID,
		Username:    customer.Username,
		FirstName:   customer.FirstName,
		LastName:    customer.LastName,
		Email:       customer.Email,
		Phone:       customer.Phone,
		HasPassword: customer.HasPassword(),
		CreatedAt:   customer.CreatedAt,
		UpdatedAt:   customer.UpdatedAt,
	})
}
