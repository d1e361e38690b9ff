package catalog

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// PriceCents is the price of the chair. Checkout refuses any other amount.
const PriceCents int64 = 99900

// Currency of PriceCents.
const Currency = "usd"

// Feature is one selling point on the product page.
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Product describes the single item sold by the store.
type Product struct {
	Name       string    `json:"name"`
	Tagline    string    `json:"tagline"`
	Summary    string    `json:"summary"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
	Image      string    `json:"image"`
	Features   []Feature `json:"features"`
}

// WarrantySection groups what one part of the warranty covers.
type WarrantySection struct {
	Title    string   `json:"title"`
	Coverage []string `json:"coverage"`
}

// Warranty is the product warranty.
type Warranty struct {
	Years    int               `json:"years"`
	Sections []WarrantySection `json:"sections"`
}

// Chair returns the product record.
func Chair() Product {
	return Product{
		Name:       "The Back Chair",
		Tagline:    "The Future of Comfort",
		Summary:    "A motorized office chair with advanced adjustment technology and premium materials.",
		PriceCents: PriceCents,
		Currency:   Currency,
		Image:      "/ChairFront.png",
		Features: []Feature{
			{Title: "Motorized Adjustment", Description: "Perfect positioning at the touch of a button"},
			{Title: "Memory Foam", Description: "Superior comfort that adapts to you"},
			{Title: "5-Year Warranty", Description: "Comprehensive coverage for peace of mind"},
		},
	}
}

// ChairWarranty returns the warranty terms.
func ChairWarranty() Warranty {
	return Warranty{
		Years: 5,
		Sections: []WarrantySection{
			{Title: "Motor System", Coverage: []string{"Full coverage for motor malfunction", "Free replacement parts", "Professional repair service"}},
			{Title: "Frame & Structure", Coverage: []string{"Lifetime structural integrity", "Weight capacity guarantee", "Anti-tip protection"}},
			{Title: "Upholstery", Coverage: []string{"Fabric quality assurance", "Wear and tear coverage", "Professional cleaning service"}},
		},
	}
}

// Handler serves the catalog endpoints.
type Handler struct{}

// NewHandler constructs a catalog handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Product responds with the product record.
func (h *Handler) Product(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(Chair())
}

// Warranty responds with the warranty terms.
func (h *Handler) Warranty(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(ChairWarranty())
}
