package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/backchair/storefront/internal/auth"
    "github.com/backchair/storefront/internal/catalog"
    "github.com/backchair/storefront/internal/checkout"
    "github.com/backchair/storefront/internal/ticket"
)

// RegisterAuthRoutes wires session endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
    if rateLimiter != nil {
        r.Post("/login", rateLimiter, h.Login)
    } else {
        r.Post("/login", h.Login)
    }
    r.Post("/logout", h.Logout)
    r.Get("/user", h.Me)
}

// RegisterCatalogRoutes wires the public product pages.
func RegisterCatalogRoutes(r fiber.Router, h *catalog.Handler) {
    r.Get("/product", h.Product)
    r.Get("/warranty", h.Warranty)
}

// RegisterTicketRoutes wires support tickets. r must require a session.
func RegisterTicketRoutes(r fiber.Router, h *ticket.Handler) {
    r.Get("/tickets", h.List)
    r.Post("/tickets", h.Create)
}

// RegisterCheckoutRoutes wires payments and order history. r must require a session.
func RegisterCheckoutRoutes(r fiber.Router, h *checkout.Handler) {
    r.Post("/create-payment", h.CreatePayment)
    r.Get("/orders", h.Orders)
}
