package catalog

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestProductAndWarrantyEndpoints(t *testing.T) {
	h := NewHandler()
	app := fiber.New()
	app.Get("/api/product", h.Product)
	app.Get("/api/warranty", h.Warranty)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/product", nil))
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	var p Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if p.PriceCents != 99900 || len(p.Features) != 3 {
		t.Fatalf("unexpected product %+v", p)
	}

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/warranty", nil))
	if err != nil {
		t.Fatalf("warranty: %v", err)
	}
	var w Warranty
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		t.Fatalf("decode warranty: %v", err)
	}
	if w.Years != 5 || len(w.Sections) != 3 || w.Sections[1].Title != "Frame & Structure" {
		t.Fatalf("unexpected warranty %+v", w)
	}
}
