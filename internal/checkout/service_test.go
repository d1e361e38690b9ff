package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/backchair/storefront/internal/catalog"
	"github.com/backchair/storefront/internal/logging"
	"github.com/backchair/storefront/internal/notification"
)

type decliningGateway struct{}

func (decliningGateway) Authorize(context.Context, Authorization) (Decision, error) {
	return Decision{Approved: false, Reason: "insufficient funds"}, nil
}

func validShipping() Shipping {
	return Shipping{Line1: "1 Main St", City: "Austin", State: "TX", PostalCode: "73301", Country: "US"}
}

func TestPlaceStoresPaidOrder(t *testing.T) {
	rec := &notification.Recorder{}
	repo := NewMemoryRepository()
	svc := NewService(repo, nil, rec, nil, logging.Discard())
	ctx := context.Background()

	order, err := svc.Place(ctx, PlaceInput{UserID: "7", Email: " a@b.com ", AmountCents: catalog.PriceCents, Shipping: validShipping()})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if order.Status != StatusPaid || order.PaymentReference == "" || order.Email != "a@b.com" {
		t.Fatalf("unexpected order %+v", order)
	}

	orders, err := svc.Orders(ctx, "7")
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Fatalf("expected stored order, got %+v", orders)
	}
	msgs := rec.Messages()
	if len(msgs) != 1 || msgs[0].Kind != notification.KindOrderPlaced || msgs[0].Destination != "a@b.com" {
		t.Fatalf("unexpected notifications %+v", msgs)
	}
}

func TestPlaceValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.Place(ctx, PlaceInput{UserID: "7", Email: "a@b.com", AmountCents: 100, Shipping: validShipping()}); !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected amount mismatch, got %v", err)
	}
	if _, err := svc.Place(ctx, PlaceInput{UserID: "7", AmountCents: catalog.PriceCents, Shipping: validShipping()}); !errors.Is(err, ErrEmailRequired) {
		t.Fatalf("expected email required, got %v", err)
	}

	noCity := validShipping()
	noCity.City = " "
	_, err := svc.Place(ctx, PlaceInput{UserID: "7", Email: "a@b.com", AmountCents: catalog.PriceCents, Shipping: noCity})
	var se *ShippingError
	if !errors.As(err, &se) || se.Field != "city" {
		t.Fatalf("expected missing city, got %v", err)
	}
	if !IsValidation(err) {
		t.Fatalf("expected validation error")
	}

	noLine2 := validShipping()
	noLine2.Line2 = ""
	if _, err := svc.Place(ctx, PlaceInput{UserID: "7", Email: "a@b.com", AmountCents: catalog.PriceCents, Shipping: noLine2}); err != nil {
		t.Fatalf("line2 is optional: %v", err)
	}
}

func TestPlaceDeclined(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, decliningGateway{}, nil, nil, logging.Discard())
	ctx := context.Background()

	if _, err := svc.Place(ctx, PlaceInput{UserID: "7", Email: "a@b.com", AmountCents: catalog.PriceCents, Shipping: validShipping()}); !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("expected declined, got %v", err)
	}
	orders, _ := svc.Orders(ctx, "7")
	if len(orders) != 0 {
		t.Fatalf("declined payment must not store an order")
	}
}
