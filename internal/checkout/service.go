package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backchair/storefront/internal/catalog"
	"github.com/backchair/storefront/internal/metrics"
	"github.com/backchair/storefront/internal/notification"
)

// Service places orders: it checks the request, authorizes the payment and
// records the order.
type Service struct {
	repo     Repository
	gateway  PaymentGateway
	notifier notification.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a checkout service. A nil gateway means StaticGateway.
func NewService(repo Repository, gateway PaymentGateway, notifier notification.Notifier, m *metrics.Metrics, logger *slog.Logger) *Service {
	if gateway == nil {
		gateway = StaticGateway{}
	}
	return &Service{repo: repo, gateway: gateway, notifier: notifier, metrics: m, logger: logger, now: time.Now}
}

// PlaceInput is a checkout request on behalf of a signed-in user.
type PlaceInput struct {
	UserID      string
	Email       string
	AmountCents int64
	Shipping    Shipping
}

// Place charges the catalog price and stores a paid order.
func (s *Service) Place(ctx context.Context, in PlaceInput) (Order, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.AmountCents != catalog.PriceCents {
		return Order{}, ErrAmountMismatch
	}
	if in.Email == "" {
		return Order{}, ErrEmailRequired
	}
	if err := in.Shipping.validate(); err != nil {
		return Order{}, err
	}

	order := Order{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Email:       in.Email,
		AmountCents: in.AmountCents,
		Currency:    catalog.Currency,
		Shipping:    in.Shipping,
		CreatedAt:   s.now().UTC(),
	}

	decision, err := s.gateway.Authorize(ctx, Authorization{
		OrderID:     order.ID,
		AmountCents: order.AmountCents,
		Currency:    order.Currency,
		Email:       order.Email,
	})
	if err != nil {
		return Order{}, fmt.Errorf("authorize payment: %w", err)
	}
	if !decision.Approved {
		if s.logger != nil {
			s.logger.Warn("payment declined", slog.String("order_id", order.ID), slog.String("reason", decision.Reason))
		}
		return Order{}, ErrPaymentDeclined
	}

	order.Status = StatusPaid
	order.PaymentReference = decision.Reference
	if err := s.repo.Create(ctx, order); err != nil {
		return Order{}, fmt.Errorf("store order: %w", err)
	}
	s.metrics.IncOrders()

	if s.notifier != nil {
		msg := notification.Message{
			Kind:        notification.KindOrderPlaced,
			Destination: order.Email,
			Body:        fmt.Sprintf("Order %s confirmed: $%d.%02d paid.", order.ID, order.AmountCents/100, order.AmountCents%100),
		}
		if err := s.notifier.Send(ctx, msg); err != nil && s.logger != nil {
			s.logger.Warn("order notification failed", slog.String("order_id", order.ID), slog.Any("error", err))
		}
	}
	return order, nil
}

// Orders lists the orders of a user.
func (s *Service) Orders(ctx context.Context, userID string) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}
