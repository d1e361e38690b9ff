package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/backchair/storefront/internal/metrics"
	"github.com/backchair/storefront/internal/notification"
)

// Service opens and lists support tickets.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a ticket service. notifier and m may be nil.
func NewService(repo Repository, notifier notification.Notifier, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, metrics: m, logger: logger, now: time.Now}
}

// Open validates and stores a new ticket with status open. destination, when set,
// receives a confirmation.
func (s *Service) Open(ctx context.Context, in NewTicket, destination string) (Ticket, error) {
	if err := in.validate(); err != nil {
		return Ticket{}, err
	}
	t, err := s.repo.Create(ctx, Ticket{
		UserID:      in.UserID,
		Type:        in.Type,
		Description: in.Description,
		Status:      StatusOpen,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	s.metrics.IncTickets()

	if s.notifier != nil && destination != "" {
		msg := notification.Message{
			Kind:        notification.KindTicketOpened,
			Destination: destination,
			Body:        fmt.Sprintf("We received your %s request (ticket #%d).", t.Type, t.ID),
		}
		if err := s.notifier.Send(ctx, msg); err != nil && s.logger != nil {
			s.logger.Warn("ticket notification failed", slog.Int64("ticket_id", t.ID), slog.Any("error", err))
		}
	}
	return t, nil
}

// List returns the caller's tickets ordered by id.
func (s *Service) List(ctx context.Context, userID string) ([]Ticket, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.repo.ListByUser(ctx, userID)
}
