package checkout

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists orders.
type Repository interface {
	Create(ctx context.Context, o Order) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}

type memoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

// NewMemoryRepository builds an in-memory order store.
func NewMemoryRepository() Repository {
	return &memoryRepository{orders: make(map[string]Order)}
}

func (r *memoryRepository) Create(_ context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// PostgresRepository implements Repository on the orders table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed order repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an order.
func (r *PostgresRepository) Create(ctx context.Context, o Order) error {
	id, err := uuid.Parse(o.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO orders (id, user_id, email, amount_cents, currency, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code, ship_country, status, payment_reference, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		id, o.UserID, o.Email, o.AmountCents, o.Currency,
		o.Shipping.Line1, o.Shipping.Line2, o.Shipping.City, o.Shipping.State, o.Shipping.PostalCode, o.Shipping.Country,
		o.Status, o.PaymentReference, o.CreatedAt.UTC())
	return err
}

// ListByUser returns a user's orders, oldest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, email, amount_cents, currency, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code, ship_country, status, payment_reference, created_at
        FROM orders WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		var (
			o         Order
			id        uuid.UUID
			createdAt time.Time
		)
		if err := rows.Scan(&id, &o.UserID, &o.Email, &o.AmountCents, &o.Currency,
			&o.Shipping.Line1, &o.Shipping.Line2, &o.Shipping.City, &o.Shipping.State, &o.Shipping.PostalCode, &o.Shipping.Country,
			&o.Status, &o.PaymentReference, &createdAt); err != nil {
			return nil, err
		}
		o.ID = id.String()
		o.CreatedAt = createdAt.UTC()
		out = append(out, o)
	}
	return out, rows.Err()
}
