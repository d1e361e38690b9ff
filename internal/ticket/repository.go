package ticket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists tickets. Create assigns the id.
type Repository interface {
	Create(ctx context.Context, t Ticket) (Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]Ticket, error)
}

type memoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	tickets map[int64]Ticket
}

// NewMemoryRepository stores tickets in a map keyed by an auto-increment id.
func NewMemoryRepository() Repository {
	return &memoryRepository{nextID: 1, tickets: make(map[int64]Ticket)}
}

func (r *memoryRepository) Create(_ context.Context, t Ticket) (Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	r.tickets[t.ID] = t
	return t, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Ticket, 0)
	for _, t := range r.tickets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PostgresRepository implements Repository on the support_tickets table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed ticket repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the ticket and returns it with its serial id.
func (r *PostgresRepository) Create(ctx context.Context, t Ticket) (Ticket, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO support_tickets (user_id, type, description, status, created_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`, t.UserID, t.Type, t.Description, t.Status, t.CreatedAt.UTC())
	if err := row.Scan(&t.ID); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// ListByUser returns a user's tickets ordered by id.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, type, description, status, created_at
        FROM support_tickets WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Ticket, 0)
	for rows.Next() {
		var (
			t         Ticket
			createdAt time.Time
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Description, &t.Status, &createdAt); err != nil {
			return nil, err
		}
		t.CreatedAt = createdAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}
