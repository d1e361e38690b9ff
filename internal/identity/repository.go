package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCustomerNotFound is returned when no customer matches a lookup.
var ErrCustomerNotFound = errors.New("customer not found")

// Repository persists customers.
type Repository interface {
	Upsert(ctx context.Context, customer Customer) (Customer, error)
	FindByID(ctx context.Context, id string) (Customer, error)
	FindByEmail(ctx context.Context, email string) (Customer, error)
	FindByPhone(ctx context.Context, phone string) (Customer, error)
	UpdatePasswordHash(ctx context.Context, id string, hash []byte, at time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed customer repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const customerColumns = `id, username, first_name, last_name, email, phone, password_hash, created_at, updated_at`

// Upsert inserts the customer or refreshes its profile fields. The stored
// password hash and creation time are never overwritten here.
func (r *PostgresRepository) Upsert(ctx context.Context, c Customer) (Customer, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO customers (id, username, first_name, last_name, email, email_key, phone, phone_key, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
        ON CONFLICT (id) DO UPDATE SET
            username = EXCLUDED.username,
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            email = EXCLUDED.email,
            email_key = EXCLUDED.email_key,
            phone = EXCLUDED.phone,
            phone_key = EXCLUDED.phone_key,
            updated_at = EXCLUDED.updated_at
        RETURNING `+customerColumns,
		c.ID, c.Username, c.FirstName, c.LastName, c.Email, emailKey(c.Email), c.Phone, phoneKey(c.Phone), c.UpdatedAt.UTC())
	return scanCustomer(row)
}

// FindByID fetches a customer by remote user id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

// FindByEmail fetches a customer by case-insensitive email. When several share
// it, the most recently updated wins.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE email_key = $1 ORDER BY updated_at DESC, id DESC LIMIT 1`, emailKey(email)))
}

// FindByPhone fetches a customer by phone, ignoring spaces and dashes. When
// several share it, the most recently updated wins.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone_key = $1 ORDER BY updated_at DESC, id DESC LIMIT 1`, phoneKey(phone)))
}

// UpdatePasswordHash stores a new bcrypt hash.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id string, hash []byte, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE customers SET password_hash = $1, updated_at = $2 WHERE id = $3`, hash, at.UTC(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	if err := row.Scan(&c.ID, &c.Username, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrCustomerNotFound
		}
		return Customer{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}
