package identity

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu        sync.RWMutex
	customers map[string]Customer
}

// NewMemoryRepository builds an in-memory customer store for dev and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{customers: make(map[string]Customer)}
}

func (r *memoryRepository) Upsert(_ context.Context, c Customer) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.customers[c.ID]; ok {
		c.PasswordHash = existing.PasswordHash
		c.CreatedAt = existing.CreatedAt
	} else {
		c.PasswordHash = nil
		c.CreatedAt = c.UpdatedAt
	}
	r.customers[c.ID] = c
	return c, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, ErrCustomerNotFound
	}
	return c, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Customer, error) {
	key := emailKey(email)
	return r.find(func(c Customer) bool { return key != "" && emailKey(c.Email) == key })
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (Customer, error) {
	key := phoneKey(phone)
	return r.find(func(c Customer) bool { return key != "" && phoneKey(c.Phone) == key })
}

func (r *memoryRepository) UpdatePasswordHash(_ context.Context, id string, hash []byte, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return ErrCustomerNotFound
	}
	c.PasswordHash = hash
	c.UpdatedAt = at
	r.customers[id] = c
	return nil
}

// find returns the most recently updated match, ties broken by the larger ID,
// mirroring the ordering of the Postgres queries.
func (r *memoryRepository) find(match func(Customer) bool) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		best  Customer
		found bool
	)
	for _, c := range r.customers {
		if !match(c) {
			continue
		}
		if !found || newer(c, best) {
			best, found = c, true
		}
	}
	if !found {
		return Customer{}, ErrCustomerNotFound
	}
	return best, nil
}

func newer(a, b Customer) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}
