package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrFlowNotFound is returned for unknown or expired flow ids.
var ErrFlowNotFound = errors.New("verification flow not found")

// Store persists flow snapshots between requests. Saving refreshes the TTL.
type Store interface {
	Create(ctx context.Context, snap Snapshot) (string, error)
	Load(ctx context.Context, id string) (Snapshot, error)
	Save(ctx context.Context, id string, snap Snapshot) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	snap    Snapshot
	expires time.Time
}

type memoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	flows map[string]memoryEntry
}

// NewMemoryStore keeps flows in process memory. Expired entries are dropped lazily.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{ttl: ttl, now: time.Now, flows: make(map[string]memoryEntry)}
}

func (s *memoryStore) Create(_ context.Context, snap Snapshot) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[id] = memoryEntry{snap: snap, expires: s.now().Add(s.ttl)}
	return id, nil
}

func (s *memoryStore) Load(_ context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.flows[id]
	if !ok {
		return Snapshot{}, ErrFlowNotFound
	}
	if s.ttl > 0 && s.now().After(entry.expires) {
		delete(s.flows, id)
		return Snapshot{}, ErrFlowNotFound
	}
	return entry.snap, nil
}

func (s *memoryStore) Save(_ context.Context, id string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flows[id]; !ok {
		return ErrFlowNotFound
	}
	s.flows[id] = memoryEntry{snap: snap, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, id)
	return nil
}

const redisFlowPrefix = "verification:flow:v1:"

// RedisStore keeps flow snapshots as JSON strings with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed Store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, snap Snapshot) (string, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode flow: %w", err)
	}
	ok, err := s.client.SetNX(ctx, redisFlowPrefix+id, payload, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("store flow: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("store flow: id collision for %s", id)
	}
	return id, nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (Snapshot, error) {
	raw, err := s.client.Get(ctx, redisFlowPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrFlowNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load flow: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode flow: %w", err)
	}
	return snap, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode flow: %w", err)
	}
	ok, err := s.client.SetXX(ctx, redisFlowPrefix+id, payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("store flow: %w", err)
	}
	if !ok {
		return ErrFlowNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisFlowPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete flow: %w", err)
	}
	return nil
}
