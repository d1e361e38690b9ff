package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const defaultLoginAttempts = 5

var errTooManyAttempts = fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")

// Limiter decides whether one more attempt is allowed for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter counts attempts per key in fixed one-minute windows shared by all
// instances.
type RedisLimiter struct {
	cache     *redis.Client
	maxPerMin int
}

// NewRedisLimiter builds a Redis-backed limiter. A non-positive maxPerMin falls
// back to the default of 5.
func NewRedisLimiter(cache *redis.Client, maxPerMin int) *RedisLimiter {
	if maxPerMin <= 0 {
		maxPerMin = defaultLoginAttempts
	}
	return &RedisLimiter{cache: cache, maxPerMin: maxPerMin}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "rl:login:" + key
	cnt, err := l.cache.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, err
	}
	if cnt == 1 {
		l.cache.Expire(ctx, redisKey, time.Minute)
	}
	return cnt <= int64(l.maxPerMin), nil
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps a token bucket per key in process memory. Idle buckets are
// evicted every few hundred calls.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*bucket
	calls   uint64
	idleTTL time.Duration
	now     func() time.Time
}

// NewMemoryLimiter allows maxPerMin attempts per key per minute, all of which may
// be spent at once. A non-positive maxPerMin falls back to the default of 5.
func NewMemoryLimiter(maxPerMin int) *MemoryLimiter {
	if maxPerMin <= 0 {
		maxPerMin = defaultLoginAttempts
	}
	return &MemoryLimiter{
		limit:   rate.Every(time.Minute / time.Duration(maxPerMin)),
		burst:   maxPerMin,
		buckets: make(map[string]*bucket),
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	l.calls++
	if l.calls%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.buckets {
			if v.lastSeen.Before(cutoff) {
				delete(l.buckets, k)
			}
		}
	}
	return allowed, nil
}

// NewLoginLimiter picks the Redis limiter when a cache is configured.
func NewLoginLimiter(cache *redis.Client, maxPerMin int) Limiter {
	if cache != nil {
		return NewRedisLimiter(cache, maxPerMin)
	}
	return NewMemoryLimiter(maxPerMin)
}

// LoginKey normalizes a login identifier so every password path for the same
// customer draws from one bucket.
func LoginKey(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// LoginKeyFromBody keys attempts by the "identifier" field of a JSON body, falling
// back to the client IP.
func LoginKeyFromBody(c *fiber.Ctx) string {
	var req struct {
		Identifier string `json:"identifier"`
	}
	_ = c.BodyParser(&req)
	if id := LoginKey(req.Identifier); id != "" {
		return id
	}
	return c.IP()
}

// CheckLoginAttempt spends one attempt for key and returns a 429 error once the
// budget is gone. Limiter failures fail open.
func CheckLoginAttempt(ctx context.Context, limiter Limiter, key string, logger *slog.Logger) error {
	allowed, err := limiter.Allow(ctx, key)
	if err != nil {
		if logger != nil {
			logger.Warn("login rate limiter unavailable", slog.Any("error", err))
		}
		return nil
	}
	if !allowed {
		return errTooManyAttempts
	}
	return nil
}

// LoginRateLimit limits password attempts per key.
func LoginRateLimit(limiter Limiter, key func(*fiber.Ctx) string, logger *slog.Logger) fiber.Handler {
	if key == nil {
		key = LoginKeyFromBody
	}
	return func(c *fiber.Ctx) error {
		if err := CheckLoginAttempt(c.UserContext(), limiter, key(c), logger); err != nil {
			return err
		}
		return c.Next()
	}
}
