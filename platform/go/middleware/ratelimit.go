package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk-saas/platform/go/logging"
)

// Counter is the shared fixed-window counter behind the rate limiter. The
// count is approximate under race; that is acceptable for a throttle.
type Counter interface {
	// Incr bumps the counter for key within the current window and returns
	// the new count. The key expires with the window.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitConfig bounds requests per source IP per fixed window.
type RateLimitConfig struct {
	// Bucket namespaces the counter keys per protected endpoint.
	Bucket string
	Limit  int64
	Window time.Duration
}

// RateLimit guards cheaply-abusable endpoints with a fixed window per source
// IP. Counter failures fail open: a broken throttle must not take the
// endpoint down with it.
func RateLimit(counter Counter, cfg RateLimitConfig) func(http.Handler) http.Handler {
	if counter == nil {
		panic("ratelimit: counter is required")
	}
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		panic("ratelimit: limit and window must be positive")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			window := time.Now().Unix() / int64(cfg.Window.Seconds())
			key := fmt.Sprintf("rl:%s:%s:%d", cfg.Bucket, ip, window)

			count, err := counter.Incr(r.Context(), key, cfg.Window)
			if err != nil {
				if logger := logging.FromRequest(r, nil); logger != nil {
					logger.Warn("rate limit counter unavailable", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			if count > cfg.Limit {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(cfg.Window.Seconds())))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware already folded X-Forwarded-For into RemoteAddr.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RedisCounter implements Counter on Redis INCR + EXPIRE.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter wraps an initialized Redis client.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	if client == nil {
		panic("ratelimit: redis client is required")
	}
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// First hit in the window owns the expiry.
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// MemoryCounter is an in-process Counter for tests and single-instance dev.
type MemoryCounter struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Time
}

// NewMemoryCounter constructs an empty MemoryCounter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[string]int64), expires: make(map[string]time.Time)}
}

func (c *MemoryCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if exp, ok := c.expires[key]; ok && now.After(exp) {
		delete(c.counts, key)
		delete(c.expires, key)
	}
	if _, ok := c.counts[key]; !ok {
		c.expires[key] = now.Add(window)
	}
	c.counts[key]++
	return c.counts[key], nil
}

var (
	_ Counter = (*RedisCounter)(nil)
	_ Counter = (*MemoryCounter)(nil)
)
