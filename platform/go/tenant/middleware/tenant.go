package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/orderdesk/orderdesk-saas/platform/go/logging"
	"github.com/orderdesk/orderdesk-saas/platform/go/tenant"
)

// Resolver defines the minimal lookup capability required to populate a
// tenant Space. Implemented by the tenant registry service.
type Resolver interface {
	ResolveTenantSpace(tenantID string) (tenant.Space, error)
}

// Config controls middleware behavior.
type Config struct {
	// Optional small in-memory TTL cache to avoid store hits; zero disables caching.
	CacheTTL time.Duration
}

// WithTenantSpace extracts the tenant candidate from the request, normalizes
// and validates it, loads the committed tenant record, and attaches
// tenant.Space to the context. Requests without a resolvable, active tenant
// are rejected before any handler runs.
func WithTenantSpace(resolver Resolver, cfg Config) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("tenant middleware: resolver is required")
	}

	var cache *spaceCache
	if cfg.CacheTTL > 0 {
		cache = newSpaceCache(cfg.CacheTTL)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			candidate := tenant.ResolveCandidate(r)
			if candidate == "" {
				http.Error(w, "tenant required", http.StatusUnauthorized)
				return
			}

			id := tenant.Normalize(candidate)
			if err := tenant.AssertValid(id); err != nil {
				http.Error(w, "invalid tenant id", http.StatusUnauthorized)
				return
			}

			if cached := cacheGet(cache, id); cached != nil {
				ctx := tenant.WithSpace(r.Context(), *cached)
				ctx = logging.WithTenant(ctx, cached.ID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			space, err := resolver.ResolveTenantSpace(id)
			if err != nil {
				http.Error(w, "tenant not found", http.StatusUnauthorized)
				return
			}
			if space.Disabled {
				http.Error(w, "tenant disabled", http.StatusForbidden)
				return
			}

			cachePut(cache, space)

			ctx := tenant.WithSpace(r.Context(), space)
			ctx = logging.WithTenant(ctx, space.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type spaceCache struct {
	ttl   time.Duration
	mu    sync.Mutex
	items map[string]cacheItem
}

type cacheItem struct {
	space     tenant.Space
	expiresAt time.Time
}

func newSpaceCache(ttl time.Duration) *spaceCache {
	return &spaceCache{ttl: ttl, items: make(map[string]cacheItem)}
}

func cacheGet(c *spaceCache, id string) *tenant.Space {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok || time.Now().After(item.expiresAt) {
		return nil
	}
	return &item.space
}

func cachePut(c *spaceCache, space tenant.Space) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[space.ID] = cacheItem{space: space, expiresAt: time.Now().Add(c.ttl)}
}
