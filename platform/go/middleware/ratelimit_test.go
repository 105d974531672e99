package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type failingCounter struct{}

func (failingCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 0, errors.New("counter down")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitAllowsUpToLimit(t *testing.T) {
	limited := RateLimit(NewMemoryCounter(), RateLimitConfig{
		Bucket: "test",
		Limit:  3,
		Window: time.Hour,
	})(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/subdomain-check", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		limited.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/subdomain-check", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	limited.ServeHTTP(rec, r)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitIsPerSourceIP(t *testing.T) {
	limited := RateLimit(NewMemoryCounter(), RateLimitConfig{
		Bucket: "test",
		Limit:  1,
		Window: time.Hour,
	})(okHandler())

	first := httptest.NewRecorder()
	r1 := httptest.NewRequest("POST", "/subdomain-check", nil)
	r1.RemoteAddr = "10.0.0.1:1234"
	limited.ServeHTTP(first, r1)
	require.Equal(t, http.StatusOK, first.Code)

	blocked := httptest.NewRecorder()
	r2 := httptest.NewRequest("POST", "/subdomain-check", nil)
	r2.RemoteAddr = "10.0.0.1:9999"
	limited.ServeHTTP(blocked, r2)
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)

	other := httptest.NewRecorder()
	r3 := httptest.NewRequest("POST", "/subdomain-check", nil)
	r3.RemoteAddr = "10.0.0.2:1234"
	limited.ServeHTTP(other, r3)
	require.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimitBucketsAreIndependent(t *testing.T) {
	counter := NewMemoryCounter()
	checks := RateLimit(counter, RateLimitConfig{
		Bucket: "subdomain-check",
		Limit:  1,
		Window: time.Hour,
	})(okHandler())
	checkouts := RateLimit(counter, RateLimitConfig{
		Bucket: "upgrade-checkout",
		Limit:  1,
		Window: time.Hour,
	})(okHandler())

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/subdomain-check", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	checks.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	// Exhausting one bucket must not consume the other endpoint's budget
	// for the same IP.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest("POST", "/upgrade/checkout", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	checkouts.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r = httptest.NewRequest("POST", "/subdomain-check", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	checks.ServeHTTP(rec, r)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimitFailsOpenOnCounterError(t *testing.T) {
	limited := RateLimit(failingCounter{}, RateLimitConfig{
		Bucket: "test",
		Limit:  1,
		Window: time.Hour,
	})(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/subdomain-check", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		limited.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMemoryCounterWindowExpiry(t *testing.T) {
	c := NewMemoryCounter()
	ctx := context.Background()

	n, err := c.Incr(ctx, "k", 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = c.Incr(ctx, "k", 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	time.Sleep(20 * time.Millisecond)

	n, err = c.Incr(ctx, "k", 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
