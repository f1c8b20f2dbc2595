package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(60, time.Minute)
	now := time.Unix(1700000000, 0)

	for i := 0; i < 60; i++ {
		ok, _ := rl.Allow("203.0.113.9", now)
		require.True(t, ok, "request %d", i+1)
	}

	ok, retryAfter := rl.Allow("203.0.113.9", now.Add(30*time.Second))
	require.False(t, ok)
	require.Equal(t, 30*time.Second, retryAfter)
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Unix(1700000000, 0)

	ok, _ := rl.Allow("203.0.113.9", now)
	require.True(t, ok)
	ok, _ = rl.Allow("203.0.113.9", now)
	require.True(t, ok)
	ok, _ = rl.Allow("203.0.113.9", now)
	require.False(t, ok)

	// A lapsed window resets lazily on the next request.
	ok, _ = rl.Allow("203.0.113.9", now.Add(time.Minute))
	require.True(t, ok)
}

func TestRateLimiterIsolatesAddresses(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Unix(1700000000, 0)

	ok, _ := rl.Allow("203.0.113.9", now)
	require.True(t, ok)
	ok, _ = rl.Allow("203.0.113.9", now)
	require.False(t, ok)

	ok, _ = rl.Allow("198.51.100.4", now)
	require.True(t, ok)
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(60, time.Minute)
	now := time.Unix(1700000000, 0)

	rl.Allow("203.0.113.9", now)
	rl.Allow("198.51.100.4", now.Add(90*time.Second))

	rl.prune(now.Add(3 * time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	require.NotContains(t, rl.windows, "203.0.113.9")
	require.Contains(t, rl.windows, "198.51.100.4")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := rl.Middleware(next)

	req := httptest.NewRequest(http.MethodGet, "/api/config/acme", nil)
	req.RemoteAddr = "203.0.113.9:51234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Contains(t, rec.Body.String(), "retry_after")
}
