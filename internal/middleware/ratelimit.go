package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/chatech/widget-api/pkg/metrics"
)

const pruneInterval = 5 * time.Minute

// RateLimiter is a fixed-window per-caller-address request counter for
// the public API surface. Windows expire lazily on the next request
// rather than on a timer; a prune loop drops long-dead entries.
//
// Keying is per address only: one noisy address exhausts quota for all
// tenants it talks to. Flagged, not resolved.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window

	limit     int
	windowLen time.Duration
}

type window struct {
	count int
	start time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per
// windowLen per caller address.
func NewRateLimiter(limit int, windowLen time.Duration) *RateLimiter {
	return &RateLimiter{
		windows:   make(map[string]*window),
		limit:     limit,
		windowLen: windowLen,
	}
}

// Allow counts one request from addr at time now. When the window is
// exhausted it returns false and the time remaining until reset.
func (rl *RateLimiter) Allow(addr string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[addr]
	if !ok || now.Sub(w.start) >= rl.windowLen {
		rl.windows[addr] = &window{count: 1, start: now}
		return true, 0
	}

	w.count++
	if w.count > rl.limit {
		return false, rl.windowLen - now.Sub(w.start)
	}
	return true, 0
}

// prune drops entries whose window expired more than one window length
// ago. Approximate by design: an entry may survive one extra interval.
func (rl *RateLimiter) prune(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for addr, w := range rl.windows {
		if now.Sub(w.start) > 2*rl.windowLen {
			delete(rl.windows, addr)
		}
	}
}

// PruneLoop prunes stale windows every five minutes until ctx is done.
// Run it on its own goroutine.
func (rl *RateLimiter) PruneLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.prune(now)
		case <-stop:
			return
		}
	}
}

// Middleware rejects over-limit requests with 429 and a retry-after
// hint in seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := rl.Allow(callerAddr(r), time.Now())
		if !ok {
			metrics.RateLimitedTotal.Inc()
			seconds := int(math.Ceil(retryAfter.Seconds()))
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"error":"rate limit exceeded","retry_after":%d}`, seconds)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// callerAddr strips the port so one caller maps to one counter
// regardless of ephemeral source ports. RealIP middleware runs first,
// so RemoteAddr already reflects forwarding headers.
func callerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
