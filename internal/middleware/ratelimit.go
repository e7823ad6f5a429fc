package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// pruneThreshold is the counter-table size past which expired windows are
// swept. Pruning is piggybacked on inserts rather than run on a timer.
const pruneThreshold = 5000

type counter struct {
	count   int
	resetAt time.Time
}

// Limiter is a process-wide fixed-window request counter. Counters are keyed
// by (identifier, route, window-start) and never persisted across restarts.
// Fixed windows admit bursts at window boundaries; an accepted tradeoff over
// sliding windows.
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*counter
	now      func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}

// Check counts one attempt against the identifier's window for the route.
// The read-modify-write is a single critical section so concurrent bursts on
// the same key cannot undercount. Never blocks on I/O.
func (l *Limiter) Check(identifier, routeKey string, limit int, window time.Duration) RateLimitResult {
	now := l.now()
	windowMs := window.Milliseconds()
	windowStart := now.UnixMilli() / windowMs * windowMs
	key := fmt.Sprintf("%s|%s|%d", identifier, routeKey, windowStart)

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.counters[key]
	if !exists {
		if len(l.counters) > pruneThreshold {
			l.prune(now)
		}
		resetAt := time.UnixMilli(windowStart + windowMs)
		l.counters[key] = &counter{count: 1, resetAt: resetAt}
		return RateLimitResult{Allowed: true, Remaining: limit - 1, ResetAt: resetAt, Limit: limit}
	}

	entry.count++
	remaining := limit - entry.count
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitResult{
		Allowed:   entry.count <= limit,
		Remaining: remaining,
		ResetAt:   entry.resetAt,
		Limit:     limit,
	}
}

// prune drops counters whose window already ended. Caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	for key, entry := range l.counters {
		if !entry.resetAt.After(now) {
			delete(l.counters, key)
		}
	}
}

// ClientIdentifier picks the rate-limit identity for a request: the first
// comma-separated X-Forwarded-For value, then the RemoteAddr host, then a
// loopback placeholder.
func ClientIdentifier(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return "127.0.0.1"
}

// RateLimit guards a route with a fixed-window counter. Machine-readable
// limit headers are attached to every response; denials get a 429 with a
// Retry-After hint.
func RateLimit(limiter *Limiter, routeKey string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Check(ClientIdentifier(r), routeKey, limit, window)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retryAfter := int(math.Ceil(time.Until(res.ResetAt).Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": "Too Many Requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
