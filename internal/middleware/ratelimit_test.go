package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestLimiterExactlyNAllowed(t *testing.T) {
	l := NewLimiter()
	base := time.Now()
	l.now = func() time.Time { return base }

	const limit = 5
	for i := 0; i < limit; i++ {
		res := l.Check("1.2.3.4", "evaluate", limit, time.Minute)
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if res.Remaining != limit-i-1 {
			t.Fatalf("request %d: expected remaining %d, got %d", i+1, limit-i-1, res.Remaining)
		}
	}

	res := l.Check("1.2.3.4", "evaluate", limit, time.Minute)
	if res.Allowed {
		t.Fatalf("request %d should be denied", limit+1)
	}
	if res.Remaining != 0 {
		t.Fatalf("expected remaining 0 after limit, got %d", res.Remaining)
	}
}

func TestLimiterWindowReset(t *testing.T) {
	l := NewLimiter()
	base := time.Now()
	l.now = func() time.Time { return base }

	if res := l.Check("1.2.3.4", "evaluate", 1, time.Minute); !res.Allowed {
		t.Fatalf("first request should be allowed")
	}
	if res := l.Check("1.2.3.4", "evaluate", 1, time.Minute); res.Allowed {
		t.Fatalf("second request in window should be denied")
	}

	l.now = func() time.Time { return base.Add(time.Minute) }
	if res := l.Check("1.2.3.4", "evaluate", 1, time.Minute); !res.Allowed {
		t.Fatalf("request in next window should be allowed")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := NewLimiter()

	if res := l.Check("1.2.3.4", "evaluate", 1, time.Minute); !res.Allowed {
		t.Fatalf("first identifier should be allowed")
	}
	if res := l.Check("5.6.7.8", "evaluate", 1, time.Minute); !res.Allowed {
		t.Fatalf("different identifier should have its own window")
	}
	if res := l.Check("1.2.3.4", "eval-config", 1, time.Minute); !res.Allowed {
		t.Fatalf("different route should have its own window")
	}
}

func TestLimiterConcurrentIncrementsDoNotUndercount(t *testing.T) {
	l := NewLimiter()
	base := time.Now()
	l.now = func() time.Time { return base }

	const limit = 50
	const attempts = 200

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := l.Check("1.2.3.4", "evaluate", limit, time.Minute)
			if res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Fatalf("expected exactly %d allowed under concurrency, got %d", limit, allowed)
	}
}

func TestLimiterPruneDropsExpiredWindows(t *testing.T) {
	l := NewLimiter()
	base := time.Now()
	l.now = func() time.Time { return base }

	for i := 0; i < pruneThreshold+1; i++ {
		l.Check(fmt.Sprintf("client-%d", i), "evaluate", 1, time.Millisecond)
	}

	l.now = func() time.Time { return base.Add(time.Hour) }
	l.Check("fresh", "evaluate", 1, time.Minute)

	l.mu.Lock()
	size := len(l.counters)
	l.mu.Unlock()

	if size > 2 {
		t.Fatalf("expected expired counters pruned, table still has %d entries", size)
	}
}

func TestClientIdentifierForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
	if got := ClientIdentifier(r); got != "10.0.0.1" {
		t.Fatalf("expected first forwarded value, got %q", got)
	}
}

func TestClientIdentifierFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = ""
	if got := ClientIdentifier(r); got != "127.0.0.1" {
		t.Fatalf("expected loopback placeholder, got %q", got)
	}
}

func TestRateLimitMiddlewareHeaders(t *testing.T) {
	l := NewLimiter()
	handler := RateLimit(l, "evaluate", 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/evaluate", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.Code)
	}
	if first.Header().Get("X-RateLimit-Limit") != "1" {
		t.Fatalf("expected limit header on allowed response")
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/evaluate", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on denial")
	}
	if second.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected remaining 0 on denial")
	}
}
