package alerts

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"LearnLoopAPI/internal/config"
	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/models"
)

func testDispatcher(t *testing.T, url string, cooldown time.Duration) *Dispatcher {
	t.Helper()
	log, err := logger.New(logger.Config{Level: logger.ERROR})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewDispatcher(&config.AlertsConfig{
		WebhookURL: url,
		Cooldown:   cooldown,
		Timeout:    5 * time.Second,
	}, log)
}

func warnPayload(metric string) models.AlertPayload {
	return models.AlertPayload{
		EventID:  "e1",
		Metric:   metric,
		Value:    500,
		Severity: models.SeverityWarn,
		TS:       time.Now().UTC().Format(time.RFC3339),
	}
}

func TestCooldownSuppressesDuplicate(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer srv.Close()

	d := testDispatcher(t, srv.URL, 300*time.Second)

	d.MaybeSend(warnPayload("latency"))
	d.MaybeSend(warnPayload("latency"))
	d.Flush()

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("expected 1 outbound call, got %d", got)
	}
}

func TestCooldownExpiryAllowsResend(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer srv.Close()

	d := testDispatcher(t, srv.URL, 300*time.Second)

	base := time.Now()
	d.now = func() time.Time { return base }

	d.MaybeSend(warnPayload("latency"))
	d.MaybeSend(warnPayload("latency"))

	d.now = func() time.Time { return base.Add(301 * time.Second) }
	d.MaybeSend(warnPayload("latency"))
	d.Flush()

	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Fatalf("expected 2 outbound calls, got %d", got)
	}
}

func TestSeveritiesCooldownIndependently(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer srv.Close()

	d := testDispatcher(t, srv.URL, 300*time.Second)

	p := warnPayload("latency")
	d.MaybeSend(p)
	p.Severity = models.SeverityCrit
	d.MaybeSend(p)
	d.Flush()

	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Fatalf("expected separate cooldown per severity, got %d calls", got)
	}
}

func TestDisabledWithoutWebhookURL(t *testing.T) {
	d := testDispatcher(t, "", 300*time.Second)
	if d.Enabled() {
		t.Fatalf("expected dispatcher disabled without webhook URL")
	}

	// Must be a silent no-op.
	d.MaybeSend(warnPayload("latency"))
	d.Flush()
}

func TestDeliveryFailureSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	srv.Close() // refuse connections

	d := testDispatcher(t, srv.URL, time.Second)
	d.MaybeSend(warnPayload("latency"))
	d.Flush()
}
