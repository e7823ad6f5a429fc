// Package alerts delivers WARN/CRIT notifications to an operator-configured
// webhook. Delivery is best-effort: a cooldown per metric+severity suppresses
// storms, transport failures are logged and swallowed, and the request path
// never waits on the outbound call.
package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"LearnLoopAPI/internal/config"
	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/models"
)

type Dispatcher struct {
	webhookURL string
	cooldown   time.Duration
	timeout    time.Duration
	log        *logger.Logger
	client     *http.Client

	mu       sync.Mutex
	lastSent map[string]time.Time

	inflight sync.WaitGroup

	now func() time.Time
}

func NewDispatcher(cfg *config.AlertsConfig, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		webhookURL: cfg.WebhookURL,
		cooldown:   cfg.Cooldown,
		timeout:    cfg.Timeout,
		log:        log,
		client:     &http.Client{Timeout: cfg.Timeout},
		lastSent:   make(map[string]time.Time),
		now:        time.Now,
	}
}

// Enabled reports whether a webhook destination is configured. When false,
// MaybeSend is a silent no-op (alerting disabled, not an error).
func (d *Dispatcher) Enabled() bool {
	return d.webhookURL != ""
}

// MaybeSend fires the webhook for a WARN/CRIT payload unless the same
// metric+severity pair fired within the cooldown. The last-sent timestamp is
// claimed before the network call starts, so a slow delivery cannot let a
// burst of duplicates through while in flight.
func (d *Dispatcher) MaybeSend(p models.AlertPayload) {
	if !d.Enabled() {
		return
	}

	key := fmt.Sprintf("%s:%s", p.Metric, p.Severity)
	now := d.now()

	d.mu.Lock()
	if last, ok := d.lastSent[key]; ok && now.Sub(last) < d.cooldown {
		d.mu.Unlock()
		d.log.Debug("Alert suppressed by cooldown: %s", key)
		return
	}
	d.lastSent[key] = now
	d.mu.Unlock()

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		d.post(p)
	}()
}

// Flush waits for in-flight deliveries. Called at shutdown so pending alerts
// are not cut off mid-request.
func (d *Dispatcher) Flush() {
	d.inflight.Wait()
}

func (d *Dispatcher) post(p models.AlertPayload) {
	body, err := json.Marshal(p)
	if err != nil {
		d.log.Error("Failed to marshal alert payload: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		d.log.Error("Failed to build alert request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		// Best effort: alert loss is acceptable, request-path stalls are not.
		d.log.Warn("Alert delivery failed for %s/%s: %v", p.Metric, p.Severity, err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	d.log.Info("Alert dispatched: metric=%s severity=%s value=%v", p.Metric, p.Severity, p.Value)
}
