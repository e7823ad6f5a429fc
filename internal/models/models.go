// internal/models/models.go

package models

import (
	"time"
)

type Severity string

const (
	SeverityOK   Severity = "OK"
	SeverityWarn Severity = "WARN"
	SeverityCrit Severity = "CRIT"
)

type Comparison string

const (
	ComparisonGT Comparison = "gt"
	ComparisonLT Comparison = "lt"
)

// Telemetry types accepted on ingest.
const (
	TelemetryTypeMetric = "metric"
	TelemetryTypeEvent  = "event"
	TelemetryTypeTrace  = "trace"
)

// Telemetry is a raw event emitted by an observed agent.
type Telemetry struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	Source     string                 `json:"source"`
	Type       string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	ReceivedAt time.Time              `json:"received_at"`
}

// Feedback is a human label attached to a previously seen event.
type Feedback struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Label     string    `json:"label"`
	Reviewer  string    `json:"reviewer,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"ts"`
}

// EvaluationConfig is the per-metric threshold rule. One row per metric name.
type EvaluationConfig struct {
	Metric        string     `json:"metric"`
	Comparison    Comparison `json:"comparison"`
	Warn          float64    `json:"warn"`
	Crit          float64    `json:"crit"`
	WindowSeconds int        `json:"windowSeconds"`
	Enabled       bool       `json:"enabled"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ScoreInput is a metric sample submitted for evaluation.
type ScoreInput struct {
	EventID string  `json:"eventId"`
	Metric  string  `json:"metric"`
	Value   float64 `json:"value"`
}

// Scored is a ScoreInput after severity classification. Immutable once stored.
type Scored struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"ts"`
}

// AlertPayload is the webhook body for a WARN/CRIT score. Never persisted.
type AlertPayload struct {
	EventID  string   `json:"eventId"`
	Metric   string   `json:"metric"`
	Value    float64  `json:"value"`
	Severity Severity `json:"severity"`
	TS       string   `json:"ts"`
}

type SubmitScoreResponse struct {
	OK       bool     `json:"ok"`
	Severity Severity `json:"severity"`
}

type ConfigResponse struct {
	OK     bool              `json:"ok"`
	Config *EvaluationConfig `json:"config"`
}

type ConfigListResponse struct {
	Configs []EvaluationConfig `json:"configs"`
}

type ScoreListResponse struct {
	Items []Scored `json:"items"`
}

type TelemetryListResponse struct {
	Items []Telemetry `json:"items"`
}

type FeedbackListResponse struct {
	Items []Feedback `json:"items"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Services  struct {
		Store bool `json:"store"`
		MQTT  bool `json:"mqtt"`
	} `json:"services"`
}
