package repository

import (
	"context"

	"LearnLoopAPI/internal/models"
)

// DefaultListLimit bounds list reads when the caller does not ask for a limit.
const DefaultListLimit = 100

// Store is the persistence gateway the core reads and writes through. Two
// implementations exist: postgres for durable deployments and an in-memory
// variant used when no database is configured (and in tests). All lists return
// newest first.
type Store interface {
	AddTelemetry(ctx context.Context, rec *models.Telemetry) error
	ListTelemetry(ctx context.Context, limit int) ([]models.Telemetry, error)

	AddFeedback(ctx context.Context, rec *models.Feedback) error
	ListFeedback(ctx context.Context, limit int) ([]models.Feedback, error)

	AddScore(ctx context.Context, rec *models.Scored) error
	ListScores(ctx context.Context, metric string, limit int) ([]models.Scored, error)

	// GetEvalConfig returns (nil, nil) when no rule exists for the metric.
	GetEvalConfig(ctx context.Context, metric string) (*models.EvaluationConfig, error)
	// UpsertEvalConfig replaces the rule for cfg.Metric wholesale and
	// refreshes UpdatedAt.
	UpsertEvalConfig(ctx context.Context, cfg *models.EvaluationConfig) (*models.EvaluationConfig, error)
	ListEvalConfigs(ctx context.Context) ([]models.EvaluationConfig, error)

	Health(ctx context.Context) error
	Close() error
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
