package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"LearnLoopAPI/internal/database"
	"LearnLoopAPI/internal/models"

	"github.com/google/uuid"
)

// PostgresStore persists records through database/sql with the lib/pq driver.
type PostgresStore struct {
	db *database.Database
}

func NewPostgresStore(db *database.Database) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) AddTelemetry(ctx context.Context, rec *models.Telemetry) error {
	rec.ID = uuid.NewString()
	rec.ReceivedAt = time.Now().UTC()

	var payloadVal interface{}
	if len(rec.Payload) > 0 {
		payloadJSON, err := json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		payloadVal = payloadJSON
	}

	query := `
		INSERT INTO telemetry (id, timestamp, source, type, payload, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.DB.ExecContext(ctx, query,
		rec.ID, rec.Timestamp, rec.Source, rec.Type, payloadVal, rec.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to insert telemetry: %w", err)
	}

	return nil
}

func (s *PostgresStore) ListTelemetry(ctx context.Context, limit int) ([]models.Telemetry, error) {
	query := `
		SELECT id, timestamp, source, type, payload, received_at
		FROM telemetry
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := s.db.DB.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query telemetry: %w", err)
	}
	defer rows.Close()

	items := []models.Telemetry{}
	for rows.Next() {
		var t models.Telemetry
		var payloadJSON sql.NullString

		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Source, &t.Type, &payloadJSON, &t.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan telemetry: %w", err)
		}

		t.Payload = map[string]interface{}{}
		if payloadJSON.Valid && payloadJSON.String != "" {
			if err := json.Unmarshal([]byte(payloadJSON.String), &t.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		items = append(items, t)
	}

	return items, rows.Err()
}

func (s *PostgresStore) AddFeedback(ctx context.Context, rec *models.Feedback) error {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO feedback (id, event_id, label, reviewer, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.DB.ExecContext(ctx, query,
		rec.ID, rec.EventID, rec.Label, nullString(rec.Reviewer), nullString(rec.Notes), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	return nil
}

func (s *PostgresStore) ListFeedback(ctx context.Context, limit int) ([]models.Feedback, error) {
	query := `
		SELECT id, event_id, label, reviewer, notes, created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.DB.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	items := []models.Feedback{}
	for rows.Next() {
		var f models.Feedback
		var reviewer, notes sql.NullString

		if err := rows.Scan(&f.ID, &f.EventID, &f.Label, &reviewer, &notes, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}

		f.Reviewer = reviewer.String
		f.Notes = notes.String
		items = append(items, f)
	}

	return items, rows.Err()
}

func (s *PostgresStore) AddScore(ctx context.Context, rec *models.Scored) error {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO scores (id, event_id, metric, value, severity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.DB.ExecContext(ctx, query,
		rec.ID, rec.EventID, rec.Metric, rec.Value, rec.Severity, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}

	return nil
}

func (s *PostgresStore) ListScores(ctx context.Context, metric string, limit int) ([]models.Scored, error) {
	query := `
		SELECT id, event_id, metric, value, severity, created_at
		FROM scores
		WHERE ($1 = '' OR metric = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.DB.QueryContext(ctx, query, metric, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	items := []models.Scored{}
	for rows.Next() {
		var sc models.Scored
		if err := rows.Scan(&sc.ID, &sc.EventID, &sc.Metric, &sc.Value, &sc.Severity, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		items = append(items, sc)
	}

	return items, rows.Err()
}

func (s *PostgresStore) GetEvalConfig(ctx context.Context, metric string) (*models.EvaluationConfig, error) {
	query := `
		SELECT metric, comparison, warn, crit, window_seconds, enabled, updated_at
		FROM eval_configs
		WHERE metric = $1
	`

	cfg := &models.EvaluationConfig{}
	err := s.db.DB.QueryRowContext(ctx, query, metric).Scan(
		&cfg.Metric, &cfg.Comparison, &cfg.Warn, &cfg.Crit,
		&cfg.WindowSeconds, &cfg.Enabled, &cfg.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get eval config: %w", err)
	}

	return cfg, nil
}

// UpsertEvalConfig is a full replace keyed by metric. The unique-key upsert
// statement serializes concurrent writes to the same metric.
func (s *PostgresStore) UpsertEvalConfig(ctx context.Context, cfg *models.EvaluationConfig) (*models.EvaluationConfig, error) {
	query := `
		INSERT INTO eval_configs (metric, comparison, warn, crit, window_seconds, enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (metric) DO UPDATE SET
			comparison = EXCLUDED.comparison,
			warn = EXCLUDED.warn,
			crit = EXCLUDED.crit,
			window_seconds = EXCLUDED.window_seconds,
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at
		RETURNING metric, comparison, warn, crit, window_seconds, enabled, updated_at
	`

	stored := &models.EvaluationConfig{}
	err := s.db.DB.QueryRowContext(ctx, query,
		cfg.Metric, cfg.Comparison, cfg.Warn, cfg.Crit,
		cfg.WindowSeconds, cfg.Enabled, time.Now().UTC(),
	).Scan(
		&stored.Metric, &stored.Comparison, &stored.Warn, &stored.Crit,
		&stored.WindowSeconds, &stored.Enabled, &stored.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert eval config: %w", err)
	}

	return stored, nil
}

func (s *PostgresStore) ListEvalConfigs(ctx context.Context) ([]models.EvaluationConfig, error) {
	query := `
		SELECT metric, comparison, warn, crit, window_seconds, enabled, updated_at
		FROM eval_configs
	`

	rows, err := s.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query eval configs: %w", err)
	}
	defer rows.Close()

	configs := []models.EvaluationConfig{}
	for rows.Next() {
		var cfg models.EvaluationConfig
		if err := rows.Scan(&cfg.Metric, &cfg.Comparison, &cfg.Warn, &cfg.Crit,
			&cfg.WindowSeconds, &cfg.Enabled, &cfg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan eval config: %w", err)
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
