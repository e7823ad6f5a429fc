package repository

import (
	"context"
	"sync"
	"time"

	"LearnLoopAPI/internal/models"

	"github.com/google/uuid"
)

// memoryRetention caps per-table growth. Oldest records fall off first.
const memoryRetention = 1000

// MemoryStore is the process-local fallback store. State is lost on restart;
// an explicit tradeoff for zero-dependency development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	telemetry []models.Telemetry
	feedback  []models.Feedback
	scores    []models.Scored
	configs   map[string]models.EvaluationConfig
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configs: make(map[string]models.EvaluationConfig),
	}
}

func (s *MemoryStore) AddTelemetry(ctx context.Context, rec *models.Telemetry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.ReceivedAt = time.Now().UTC()
	s.telemetry = append(s.telemetry, *rec)
	if len(s.telemetry) > memoryRetention {
		s.telemetry = s.telemetry[len(s.telemetry)-memoryRetention:]
	}
	return nil
}

func (s *MemoryStore) ListTelemetry(ctx context.Context, limit int) ([]models.Telemetry, error) {
	limit = clampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Telemetry, 0, limit)
	for i := len(s.telemetry) - 1; i >= 0 && len(items) < limit; i-- {
		items = append(items, s.telemetry[i])
	}
	return items, nil
}

func (s *MemoryStore) AddFeedback(ctx context.Context, rec *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	s.feedback = append(s.feedback, *rec)
	if len(s.feedback) > memoryRetention {
		s.feedback = s.feedback[len(s.feedback)-memoryRetention:]
	}
	return nil
}

func (s *MemoryStore) ListFeedback(ctx context.Context, limit int) ([]models.Feedback, error) {
	limit = clampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Feedback, 0, limit)
	for i := len(s.feedback) - 1; i >= 0 && len(items) < limit; i-- {
		items = append(items, s.feedback[i])
	}
	return items, nil
}

func (s *MemoryStore) AddScore(ctx context.Context, rec *models.Scored) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	s.scores = append(s.scores, *rec)
	if len(s.scores) > memoryRetention {
		s.scores = s.scores[len(s.scores)-memoryRetention:]
	}
	return nil
}

func (s *MemoryStore) ListScores(ctx context.Context, metric string, limit int) ([]models.Scored, error) {
	limit = clampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Scored, 0, limit)
	for i := len(s.scores) - 1; i >= 0 && len(items) < limit; i-- {
		if metric != "" && s.scores[i].Metric != metric {
			continue
		}
		items = append(items, s.scores[i])
	}
	return items, nil
}

func (s *MemoryStore) GetEvalConfig(ctx context.Context, metric string) (*models.EvaluationConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[metric]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (s *MemoryStore) UpsertEvalConfig(ctx context.Context, cfg *models.EvaluationConfig) (*models.EvaluationConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cfg
	stored.UpdatedAt = time.Now().UTC()
	s.configs[stored.Metric] = stored
	return &stored, nil
}

func (s *MemoryStore) ListEvalConfigs(ctx context.Context) ([]models.EvaluationConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	configs := make([]models.EvaluationConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (s *MemoryStore) Health(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
