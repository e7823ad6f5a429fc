package service

import (
	"context"

	"LearnLoopAPI/internal/apperrors"
	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/models"
	"LearnLoopAPI/internal/repository"
)

// ConfigService manages per-metric threshold rules.
type ConfigService struct {
	store repository.Store
	log   *logger.Logger
}

func NewConfigService(store repository.Store, log *logger.Logger) *ConfigService {
	return &ConfigService{store: store, log: log}
}

// Get returns the rule for a metric, or nil when none is configured.
func (s *ConfigService) Get(ctx context.Context, metric string) (*models.EvaluationConfig, error) {
	cfg, err := s.store.GetEvalConfig(ctx, metric)
	if err != nil {
		return nil, apperrors.Upstream("config lookup", err)
	}
	return cfg, nil
}

func (s *ConfigService) List(ctx context.Context) ([]models.EvaluationConfig, error) {
	configs, err := s.store.ListEvalConfigs(ctx)
	if err != nil {
		return nil, apperrors.Upstream("config list", err)
	}
	return configs, nil
}

// Upsert replaces the rule for cfg.Metric wholesale; the store refreshes
// UpdatedAt.
func (s *ConfigService) Upsert(ctx context.Context, cfg *models.EvaluationConfig) (*models.EvaluationConfig, error) {
	stored, err := s.store.UpsertEvalConfig(ctx, cfg)
	if err != nil {
		s.log.Error("Failed to upsert config for metric %s: %v", cfg.Metric, err)
		return nil, apperrors.Upstream("config upsert", err)
	}

	s.log.Info("Config upserted: metric=%s comparison=%s warn=%v crit=%v enabled=%v",
		stored.Metric, stored.Comparison, stored.Warn, stored.Crit, stored.Enabled)

	return stored, nil
}
