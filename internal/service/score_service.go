package service

import (
	"context"
	"time"

	"LearnLoopAPI/internal/alerts"
	"LearnLoopAPI/internal/apperrors"
	"LearnLoopAPI/internal/evaluator"
	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/models"
	"LearnLoopAPI/internal/repository"
	"LearnLoopAPI/internal/websocket"
)

const (
	minScoreListLimit     = 1
	maxScoreListLimit     = 500
	defaultScoreListLimit = 100
)

// ScoreService runs the critical path: config lookup, severity classification,
// score persistence and conditional alert dispatch.
type ScoreService struct {
	store      repository.Store
	dispatcher *alerts.Dispatcher
	hub        *websocket.Hub
	log        *logger.Logger
}

func NewScoreService(store repository.Store, dispatcher *alerts.Dispatcher, hub *websocket.Hub, log *logger.Logger) *ScoreService {
	return &ScoreService{
		store:      store,
		dispatcher: dispatcher,
		hub:        hub,
		log:        log,
	}
}

// Submit evaluates a validated score input and persists the result. A
// persistence failure surfaces to the caller; alert delivery never does.
func (s *ScoreService) Submit(ctx context.Context, input *models.ScoreInput) (*models.Scored, error) {
	cfg, err := s.store.GetEvalConfig(ctx, input.Metric)
	if err != nil {
		s.log.Error("Config lookup failed for metric %s: %v", input.Metric, err)
		return nil, apperrors.Upstream("config lookup", err)
	}

	scored := evaluator.Evaluate(input, cfg)

	if err := s.store.AddScore(ctx, &scored); err != nil {
		s.log.Error("Failed to persist score: %v", err)
		return nil, apperrors.Upstream("score write", err)
	}

	s.log.Info("Score stored: event=%s metric=%s value=%v severity=%s",
		scored.EventID, scored.Metric, scored.Value, scored.Severity)

	if scored.Severity != models.SeverityOK {
		payload := models.AlertPayload{
			EventID:  scored.EventID,
			Metric:   scored.Metric,
			Value:    scored.Value,
			Severity: scored.Severity,
			TS:       time.Now().UTC().Format(time.RFC3339),
		}
		s.dispatcher.MaybeSend(payload)
		s.notify(websocket.EventAlert, payload)
	}

	s.notify(websocket.EventScore, scored)

	return &scored, nil
}

// ListScores returns the most recent scores, newest first, optionally filtered
// by metric. Limit is clamped to [1, 500] and defaults to 100.
func (s *ScoreService) ListScores(ctx context.Context, metric string, limit int) ([]models.Scored, error) {
	if limit == 0 {
		limit = defaultScoreListLimit
	}
	if limit < minScoreListLimit {
		limit = minScoreListLimit
	}
	if limit > maxScoreListLimit {
		limit = maxScoreListLimit
	}

	items, err := s.store.ListScores(ctx, metric, limit)
	if err != nil {
		return nil, apperrors.Upstream("score list", err)
	}
	return items, nil
}

func (s *ScoreService) notify(eventType string, payload interface{}) {
	if s.hub != nil {
		s.hub.Broadcast(eventType, payload)
	}
}
