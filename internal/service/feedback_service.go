package service

import (
	"context"

	"LearnLoopAPI/internal/apperrors"
	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/models"
	"LearnLoopAPI/internal/repository"
)

// FeedbackService records human labels attached to observed events.
type FeedbackService struct {
	store repository.Store
	log   *logger.Logger
}

func NewFeedbackService(store repository.Store, log *logger.Logger) *FeedbackService {
	return &FeedbackService{store: store, log: log}
}

func (s *FeedbackService) Ingest(ctx context.Context, rec *models.Feedback) error {
	if err := s.store.AddFeedback(ctx, rec); err != nil {
		s.log.Error("Failed to insert feedback: %v", err)
		return apperrors.Upstream("feedback write", err)
	}

	s.log.Debug("Feedback stored: event=%s label=%s", rec.EventID, rec.Label)
	return nil
}

func (s *FeedbackService) List(ctx context.Context, limit int) ([]models.Feedback, error) {
	items, err := s.store.ListFeedback(ctx, limit)
	if err != nil {
		return nil, apperrors.Upstream("feedback list", err)
	}
	return items, nil
}
