package service

import (
	"context"

	"LearnLoopAPI/internal/apperrors"
	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/models"
	"LearnLoopAPI/internal/repository"
	"LearnLoopAPI/internal/validation"
	"LearnLoopAPI/internal/websocket"
)

// TelemetryService ingests raw agent events, over HTTP or the optional MQTT
// path; both feed the same validation gate and store.
type TelemetryService struct {
	store repository.Store
	hub   *websocket.Hub
	log   *logger.Logger
}

func NewTelemetryService(store repository.Store, hub *websocket.Hub, log *logger.Logger) *TelemetryService {
	return &TelemetryService{store: store, hub: hub, log: log}
}

// Ingest persists an already-validated telemetry record.
func (s *TelemetryService) Ingest(ctx context.Context, rec *models.Telemetry) error {
	if err := s.store.AddTelemetry(ctx, rec); err != nil {
		s.log.Error("Failed to insert telemetry: %v", err)
		return apperrors.Upstream("telemetry write", err)
	}

	s.log.Debug("Telemetry stored: source=%s type=%s", rec.Source, rec.Type)

	if s.hub != nil {
		s.hub.Broadcast(websocket.EventTelemetry, rec)
	}

	return nil
}

// ProcessMessage handles a raw MQTT payload: same gate, same store as HTTP.
func (s *TelemetryService) ProcessMessage(ctx context.Context, payload []byte) error {
	rec, verr := validation.Telemetry(payload)
	if verr != nil {
		s.log.Warn("Rejected MQTT telemetry: %v", verr)
		return verr
	}

	return s.Ingest(ctx, rec)
}

func (s *TelemetryService) List(ctx context.Context, limit int) ([]models.Telemetry, error) {
	items, err := s.store.ListTelemetry(ctx, limit)
	if err != nil {
		return nil, apperrors.Upstream("telemetry list", err)
	}
	return items, nil
}
