package handler

import (
	"net/http"
	"time"

	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/models"
	"LearnLoopAPI/internal/repository"

	"github.com/gorilla/mux"
)

// ConnectionChecker reports whether an optional upstream link is up.
type ConnectionChecker interface {
	IsConnected() bool
}

type HealthHandler struct {
	store repository.Store
	mqtt  ConnectionChecker
	log   *logger.Logger
}

// NewHealthHandler builds the health endpoints. mqtt may be nil when the
// broker link is not configured.
func NewHealthHandler(store repository.Store, mqtt ConnectionChecker, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store: store,
		mqtt:  mqtt,
		log:   log,
	}
}

func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/health/live", h.Liveness).Methods("GET")
	r.HandleFunc("/health/ready", h.Readiness).Methods("GET")
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	}

	resp.Services.Store = h.store.Health(r.Context()) == nil
	resp.Services.MQTT = h.mqtt != nil && h.mqtt.IsConnected()

	status := http.StatusOK
	if !resp.Services.Store {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, resp)
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Health(r.Context()); err != nil {
		h.log.Warn("Readiness check failed: %v", err)
		respondError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
