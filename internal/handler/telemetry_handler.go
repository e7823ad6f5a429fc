package handler

import (
	"net/http"
	"strconv"

	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/models"
	"LearnLoopAPI/internal/service"
	"LearnLoopAPI/internal/validation"

	"github.com/gorilla/mux"
)

type TelemetryHandler struct {
	telemetryService *service.TelemetryService
	log              *logger.Logger
}

func NewTelemetryHandler(telemetryService *service.TelemetryService, log *logger.Logger) *TelemetryHandler {
	return &TelemetryHandler{
		telemetryService: telemetryService,
		log:              log,
	}
}

func (h *TelemetryHandler) RegisterRoutes(r *mux.Router, protect func(http.Handler) http.Handler) {
	r.Handle("/telemetry", protect(http.HandlerFunc(h.Ingest))).Methods("POST")
	r.HandleFunc("/telemetry", h.List).Methods("GET")
}

func (h *TelemetryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondAppError(w, err)
		return
	}

	rec, verr := validation.Telemetry(body)
	if verr != nil {
		respondAppError(w, verr)
		return
	}

	if err := h.telemetryService.Ingest(r.Context(), rec); err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "id": rec.ID})
}

func (h *TelemetryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)

	items, err := h.telemetryService.List(r.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list telemetry: %v", err)
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.TelemetryListResponse{Items: items})
}

func parseLimit(r *http.Request) int {
	l := r.URL.Query().Get("limit")
	if l == "" {
		return 0
	}
	parsed, err := strconv.Atoi(l)
	if err != nil {
		return 0
	}
	return parsed
}
