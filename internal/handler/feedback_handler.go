package handler

import (
	"net/http"

	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/models"
	"LearnLoopAPI/internal/service"
	"LearnLoopAPI/internal/validation"

	"github.com/gorilla/mux"
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
	log             *logger.Logger
}

func NewFeedbackHandler(feedbackService *service.FeedbackService, log *logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		log:             log,
	}
}

func (h *FeedbackHandler) RegisterRoutes(r *mux.Router, protect func(http.Handler) http.Handler) {
	r.Handle("/feedback", protect(http.HandlerFunc(h.Ingest))).Methods("POST")
	r.HandleFunc("/feedback", h.List).Methods("GET")
}

func (h *FeedbackHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondAppError(w, err)
		return
	}

	rec, verr := validation.Feedback(body)
	if verr != nil {
		respondAppError(w, verr)
		return
	}

	if err := h.feedbackService.Ingest(r.Context(), rec); err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "id": rec.ID})
}

func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)

	items, err := h.feedbackService.List(r.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list feedback: %v", err)
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.FeedbackListResponse{Items: items})
}
