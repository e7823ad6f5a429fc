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

type ScoreHandler struct {
	scoreService *service.ScoreService
	log          *logger.Logger
}

func NewScoreHandler(scoreService *service.ScoreService, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		scoreService: scoreService,
		log:          log,
	}
}

// RegisterRoutes wires the score endpoints. Submission goes through protect
// (auth + rate limit); reads are open.
func (h *ScoreHandler) RegisterRoutes(r *mux.Router, protect func(http.Handler) http.Handler) {
	r.Handle("/evaluate", protect(http.HandlerFunc(h.SubmitScore))).Methods("POST")
	r.HandleFunc("/scores", h.ListScores).Methods("GET")
}

func (h *ScoreHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondAppError(w, err)
		return
	}

	input, verr := validation.ScoreInput(body)
	if verr != nil {
		respondAppError(w, verr)
		return
	}

	scored, err := h.scoreService.Submit(r.Context(), input)
	if err != nil {
		h.log.Error("Score submission failed: %v", err)
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.SubmitScoreResponse{OK: true, Severity: scored.Severity})
}

func (h *ScoreHandler) ListScores(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	metric := query.Get("metric")
	limit := 0
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	items, err := h.scoreService.ListScores(r.Context(), metric, limit)
	if err != nil {
		h.log.Error("Failed to list scores: %v", err)
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.ScoreListResponse{Items: items})
}
