package handler

import (
	"net/http"

	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/models"
	"LearnLoopAPI/internal/service"
	"LearnLoopAPI/internal/validation"

	"github.com/gorilla/mux"
)

type ConfigHandler struct {
	configService *service.ConfigService
	log           *logger.Logger
}

func NewConfigHandler(configService *service.ConfigService, log *logger.Logger) *ConfigHandler {
	return &ConfigHandler{
		configService: configService,
		log:           log,
	}
}

func (h *ConfigHandler) RegisterRoutes(r *mux.Router, protect func(http.Handler) http.Handler) {
	r.Handle("/eval-config", protect(http.HandlerFunc(h.Upsert))).Methods("POST")
	r.HandleFunc("/eval-config", h.Get).Methods("GET")
}

// Get returns one config when ?metric= is given, otherwise all of them.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")

	if metric != "" {
		cfg, err := h.configService.Get(r.Context(), metric)
		if err != nil {
			h.log.Error("Failed to get config: %v", err)
			respondAppError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
		return
	}

	configs, err := h.configService.List(r.Context())
	if err != nil {
		h.log.Error("Failed to list configs: %v", err)
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.ConfigListResponse{Configs: configs})
}

func (h *ConfigHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondAppError(w, err)
		return
	}

	cfg, verr := validation.EvalConfig(body)
	if verr != nil {
		respondAppError(w, verr)
		return
	}

	stored, err := h.configService.Upsert(r.Context(), cfg)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.ConfigResponse{OK: true, Config: stored})
}
