package server

import (
	"context"
	"fmt"
	"net/http"

	"LearnLoopAPI/internal/config"
	"LearnLoopAPI/internal/handler"
	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/middleware"
	"LearnLoopAPI/internal/websocket"

	"github.com/gorilla/mux"
)

type Server struct {
	httpServer *http.Server
	router     *mux.Router
	cfg        *config.Config
	log        *logger.Logger
}

func New(cfg *config.Config, log *logger.Logger) *Server {
	router := mux.NewRouter()

	server := &Server{
		router: router,
		cfg:    cfg,
		log:    log,
		httpServer: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:        router,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
	}

	return server
}

func (s *Server) RegisterHandlers(
	scoreHandler *handler.ScoreHandler,
	configHandler *handler.ConfigHandler,
	telemetryHandler *handler.TelemetryHandler,
	feedbackHandler *handler.FeedbackHandler,
	healthHandler *handler.HealthHandler,
	hub *websocket.Hub,
) {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.Use(middleware.RequestLogger(s.log))
	api.Use(middleware.CORS(s.cfg.Security.CORSAllowedOrigins, s.cfg.Security.CORSAllowedMethods))
	api.Use(middleware.SecurityHeaders())
	api.Use(middleware.Recovery(s.log))

	// Auth runs before rate limiting so unauthenticated callers never
	// consume window budget. Each write route has its own limit; all
	// routes share one window size.
	limiter := middleware.NewLimiter()
	auth := middleware.APIKey(s.cfg.Security.APIKeyHeader, s.cfg.Security.APIKey)
	window := s.cfg.Security.RateLimitWindow

	evalProtect := chain(auth, middleware.RateLimit(limiter, "evaluate", s.cfg.Security.EvalLimit, window))
	configProtect := chain(auth, middleware.RateLimit(limiter, "eval-config", s.cfg.Security.ConfigLimit, window))
	ingestProtect := chain(auth, middleware.RateLimit(limiter, "ingest", s.cfg.Security.EvalLimit, window))

	scoreHandler.RegisterRoutes(api, evalProtect)
	configHandler.RegisterRoutes(api, configProtect)
	telemetryHandler.RegisterRoutes(api, ingestProtect)
	feedbackHandler.RegisterRoutes(api, ingestProtect)
	healthHandler.RegisterRoutes(s.router)

	s.router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(hub, w, r, s.log)
	}).Methods("GET")

	s.log.Info("All handlers registered")
}

func chain(outer, inner func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return outer(inner(next))
	}
}

func (s *Server) Start() error {
	s.log.Info("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}
