package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LearnLoopAPI/internal/alerts"
	"LearnLoopAPI/internal/config"
	"LearnLoopAPI/internal/database"
	"LearnLoopAPI/internal/handler"
	"LearnLoopAPI/internal/logger"
	"LearnLoopAPI/internal/mqtt"
	"LearnLoopAPI/internal/repository"
	"LearnLoopAPI/internal/server"
	"LearnLoopAPI/internal/service"
	"LearnLoopAPI/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// 2. Initialize Logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: %v", err)
	}

	cfg.Print()
	log.Info("Starting LearnLoop API Server")

	ctx := context.Background()

	// 3. Select Store
	var store repository.Store
	if cfg.Database.Enabled() {
		db, err := database.New(&cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		if err := db.Health(ctx); err != nil {
			log.Fatal("Database health check failed: %v", err)
		}
		if err := db.Migrate(ctx); err != nil {
			log.Fatal("Database migration failed: %v", err)
		}
		log.Info("Database connected successfully")
		store = repository.NewPostgresStore(db)
	} else {
		log.Warn("DB_HOST not set, using in-memory store (data is not durable)")
		store = repository.NewMemoryStore()
	}
	defer store.Close()

	// 4. Live Feed Hub
	hub := websocket.NewHub(log)
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go hub.Run(hubCtx)

	// 5. Alert Dispatcher
	dispatcher := alerts.NewDispatcher(&cfg.Alerts, log)
	if dispatcher.Enabled() {
		log.Info("Alert webhook configured (cooldown: %v)", cfg.Alerts.Cooldown)
	} else {
		log.Warn("ALERT_WEBHOOK_URL not set, alerts disabled")
	}

	// 6. Initialize Services
	scoreService := service.NewScoreService(store, dispatcher, hub, log)
	configService := service.NewConfigService(store, log)
	telemetryService := service.NewTelemetryService(store, hub, log)
	feedbackService := service.NewFeedbackService(store, log)

	// 7. Optional MQTT Ingest
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled() {
		mqttClient, err = mqtt.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Fatal("Failed to create MQTT client: %v", err)
		}
		if err := mqttClient.Connect(); err != nil {
			log.Fatal("Failed to connect to MQTT broker: %v", err)
		}
		defer mqttClient.Disconnect()

		if err := mqttClient.Subscribe(cfg.MQTT.TelemetryTopic, handleTelemetry(telemetryService, log)); err != nil {
			log.Fatal("Failed to subscribe to telemetry topic: %v", err)
		}
		log.Info("MQTT ingest active on topic: %s", cfg.MQTT.TelemetryTopic)
	}

	// 8. Initialize Handlers
	scoreHandler := handler.NewScoreHandler(scoreService, log)
	configHandler := handler.NewConfigHandler(configService, log)
	telemetryHandler := handler.NewTelemetryHandler(telemetryService, log)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, log)

	var checker handler.ConnectionChecker
	if mqttClient != nil {
		checker = mqttClient
	}
	healthHandler := handler.NewHealthHandler(store, checker, log)

	// 9. Start HTTP Server
	srv := server.New(cfg, log)
	srv.RegisterHandlers(scoreHandler, configHandler, telemetryHandler, feedbackHandler, healthHandler, hub)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed: %v", err)
		}
	}()

	log.Info("API server ready on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	// 10. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	// Let in-flight alert posts finish before the process exits.
	dispatcher.Flush()

	log.Info("Shutdown complete")
}

func handleTelemetry(svc *service.TelemetryService, log *logger.Logger) mqtt.MessageHandler {
	return func(ctx context.Context, topic string, payload []byte) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := svc.ProcessMessage(ctx, payload); err != nil {
			log.Error("Failed to process telemetry from %s: %v", topic, err)
			return err
		}
		return nil
	}
}
