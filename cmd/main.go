package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hermes/internal/adapters/ai"
	"hermes/internal/adapters/config"
	"hermes/internal/adapters/embeddings"
	"hermes/internal/adapters/errors/noop"
	"hermes/internal/adapters/errors/sentry"
	"hermes/internal/adapters/postgres"
	"hermes/internal/agents"
	"hermes/internal/api"
	"hermes/internal/api/health"
	repo "hermes/internal/repository/postgres"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Vector store
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	recordRepo := repo.NewRecordRepository(pgClient.DB())

	// Model backends
	embedder, err := embeddings.NewProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to create embedding provider: %v", err)
	}
	log.Infof("Embedding provider: %s (%d dimensions)", embedder.Name(), embedder.Dimensions())

	chat, err := ai.NewProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to create chat provider: %v", err)
	}
	log.Infof("Chat provider: %s", chat.Name())

	// Agents
	pipeline, err := agents.NewDefaultPipeline(cfg, recordRepo, embedder, chat)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	// HTTP server
	healthHandler := health.New(log, pgClient.DB(), modelPing(cfg), cfg.App.Name, cfg.App.Version)
	proposeHandler := api.NewProposeHandler(pipeline, log)
	server := api.NewServer(api.ServerConfig{
		Port:        cfg.Server.Port,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	}, healthHandler, proposeHandler, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Info("System initialized successfully")

	waitForShutdown(server, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// modelPing builds the health probe for the configured model backend.
// Only Ollama is probed; remote API backends are assumed reachable.
func modelPing(cfg *config.Config) health.ModelPing {
	if cfg.Agents.ChatProvider != "ollama" && cfg.Agents.ChatProvider != "" {
		return nil
	}

	client := &http.Client{Timeout: 5 * time.Second}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Ollama.BaseURL+"/api/tags", nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return errors.Wrap(errors.ErrModelUnavailable, err.Error())
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return errors.Wrapf(errors.ErrModelUnavailable, "status %d", resp.StatusCode)
		}
		return nil
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(server *api.Server, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Warnf("HTTP server shutdown: %v", err)
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(ctx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
