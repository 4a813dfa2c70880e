package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"ai-interview-service/internal/agent"
	"ai-interview-service/internal/app"
	"ai-interview-service/internal/config"
	"ai-interview-service/internal/events"
	"ai-interview-service/internal/httpapi"
	"ai-interview-service/internal/observability"
	"ai-interview-service/internal/service/evaluation"
	"ai-interview-service/internal/service/questionbank"
	"ai-interview-service/internal/service/questiongen"
	"ai-interview-service/internal/service/relay"
	"ai-interview-service/internal/service/session"
)

func main() {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg := config.Load()
	application := app.New(cfg)
	if err := application.Start(); err != nil {
		application.Logger.Fatal().Err(err).Msg("Startup failed")
	}
	logger := application.Logger

	// Question sources.
	bank := questionbank.New()
	bank.Load(cfg.Questions.CatalogPath)
	sets := questionbank.NewSetCache()
	sets.Load(cfg.Questions.CachePath)

	// Best-effort write-through of session records and feedback reports.
	publisher := events.New(&events.Config{
		Enabled:       cfg.Kafka.Enabled,
		Brokers:       cfg.Kafka.Brokers,
		TopicSessions: cfg.Kafka.TopicSessions,
		TopicFeedback: cfg.Kafka.TopicFeedback,
		Principal:     cfg.Kafka.Principal,
	})
	defer publisher.Close()

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Agent.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create model client")
	}

	generator := questiongen.New(agent.NewGenerator(client, cfg.Agent.GenModel))
	store := session.NewStore(bank, sets, generator, publisher)
	pipeline := evaluation.New(store, agent.NewGenerator(client, cfg.Agent.EvalModel),
		publisher, cfg.Agent.MaxRetries, cfg.Agent.RetryDelay)

	wsHandler := relay.NewHandler(store, func() agent.LiveAdapter {
		return agent.NewGeminiLive(client, cfg.Agent.LiveModel)
	})

	router := httpapi.NewRouter(httpapi.NewHandlers(store, bank, pipeline), wsHandler)
	server := &http.Server{
		Addr:        ":" + cfg.Service.HTTPPort,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	obsServer := observability.NewServer(":"+cfg.Observability.MetricsPort,
		observability.Check{Name: "model-api-key", Run: func() error {
			if cfg.Agent.APIKey == "" {
				return errors.New("not configured")
			}
			return nil
		}},
		observability.Check{Name: "question-catalog", Run: func() error {
			if bank.Size() == 0 {
				return errors.New("no questions loaded")
			}
			return nil
		}},
	)
	obsServer.Start()

	go func() {
		logger.Info().Str("port", cfg.Service.HTTPPort).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if err := obsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Observability server shutdown error")
	}
	application.Shutdown()
}
