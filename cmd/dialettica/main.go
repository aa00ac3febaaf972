package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antoniostano/dialettica/internal/archive"
	"github.com/antoniostano/dialettica/internal/brain"
	"github.com/antoniostano/dialettica/internal/config"
	"github.com/antoniostano/dialettica/internal/debate"
	"github.com/antoniostano/dialettica/internal/httpapi"
	"github.com/antoniostano/dialettica/internal/observability"
	"github.com/antoniostano/dialettica/internal/persona"
	"github.com/antoniostano/dialettica/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	outcomes, err := archive.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("outcome store init failed: %v", err)
	}
	defer outcomes.Close()

	provider, err := brain.NewProvider(brain.Config{
		Mode:    cfg.BrainProvider,
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		log.Fatalf("brain provider init failed: %v", err)
	}
	if cfg.GeminiAPIKey == "" {
		log.Printf("brain provider: mock (no gemini key configured)")
	} else {
		log.Printf("brain provider: gemini (%s)", cfg.GeminiModel)
	}

	profiles, err := persona.Load(cfg.PersonaConfigPath, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("persona config load failed: %v", err)
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	service := debate.NewService(debate.ServiceOptions{
		Brain:              provider,
		Profiles:           profiles,
		Metrics:            metrics,
		Outcomes:           outcomes,
		MaxLoopDepth:       cfg.MaxLoopDepth,
		ThinkingPause:      cfg.ThinkingPause,
		SpeechPollInterval: cfg.SpeechPollInterval,
	})

	api := httpapi.New(cfg, sessions, service, outcomes, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 5*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
