package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eumlog/consultation-engine/internal/api/router"
	"github.com/eumlog/consultation-engine/internal/app/bootstrap"
	appconfig "github.com/eumlog/consultation-engine/internal/config"
	"github.com/eumlog/consultation-engine/internal/http/handlers"
	httpmiddleware "github.com/eumlog/consultation-engine/internal/http/middleware"
	"github.com/eumlog/consultation-engine/internal/intake"
	"github.com/eumlog/consultation-engine/internal/observability/metrics"
	"github.com/eumlog/consultation-engine/internal/script"
	"github.com/eumlog/consultation-engine/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting consultation engine API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	metricsHandler, consultationMetrics := setupMetrics()

	pricing, err := appconfig.LoadPricing(cfg.PricingFile)
	if err != nil {
		logger.Error("failed to load pricing", "error", err)
		os.Exit(1)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	transcripts := bootstrap.BuildTranscriptStore(redisClient, cfg, logger)
	pool := bootstrap.BuildPostgresPool(ctx, cfg, logger)
	if pool != nil {
		defer pool.Close()
	}
	outcomes := bootstrap.BuildOutcomeStores(cfg, pool, logger)

	llm, err := bootstrap.BuildLLMClient(ctx, cfg, consultationMetrics, logger)
	if err != nil {
		logger.Error("failed to configure generation client", "error", err)
		os.Exit(1)
	}
	sessions := bootstrap.BuildSessionManager(cfg, llm, transcripts, outcomes.Writer, consultationMetrics, logger)

	consultationHandler := handlers.NewConsultationHandler(handlers.ConsultationHandlerConfig{
		Parser:   intake.NewTabularParser(intake.DefaultLayout),
		Renderer: script.NewRenderer(script.OptionsFromConfig(cfg, pricing)),
		Sessions: sessions,
		Outcomes: outcomes.Reader,
		Metrics:  consultationMetrics,
		Logger:   logger,
	})

	r := router.New(&router.Config{
		Logger:              logger,
		ConsultationHandler: consultationHandler,
		MetricsHandler:      metricsHandler,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		SessionLimiter:      httpmiddleware.NewRateLimiter(cfg.SessionRatePerSec, cfg.SessionRateBurst),
	})

	// Create HTTP server. Turns wait on the generation service, so the write
	// timeout covers a full retry cycle.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func setupMetrics() (http.Handler, *metrics.ConsultationMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.NewConsultationMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), m
}
