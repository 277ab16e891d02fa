package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	appconfig "github.com/eumlog/consultation-engine/internal/config"
	"github.com/eumlog/consultation-engine/internal/conversation"
	"github.com/eumlog/consultation-engine/internal/observability/metrics"
	"github.com/eumlog/consultation-engine/pkg/logging"
)

// BuildLLMClient wires Gemini as primary and OpenAI as fallback, wrapped in
// bounded retries. It returns nil when no provider key is configured.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, m *metrics.ConsultationMetrics, logger *logging.Logger) (conversation.LLMClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var providers []conversation.GenerationProvider
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		gemini, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		providers = append(providers, conversation.GenerationProvider{Name: "gemini", Client: gemini})
	}
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		openaiClient, err := conversation.NewOpenAILLMClient(cfg.OpenAIAPIKey, cfg.OpenAIModelID)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: openai client: %w", err)
		}
		providers = append(providers, conversation.GenerationProvider{Name: "openai", Client: openaiClient})
	}
	if len(providers) == 0 {
		logger.Warn("no generation provider configured; interactive sessions are disabled")
		return nil, nil
	}

	var client conversation.LLMClient = providers[0].Client
	if len(providers) > 1 {
		client = conversation.NewFallbackLLMClient(logger, providers...)
	}

	var limiter *rate.Limiter
	if cfg.LLMRatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.LLMRatePerSecond), cfg.LLMRateBurst)
	}
	logger.Info("generation client configured",
		"providers", len(providers),
		"primary", providers[0].Name,
		"max_attempts", cfg.LLMMaxAttempts,
	)
	return conversation.NewRetryingLLMClient(client, conversation.RetryOptions{
		MaxAttempts: cfg.LLMMaxAttempts,
		BaseDelay:   cfg.LLMRetryBaseDelay,
		Limiter:     limiter,
		CallTimeout: cfg.LLMCallTimeout,
		Metrics:     m,
		Logger:      logger,
	}), nil
}

// BuildSessionManager returns nil when llm is nil.
func BuildSessionManager(cfg *appconfig.Config, llm conversation.LLMClient, transcripts conversation.TranscriptStore, outcomes conversation.OutcomeStore, m *metrics.ConsultationMetrics, logger *logging.Logger) *conversation.Manager {
	if llm == nil {
		return nil
	}
	opts := conversation.ManagerOptions{
		LLM:         llm,
		Transcripts: transcripts,
		Outcomes:    outcomes,
		Metrics:     m,
		Logger:      logger,
	}
	if cfg != nil {
		opts.Temperature = float32(cfg.LLMTemperature)
	}
	return conversation.NewManager(opts)
}
