package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/eumlog/consultation-engine/pkg/logging"
)

// GenerationProvider is one named client in a fallback chain.
type GenerationProvider struct {
	Name   string
	Client LLMClient
}

// FallbackLLMClient sends a consultation turn to each provider in order until
// one answers.
//
// A provider that rejected the request keeps ErrGenerationRejected visible in
// the returned error even when a later provider failed transiently, so a
// retrying caller does not resend a turn the first provider will refuse again.
type FallbackLLMClient struct {
	providers []GenerationProvider
	logger    *logging.Logger
}

// NewFallbackLLMClient skips providers without a client.
func NewFallbackLLMClient(logger *logging.Logger, providers ...GenerationProvider) *FallbackLLMClient {
	if logger == nil {
		logger = logging.Default()
	}
	chain := make([]GenerationProvider, 0, len(providers))
	for _, p := range providers {
		if p.Client != nil {
			chain = append(chain, p)
		}
	}
	return &FallbackLLMClient{providers: chain, logger: logger.WithComponent("llm_fallback")}
}

// Providers returns the provider names in call order.
func (c *FallbackLLMClient) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name
	}
	return names
}

func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if len(c.providers) == 0 {
		return LLMResponse{}, fmt.Errorf("%w: no generation provider configured", ErrGenerationUnavailable)
	}

	var rejected, last error
	for i, p := range c.providers {
		resp, err := p.Client.Complete(ctx, req)
		if err == nil {
			if i > 0 {
				c.logger.Info("consultation turn served by fallback provider", "provider", p.Name)
			}
			return resp, nil
		}
		if ctx.Err() != nil {
			return LLMResponse{}, err
		}

		err = fmt.Errorf("%s: %w", p.Name, err)
		isRejected := errors.Is(err, ErrGenerationRejected)
		if isRejected && rejected == nil {
			rejected = err
		}
		last = err
		c.logger.Warn("generation provider failed",
			"provider", p.Name,
			"rejected", isRejected,
			"remaining", len(c.providers)-i-1,
			"error", err,
		)
	}

	if rejected != nil && rejected != last {
		return LLMResponse{}, errors.Join(rejected, last)
	}
	return LLMResponse{}, last
}
