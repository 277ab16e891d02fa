package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/eumlog/consultation-engine/internal/observability/metrics"
	"github.com/eumlog/consultation-engine/pkg/logging"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
)

// RetryOptions configures RetryingLLMClient.
type RetryOptions struct {
	MaxAttempts int
	// BaseDelay is multiplied by the attempt number between attempts.
	BaseDelay time.Duration
	// Limiter spaces calls to the provider. Nil disables limiting.
	Limiter *rate.Limiter
	// CallTimeout bounds a single attempt. Zero leaves the caller's deadline.
	CallTimeout time.Duration
	Metrics     *metrics.ConsultationMetrics
	Logger      *logging.Logger
}

// RetryingLLMClient retries transient generation failures with linear
// backoff. Rejected requests and cancelled contexts return immediately.
type RetryingLLMClient struct {
	next   LLMClient
	opts   RetryOptions
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
	logger *logging.Logger
}

// NewRetryingLLMClient wraps next with bounded retries.
func NewRetryingLLMClient(next LLMClient, opts RetryOptions) *RetryingLLMClient {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BaseDelay < 0 {
		opts.BaseDelay = defaultRetryDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &RetryingLLMClient{
		next:   next,
		opts:   opts,
		sleep:  sleepContext,
		now:    time.Now,
		logger: logger.WithComponent("llm_retry"),
	}
}

func (c *RetryingLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if c.opts.Limiter != nil {
			if err := c.opts.Limiter.Wait(ctx); err != nil {
				return LLMResponse{}, fmt.Errorf("conversation: rate limiter: %w", err)
			}
		}

		resp, err := c.attempt(ctx, req)
		if err == nil {
			c.opts.Metrics.ObserveGeneration("success", resp.latency.Seconds())
			return resp.LLMResponse, nil
		}
		lastErr = err

		if errors.Is(err, ErrGenerationRejected) {
			c.opts.Metrics.ObserveGeneration("rejected", resp.latency.Seconds())
			c.logger.Warn("generation rejected", "attempt", attempt, "error", err)
			return LLMResponse{}, err
		}
		if ctx.Err() != nil {
			return LLMResponse{}, ctx.Err()
		}
		if attempt == c.opts.MaxAttempts {
			c.opts.Metrics.ObserveGeneration("exhausted", resp.latency.Seconds())
			break
		}

		c.opts.Metrics.ObserveGeneration("retry", resp.latency.Seconds())
		backoff := time.Duration(attempt) * c.opts.BaseDelay
		c.logger.Warn("generation attempt failed, retrying",
			"attempt", attempt,
			"backoff", backoff.String(),
			"error", err,
		)
		if err := c.sleep(ctx, backoff); err != nil {
			return LLMResponse{}, err
		}
	}

	c.logger.Error("generation failed after retries", "attempts", c.opts.MaxAttempts, "error", lastErr)
	return LLMResponse{}, fmt.Errorf("%w after %d attempts: %v", ErrGenerationUnavailable, c.opts.MaxAttempts, lastErr)
}

type timedResponse struct {
	LLMResponse
	latency time.Duration
}

func (c *RetryingLLMClient) attempt(ctx context.Context, req LLMRequest) (timedResponse, error) {
	if c.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.CallTimeout)
		defer cancel()
	}
	start := c.now()
	resp, err := c.next.Complete(ctx, req)
	return timedResponse{LLMResponse: resp, latency: c.now().Sub(start)}, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
