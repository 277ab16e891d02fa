package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/eumlog/consultation-engine/internal/config"
	"github.com/eumlog/consultation-engine/internal/conversation"
	"github.com/eumlog/consultation-engine/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildTranscriptStore prefers Redis and falls back to process memory.
func BuildTranscriptStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) conversation.TranscriptStore {
	if redisClient == nil {
		if logger != nil {
			logger.Warn("redis not configured; transcripts are kept in memory")
		}
		return conversation.NewMemoryTranscriptStore()
	}
	var ttl time.Duration
	if cfg != nil {
		ttl = cfg.TranscriptTTL
	}
	return conversation.NewRedisTranscriptStore(redisClient, ttl)
}

// BuildPostgresPool connects to DATABASE_URL, or returns nil when unset or
// unreachable.
func BuildPostgresPool(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *pgxpool.Pool {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Warn("postgres not available", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// OutcomeStores groups the writer sessions use and the reader the API exposes.
type OutcomeStores struct {
	Writer conversation.OutcomeStore
	Reader conversation.OutcomeReader
}

// BuildOutcomeStores wires the spreadsheet script and Postgres stores that
// are configured. With neither, outcomes are kept in memory.
func BuildOutcomeStores(cfg *appconfig.Config, pool *pgxpool.Pool, logger *logging.Logger) OutcomeStores {
	if logger == nil {
		logger = logging.Default()
	}
	var (
		writers conversation.MultiOutcomeStore
		reader  conversation.OutcomeReader
	)
	if cfg != nil && strings.TrimSpace(cfg.OutcomeScriptURL) != "" {
		writers = append(writers, conversation.NewScriptOutcomeStore(cfg.OutcomeScriptURL, cfg.OutcomeTimeout))
	}
	if pool != nil {
		pg := conversation.NewPostgresOutcomeStore(pool)
		writers = append(writers, pg)
		reader = pg
	}

	switch len(writers) {
	case 0:
		logger.Warn("no outcome store configured; outcomes are kept in memory")
		mem := conversation.NewMemoryOutcomeStore()
		return OutcomeStores{Writer: mem, Reader: mem}
	case 1:
		return OutcomeStores{Writer: writers[0], Reader: reader}
	default:
		return OutcomeStores{Writer: writers, Reader: reader}
	}
}
