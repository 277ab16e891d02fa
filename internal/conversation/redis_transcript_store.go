package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	transcriptKeyPrefix  = "eumlog_chat:"
	defaultTranscriptTTL = 30 * 24 * time.Hour
)

// RedisTranscriptStore keeps each transcript as a Redis list of JSON
// messages with a sliding TTL. Lists are never trimmed: the full transcript
// is the saved chat log and the input to completion detection.
type RedisTranscriptStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

func NewRedisTranscriptStore(redisClient *redis.Client, ttl time.Duration) *RedisTranscriptStore {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTranscriptTTL
	}
	return &RedisTranscriptStore{
		redis:  redisClient,
		tracer: otel.Tracer("eumlog.internal.conversation.transcript"),
		ttl:    ttl,
	}
}

func (s *RedisTranscriptStore) Append(ctx context.Context, key string, msgs ...Message) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if key == "" {
		return errors.New("conversation: transcript key required")
	}
	if len(msgs) == 0 {
		return nil
	}

	values := make([]any, 0, len(msgs))
	for _, msg := range msgs {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now().UTC()
		}
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("conversation: marshal transcript message: %w", err)
		}
		values = append(values, data)
	}

	ctx, span := s.tracer.Start(ctx, "conversation.transcript.append")
	defer span.End()

	redisKey := transcriptKeyPrefix + key
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, redisKey, values...)
	pipe.Expire(ctx, redisKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: append transcript: %w", err)
	}
	return nil
}

func (s *RedisTranscriptStore) List(ctx context.Context, key string) ([]Message, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if key == "" {
		return nil, errors.New("conversation: transcript key required")
	}

	ctx, span := s.tracer.Start(ctx, "conversation.transcript.list")
	defer span.End()

	raw, err := s.redis.LRange(ctx, transcriptKeyPrefix+key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Message{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: list transcript: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}
