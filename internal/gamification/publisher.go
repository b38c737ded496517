package gamification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/organizai/organizai/internal/metrics"
	"github.com/organizai/organizai/internal/model"
)

const (
	// StreamKey is the Redis stream carrying XP events.
	StreamKey = "stream:xp_events"
	// DeadLetterStreamKey receives entries the worker cannot decode.
	DeadLetterStreamKey = "stream:xp_events:dlq"

	streamMaxLen   = 100000
	publishTimeout = 250 * time.Millisecond
)

// EventPayload is the compact event format stored in the stream.
type EventPayload struct {
	UserID     string `json:"uid"`
	Type       string `json:"t"`
	OccurredAt int64  `json:"ts"` // Unix milliseconds
}

func encodePayload(userID string, eventType model.XPEventType, at time.Time) (string, error) {
	data, err := json.Marshal(EventPayload{UserID: userID, Type: string(eventType), OccurredAt: at.UnixMilli()})
	if err != nil {
		return "", fmt.Errorf("marshal xp event: %w", err)
	}
	return string(data), nil
}

// Publisher appends XP events to the stream. Domain writes never wait on it.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a publisher on client.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "gamification.publisher"),
		metrics: recorder,
	}
}

// Publish appends one event and returns its stream ID.
func (p *Publisher) Publish(ctx context.Context, userID string, eventType model.XPEventType) (string, error) {
	payload, err := encodePayload(userID, eventType, time.Now())
	if err != nil {
		return "", err
	}
	id, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{"payload": payload},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}
	return id, nil
}

// PublishAsync publishes in the background with a short timeout. A lost
// event costs the user some XP and is only logged and counted.
func (p *Publisher) PublishAsync(userID string, eventType model.XPEventType) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		id, err := p.Publish(ctx, userID, eventType)
		if err != nil {
			p.logger.Warn("xp event dropped", "user_id", userID, "type", eventType, "error", err)
			p.metrics.IncXPEventPublished("dropped")
			return
		}
		p.logger.Debug("xp event published", "user_id", userID, "type", eventType, "stream_id", id)
		p.metrics.IncXPEventPublished("success")
	}()
}
