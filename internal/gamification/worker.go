package gamification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/organizai/organizai/internal/metrics"
	"github.com/organizai/organizai/internal/model"
)

// ConsumerGroup is the Redis consumer group shared by all API instances.
const ConsumerGroup = "gamification_workers"

// Store persists XP, counters, achievements and alerts.
type Store interface {
	// ApplyXPEvent records the event once (keyed by EventID) and returns the
	// user's stats afterwards. applied is false for a duplicate delivery.
	ApplyXPEvent(ctx context.Context, event *model.XPEvent, xp int64) (stats *model.GamificationStats, applied bool, err error)
	// UnlockAchievements inserts the codes and returns those that were new.
	UnlockAchievements(ctx context.Context, userID string, codes []string) ([]string, error)
	CreateAlert(ctx context.Context, alert *model.Alert) error
}

// Leaderboard keeps the XP ranking.
type Leaderboard interface {
	SetLeaderboardScore(ctx context.Context, userID string, xp int64) error
}

// WorkerConfig tunes the stream consumer. Zero values take the defaults
// shown on each field.
type WorkerConfig struct {
	Consumer      string        // hostname-pid-nanos
	BatchSize     int           // 100
	Block         time.Duration // 5s
	ClaimEvery    time.Duration // 10s
	ClaimIdle     time.Duration // 30s
	DepthEvery    time.Duration // 5s
	RetryBackoff  time.Duration // 1s
	DeadLetterLen int64         // 10000
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.Consumer == "" {
		c.Consumer = consumerName()
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.Block <= 0 {
		c.Block = 5 * time.Second
	}
	if c.ClaimEvery <= 0 {
		c.ClaimEvery = 10 * time.Second
	}
	if c.ClaimIdle <= 0 {
		c.ClaimIdle = 30 * time.Second
	}
	if c.DepthEvery <= 0 {
		c.DepthEvery = 5 * time.Second
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
	if c.DeadLetterLen <= 0 {
		c.DeadLetterLen = 10000
	}
	return c
}

// consumerName is unique per process so restarts never inherit a dead
// consumer's pending list; XAUTOCLAIM picks those entries up instead.
func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "api"
	}
	return fmt.Sprintf("%s-%d-%d", host, os.Getpid(), time.Now().UnixNano())
}

// Worker consumes XP events from the Redis stream and turns them into XP,
// leaderboard scores, achievements and achievement alerts.
type Worker struct {
	redis   *redis.Client
	store   Store
	board   Leaderboard
	logger  *slog.Logger
	metrics metrics.Recorder
	cfg     WorkerConfig

	claimCursor string
	nextClaim   time.Time
	nextDepth   time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorker creates a worker. board may be nil.
func NewWorker(client *redis.Client, store Store, board Leaderboard, logger *slog.Logger, recorder metrics.Recorder, cfg WorkerConfig) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	cfg = cfg.withDefaults()
	return &Worker{
		redis:       client,
		store:       store,
		board:       board,
		logger:      logger.With("component", "gamification.worker", "consumer", cfg.Consumer),
		metrics:     recorder,
		cfg:         cfg,
		claimCursor: "0-0",
	}
}

// Run consumes until ctx is cancelled or Shutdown is called. A worker runs
// once; a second call fails.
func (w *Worker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.done != nil {
		w.mu.Unlock()
		return errors.New("gamification worker already started")
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.mu.Unlock()
	defer close(w.done)

	err := w.redis.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	w.logger.Info("gamification worker started")

	for ctx.Err() == nil {
		err := w.processOnce(ctx)
		if err == nil || ctx.Err() != nil {
			continue
		}
		w.logger.Error("gamification batch failed", "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(w.cfg.RetryBackoff):
		}
	}
	w.logger.Info("gamification worker stopped")
	return nil
}

// Shutdown stops the loop and waits for the in-flight batch, bounded by ctx.
// Its signature matches server.ShutdownFunc.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()
	if done == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("gamification worker: %w", ctx.Err())
	}
}

// processOnce handles one batch, preferring stale pending entries over new
// ones. Entries that fail to persist are left pending for a later claim.
func (w *Worker) processOnce(ctx context.Context) error {
	now := time.Now()
	if !now.Before(w.nextDepth) {
		w.nextDepth = now.Add(w.cfg.DepthEvery)
		w.reportDepth(ctx)
	}

	var messages []redis.XMessage
	if !now.Before(w.nextClaim) {
		w.nextClaim = now.Add(w.cfg.ClaimEvery)
		claimed, err := w.claimStale(ctx)
		if err != nil {
			w.logger.Warn("claim pending failed", "error", err)
		}
		messages = claimed
	}
	if len(messages) == 0 {
		fresh, err := w.readNew(ctx)
		if err != nil {
			return err
		}
		messages = fresh
	}

	var (
		ack      []string
		firstErr error
	)
	for _, msg := range messages {
		event, reason, err := decodeMessage(msg)
		if err != nil {
			w.deadLetter(ctx, msg, reason, err)
			ack = append(ack, msg.ID)
			continue
		}
		if err := w.handle(ctx, event); err != nil {
			w.logger.Error("apply xp event failed", "message_id", msg.ID, "user_id", event.UserID, "error", err)
			w.metrics.IncXPEventProcessed("failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		w.metrics.IncXPEventProcessed("success")
		ack = append(ack, msg.ID)
	}

	if len(ack) > 0 {
		if err := w.redis.XAck(ctx, StreamKey, ConsumerGroup, ack...).Err(); err != nil {
			return fmt.Errorf("xack: %w", err)
		}
	}
	return firstErr
}

// handle applies a single event: XP, leaderboard, achievements, alerts.
func (w *Worker) handle(ctx context.Context, event *model.XPEvent) error {
	stats, applied, err := w.store.ApplyXPEvent(ctx, event, XPFor(event.Type))
	if err != nil {
		return fmt.Errorf("apply xp: %w", err)
	}

	if applied && w.board != nil {
		if err := w.board.SetLeaderboardScore(ctx, event.UserID, stats.XP); err != nil {
			// The next event for this user rewrites the score.
			w.logger.Warn("leaderboard update failed", "user_id", event.UserID, "error", err)
		}
	}

	codes := NewlyUnlocked(stats)
	if len(codes) == 0 {
		return nil
	}
	unlocked, err := w.store.UnlockAchievements(ctx, event.UserID, codes)
	if err != nil {
		return fmt.Errorf("unlock achievements: %w", err)
	}

	for _, code := range unlocked {
		a, _ := AchievementByCode(code)
		alert := &model.Alert{
			ID:        ulid.Make().String(),
			UserID:    event.UserID,
			Type:      model.AlertAchievement,
			Title:     "Achievement unlocked: " + a.Title,
			Message:   a.Description,
			CreatedAt: time.Now().UTC(),
		}
		if err := w.store.CreateAlert(ctx, alert); err != nil {
			return fmt.Errorf("create achievement alert: %w", err)
		}
		w.logger.Info("achievement unlocked", "user_id", event.UserID, "code", code)
	}
	return nil
}

func (w *Worker) claimStale(ctx context.Context) ([]redis.XMessage, error) {
	messages, cursor, err := w.redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamKey,
		Group:    ConsumerGroup,
		Consumer: w.cfg.Consumer,
		MinIdle:  w.cfg.ClaimIdle,
		Start:    w.claimCursor,
		Count:    int64(w.cfg.BatchSize),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}
	if cursor != "" {
		w.claimCursor = cursor
	}
	return messages, nil
}

func (w *Worker) readNew(ctx context.Context) ([]redis.XMessage, error) {
	streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: w.cfg.Consumer,
		Streams:  []string{StreamKey, ">"},
		Count:    int64(w.cfg.BatchSize),
		Block:    w.cfg.Block,
	}).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("xreadgroup: %w", err)
	case len(streams) == 0:
		return nil, nil
	}
	return streams[0].Messages, nil
}

func (w *Worker) reportDepth(ctx context.Context) {
	groups, err := w.redis.XInfoGroups(ctx, StreamKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			w.logger.Warn("read stream group info failed", "error", err)
		}
		return
	}
	for _, g := range groups {
		if g.Name == ConsumerGroup {
			w.metrics.SetXPQueueDepth(g.Pending + g.Lag)
			return
		}
	}
}

// decodeMessage turns a stream entry into an event. On failure it also
// returns a short reason for the dead-letter record.
func decodeMessage(msg redis.XMessage) (*model.XPEvent, string, error) {
	raw, ok := msg.Values["payload"].(string)
	if !ok {
		return nil, "invalid_format", errors.New("payload field missing or not a string")
	}
	var payload EventPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, "unmarshal_error", err
	}
	if err := ValidatePayload(payload); err != nil {
		return nil, "validation_error", err
	}
	return &model.XPEvent{
		EventID:    msg.ID, // stream ID doubles as the idempotency key
		UserID:     payload.UserID,
		Type:       model.XPEventType(payload.Type),
		OccurredAt: time.UnixMilli(payload.OccurredAt).UTC(),
	}, "", nil
}

func (w *Worker) deadLetter(ctx context.Context, msg redis.XMessage, reason string, cause error) {
	w.logger.Warn("dead-lettering xp event", "message_id", msg.ID, "reason", reason, "error", cause)
	w.metrics.IncXPEventProcessed("dead_lettered")

	err := w.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterStreamKey,
		MaxLen: w.cfg.DeadLetterLen,
		Approx: true,
		Values: map[string]any{
			"original_id":      msg.ID,
			"reason":           reason,
			"detail":           cause.Error(),
			"payload":          msg.Values["payload"],
			"dead_lettered_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		w.logger.Error("dead-letter write failed", "message_id", msg.ID, "error", err)
	}
}
