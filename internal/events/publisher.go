// Package events publishes identity events to a Redis stream and persists
// them from a background worker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swiftslot/swiftslot/internal/metrics"
	"github.com/swiftslot/swiftslot/internal/model"
)

const (
	// StreamKey is the Redis stream for identity events.
	StreamKey = "stream:identity_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:identity_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Payload is the compact event format stored in the stream.
type Payload struct {
	Type           string `json:"t"`
	OrganizationID string `json:"o,omitempty"`
	UserID         string `json:"u,omitempty"`
	SubjectHash    string `json:"sh,omitempty"`
	IP             string `json:"ip,omitempty"`
	OccurredAt     int64  `json:"ts"` // Unix milliseconds
}

// PayloadFromEvent converts a domain event into its stream payload.
func PayloadFromEvent(event *model.IdentityEvent) Payload {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return Payload{
		Type:           string(event.Type),
		OrganizationID: event.OrganizationID,
		UserID:         event.UserID,
		SubjectHash:    event.SubjectHash,
		IP:             event.IP,
		OccurredAt:     occurred.UnixMilli(),
	}
}

// Publisher enqueues identity events to the Redis stream.
type Publisher struct {
	redis    *redis.Client
	logger   *slog.Logger
	metrics  metrics.Recorder
	inflight sync.WaitGroup
}

// NewPublisher creates a new identity event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
	}
}

// Publish adds an event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, payload Payload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]any{
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// Record publishes the event without blocking the caller.
// Failures are logged and counted as dropped; they never reach the caller.
func (p *Publisher) Record(event *model.IdentityEvent) {
	payload := PayloadFromEvent(event)

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, payload)
		if err != nil {
			p.logger.Warn("failed to publish identity event",
				slog.String("type", payload.Type),
				slog.String("error", err.Error()),
			)
			p.metrics.IncIdentityEventPublished(metrics.StatusDropped)
			return
		}

		p.logger.Debug("identity event published",
			slog.String("type", payload.Type),
			slog.String("stream_id", streamID),
		)
		p.metrics.IncIdentityEventPublished(metrics.StatusSuccess)
	}()
}

// Flush waits for in-flight publishes to finish. It matches server.ShutdownFunc.
func (p *Publisher) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
