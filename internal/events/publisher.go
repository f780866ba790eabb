package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type EventType string

const (
	// EventTypeCatalogBatchLoaded is published after a run has handed its
	// cleaned table to the sinks.
	EventTypeCatalogBatchLoaded EventType = "CATALOG_BATCH_LOADED"
)

// RedisClient is the subset of the redis client the publisher needs.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

type BatchLoadedPayload struct {
	EventID    string            `json:"event_id"`
	EventType  string            `json:"event_type"`
	Timestamp  time.Time         `json:"timestamp"`
	RunID      string            `json:"run_id,omitempty"`
	Source     string            `json:"source"`
	Pages      int               `json:"pages"`
	CrawlState string            `json:"crawl_state"`
	RawCount   int               `json:"raw_count"`
	CleanCount int               `json:"clean_count"`
	Sinks      map[string]string `json:"sinks,omitempty"`
}

type Publisher struct {
	redis  RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		redis:  client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishBatchLoaded appends a CATALOG_BATCH_LOADED entry to the stream,
// filling in any missing metadata.
func (p *Publisher) PublishBatchLoaded(ctx context.Context, payload *BatchLoadedPayload) error {
	if payload.EventID == "" {
		payload.EventID = uuid.New().String()
	}
	if payload.EventType == "" {
		payload.EventType = string(EventTypeCatalogBatchLoaded)
	}
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now()
	}
	if payload.Source == "" {
		payload.Source = "fashion-etl"
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":       string(data),
			"event_id":   payload.EventID,
			"event_type": payload.EventType,
			"timestamp":  fmt.Sprintf("%d", payload.Timestamp.UnixNano()),
		},
	}

	id, err := p.redis.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Info("event published",
		"type", payload.EventType,
		"event_id", payload.EventID,
		"stream", p.stream,
		"stream_id", id,
	)
	return nil
}
