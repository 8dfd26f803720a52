// Package consumer wraps a franz-go consumer group client.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is one consumed record, decoupled from the client library so
// handlers stay testable.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
}

// Handler processes consumed messages. Returning an error logs the failure;
// the message is not redelivered within this process.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Config holds Kafka consumer settings.
type Config struct {
	Brokers  []string
	Topics   []string
	Group    string
	ClientID string
}

// Consumer polls records from the configured topics and dispatches them to
// a handler.
type Consumer struct {
	client *kgo.Client
	logger *slog.Logger
}

// New creates a consumer group client reading from the earliest offset.
func New(cfg Config, logger *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("at least one topic is required")
	}
	if cfg.Group == "" {
		return nil, fmt.Errorf("consumer group is required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &Consumer{client: client, logger: logger}, nil
}

// Run polls until the context is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			if c.logger != nil {
				c.logger.ErrorContext(ctx, "kafka fetch error",
					"topic", topic,
					"partition", partition,
					"error", err,
				)
			}
		})

		fetches.EachRecord(func(record *kgo.Record) {
			msg := &Message{
				Topic:     record.Topic,
				Partition: record.Partition,
				Offset:    record.Offset,
				Key:       record.Key,
				Value:     record.Value,
				Timestamp: record.Timestamp,
			}
			if err := handler.Handle(ctx, msg); err != nil && c.logger != nil {
				c.logger.ErrorContext(ctx, "kafka message handling failed",
					"topic", record.Topic,
					"offset", record.Offset,
					"error", err,
				)
			}
		})
	}
}

// Close leaves the consumer group and closes the client.
func (c *Consumer) Close() {
	c.client.Close()
}
