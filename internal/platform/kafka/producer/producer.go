// Package producer wraps a franz-go client for publishing to a single topic.
package producer

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Config holds Kafka producer settings.
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Producer publishes records to one topic.
type Producer struct {
	client *kgo.Client
	topic  string
}

// New creates a producer and verifies broker connectivity.
func New(cfg Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}

	return &Producer{client: client, topic: cfg.Topic}, nil
}

// EnsureTopic creates the topic if it does not exist yet.
func (p *Producer) EnsureTopic(ctx context.Context, partitions int32, replicas int16) error {
	adm := kadm.NewClient(p.client)

	if _, err := adm.CreateTopic(ctx, partitions, replicas, nil, p.topic); err != nil {
		if errors.Is(err, kerr.TopicAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	return nil
}

// Publish produces one record synchronously.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	record := &kgo.Record{
		Topic: p.topic,
		Key:   key,
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// Topic returns the topic this producer publishes to.
func (p *Producer) Topic() string {
	return p.topic
}

// Close flushes buffered records and closes the client.
func (p *Producer) Close() {
	p.client.Close()
}
