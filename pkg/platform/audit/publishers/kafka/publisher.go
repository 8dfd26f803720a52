// Package kafka provides an audit sink that publishes events to a Kafka
// topic. It is wired behind the audit worker so request handling never
// waits on the broker.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"anchorage/internal/platform/kafka/producer"
	audit "anchorage/pkg/platform/audit"

	"github.com/google/uuid"
)

// Publisher implements audit.Sink by producing one JSON record per event.
type Publisher struct {
	producer *producer.Producer
}

// New creates a Kafka audit publisher on top of an existing producer.
func New(p *producer.Producer) (*Publisher, error) {
	if p == nil {
		return nil, fmt.Errorf("producer is required")
	}
	return &Publisher{producer: p}, nil
}

// payload is the JSON structure published to Kafka. Field names match
// audit.Event for proper deserialization by consumers.
type payload struct {
	ID          string `json:"ID"`
	Category    string `json:"Category"`
	Timestamp   string `json:"Timestamp"`
	Action      string `json:"Action"`
	Scope       string `json:"Scope,omitempty"`
	Domain      string `json:"Domain,omitempty"`
	Outcome     string `json:"Outcome,omitempty"`
	Fingerprint string `json:"Fingerprint,omitempty"`
	Subject     string `json:"Subject,omitempty"`
	Count       int    `json:"Count,omitempty"`
	Reason      string `json:"Reason,omitempty"`
	RequestID   string `json:"RequestID,omitempty"`
	ActorID     string `json:"ActorID,omitempty"`
	ClientIP    string `json:"ClientIP,omitempty"`
	Device      string `json:"Device,omitempty"`
}

// Append publishes one audit event.
func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	// Derive the category from the action when the emitter left it unset.
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	body := payload{
		ID:          uuid.NewString(),
		Category:    string(category),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		Action:      event.Action,
		Scope:       event.Scope,
		Domain:      event.Domain,
		Outcome:     event.Outcome,
		Fingerprint: event.Fingerprint,
		Subject:     event.Subject,
		Count:       event.Count,
		Reason:      event.Reason,
		RequestID:   event.RequestID,
		ActorID:     event.ActorID,
		ClientIP:    event.ClientIP,
		Device:      event.Device,
	}

	value, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	// Key on the certificate fingerprint so mutations of one certificate
	// stay ordered within a partition.
	key := event.Fingerprint
	if key == "" {
		key = event.Action
	}

	if err := p.producer.Publish(ctx, []byte(key), value); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

// DecodeEvent parses a published audit record back into an Event.
func DecodeEvent(value []byte) (audit.Event, error) {
	var body payload
	if err := json.Unmarshal(value, &body); err != nil {
		return audit.Event{}, fmt.Errorf("unmarshal audit payload: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	if err != nil {
		return audit.Event{}, fmt.Errorf("parse audit timestamp: %w", err)
	}

	return audit.Event{
		Category:    audit.EventCategory(body.Category),
		Timestamp:   timestamp,
		Action:      body.Action,
		Scope:       body.Scope,
		Domain:      body.Domain,
		Outcome:     body.Outcome,
		Fingerprint: body.Fingerprint,
		Subject:     body.Subject,
		Count:       body.Count,
		Reason:      body.Reason,
		RequestID:   body.RequestID,
		ActorID:     body.ActorID,
		ClientIP:    body.ClientIP,
		Device:      body.Device,
	}, nil
}
