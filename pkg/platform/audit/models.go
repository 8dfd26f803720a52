package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategorySecurity covers events relevant to security monitoring and forensics.
	// These feed into SIEM systems and alerting pipelines.
	// Examples: trust settings mutations, enumeration failures.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational visibility.
	// These can be sampled or aggregated with shorter retention.
	// Examples: routine root/denylist enumerations.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// Scope is the logical query boundary for enumeration events.
	Scope string
	// Domain is the settings domain acted on, for mutation events.
	Domain string
	// Outcome is the requested classification (enumerations) or the
	// asserted result (mutations).
	Outcome string
	// Fingerprint and Subject identify the certificate for mutation events.
	Fingerprint string
	Subject     string
	// Count is the number of matches returned by an enumeration.
	Count  int
	Reason string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
	// ActorID is the authenticated admin subject for mutation events.
	ActorID  string
	ClientIP string
	Device   string
}

type AuditEvent string

const (
	// Enumeration events
	EventRootsEnumerated      AuditEvent = "roots_enumerated"
	EventDisallowedEnumerated AuditEvent = "disallowed_enumerated"
	EventEnumerationFailed    AuditEvent = "enumeration_failed"

	// Settings mutation events
	EventSettingsReplaced AuditEvent = "trust_settings_replaced"
	EventSettingsRemoved  AuditEvent = "trust_settings_removed"
)

// eventCategories maps each audit event to its category.
// Security: mutations of trust anchors and failed enumerations feed into
// SIEM and alerting. Operations: routine reads, can be sampled.
var eventCategories = map[AuditEvent]EventCategory{
	EventRootsEnumerated:      CategoryOperations,
	EventDisallowedEnumerated: CategoryOperations,

	EventEnumerationFailed: CategorySecurity,
	EventSettingsReplaced:  CategorySecurity,
	EventSettingsRemoved:   CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Sink receives audit events for persistence or forwarding.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store persists audit events and supports admin inspection queries.
type Store interface {
	Sink

	// ListRecent returns the most recent events, newest first.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
