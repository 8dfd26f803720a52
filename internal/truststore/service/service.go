// Package service implements trust-settings classification: deciding, per
// logical scope, which certificates the settings store marks as trusted
// roots and which it explicitly denies.
package service

import (
	"context"
	"crypto/x509"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"anchorage/internal/truststore/metrics"
	"anchorage/internal/truststore/models"
	"anchorage/internal/truststore/observability"
	"anchorage/internal/truststore/ports"
	audit "anchorage/pkg/platform/audit"
)

// tracerName identifies this instrumentation scope.
const tracerName = "anchorage/truststore"

// Service answers root and denylist queries against an injected
// trust-settings store. All state is query-scoped; the service itself is
// safe for concurrent use as long as the store is.
type Service struct {
	store          ports.Store
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher ports.AuditPublisher
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(store ports.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	svc := &Service{
		store:  store,
		tracer: otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// EnumerateUserRoots returns the certificates the user domain classifies as
// trusted roots.
func (s *Service) EnumerateUserRoots(ctx context.Context) ([]*x509.Certificate, error) {
	return s.enumerate(ctx, models.ScopeUser, models.OutcomeTrustRoot)
}

// EnumerateMachineRoots returns the certificates the admin and system
// domains classify as trusted roots, admin matches first.
func (s *Service) EnumerateMachineRoots(ctx context.Context) ([]*x509.Certificate, error) {
	return s.enumerate(ctx, models.ScopeMachine, models.OutcomeTrustRoot)
}

// EnumerateUserDisallowed returns the certificates the user domain
// explicitly denies.
func (s *Service) EnumerateUserDisallowed(ctx context.Context) ([]*x509.Certificate, error) {
	return s.enumerate(ctx, models.ScopeUser, models.OutcomeDeny)
}

// EnumerateMachineDisallowed returns the certificates the admin and system
// domains explicitly deny, admin matches first.
func (s *Service) EnumerateMachineDisallowed(ctx context.Context) ([]*x509.Certificate, error) {
	return s.enumerate(ctx, models.ScopeMachine, models.OutcomeDeny)
}

// enumerate resolves one (scope, outcome) query and records observability
// around it. The result is either the complete ordered match collection or
// nil with the store error that aborted the chain.
func (s *Service) enumerate(ctx context.Context, scope models.Scope, desired models.Outcome) ([]*x509.Certificate, error) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "truststore.enumerate",
		trace.WithAttributes(
			attribute.String("truststore.scope", scope.String()),
			attribute.String("truststore.outcome", desired.String()),
		),
	)
	defer span.End()

	matches, err := s.resolveScope(ctx, scope, desired)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enumeration aborted")
		if s.metrics != nil {
			s.metrics.IncrementEnumerationErrors(scope.String(), desired.String())
		}
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "trust settings enumeration failed",
				"scope", scope,
				"outcome", desired,
				"error", err,
			)
		}
		s.logAudit(ctx, audit.Event{
			Action:  string(audit.EventEnumerationFailed),
			Scope:   scope.String(),
			Outcome: desired.String(),
			Reason:  err.Error(),
		})
		return nil, err
	}

	span.SetAttributes(attribute.Int("truststore.matches", len(matches)))
	if s.metrics != nil {
		s.metrics.ObserveEnumeration(scope.String(), desired.String(), len(matches), time.Since(start))
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "trust settings enumerated",
			"scope", scope,
			"outcome", desired,
			"matches", len(matches),
		)
	}

	action := audit.EventRootsEnumerated
	if desired == models.OutcomeDeny {
		action = audit.EventDisallowedEnumerated
	}
	s.logAudit(ctx, audit.Event{
		Action:  string(action),
		Scope:   scope.String(),
		Outcome: desired.String(),
		Count:   len(matches),
	})

	return matches, nil
}

// logAudit emits an audit event for truststore operations.
func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	observability.LogAudit(ctx, s.logger, s.auditPublisher, event,
		"scope", event.Scope,
		"outcome", event.Outcome,
	)
}
