// Package admin implements the management operations behind the admin API:
// inspecting, replacing, and removing per-domain trust settings, and reading
// back the audit trail.
package admin

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"

	"anchorage/internal/truststore/metrics"
	"anchorage/internal/truststore/models"
	"anchorage/internal/truststore/observability"
	"anchorage/internal/truststore/ports"
	dErrors "anchorage/pkg/domain-errors"
	audit "anchorage/pkg/platform/audit"
	"anchorage/pkg/platform/sentinel"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// Entry pairs a certificate with its settings sequence in one domain.
type Entry struct {
	Certificate *x509.Certificate
	Settings    models.TrustSettings
}

// Service manages trust settings on behalf of authenticated operators.
// Every mutation is audited.
type Service struct {
	store          ports.Store
	writer         ports.SettingsWriter
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher ports.AuditPublisher
	auditLog       audit.Store
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

// WithAuditLog wires the persisted audit trail used by RecentAuditEvents.
func WithAuditLog(store audit.Store) Option {
	return func(s *Service) {
		s.auditLog = store
	}
}

func New(store ports.Store, writer ports.SettingsWriter, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if writer == nil {
		return nil, fmt.Errorf("settings writer is required")
	}

	svc := &Service{
		store:  store,
		writer: writer,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// ListSettings returns every certificate that has trust settings in the
// domain, paired with its settings sequence, in store order. A domain
// without settings yields an empty list.
func (s *Service) ListSettings(ctx context.Context, domain models.Domain) ([]Entry, error) {
	if !domain.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown domain")
	}

	certs, err := s.store.CertificatesWithSettings(ctx, domain)
	if err != nil {
		if errors.Is(err, ports.ErrNoSettings) {
			return []Entry{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "settings store unavailable")
	}

	entries := make([]Entry, 0, len(certs))
	for _, cert := range certs {
		if cert == nil {
			continue
		}
		settings, err := s.store.TrustSettings(ctx, domain, cert)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "settings store unavailable")
		}
		entries = append(entries, Entry{Certificate: cert, Settings: settings})
	}

	return entries, nil
}

// ReplaceSettings stores or replaces the settings sequence for the
// certificate in the domain. An empty sequence is meaningful: it marks the
// certificate as an ordinary trusted root.
func (s *Service) ReplaceSettings(ctx context.Context, domain models.Domain, cert *x509.Certificate, settings models.TrustSettings) error {
	if !domain.IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown domain")
	}
	if cert == nil {
		return dErrors.New(dErrors.CodeBadRequest, "certificate is required")
	}

	if err := s.writer.PutSettings(ctx, domain, cert, settings); err != nil {
		if errors.Is(err, sentinel.ErrReadOnly) {
			return dErrors.Wrap(err, dErrors.CodeForbidden, "settings store is read-only")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "settings store unavailable")
	}

	if s.metrics != nil {
		s.metrics.IncrementSettingsMutations(domain.String(), "replace")
	}

	event := audit.Event{
		Action:      string(audit.EventSettingsReplaced),
		Domain:      domain.String(),
		Fingerprint: models.Fingerprint(cert),
		Subject:     cert.Subject.String(),
	}
	if outcome, ok := settings.AssertedOutcome(); ok {
		event.Outcome = outcome.String()
	}
	s.logAudit(ctx, event)

	return nil
}

// RemoveSettings deletes the settings for the fingerprint in the domain.
func (s *Service) RemoveSettings(ctx context.Context, domain models.Domain, fingerprint string) error {
	if !domain.IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown domain")
	}
	if fingerprint == "" {
		return dErrors.New(dErrors.CodeBadRequest, "fingerprint is required")
	}

	if err := s.writer.RemoveSettings(ctx, domain, fingerprint); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeNotFound, "no trust settings for fingerprint")
		case errors.Is(err, sentinel.ErrReadOnly):
			return dErrors.Wrap(err, dErrors.CodeForbidden, "settings store is read-only")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "settings store unavailable")
	}

	if s.metrics != nil {
		s.metrics.IncrementSettingsMutations(domain.String(), "remove")
	}

	s.logAudit(ctx, audit.Event{
		Action:      string(audit.EventSettingsRemoved),
		Domain:      domain.String(),
		Fingerprint: fingerprint,
	})

	return nil
}

// RecentAuditEvents returns up to limit of the newest audit events. A
// non-positive limit selects the default page size.
func (s *Service) RecentAuditEvents(ctx context.Context, limit int) ([]audit.Event, error) {
	if s.auditLog == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "audit log not configured")
	}

	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	events, err := s.auditLog.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "audit log unavailable")
	}
	return events, nil
}

// logAudit emits an audit event for settings mutations.
func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	observability.LogAudit(ctx, s.logger, s.auditPublisher, event,
		"domain", event.Domain,
		"fingerprint", event.Fingerprint,
	)
}
