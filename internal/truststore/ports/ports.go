// Package ports defines shared interfaces for the truststore module.
// Interfaces are placed here when consumed by multiple services to avoid duplication.
package ports

import (
	"context"
	"crypto/x509"
	"errors"

	"anchorage/internal/truststore/models"
	"anchorage/pkg/platform/audit"
)

// ErrNoSettings is reported by Store implementations when a domain holds no
// trust settings at all. Enumeration treats it as an empty contribution from
// that domain, not as a failure.
var ErrNoSettings = errors.New("no trust settings in domain")

// Store supplies raw trust-settings data per domain. Implementations must
// keep a stable per-domain order so repeated enumerations agree.
type Store interface {
	// CertificatesWithSettings returns every certificate that has trust
	// settings in the domain, in store order. Returns ErrNoSettings when
	// the domain holds no settings at all.
	CertificatesWithSettings(ctx context.Context, domain models.Domain) ([]*x509.Certificate, error)

	// TrustSettings returns the ordered settings sequence for one
	// certificate in one domain. An empty sequence is valid data, not an
	// error: it marks the certificate as an ordinary trusted root.
	TrustSettings(ctx context.Context, domain models.Domain, cert *x509.Certificate) (models.TrustSettings, error)
}

// SettingsWriter is the mutation side of a trust-settings store. Read-only
// backends (the file store) reject writes with sentinel.ErrReadOnly.
type SettingsWriter interface {
	// PutSettings stores or replaces the settings sequence for a certificate.
	PutSettings(ctx context.Context, domain models.Domain, cert *x509.Certificate, settings models.TrustSettings) error

	// RemoveSettings deletes a certificate's settings by fingerprint.
	// Returns sentinel.ErrNotFound when the fingerprint has no settings
	// in the domain.
	RemoveSettings(ctx context.Context, domain models.Domain, fingerprint string) error
}

// AuditPublisher emits audit events for security-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
