package settings

import (
	"context"
	"crypto/x509"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"anchorage/internal/truststore/models"
	"anchorage/internal/truststore/ports"
	"anchorage/pkg/platform/sentinel"
)

// PostgresStore persists trust settings in the trust_settings table. Rows are
// keyed by (domain, fingerprint); the position column fixes the per-domain
// enumeration order and survives settings replacement.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed trust-settings store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CertificatesWithSettings(ctx context.Context, domain models.Domain) ([]*x509.Certificate, error) {
	query := `
		SELECT certificate
		FROM trust_settings
		WHERE domain = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, domain.String())
	if err != nil {
		return nil, fmt.Errorf("query trust settings: %w", err)
	}
	defer rows.Close()

	var certs []*x509.Certificate
	for rows.Next() {
		var der []byte
		if err := rows.Scan(&der); err != nil {
			return nil, fmt.Errorf("scan trust settings row: %w", err)
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("parse stored certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trust settings: %w", err)
	}

	if len(certs) == 0 {
		return nil, ports.ErrNoSettings
	}
	return certs, nil
}

func (s *PostgresStore) TrustSettings(ctx context.Context, domain models.Domain, cert *x509.Certificate) (models.TrustSettings, error) {
	query := `
		SELECT settings
		FROM trust_settings
		WHERE domain = $1 AND fingerprint = $2
	`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, domain.String(), models.Fingerprint(cert)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query trust settings: %w", err)
	}

	var settings models.TrustSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("unmarshal trust settings: %w", err)
	}
	return settings, nil
}

func (s *PostgresStore) PutSettings(ctx context.Context, domain models.Domain, cert *x509.Certificate, settings models.TrustSettings) error {
	if settings == nil {
		settings = models.TrustSettings{}
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal trust settings: %w", err)
	}

	// Position is a sequence assigned on first insert; replacing settings
	// keeps the certificate's place in the enumeration order.
	query := `
		INSERT INTO trust_settings (domain, fingerprint, certificate, settings, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (domain, fingerprint)
		DO UPDATE SET certificate = EXCLUDED.certificate,
		              settings   = EXCLUDED.settings,
		              updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		domain.String(),
		models.Fingerprint(cert),
		cert.Raw,
		raw,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert trust settings: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveSettings(ctx context.Context, domain models.Domain, fingerprint string) error {
	query := `
		DELETE FROM trust_settings
		WHERE domain = $1 AND fingerprint = $2
	`

	result, err := s.db.ExecContext(ctx, query, domain.String(), fingerprint)
	if err != nil {
		return fmt.Errorf("delete trust settings: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete trust settings: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
