package settings

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"

	"anchorage/internal/truststore/models"
	"anchorage/internal/truststore/ports"
	"anchorage/pkg/platform/sentinel"
)

// fileEntry is one certificate with its settings in the on-disk document.
type fileEntry struct {
	Certificate string               `json:"certificate"`
	Settings    models.TrustSettings `json:"settings"`
}

// FileStore serves trust settings from a JSON document, for deployments that
// ship a fixed baseline (typically the system domain) as configuration. The
// document maps domain names to ordered entry arrays:
//
//	{
//	  "system": [
//	    {"certificate": "-----BEGIN CERTIFICATE-----\n...", "settings": [{"result": 1}]}
//	  ]
//	}
//
// The file is read once at construction; changes require a restart. Mutations
// are rejected with sentinel.ErrReadOnly.
type FileStore struct {
	domains map[models.Domain]*domainEntries
}

// NewFileStore loads and validates the settings document at path.
func NewFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var doc map[string][]fileEntry
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}

	store := &FileStore{domains: make(map[models.Domain]*domainEntries)}
	for name, fileEntries := range doc {
		domain, err := models.ParseDomain(name)
		if err != nil {
			return nil, fmt.Errorf("settings file: %w", err)
		}

		entries := newDomainEntries()
		for i, entry := range fileEntries {
			cert, err := models.ParsePEM([]byte(entry.Certificate))
			if err != nil {
				return nil, fmt.Errorf("settings file: %s domain entry %d: %w", name, i, err)
			}
			fingerprint := models.Fingerprint(cert)
			if _, exists := entries.settings[fingerprint]; exists {
				return nil, fmt.Errorf("settings file: %s domain entry %d: duplicate certificate %s", name, i, fingerprint)
			}
			entries.order = append(entries.order, fingerprint)
			entries.certs[fingerprint] = cert
			entries.settings[fingerprint] = entry.Settings
		}
		store.domains[domain] = entries
	}

	return store, nil
}

func (s *FileStore) CertificatesWithSettings(_ context.Context, domain models.Domain) ([]*x509.Certificate, error) {
	entries, exists := s.domains[domain]
	if !exists || len(entries.order) == 0 {
		return nil, ports.ErrNoSettings
	}

	certs := make([]*x509.Certificate, 0, len(entries.order))
	for _, fingerprint := range entries.order {
		certs = append(certs, entries.certs[fingerprint])
	}
	return certs, nil
}

func (s *FileStore) TrustSettings(_ context.Context, domain models.Domain, cert *x509.Certificate) (models.TrustSettings, error) {
	entries, exists := s.domains[domain]
	if !exists {
		return nil, sentinel.ErrNotFound
	}

	settings, exists := entries.settings[models.Fingerprint(cert)]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return copySettings(settings), nil
}

func (s *FileStore) PutSettings(context.Context, models.Domain, *x509.Certificate, models.TrustSettings) error {
	return sentinel.ErrReadOnly
}

func (s *FileStore) RemoveSettings(context.Context, models.Domain, string) error {
	return sentinel.ErrReadOnly
}
