// Package settings provides trust-settings store implementations. Every
// backend keeps a stable per-domain order so repeated enumerations agree.
package settings

import (
	"context"
	"crypto/x509"
	"sync"

	"anchorage/internal/truststore/models"
	"anchorage/internal/truststore/ports"
	"anchorage/pkg/platform/sentinel"
)

type domainEntries struct {
	order    []string
	certs    map[string]*x509.Certificate
	settings map[string]models.TrustSettings
}

func newDomainEntries() *domainEntries {
	return &domainEntries{
		certs:    make(map[string]*x509.Certificate),
		settings: make(map[string]models.TrustSettings),
	}
}

// InMemoryStore keeps trust settings per domain in memory, preserving
// insertion order within each domain.
type InMemoryStore struct {
	mu      sync.RWMutex
	domains map[models.Domain]*domainEntries
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		domains: make(map[models.Domain]*domainEntries),
	}
}

func (s *InMemoryStore) CertificatesWithSettings(_ context.Context, domain models.Domain) ([]*x509.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

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

func (s *InMemoryStore) TrustSettings(_ context.Context, domain models.Domain, cert *x509.Certificate) (models.TrustSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, exists := s.domains[domain]
	if !exists {
		return nil, sentinel.ErrNotFound
	}

	fingerprint := models.Fingerprint(cert)
	settings, exists := entries.settings[fingerprint]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return copySettings(settings), nil
}

func (s *InMemoryStore) PutSettings(_ context.Context, domain models.Domain, cert *x509.Certificate, settings models.TrustSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, exists := s.domains[domain]
	if !exists {
		entries = newDomainEntries()
		s.domains[domain] = entries
	}

	fingerprint := models.Fingerprint(cert)
	if _, exists := entries.settings[fingerprint]; !exists {
		entries.order = append(entries.order, fingerprint)
	}
	entries.certs[fingerprint] = cert
	entries.settings[fingerprint] = copySettings(settings)
	return nil
}

func (s *InMemoryStore) RemoveSettings(_ context.Context, domain models.Domain, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, exists := s.domains[domain]
	if !exists {
		return sentinel.ErrNotFound
	}
	if _, exists := entries.settings[fingerprint]; !exists {
		return sentinel.ErrNotFound
	}

	delete(entries.certs, fingerprint)
	delete(entries.settings, fingerprint)
	for i, fp := range entries.order {
		if fp == fingerprint {
			entries.order = append(entries.order[:i], entries.order[i+1:]...)
			break
		}
	}
	return nil
}

// copySettings clones the sequence so callers cannot alias store state.
func copySettings(settings models.TrustSettings) models.TrustSettings {
	if settings == nil {
		return nil
	}
	out := make(models.TrustSettings, len(settings))
	for i, record := range settings {
		clone := make(models.Record, len(record))
		for k, v := range record {
			clone[k] = v
		}
		out[i] = clone
	}
	return out
}
