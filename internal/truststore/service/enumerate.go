package service

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"

	"anchorage/internal/truststore/models"
	"anchorage/internal/truststore/ports"
)

// enumerateDomain appends every certificate whose settings in the domain
// match the desired outcome to acc, in store order. A domain without any
// trust settings contributes nothing and is not an error. Any other store
// failure, including a per-certificate evaluation failure, aborts the
// enumeration immediately.
func (s *Service) enumerateDomain(ctx context.Context, domain models.Domain, desired models.Outcome, acc []*x509.Certificate) ([]*x509.Certificate, error) {
	certs, err := s.store.CertificatesWithSettings(ctx, domain)
	if err != nil {
		if errors.Is(err, ports.ErrNoSettings) {
			return acc, nil
		}
		return acc, fmt.Errorf("certificates with settings in %s domain: %w", domain, err)
	}

	for _, cert := range certs {
		if cert == nil {
			continue
		}

		match, err := s.evaluate(ctx, cert, domain, desired)
		if err != nil {
			return acc, err
		}
		if match {
			acc = append(acc, cert)
		}
	}

	return acc, nil
}

// resolveScope runs the domain enumeration over each of the scope's domains
// in order, sharing one accumulator so later domains append after earlier
// ones. Any failure in the chain discards matches already found: callers
// see either the complete ordered collection or nothing. An enumeration
// that finds nothing returns a nil collection.
func (s *Service) resolveScope(ctx context.Context, scope models.Scope, desired models.Outcome) ([]*x509.Certificate, error) {
	var matches []*x509.Certificate

	for _, domain := range scope.Domains() {
		var err error
		matches, err = s.enumerateDomain(ctx, domain, desired, matches)
		if err != nil {
			return nil, err
		}
	}

	if len(matches) == 0 {
		return nil, nil
	}
	return matches, nil
}
