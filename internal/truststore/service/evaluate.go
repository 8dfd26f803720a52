package service

import (
	"context"
	"crypto/x509"
	"fmt"

	"anchorage/internal/truststore/models"
)

// evaluate reports whether the certificate's settings in the domain classify
// it with the desired outcome.
//
// An empty settings sequence counts as "trust root", so it matches if (and
// only if) that is what was asked for. Otherwise the first record carrying
// a usable result value decides; a sequence where no record decides matches
// nothing.
func (s *Service) evaluate(ctx context.Context, cert *x509.Certificate, domain models.Domain, desired models.Outcome) (bool, error) {
	settings, err := s.store.TrustSettings(ctx, domain, cert)
	if err != nil {
		return false, fmt.Errorf("trust settings for %s in %s domain: %w", models.Fingerprint(cert), domain, err)
	}

	outcome, ok := settings.AssertedOutcome()
	if !ok {
		return false, nil
	}
	return outcome == desired, nil
}
