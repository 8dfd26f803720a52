// Package models defines the domain types for trust-settings classification:
// domains, outcomes, settings records, and the scopes that span domains.
package models

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
)

// Domain identifies one level of the trust-settings hierarchy.
// User settings belong to a single account, admin settings are
// machine-wide overrides, and system settings are the platform baseline.
type Domain int32

const (
	DomainUser   Domain = 0
	DomainAdmin  Domain = 1
	DomainSystem Domain = 2
)

// domainNames is the single source of truth for domain wire names.
var domainNames = map[Domain]string{
	DomainUser:   "user",
	DomainAdmin:  "admin",
	DomainSystem: "system",
}

// ParseDomain constructs a Domain from external input.
//
// Usage: call from handlers/adapters when parsing path parameters.
// Returns an error when the value is empty or not a known domain.
func ParseDomain(s string) (Domain, error) {
	if s == "" {
		return 0, fmt.Errorf("domain cannot be empty")
	}
	for d, name := range domainNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown domain: %s", s)
}

// IsValid checks if the domain is one of the supported enum values.
func (d Domain) IsValid() bool {
	_, ok := domainNames[d]
	return ok
}

// String returns the wire name of the domain.
func (d Domain) String() string {
	if name, ok := domainNames[d]; ok {
		return name
	}
	return fmt.Sprintf("domain(%d)", int32(d))
}

// Outcome is the classification a settings record asserts for a certificate.
// Values follow the platform's numeric convention so that settings data
// produced elsewhere round-trips without translation.
type Outcome int32

const (
	OutcomeInvalid     Outcome = 0
	OutcomeTrustRoot   Outcome = 1
	OutcomeTrustAsRoot Outcome = 2
	OutcomeDeny        Outcome = 3
	OutcomeUnspecified Outcome = 4
)

// outcomeNames is the single source of truth for outcome wire names.
var outcomeNames = map[Outcome]string{
	OutcomeInvalid:     "invalid",
	OutcomeTrustRoot:   "trust_root",
	OutcomeTrustAsRoot: "trust_as_root",
	OutcomeDeny:        "deny",
	OutcomeUnspecified: "unspecified",
}

// IsValid checks if the outcome is one of the supported enum values.
func (o Outcome) IsValid() bool {
	_, ok := outcomeNames[o]
	return ok
}

// String returns the wire name of the outcome.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int32(o))
}

// KeyResult is the reserved record key holding the asserted Outcome.
// Any other key is an uninterpreted constraint.
const KeyResult = "result"

// Record is a single constraint-record in a certificate's trust settings.
// The reserved KeyResult key asserts an Outcome; additional keys narrow the
// record's applicability in ways this module does not evaluate.
type Record map[string]any

// Result extracts the asserted outcome from the record.
//
// Settings data arrives from heterogeneous sources (in-memory fixtures,
// JSON columns, serialized caches), so the result value may be carried by
// any integer-shaped type. Returns ok=false when the key is absent, the
// value is not numeric, or it does not convert losslessly to a 32-bit
// value. Callers treat ok=false as "this record does not decide".
func (r Record) Result() (Outcome, bool) {
	v, ok := r[KeyResult]
	if !ok {
		return 0, false
	}
	n, ok := asInt32(v)
	if !ok {
		return 0, false
	}
	return Outcome(n), true
}

// asInt32 converts integer-shaped values to int32, rejecting lossy conversions.
func asInt32(v any) (int32, bool) {
	switch n := v.(type) {
	case Outcome:
		return int32(n), true
	case int:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int32(n), true
	case int32:
		return n, true
	case int64:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int32(n), true
	case float64:
		// JSON decoding yields float64; accept only integral values in range.
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int32(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return 0, false
		}
		return int32(i), true
	}
	return 0, false
}

// TrustSettings is the ordered settings sequence for one certificate in one
// domain. An empty sequence means "trusted as an ordinary root with no
// explicit override".
type TrustSettings []Record

// AssertedOutcome resolves the outcome the sequence asserts. An empty
// sequence asserts OutcomeTrustRoot. Otherwise records are scanned in order
// and the first one carrying a usable result value decides; later records
// are not considered. Returns ok=false when no record decides.
//
// A record with keys beyond the result value carries constraints that a full
// trust evaluation might or might not apply. They cannot be interpreted
// here, so such a record never decides, and this resolution may disagree
// with a full chain evaluation for the certificate.
func (ts TrustSettings) AssertedOutcome() (Outcome, bool) {
	if len(ts) == 0 {
		return OutcomeTrustRoot, true
	}

	for _, record := range ts {
		if len(record) > 1 {
			continue
		}
		if outcome, ok := record.Result(); ok {
			return outcome, true
		}
	}

	return 0, false
}

// Scope is a logical query boundary that maps to one or more domains
// evaluated in a fixed order.
type Scope string

const (
	ScopeUser    Scope = "user"
	ScopeMachine Scope = "machine"
)

// ParseScope constructs a Scope from external input.
func ParseScope(s string) (Scope, error) {
	if s == "" {
		return "", fmt.Errorf("scope cannot be empty")
	}
	sc := Scope(s)
	if !sc.IsValid() {
		return "", fmt.Errorf("unknown scope: %s", s)
	}
	return sc, nil
}

// IsValid checks if the scope is one of the supported enum values.
func (s Scope) IsValid() bool {
	return s == ScopeUser || s == ScopeMachine
}

// String returns the string representation of the scope.
func (s Scope) String() string {
	return string(s)
}

// Domains returns the domains this scope spans, in evaluation order.
// Machine scope evaluates admin settings before the system baseline.
func (s Scope) Domains() []Domain {
	switch s {
	case ScopeUser:
		return []Domain{DomainUser}
	case ScopeMachine:
		return []Domain{DomainAdmin, DomainSystem}
	}
	return nil
}

// Fingerprint returns the lowercase hex SHA-256 digest of the certificate's
// raw DER encoding. It is the stable identity used by stores and the API.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:])
}

// Pool builds an x509.CertPool from the given certificates, for callers
// that feed enumeration results into chain verification.
func Pool(certs []*x509.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	for _, cert := range certs {
		if cert != nil {
			pool.AddCert(cert)
		}
	}
	return pool
}
