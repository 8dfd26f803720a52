// Package truststore defines the wire types for the anchorage trust-settings
// API. Clients import this module instead of the service internals so the
// HTTP contract can evolve independently of the implementation.
package truststore

import "time"

// CertificateEntry is one matched certificate in an enumeration response.
type CertificateEntry struct {
	// Fingerprint is the lowercase hex SHA-256 digest of the DER encoding.
	Fingerprint string `json:"fingerprint"`
	// Subject is the certificate subject as reported by the server,
	// informational only.
	Subject string `json:"subject,omitempty"`
	// PEM is the certificate in PEM encoding.
	PEM string `json:"pem"`
}

// EnumerateResponse is the body of GET /truststore/{scope}/roots and
// GET /truststore/{scope}/disallowed.
type EnumerateResponse struct {
	Scope        string             `json:"scope"`
	Outcome      string             `json:"outcome"`
	Count        int                `json:"count"`
	Certificates []CertificateEntry `json:"certificates"`
}

// SettingsRecord is one constraint record in a certificate's trust settings.
// The reserved "result" key holds the asserted outcome as a number; any other
// key is an uninterpreted constraint carried through verbatim.
type SettingsRecord map[string]any

// SettingsEntry describes the trust settings of one certificate in one domain,
// as returned by GET /admin/truststore/{domain}/settings.
type SettingsEntry struct {
	Fingerprint string           `json:"fingerprint"`
	Subject     string           `json:"subject,omitempty"`
	Records     []SettingsRecord `json:"records"`
}

// ListSettingsResponse is the body of GET /admin/truststore/{domain}/settings.
type ListSettingsResponse struct {
	Domain  string          `json:"domain"`
	Entries []SettingsEntry `json:"entries"`
}

// PutSettingsRequest is the body of
// PUT /admin/truststore/{domain}/settings/{fingerprint}.
type PutSettingsRequest struct {
	// PEM is the certificate the settings apply to. Its fingerprint must
	// match the fingerprint path segment.
	PEM string `json:"pem"`
	// Records is the ordered constraint-record sequence. An empty sequence is
	// meaningful: it marks the certificate as an ordinary trusted root.
	Records []SettingsRecord `json:"records"`
}

// AuditEventEntry is one audit trail record as returned by
// GET /admin/truststore/audit.
type AuditEventEntry struct {
	Category    string    `json:"category"`
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
	Scope       string    `json:"scope,omitempty"`
	Domain      string    `json:"domain,omitempty"`
	Outcome     string    `json:"outcome,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	Count       int       `json:"count,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	Actor       string    `json:"actor,omitempty"`
	ClientIP    string    `json:"client_ip,omitempty"`
	Device      string    `json:"device,omitempty"`
}

// ListAuditResponse is the body of GET /admin/truststore/audit.
type ListAuditResponse struct {
	Count  int               `json:"count"`
	Events []AuditEventEntry `json:"events"`
}

// ErrorResponse is the JSON error envelope shared by all endpoints. Error
// carries the machine-readable code; the description is omitted for internal
// failures.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
