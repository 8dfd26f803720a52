package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext drives a running anchorage server over HTTP and captures the
// last response for assertion steps. One instance is shared across a
// scenario; Reset clears per-scenario state between scenarios.
type TestContext struct {
	baseURL    string
	adminToken string
	client     *http.Client

	lastStatus int
	lastBody   []byte

	certPEM     string
	fingerprint string
}

// NewTestContext builds a context targeting baseURL. adminToken may be empty
// when the target server does not guard its admin API with a static token.
func NewTestContext(baseURL, adminToken string) *TestContext {
	return &TestContext{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminToken: adminToken,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.certPEM = ""
	tc.fingerprint = ""
}

func (tc *TestContext) do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	tc.lastStatus = resp.StatusCode
	tc.lastBody = data
	return nil
}

// GET performs a GET request and records the response.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

// PUT performs a PUT request with a JSON body and records the response.
func (tc *TestContext) PUT(path string, body any, headers map[string]string) error {
	return tc.do(http.MethodPut, path, body, headers)
}

// DELETE performs a DELETE request and records the response.
func (tc *TestContext) DELETE(path string, headers map[string]string) error {
	return tc.do(http.MethodDelete, path, nil, headers)
}

// AdminHeaders returns the credential headers for admin requests.
func (tc *TestContext) AdminHeaders() map[string]string {
	if tc.adminToken == "" {
		return nil
	}
	return map[string]string{"X-Admin-Token": tc.adminToken}
}

// LastStatus returns the status code of the last response.
func (tc *TestContext) LastStatus() int { return tc.lastStatus }

// LastBody returns the raw body of the last response.
func (tc *TestContext) LastBody() []byte { return tc.lastBody }

// GetResponseField extracts a top-level field from the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var decoded map[string]any
	if err := json.Unmarshal(tc.lastBody, &decoded); err != nil {
		return nil, fmt.Errorf("last response is not a JSON object: %w", err)
	}
	value, ok := decoded[field]
	if !ok {
		return nil, fmt.Errorf("field %q not present in response", field)
	}
	return value, nil
}

// SetCertificate stores the scenario's certificate under test.
func (tc *TestContext) SetCertificate(pemData, fingerprint string) {
	tc.certPEM = pemData
	tc.fingerprint = fingerprint
}

// CertificatePEM returns the PEM of the scenario's certificate.
func (tc *TestContext) CertificatePEM() string { return tc.certPEM }

// Fingerprint returns the fingerprint of the scenario's certificate.
func (tc *TestContext) Fingerprint() string { return tc.fingerprint }
