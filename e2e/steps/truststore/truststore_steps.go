package truststore

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	PUT(path string, body any, headers map[string]string) error
	DELETE(path string, headers map[string]string) error
	AdminHeaders() map[string]string
	LastBody() []byte
	SetCertificate(pemData, fingerprint string)
	CertificatePEM() string
	Fingerprint() string
}

// RegisterSteps registers truststore-specific step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &truststoreSteps{tc: tc}

	// Settings management steps
	ctx.Step(`^a fresh test certificate$`, steps.freshTestCertificate)
	ctx.Step(`^the operator denies it in the "([^"]*)" domain$`, steps.denyInDomain)
	ctx.Step(`^the operator trusts it in the "([^"]*)" domain$`, steps.trustInDomain)
	ctx.Step(`^the operator removes its settings from the "([^"]*)" domain$`, steps.removeFromDomain)

	// Enumeration steps
	ctx.Step(`^I enumerate "([^"]*)" scope "([^"]*)" certificates$`, steps.enumerate)
	ctx.Step(`^the certificate should be listed$`, steps.certificateListed)
	ctx.Step(`^the certificate should not be listed$`, steps.certificateNotListed)
}

type truststoreSteps struct {
	tc TestContext
}

func (s *truststoreSteps) freshTestCertificate(ctx context.Context) error {
	pemData, fingerprint, err := newSelfSignedCert()
	if err != nil {
		return fmt.Errorf("generate certificate: %w", err)
	}
	s.tc.SetCertificate(pemData, fingerprint)
	return nil
}

func (s *truststoreSteps) denyInDomain(ctx context.Context, domain string) error {
	return s.putSettings(domain, []map[string]any{{"result": 3}})
}

// trustInDomain stores an empty settings sequence, which marks the
// certificate as an ordinary trusted root.
func (s *truststoreSteps) trustInDomain(ctx context.Context, domain string) error {
	return s.putSettings(domain, []map[string]any{})
}

func (s *truststoreSteps) putSettings(domain string, records []map[string]any) error {
	body := map[string]any{
		"pem":     s.tc.CertificatePEM(),
		"records": records,
	}
	path := "/admin/truststore/" + domain + "/settings/" + s.tc.Fingerprint()
	return s.tc.PUT(path, body, s.tc.AdminHeaders())
}

func (s *truststoreSteps) removeFromDomain(ctx context.Context, domain string) error {
	path := "/admin/truststore/" + domain + "/settings/" + s.tc.Fingerprint()
	return s.tc.DELETE(path, s.tc.AdminHeaders())
}

func (s *truststoreSteps) enumerate(ctx context.Context, scope, kind string) error {
	return s.tc.GET("/truststore/"+scope+"/"+kind, nil)
}

func (s *truststoreSteps) certificateListed(ctx context.Context) error {
	listed, err := s.isListed()
	if err != nil {
		return err
	}
	if !listed {
		return fmt.Errorf("certificate %s not in enumeration: %s", s.tc.Fingerprint(), s.tc.LastBody())
	}
	return nil
}

func (s *truststoreSteps) certificateNotListed(ctx context.Context) error {
	listed, err := s.isListed()
	if err != nil {
		return err
	}
	if listed {
		return fmt.Errorf("certificate %s unexpectedly in enumeration", s.tc.Fingerprint())
	}
	return nil
}

// isListed reports whether the scenario certificate appears in the last
// enumeration response.
func (s *truststoreSteps) isListed() (bool, error) {
	var resp struct {
		Certificates []struct {
			Fingerprint string `json:"fingerprint"`
		} `json:"certificates"`
	}
	if err := json.Unmarshal(s.tc.LastBody(), &resp); err != nil {
		return false, fmt.Errorf("decode enumeration response: %w", err)
	}
	for _, entry := range resp.Certificates {
		if entry.Fingerprint == s.tc.Fingerprint() {
			return true, nil
		}
	}
	return false, nil
}

// newSelfSignedCert mints a throwaway CA certificate and returns its PEM and
// SHA-256 fingerprint. Every call produces a distinct certificate so
// scenarios cannot collide on shared server state.
func newSelfSignedCert() (string, string, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return "", "", err
	}

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: fmt.Sprintf("anchorage-e2e-%s", serial.Text(16))},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return "", "", err
	}

	sum := sha256.Sum256(der)
	pemData := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	return string(pemData), hex.EncodeToString(sum[:]), nil
}
