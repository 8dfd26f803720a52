package models

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

const pemCertificateType = "CERTIFICATE"

// EncodePEM returns the PEM encoding of the certificate.
func EncodePEM(cert *x509.Certificate) string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  pemCertificateType,
		Bytes: cert.Raw,
	}))
}

// ParsePEM decodes a single PEM-encoded certificate from external input.
func ParsePEM(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	if block.Type != pemCertificateType {
		return nil, fmt.Errorf("unexpected PEM block type: %s", block.Type)
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	return cert, nil
}
