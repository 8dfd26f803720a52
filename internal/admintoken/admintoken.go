// Package admintoken issues and validates the bearer tokens that guard the
// admin API.
package admintoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "anchorage/pkg/domain-errors"
)

// RoleAdmin is the only role admin tokens carry.
const RoleAdmin = "admin"

// Claims represents the JWT claims for admin tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles admin JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func New(signingKey, issuer, audience string) (*Service, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("signing key is required")
	}
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}, nil
}

// Mint creates a signed admin token for subject, typically an operator email.
func (s *Service) Mint(subject string, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks the signature, expiry, issuer, audience, and role.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	if claims.Role != RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "token lacks admin role")
	}

	return claims, nil
}
