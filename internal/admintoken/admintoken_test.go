package admintoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "anchorage/pkg/domain-errors"
)

var subject = "operator@example.com"
var expiresIn = time.Hour

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := New("test-signing-key", "test-issuer", "test-audience")
	require.NoError(t, err)
	return svc
}

func Test_New_RequiresSigningKey(t *testing.T) {
	_, err := New("", "test-issuer", "test-audience")
	require.EqualError(t, err, "signing key is required")
}

func Test_MintAndValidate(t *testing.T) {
	svc := newService(t)

	token, err := svc.Mint(subject, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID, "every token carries a unique id")
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	svc := newService(t)

	_, err := svc.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	svc := newService(t)

	token, err := svc.Mint(subject, -time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	svc := newService(t)
	other, err := New("another-signing-key", "test-issuer", "test-audience")
	require.NoError(t, err)

	token, err := other.Mint(subject, expiresIn)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_WrongIssuer(t *testing.T) {
	svc := newService(t)
	other, err := New("test-signing-key", "other-issuer", "test-audience")
	require.NoError(t, err)

	token, err := other.Mint(subject, expiresIn)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}
