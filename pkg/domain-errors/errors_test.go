package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct error", func(t *testing.T) {
		err := New(CodeNotFound, "missing")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := errors.New("connection refused")
		err := fmt.Errorf("load settings: %w", Wrap(base, CodeUnavailable, "store unreachable"))
		assert.True(t, HasCode(err, CodeUnavailable))
		assert.ErrorIs(t, err, base, "the cause must stay reachable through Unwrap")
	})

	t.Run("uncoded error", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")), "uncoded errors default to internal")
	})
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.code))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(errors.New("dial tcp: refused"), CodeUnavailable, "redis unreachable")
	assert.Equal(t, "redis unreachable: dial tcp: refused", err.Error())
	assert.Equal(t, "redis unreachable", MessageOf(err), "transport message excludes the cause")
}

func TestErrorIsComparesByValue(t *testing.T) {
	err := New(CodeUnauthorized, "token has expired")
	assert.ErrorIs(t, err, New(CodeUnauthorized, "token has expired"))
	assert.NotErrorIs(t, err, New(CodeUnauthorized, "invalid token"))
	assert.NotErrorIs(t, err, New(CodeForbidden, "token has expired"))

	wrapped := fmt.Errorf("admin auth: %w", err)
	assert.ErrorIs(t, wrapped, New(CodeUnauthorized, "token has expired"))
}
