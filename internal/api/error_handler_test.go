package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothify/storefront/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"duplicate", domain.ErrDuplicateEmail, http.StatusConflict, "email already registered"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"unauthorized wrapped", fmt.Errorf("%w: %w", domain.ErrUnauthorized, domain.ErrTokenExpired), http.StatusUnauthorized, "authentication required"},
		{"bare token error", domain.ErrTokenRevoked, http.StatusUnauthorized, "authentication required"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"product missing", domain.ErrProductNotFound, http.StatusNotFound, "product not found"},
		{"bad id", domain.ErrInvalidID, http.StatusBadRequest, "invalid id"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests, "slow down"},
		{"internal", fmt.Errorf("find user: %w: %w", domain.ErrInternal, errors.New("socket closed")), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body.Error)
			assert.Empty(t, body.Details)
		})
	}
}

func TestHTTPErrorHandler_ValidationDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/register", nil), rec)

	err := &domain.ValidationError{Violations: []domain.FieldViolation{
		{Field: "email", Message: "email must be a valid email"},
		{Field: "password", Message: "password must be at least 6 characters"},
	}}
	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	require.Len(t, body.Details, 2)
	assert.Equal(t, "email", body.Details[0].Field)
	assert.Equal(t, "password", body.Details[1].Field)
}

func TestHTTPErrorHandler_LogsInternalCause(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/products", nil), rec)

	NewHTTPErrorHandler(log)(errors.New("mongo: server selection timeout"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")
	assert.Contains(t, buf.String(), "server selection timeout")
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, c.NoContent(http.StatusNoContent))

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
