package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothify/storefront/internal/core/domain"
	"github.com/clothify/storefront/internal/core/ports"
)

// stubGate accepts "user-token" and "admin-token" and applies the same level
// rules as the real gate.
type stubGate struct {
	ports.AuthService
	lastToken string
	err       error
}

func (g *stubGate) Authorize(_ context.Context, token string, level domain.AccessLevel) (*domain.Claims, error) {
	g.lastToken = token
	if g.err != nil {
		return nil, g.err
	}

	var claims *domain.Claims
	switch token {
	case "user-token":
		claims = &domain.Claims{SubjectID: "u1", Role: domain.RoleUser}
	case "admin-token":
		claims = &domain.Claims{SubjectID: "a1", Role: domain.RoleAdmin}
	}

	switch {
	case level == domain.AccessPublic:
		return claims, nil
	case claims == nil:
		return nil, fmt.Errorf("%w: no valid token", domain.ErrUnauthorized)
	case level == domain.AccessAdmin && !claims.IsAdmin():
		return nil, domain.ErrForbidden
	}
	return claims, nil
}

func serve(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, *domain.Claims, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.Claims
	called := false
	h := mw(func(c echo.Context) error {
		called = true
		seen = ClaimsFrom(c)
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, seen, called
}

func TestRequireAccess(t *testing.T) {
	tests := []struct {
		name       string
		level      domain.AccessLevel
		header     string
		wantStatus int
		wantCalled bool
		wantSub    string
	}{
		{"public anonymous", domain.AccessPublic, "", http.StatusOK, true, ""},
		{"public with token", domain.AccessPublic, "Bearer user-token", http.StatusOK, true, "u1"},
		{"public with garbage header", domain.AccessPublic, "Basic abc", http.StatusOK, true, ""},
		{"authenticated missing", domain.AccessAuthenticated, "", http.StatusUnauthorized, false, ""},
		{"authenticated bad scheme", domain.AccessAuthenticated, "Token user-token", http.StatusUnauthorized, false, ""},
		{"authenticated invalid", domain.AccessAuthenticated, "Bearer forged", http.StatusUnauthorized, false, ""},
		{"authenticated ok", domain.AccessAuthenticated, "bearer user-token", http.StatusOK, true, "u1"},
		{"admin as user", domain.AccessAdmin, "Bearer user-token", http.StatusForbidden, false, ""},
		{"admin missing", domain.AccessAdmin, "", http.StatusUnauthorized, false, ""},
		{"admin ok", domain.AccessAdmin, "Bearer admin-token", http.StatusOK, true, "a1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}

			rec, claims, called := serve(t, RequireAccess(&stubGate{}, tt.level, "session"), req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantSub == "" {
				assert.Nil(t, claims)
			} else {
				require.NotNil(t, claims)
				assert.Equal(t, tt.wantSub, claims.SubjectID)
			}
		})
	}
}

func TestRequireAccessReadsCookie(t *testing.T) {
	gate := &stubGate{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "admin-token"})

	rec, claims, called := serve(t, NewGuard(gate, "session").Admin(), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
	require.NotNil(t, claims)
	assert.Equal(t, "admin-token", gate.lastToken)
}

func TestRequireAccessHeaderWinsOverCookie(t *testing.T) {
	gate := &stubGate{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer user-token")
	req.AddCookie(&http.Cookie{Name: "session", Value: "admin-token"})

	rec, _, _ := serve(t, NewGuard(gate, "session").Admin(), req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "user-token", gate.lastToken)
}

func TestRequireAccessPropagatesGateFailure(t *testing.T) {
	boom := fmt.Errorf("authorize: %w", domain.ErrInternal)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer user-token")
	c := e.NewContext(req, httptest.NewRecorder())

	err := RequireAccess(&stubGate{err: boom}, domain.AccessAuthenticated, "")(func(echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})(c)

	assert.True(t, errors.Is(err, domain.ErrInternal))
}

func TestGuardLevels(t *testing.T) {
	g := NewGuard(&stubGate{}, "")
	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(echo.HeaderAuthorization, "Bearer user-token")
		return r
	}

	rec, _, _ := serve(t, g.Public(), req())
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _, _ = serve(t, g.Authenticated(), req())
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _, _ = serve(t, g.Admin(), req())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
