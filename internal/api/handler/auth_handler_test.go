package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothify/storefront/internal/api/middleware"
	"github.com/clothify/storefront/internal/core/domain"
	"github.com/clothify/storefront/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.Session, error)
	sessionFn  func(ctx context.Context, token string) (*ports.SessionState, error)
	logoutFn   func(ctx context.Context, claims *domain.Claims) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Authenticate(ctx context.Context, email, password string) (*ports.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Authorize(context.Context, string, domain.AccessLevel) (*domain.Claims, error) {
	return nil, nil
}

func (s *stubAuthService) Session(ctx context.Context, token string) (*ports.SessionState, error) {
	return s.sessionFn(ctx, token)
}

func (s *stubAuthService) Logout(ctx context.Context, claims *domain.Claims) error {
	return s.logoutFn(ctx, claims)
}

var testCookie = CookieConfig{Name: "storefront_session", Secure: true}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			assert.Equal(t, "Ann", in.Name)
			assert.Equal(t, "ann@example.com", in.Email)
			assert.Equal(t, "secret1", in.Password)
			return &domain.User{ID: "u1", Email: in.Email, Name: in.Name, Role: domain.RoleUser}, nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/auth/register", `{"name":"Ann","email":"ann@example.com","password":"secret1","role":"admin"}`)

	require.NoError(t, NewAuthHandler(stub, testCookie).Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp registerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, domain.RoleUser, resp.User.Role)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthHandler_Register_PassesDomainErrors(t *testing.T) {
	for returned, want := range map[error]error{
		domain.ErrDuplicateEmail:  domain.ErrDuplicateEmail,
		&domain.ValidationError{}: domain.ErrValidation,
	} {
		stub := &stubAuthService{
			registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) { return nil, returned },
		}
		c, _ := newJSONContext(http.MethodPost, "/auth/register", `{"email":"ann@example.com"}`)

		err := NewAuthHandler(stub, testCookie).Register(c)
		assert.ErrorIs(t, err, want)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	c, _ := newJSONContext(http.MethodPost, "/auth/register", `{"email":`)

	err := NewAuthHandler(&stubAuthService{}, testCookie).Register(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestAuthHandler_Login_SetsCookie(t *testing.T) {
	exp := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.Session, error) {
			return &ports.Session{
				Token:     "signed.jwt.token",
				ExpiresAt: exp,
				Claims:    domain.Claims{SubjectID: "u1", Role: domain.RoleUser, ExpiresAt: exp},
				User:      &domain.User{ID: "u1", Email: email, Role: domain.RoleUser},
			}, nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"email":"ann@example.com","password":"secret1"}`)

	require.NoError(t, NewAuthHandler(stub, testCookie).Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "signed.jwt.token", resp.Token)
	assert.True(t, exp.Equal(resp.ExpiresAt))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie.Name, cookies[0].Name)
	assert.Equal(t, "signed.jwt.token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"email":"ann@example.com","password":"wrong"}`)

	err := NewAuthHandler(stub, testCookie).Login(c)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandler_Login_MissingFieldsAreInvalidCredentials(t *testing.T) {
	for _, body := range []string{`{"email":"ann@example.com"}`, `{"email":"","password":""}`, `{}`} {
		called := false
		stub := &stubAuthService{
			loginFn: func(_ context.Context, email, password string) (*ports.Session, error) {
				called = true
				if email == "" || password == "" {
					return nil, domain.ErrInvalidCredentials
				}
				return nil, errors.New("unexpected credentials")
			},
		}
		c, rec := newJSONContext(http.MethodPost, "/auth/login", body)

		err := NewAuthHandler(stub, testCookie).Login(c)

		assert.True(t, called, body)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials, body)
		assert.NotErrorIs(t, err, domain.ErrValidation, body)
		assert.Empty(t, rec.Result().Cookies())
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked *domain.Claims
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, claims *domain.Claims) error {
			revoked = claims
			return nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/auth/logout", "")
	c.Set(middleware.ClaimsKey, &domain.Claims{SubjectID: "u1", TokenID: "jti-1"})

	require.NoError(t, NewAuthHandler(stub, testCookie).Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, revoked)
	assert.Equal(t, "jti-1", revoked.TokenID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthHandler_Logout_WithoutClaims(t *testing.T) {
	c, _ := newJSONContext(http.MethodPost, "/auth/logout", "")

	err := NewAuthHandler(&stubAuthService{}, testCookie).Logout(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuthHandler_Session(t *testing.T) {
	exp := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		sessionFn: func(_ context.Context, token string) (*ports.SessionState, error) {
			if token != "cookie-token" {
				return &ports.SessionState{}, nil
			}
			return &ports.SessionState{
				Authenticated: true,
				Claims:        &domain.Claims{SubjectID: "a1", Role: domain.RoleAdmin, ExpiresAt: exp},
				User:          &domain.User{ID: "a1", Email: "boss@example.com", Role: domain.RoleAdmin},
			}, nil
		},
	}
	h := NewAuthHandler(stub, testCookie)

	t.Run("anonymous", func(t *testing.T) {
		c, rec := newJSONContext(http.MethodGet, "/auth/session", "")
		require.NoError(t, h.Session(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
	})

	t.Run("cookie session", func(t *testing.T) {
		c, rec := newJSONContext(http.MethodGet, "/auth/session", "")
		c.Request().AddCookie(&http.Cookie{Name: testCookie.Name, Value: "cookie-token"})

		require.NoError(t, h.Session(c))
		var resp sessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Authenticated)
		assert.Equal(t, domain.RoleAdmin, resp.Role)
		require.NotNil(t, resp.User)
		assert.Equal(t, "boss@example.com", resp.User.Email)
	})
}
