package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clothify/storefront/internal/api/metrics"
	"github.com/clothify/storefront/internal/core/domain"
	"github.com/clothify/storefront/internal/core/ports"
)

// ClaimsKey is the echo.Context key the verified claims are stored under.
const ClaimsKey = "claims"

// RequireAccess asks the auth gate whether the request may reach the route
// at level. Claims of an accepted token are stored under ClaimsKey.
func RequireAccess(gate ports.AuthService, level domain.AccessLevel, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := TokenFrom(c, cookieName)
			if !ok && level != domain.AccessPublic {
				metrics.AccessDecisionsTotal.WithLabelValues(level.String(), "unauthorized").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := gate.Authorize(c.Request().Context(), token, level)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrForbidden):
				metrics.AccessDecisionsTotal.WithLabelValues(level.String(), "forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			case errors.Is(err, domain.ErrUnauthorized):
				metrics.AccessDecisionsTotal.WithLabelValues(level.String(), "unauthorized").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			default:
				metrics.AccessDecisionsTotal.WithLabelValues(level.String(), "error").Inc()
				return err
			}

			metrics.AccessDecisionsTotal.WithLabelValues(level.String(), "allowed").Inc()
			if claims != nil {
				c.Set(ClaimsKey, claims)
			}
			return next(c)
		}
	}
}

// TokenFrom extracts the session token from the Authorization header, falling
// back to the session cookie. ok is false when an Authorization header is
// present but is not a bearer credential.
func TokenFrom(c echo.Context, cookieName string) (token string, ok bool) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}

	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil {
			return cookie.Value, true
		}
	}
	return "", true
}

// ClaimsFrom returns the claims stored by RequireAccess, or nil.
func ClaimsFrom(c echo.Context) *domain.Claims {
	claims, _ := c.Get(ClaimsKey).(*domain.Claims)
	return claims
}
