package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clothify/storefront/internal/api/middleware"
	"github.com/clothify/storefront/internal/core/domain"
)

// ctxClaims returns the claims injected by the access middleware. A route
// mounted without an Authenticated or Admin guard has none: reject with 401.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil || claims.SubjectID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}

// bind decodes the request body, reporting malformed payloads as 400.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return nil
}
