package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/clothify/storefront/internal/core/domain"
	"github.com/clothify/storefront/internal/core/ports"
)

// Guard binds the auth gate and the session cookie name so routes can declare
// their access level in one call.
type Guard struct {
	gate   ports.AuthService
	cookie string
}

func NewGuard(gate ports.AuthService, cookieName string) *Guard {
	return &Guard{gate: gate, cookie: cookieName}
}

// Public lets every request through and attaches claims when a valid token
// is present.
func (g *Guard) Public() echo.MiddlewareFunc {
	return RequireAccess(g.gate, domain.AccessPublic, g.cookie)
}

// Authenticated requires a valid, unrevoked session token.
func (g *Guard) Authenticated() echo.MiddlewareFunc {
	return RequireAccess(g.gate, domain.AccessAuthenticated, g.cookie)
}

// Admin requires a valid session token carrying the admin role.
func (g *Guard) Admin() echo.MiddlewareFunc {
	return RequireAccess(g.gate, domain.AccessAdmin, g.cookie)
}
