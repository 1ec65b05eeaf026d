package ports

import (
	"context"
	"time"

	"github.com/clothify/storefront/internal/core/domain"
)

// RegisterInput is the registration payload. The validate tags are the single
// definition of its shape, shared by the HTTP layer and the gate.
type RegisterInput struct {
	Name     string `json:"name"     validate:"max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Claims    domain.Claims
	User      *domain.User
}

// SessionState answers "who is the caller" for UI collaborators.
type SessionState struct {
	Authenticated bool
	Claims        *domain.Claims
	User          *domain.User
}

// AuthService is the auth gate: login, registration and access control.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*Session, error)
	Authorize(ctx context.Context, token string, level domain.AccessLevel) (*domain.Claims, error)
	Session(ctx context.Context, token string) (*SessionState, error)
	Logout(ctx context.Context, claims *domain.Claims) error
}

// AdminProvisioner creates administrator accounts. It is only wired into
// the command line tooling, never into an HTTP route.
type AdminProvisioner interface {
	ProvisionAdmin(ctx context.Context, in RegisterInput) (*domain.User, error)
}
