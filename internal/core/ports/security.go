package ports

import (
	"context"
	"time"

	"github.com/clothify/storefront/internal/core/domain"
)

// PasswordHasher performs one-way password hashing.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. A malformed hash is a
	// mismatch, not an error.
	Verify(plaintext, hash string) bool
}

// TokenIssuer mints and verifies session tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (*IssuedToken, error)
	// Verify returns the decoded claims or an error matching
	// domain.ErrInvalidToken.
	Verify(token string) (*domain.Claims, error)
}

// IssuedToken is a freshly signed token and its decoded claims.
type IssuedToken struct {
	Token  string
	Claims domain.Claims
}

// RevocationList records tokens invalidated before their expiry.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuditRecorder accepts auth events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}

// AuditSink persists or forwards a single auth event.
type AuditSink interface {
	Write(ctx context.Context, event domain.AuthEvent) error
}
