package ports

import (
	"context"

	"github.com/clothify/storefront/internal/core/domain"
)

// AuthRepository is the credential store used exclusively by the auth gate.
// Email uniqueness must be enforced by the store itself.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
