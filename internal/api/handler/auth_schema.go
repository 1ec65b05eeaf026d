package handler

import (
	"time"

	"github.com/clothify/storefront/internal/core/domain"
)

type registerRequest struct {
	Name     string `json:"name" example:"Ann Smith"`
	Email    string `json:"email" example:"ann@example.com"`
	Password string `json:"password" example:"s3cret!"`
}

type loginRequest struct {
	Email    string `json:"email" example:"ann@example.com"`
	Password string `json:"password" example:"s3cret!"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type registerResponse struct {
	User userResponse `json:"user"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type sessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	Role          string        `json:"role,omitempty"`
	ExpiresAt     *time.Time    `json:"expires_at,omitempty"`
	User          *userResponse `json:"user,omitempty"`
}

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error   string                  `json:"error"`
	Details []domain.FieldViolation `json:"details,omitempty"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
