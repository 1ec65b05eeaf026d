package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrConfiguration      = errors.New("configuration error")
	ErrInternal           = errors.New("internal error")

	ErrProductNotFound = errors.New("product not found")
	ErrInvalidID       = errors.New("invalid id")
)

// Token verification failures. All of them match ErrInvalidToken.
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = &tokenError{kind: "expired"}
	ErrTokenMalformed    = &tokenError{kind: "malformed"}
	ErrTokenBadSignature = &tokenError{kind: "bad signature"}
	ErrTokenRevoked      = &tokenError{kind: "revoked"}
)

type tokenError struct{ kind string }

func (e *tokenError) Error() string        { return "invalid token: " + e.kind }
func (e *tokenError) Is(target error) bool { return target == ErrInvalidToken }

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// FieldViolation describes one rejected input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field violation found in a single input.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// HasField reports whether a violation was recorded for field.
func (e *ValidationError) HasField(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}
