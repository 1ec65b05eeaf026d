package domain

import "time"

// AccessLevel is the requirement a route places on the caller.
type AccessLevel int

const (
	AccessPublic AccessLevel = iota
	AccessAuthenticated
	AccessAdmin
)

func (l AccessLevel) String() string {
	switch l {
	case AccessPublic:
		return "public"
	case AccessAuthenticated:
		return "authenticated"
	case AccessAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Claims is the decoded, verified payload of a session token. Role is a
// snapshot taken at issuance and stays authoritative until ExpiresAt.
type Claims struct {
	SubjectID string    `json:"sub"`
	Role      string    `json:"role"`
	TokenID   string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// IsAdmin reports whether the claims carry the admin role.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
