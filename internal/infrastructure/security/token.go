package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clothify/storefront/internal/core/domain"
	"github.com/clothify/storefront/internal/core/ports"
)

const (
	DefaultTokenTTL = 7 * 24 * time.Hour
	DefaultIssuer   = "storefront"
)

// sessionClaims is the only accepted shape of a session token payload.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer implements ports.TokenIssuer with HS256-signed JWTs.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// IssuerOption customises a JWTIssuer.
type IssuerOption func(*JWTIssuer)

// WithClock overrides the time source used for iat/exp and validation.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *JWTIssuer) { i.now = now }
}

// WithIssuer sets the iss claim written and required by the issuer.
func WithIssuer(name string) IssuerOption {
	return func(i *JWTIssuer) { i.issuer = name }
}

// NewJWTIssuer returns an issuer signing with secret. An empty secret is a
// configuration error; there is no fallback secret.
func NewJWTIssuer(secret string, ttl time.Duration, opts ...IssuerOption) (*JWTIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: token signing secret is not set", domain.ErrConfiguration)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	i := &JWTIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *JWTIssuer) Issue(user *domain.User) (*ports.IssuedToken, error) {
	if i == nil || len(i.secret) == 0 {
		return nil, fmt.Errorf("%w: token signing secret is not set", domain.ErrConfiguration)
	}
	if user == nil || user.ID == "" {
		return nil, errors.New("issue token: user has no id")
	}

	issuedAt := i.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.ttl)
	claims := sessionClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    i.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &ports.IssuedToken{
		Token: signed,
		Claims: domain.Claims{
			SubjectID: user.ID,
			Role:      user.Role,
			TokenID:   claims.ID,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	}, nil
}

// Verify checks signature, algorithm, issuer and expiry. Every failure is
// returned as one of the domain token errors; nothing else escapes.
func (i *JWTIssuer) Verify(token string) (*domain.Claims, error) {
	if i == nil || len(i.secret) == 0 {
		return nil, fmt.Errorf("%w: token signing secret is not set", domain.ErrTokenMalformed)
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	if claims.Subject == "" || !domain.IsValidRole(claims.Role) {
		return nil, domain.ErrTokenMalformed
	}

	out := &domain.Claims{
		SubjectID: claims.Subject,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return out, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrTokenBadSignature
	default:
		return domain.ErrTokenMalformed
	}
}
