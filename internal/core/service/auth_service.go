package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/clothify/storefront/internal/core/domain"
	"github.com/clothify/storefront/internal/core/ports"
	"github.com/clothify/storefront/internal/core/validate"
)

// dummyPassword is hashed once and verified against when the email is unknown,
// so a miss costs the same bcrypt work as a wrong password.
const dummyPassword = "storefront-timing-equaliser"

// AuthService is the auth gate. It owns login, registration and per-request
// access decisions; transport concerns stay with its callers.
type AuthService struct {
	repo    ports.AuthRepository
	hasher  ports.PasswordHasher
	tokens  ports.TokenIssuer
	revoked ports.RevocationList
	audit   ports.AuditRecorder
	log     zerolog.Logger
	tracer  trace.Tracer
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// AuthOption configures optional collaborators of the gate.
type AuthOption func(*AuthService)

// WithRevocationList enables logout by consulting list on every Authorize.
func WithRevocationList(list ports.RevocationList) AuthOption {
	return func(s *AuthService) { s.revoked = list }
}

// WithAuditRecorder forwards auth events to rec.
func WithAuditRecorder(rec ports.AuditRecorder) AuthOption {
	return func(s *AuthService) { s.audit = rec }
}

// WithLogger sets the logger used for server-side failure detail.
func WithLogger(log zerolog.Logger) AuthOption {
	return func(s *AuthService) { s.log = log }
}

func NewAuthService(repo ports.AuthRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, opts ...AuthOption) *AuthService {
	s := &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    zerolog.Nop(),
		tracer: otel.Tracer("github.com/clothify/storefront/internal/core/service"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the input, hashes the password and stores a new
// identity with role "user". The returned user never carries the hash.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (_ *domain.User, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.Register")
	defer func() { endSpan(span, err) }()

	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, in, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuthEvent{Type: domain.EventRegistered, SubjectID: user.ID, Email: user.Email})
	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// ProvisionAdmin creates an administrator. It shares validation and hashing
// with Register but is only reachable from the command line.
func (s *AuthService) ProvisionAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, in, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.log.Warn().Str("user_id", user.ID).Str("email", user.Email).Msg("admin provisioned")
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, in ports.RegisterInput, role string) (*domain.User, error) {
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrDuplicateEmail
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, internal("register: find user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internal("register: hash password", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The unique index wins any race the pre-check lost.
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, internal("register: create user", err)
	}
	return created.Sanitized(), nil
}

// Authenticate verifies credentials and mints a session token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (_ *ports.Session, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.Authenticate")
	defer func() { endSpan(span, err) }()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.loginFailed(email, "missing credentials")
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, internal("authenticate: find user", err)
		}
		s.hasher.Verify(password, s.equaliserHash())
		s.loginFailed(email, "unknown email")
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.loginFailed(email, "password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	issued, err := s.tokens.Issue(user)
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			return nil, err
		}
		return nil, internal("authenticate: issue token", err)
	}

	s.record(domain.AuthEvent{Type: domain.EventLoginSucceeded, SubjectID: user.ID, Email: user.Email})
	return &ports.Session{
		Token:     issued.Token,
		ExpiresAt: issued.Claims.ExpiresAt,
		Claims:    issued.Claims,
		User:      user.Sanitized(),
	}, nil
}

// Authorize classifies a request carrying token against the required level.
// Public always succeeds and returns claims only when the token is valid.
func (s *AuthService) Authorize(ctx context.Context, token string, level domain.AccessLevel) (*domain.Claims, error) {
	switch level {
	case domain.AccessPublic, domain.AccessAuthenticated, domain.AccessAdmin:
	default:
		return nil, internal("authorize", fmt.Errorf("unknown access level %d", level))
	}

	if token == "" {
		if level == domain.AccessPublic {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: missing session token", domain.ErrUnauthorized)
	}

	claims, err := s.verify(ctx, token)
	if err != nil {
		if level == domain.AccessPublic {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	if level == domain.AccessAdmin && !claims.IsAdmin() {
		s.record(domain.AuthEvent{Type: domain.EventAccessDenied, SubjectID: claims.SubjectID, Reason: "admin required"})
		return nil, domain.ErrForbidden
	}
	return claims, nil
}

// Session reports the caller's session state. A missing or invalid token is
// an unauthenticated state, not an error.
func (s *AuthService) Session(ctx context.Context, token string) (*ports.SessionState, error) {
	claims, err := s.Authorize(ctx, token, domain.AccessPublic)
	if err != nil {
		return nil, err
	}
	if claims == nil {
		return &ports.SessionState{}, nil
	}

	state := &ports.SessionState{Authenticated: true, Claims: claims}
	user, err := s.repo.FindByID(ctx, claims.SubjectID)
	switch {
	case err == nil:
		state.User = user.Sanitized()
	case errors.Is(err, domain.ErrUserNotFound):
		// Identity removed out of band; the token still stands until expiry.
	default:
		s.log.Warn().Err(err).Str("user_id", claims.SubjectID).Msg("session: user lookup failed")
	}
	return state, nil
}

// Logout revokes the session's token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *domain.Claims) error {
	if claims == nil {
		return domain.ErrUnauthorized
	}
	if s.revoked != nil && claims.TokenID != "" {
		if err := s.revoked.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
			return internal("logout: revoke token", err)
		}
	}
	s.record(domain.AuthEvent{Type: domain.EventLoggedOut, SubjectID: claims.SubjectID})
	return nil
}

func (s *AuthService) verify(ctx context.Context, token string) (*domain.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if s.revoked == nil || claims.TokenID == "" {
		return claims, nil
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		// Signature and expiry already hold; an unreachable list does not
		// take every session down with it.
		s.log.Warn().Err(err).Str("jti", claims.TokenID).Msg("revocation check failed, accepting token")
		return claims, nil
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}
	return claims, nil
}

func (s *AuthService) equaliserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to prepare timing equaliser hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) loginFailed(email, reason string) {
	s.record(domain.AuthEvent{Type: domain.EventLoginFailed, Email: email, Reason: reason})
	s.log.Debug().Str("reason", reason).Msg("login rejected")
}

func (s *AuthService) record(ev domain.AuthEvent) {
	if s.audit == nil {
		return
	}
	ev.OccurredAt = s.now().UTC()
	s.audit.Record(ev)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// internal wraps an unexpected collaborator failure so callers can match
// domain.ErrInternal while the cause stays available for logging.
func internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("auth.rejected", true))
	}
	span.End()
}
