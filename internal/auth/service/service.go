// Package service implements login and token validation. It owns the
// credential check; token semantics live in internal/auth/token.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"medigate/internal/auth/lockout"
	"medigate/internal/auth/store/user"
	"medigate/internal/auth/token"
	"medigate/internal/platform/metrics"
	dErrors "medigate/pkg/domain-errors"
	"medigate/pkg/platform/sentinel"
)

const bearerPrefix = "Bearer "

// errRejected is the uniform login failure. Unknown user, wrong password
// and locked account are indistinguishable to callers.
var errRejected = dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

// dummyHash is a bcrypt hash compared against when the user does not
// exist, so both login failure paths cost one bcrypt verification and
// username enumeration via timing is not possible.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("medigate-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// Service authenticates principals and validates bearer tokens.
type Service struct {
	users   user.Store
	tokens  *token.Service
	lockout *lockout.Service
	logger  *slog.Logger
	metrics *metrics.Auth
}

// New builds the auth service. lockout and metrics may be nil.
func New(users user.Store, tokens *token.Service, lo *lockout.Service, logger *slog.Logger, m *metrics.Auth) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		lockout: lo,
		logger:  logger,
		metrics: m,
	}
}

// Login verifies credentials and issues a token. Every failure collapses
// to the same unauthorized error.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if s.lockout != nil && s.lockout.IsLocked(ctx, strings.ToLower(username)) {
		s.countLoginFailure()
		return "", errRejected
	}

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.New(dErrors.CodeInternal, "user lookup failed")
	}

	hash := dummyHash
	if u != nil {
		hash = []byte(u.PasswordHash)
	}
	compareErr := bcrypt.CompareHashAndPassword(hash, []byte(password))

	if u == nil || compareErr != nil {
		if s.lockout != nil {
			s.lockout.RecordFailure(ctx, strings.ToLower(username))
		}
		s.countLoginFailure()
		return "", errRejected
	}

	tok, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		s.logger.ErrorContext(ctx, "token issuance failed", "error", err)
		return "", dErrors.New(dErrors.CodeInternal, "token issuance failed")
	}

	if s.lockout != nil {
		s.lockout.RecordSuccess(ctx, strings.ToLower(username))
	}
	if s.metrics != nil {
		s.metrics.LoginsTotal.Inc()
	}
	return tok, nil
}

// Validate checks a bearer-scheme Authorization header value. It is
// idempotent and side-effect free; the gateway re-validates every request
// through it.
func (s *Service) Validate(authHeader string) error {
	raw, ok := strings.CutPrefix(authHeader, bearerPrefix)
	if !ok {
		s.countValidation("rejected")
		return errRejected
	}

	if _, err := s.tokens.Verify(raw); err != nil {
		s.countValidation("rejected")
		return errRejected
	}

	s.countValidation("accepted")
	return nil
}

func (s *Service) countLoginFailure() {
	if s.metrics != nil {
		s.metrics.LoginFailuresTotal.Inc()
	}
}

func (s *Service) countValidation(outcome string) {
	if s.metrics != nil {
		s.metrics.ValidationsTotal.WithLabelValues(outcome).Inc()
	}
}
