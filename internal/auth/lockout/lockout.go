// Package lockout throttles password guessing: after a threshold of failed
// logins inside a rolling window, the account is locked for a cooldown.
// Locked logins are rejected with the same uniform unauthorized outcome as
// a wrong password, so the lockout itself leaks nothing.
package lockout

import (
	"context"
	"log/slog"
	"time"

	"medigate/internal/platform/metrics"
)

// Store tracks failure counts and lock state per identifier.
type Store interface {
	// RecordFailure increments the failure count inside the window and
	// returns the new count.
	RecordFailure(ctx context.Context, identifier string, window time.Duration) (int, error)
	// Lock marks the identifier locked for the cooldown.
	Lock(ctx context.Context, identifier string, cooldown time.Duration) error
	// IsLocked reports whether the identifier is currently locked.
	IsLocked(ctx context.Context, identifier string) (bool, error)
	// Clear removes failure state after a successful login.
	Clear(ctx context.Context, identifier string) error
}

// Service applies the lockout policy on top of a Store.
type Service struct {
	store     Store
	threshold int
	window    time.Duration
	cooldown  time.Duration
	logger    *slog.Logger
	metrics   *metrics.Auth
}

// Config holds the lockout policy knobs.
type Config struct {
	Threshold int
	Window    time.Duration
	Cooldown  time.Duration
}

// New builds a lockout service. metrics may be nil.
func New(store Store, cfg Config, logger *slog.Logger, m *metrics.Auth) *Service {
	return &Service{
		store:     store,
		threshold: cfg.Threshold,
		window:    cfg.Window,
		cooldown:  cfg.Cooldown,
		logger:    logger,
		metrics:   m,
	}
}

// IsLocked reports whether logins for the identifier are currently blocked.
// Store errors fail open: an unavailable lockout store must not lock every
// user out of the platform.
func (s *Service) IsLocked(ctx context.Context, identifier string) bool {
	locked, err := s.store.IsLocked(ctx, identifier)
	if err != nil {
		s.logger.WarnContext(ctx, "lockout check failed, failing open",
			"error", err,
		)
		return false
	}
	return locked
}

// RecordFailure counts a failed login and locks the identifier when the
// threshold is reached.
func (s *Service) RecordFailure(ctx context.Context, identifier string) {
	count, err := s.store.RecordFailure(ctx, identifier, s.window)
	if err != nil {
		s.logger.WarnContext(ctx, "recording login failure failed",
			"error", err,
		)
		return
	}
	if count < s.threshold {
		return
	}

	if err := s.store.Lock(ctx, identifier, s.cooldown); err != nil {
		s.logger.WarnContext(ctx, "locking account failed",
			"error", err,
		)
		return
	}
	if s.metrics != nil {
		s.metrics.LockoutsTotal.Inc()
	}
	s.logger.InfoContext(ctx, "account locked after repeated login failures",
		"failures", count,
		"cooldown", s.cooldown.String(),
	)
}

// RecordSuccess clears failure state after a successful login.
func (s *Service) RecordSuccess(ctx context.Context, identifier string) {
	if err := s.store.Clear(ctx, identifier); err != nil {
		s.logger.WarnContext(ctx, "clearing lockout state failed",
			"error", err,
		)
	}
}
