package lockout

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	failureKeyPrefix = "lockout:failures:"
	lockKeyPrefix    = "lockout:lock:"
)

// Redis is a lockout store shared across auth service replicas. Failure
// counters and lock flags expire via key TTLs, so there is nothing to
// clean up.
type Redis struct {
	client *redis.Client
}

// NewRedis builds a Redis-backed lockout store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) RecordFailure(ctx context.Context, identifier string, window time.Duration) (int, error) {
	key := failureKeyPrefix + identifier

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr failure count: %w", err)
	}
	// First failure starts the window.
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("set failure window: %w", err)
		}
	}
	return int(count), nil
}

func (s *Redis) Lock(ctx context.Context, identifier string, cooldown time.Duration) error {
	if err := s.client.Set(ctx, lockKeyPrefix+identifier, "1", cooldown).Err(); err != nil {
		return fmt.Errorf("set lock: %w", err)
	}
	return nil
}

func (s *Redis) IsLocked(ctx context.Context, identifier string) (bool, error) {
	n, err := s.client.Exists(ctx, lockKeyPrefix+identifier).Result()
	if err != nil {
		return false, fmt.Errorf("check lock: %w", err)
	}
	return n > 0, nil
}

func (s *Redis) Clear(ctx context.Context, identifier string) error {
	if err := s.client.Del(ctx, failureKeyPrefix+identifier, lockKeyPrefix+identifier).Err(); err != nil {
		return fmt.Errorf("clear lockout state: %w", err)
	}
	return nil
}
