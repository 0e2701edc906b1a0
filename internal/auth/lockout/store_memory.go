package lockout

import (
	"context"
	"sync"
	"time"
)

type failureRecord struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

// InMemory is a mutex-guarded lockout store for tests and single-node
// deployments.
type InMemory struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	now     func() time.Time
}

// NewInMemory builds an empty in-memory lockout store.
func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[string]*failureRecord),
		now:     time.Now,
	}
}

func (s *InMemory) RecordFailure(ctx context.Context, identifier string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[identifier]
	if !ok || now.Sub(rec.windowStart) > window {
		rec = &failureRecord{windowStart: now}
		s.records[identifier] = rec
	}
	rec.count++
	return rec.count, nil
}

func (s *InMemory) Lock(ctx context.Context, identifier string, cooldown time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identifier]
	if !ok {
		rec = &failureRecord{windowStart: s.now()}
		s.records[identifier] = rec
	}
	rec.lockedUntil = s.now().Add(cooldown)
	return nil
}

func (s *InMemory) IsLocked(ctx context.Context, identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identifier]
	if !ok {
		return false, nil
	}
	return s.now().Before(rec.lockedUntil), nil
}

func (s *InMemory) Clear(ctx context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, identifier)
	return nil
}
