package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"medigate/internal/auth"
	"medigate/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded user store for tests and local development.
type InMemory struct {
	mu    sync.RWMutex
	users map[string]*auth.User // keyed by lowercased username
}

// NewInMemory builds an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{users: make(map[string]*auth.User)}
}

func (s *InMemory) Create(ctx context.Context, u *auth.User) error {
	key := strings.ToLower(u.Username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[key]; exists {
		return sentinel.ErrConflict
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	s.users[key] = &cp
	return nil
}

func (s *InMemory) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[strings.ToLower(username)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
