package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"medigate/internal/patient"
	"medigate/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded patient store for tests and local
// development. The uniqueness check and the write happen under one lock,
// matching the atomicity the Postgres unique index provides.
type InMemory struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*patient.Patient
}

// NewInMemory builds an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{patients: make(map[uuid.UUID]*patient.Patient)}
}

func (s *InMemory) Create(ctx context.Context, p *patient.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTakenLocked(p.Email, uuid.Nil) {
		return sentinel.ErrConflict
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	s.patients[p.ID] = &cp
	return nil
}

func (s *InMemory) Update(ctx context.Context, p *patient.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.patients[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if s.emailTakenLocked(p.Email, p.ID) {
		return sentinel.ErrConflict
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	cp := *p
	s.patients[p.ID] = &cp
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.patients, id)
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) List(ctx context.Context) ([]*patient.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*patient.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.emailTakenLocked(email, excludeID), nil
}

func (s *InMemory) emailTakenLocked(email string, excludeID uuid.UUID) bool {
	for _, p := range s.patients {
		if p.ID != excludeID && strings.EqualFold(p.Email, email) {
			return true
		}
	}
	return false
}

// Count is a test helper.
func (s *InMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patients)
}
