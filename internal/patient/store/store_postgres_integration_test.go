//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"medigate/internal/patient"
	"medigate/internal/patient/store"
	"medigate/pkg/platform/sentinel"
	"medigate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "patients"))
}

func newTestPatient(email string) *patient.Patient {
	return &patient.Patient{
		ID:          uuid.New(),
		Name:        "Jane Roe",
		Email:       email,
		Address:     "1 Main St",
		DateOfBirth: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	p := newTestPatient("jane@example.com")

	s.Require().NoError(s.store.Create(ctx, p))
	s.False(p.CreatedAt.IsZero())

	got, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
	s.Equal(p.Email, got.Email)
	s.True(got.DateOfBirth.Equal(p.DateOfBirth))
}

func (s *PostgresStoreSuite) TestDuplicateEmailConflicts() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, newTestPatient("jane@example.com")))

	err := s.store.Create(ctx, newTestPatient("JANE@example.com"))
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

// TestConcurrentUniqueEmailViolation verifies that concurrent creation
// attempts with the same email result in exactly one success.
func (s *PostgresStoreSuite) TestConcurrentUniqueEmailViolation() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := s.store.Create(ctx, newTestPatient("race@example.com"))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.EqualValues(1, successCount.Load())
	s.EqualValues(goroutines-1, conflictCount.Load())
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	p := newTestPatient("jane@example.com")
	s.Require().NoError(s.store.Create(ctx, p))

	p.Name = "Jane Q. Roe"
	p.Address = "7 Oak Ave"
	s.Require().NoError(s.store.Update(ctx, p))

	got, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Jane Q. Roe", got.Name)
	s.Equal("7 Oak Ave", got.Address)
	s.True(got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func (s *PostgresStoreSuite) TestUpdateUnknownIDIsNotFound() {
	err := s.store.Update(context.Background(), newTestPatient("ghost@example.com"))
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestDeleteIsIdempotent() {
	ctx := context.Background()
	p := newTestPatient("jane@example.com")
	s.Require().NoError(s.store.Create(ctx, p))

	s.Require().NoError(s.store.Delete(ctx, p.ID))
	s.Require().NoError(s.store.Delete(ctx, p.ID))

	_, err := s.store.FindByID(ctx, p.ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestList() {
	ctx := context.Background()

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Empty(all)

	s.Require().NoError(s.store.Create(ctx, newTestPatient("a@example.com")))
	s.Require().NoError(s.store.Create(ctx, newTestPatient("b@example.com")))

	all, err = s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *PostgresStoreSuite) TestEmailTaken() {
	ctx := context.Background()
	p := newTestPatient("jane@example.com")
	s.Require().NoError(s.store.Create(ctx, p))

	taken, err := s.store.EmailTaken(ctx, "Jane@Example.com", uuid.Nil)
	s.Require().NoError(err)
	s.True(taken)

	// A patient's own email does not count against itself.
	taken, err = s.store.EmailTaken(ctx, "jane@example.com", p.ID)
	s.Require().NoError(err)
	s.False(taken)

	taken, err = s.store.EmailTaken(ctx, "other@example.com", uuid.Nil)
	s.Require().NoError(err)
	s.False(taken)
}
