package service

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medigate/internal/patient/billing"
	"medigate/internal/patient/events"
	"medigate/internal/patient/store"
	"medigate/internal/platform/config"
	dErrors "medigate/pkg/domain-errors"
	"medigate/pkg/platform/sentinel"
)

// Onboarding tests against the real in-memory store, so the assertions
// cover what actually ends up stored, not just which collaborators were
// called.

type countingBilling struct {
	calls atomic.Int64
	fail  bool
}

func (b *countingBilling) CreateBillingAccount(context.Context, string, string, string) (*billing.AccountRef, error) {
	b.calls.Add(1)
	if b.fail {
		return nil, sentinel.ErrUnavailable
	}
	return &billing.AccountRef{AccountID: uuid.NewString(), Status: "ACTIVE"}, nil
}

type countingPublisher struct {
	calls atomic.Int64
}

func (p *countingPublisher) Publish(context.Context, events.PatientEvent) {
	p.calls.Add(1)
}

func newOnboardingFixture(t *testing.T, policy config.BillingPolicy) (*Service, *store.InMemory, *countingBilling, *countingPublisher) {
	t.Helper()
	patients := store.NewInMemory()
	bc := &countingBilling{}
	pub := &countingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(patients, bc, pub, policy, logger, nil), patients, bc, pub
}

func TestOnboardingSideEffectsPerCreation(t *testing.T) {
	svc, patients, bc, pub := newOnboardingFixture(t, config.BillingBestEffort)
	ctx := context.Background()

	for i, email := range []string{"a@example.com", "b@example.com"} {
		req := validRequest()
		req.Email = email
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)

		assert.EqualValues(t, i+1, bc.calls.Load())
		assert.EqualValues(t, i+1, pub.calls.Load())
	}
	assert.Equal(t, 2, patients.Count())
}

func TestOnboardingConflictLeavesStoreUnchanged(t *testing.T) {
	svc, patients, bc, pub := newOnboardingFixture(t, config.BillingBestEffort)
	ctx := context.Background()

	first, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	_, err = svc.Create(ctx, validRequest())
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))

	assert.Equal(t, 1, patients.Count())
	got, err := patients.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Email, got.Email)

	// The rejected attempt triggered no side effects.
	assert.EqualValues(t, 1, bc.calls.Load())
	assert.EqualValues(t, 1, pub.calls.Load())
}

func TestOnboardingBillingOutageKeepsPatientRetrievable(t *testing.T) {
	svc, patients, bc, _ := newOnboardingFixture(t, config.BillingBestEffort)
	bc.fail = true
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, 1, patients.Count())
}
