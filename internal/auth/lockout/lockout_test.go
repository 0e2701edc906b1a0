package lockout

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(store Store) *Service {
	return New(store, Config{
		Threshold: 3,
		Window:    15 * time.Minute,
		Cooldown:  15 * time.Minute,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestLockoutThreshold(t *testing.T) {
	ctx := context.Background()
	svc := testService(NewInMemory())

	assert.False(t, svc.IsLocked(ctx, "alice"))

	svc.RecordFailure(ctx, "alice")
	svc.RecordFailure(ctx, "alice")
	assert.False(t, svc.IsLocked(ctx, "alice"), "below threshold")

	svc.RecordFailure(ctx, "alice")
	assert.True(t, svc.IsLocked(ctx, "alice"), "threshold reached")

	// Other identifiers are unaffected.
	assert.False(t, svc.IsLocked(ctx, "bob"))
}

func TestLockoutClearedOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	svc := testService(store)

	svc.RecordFailure(ctx, "alice")
	svc.RecordFailure(ctx, "alice")
	svc.RecordSuccess(ctx, "alice")

	svc.RecordFailure(ctx, "alice")
	svc.RecordFailure(ctx, "alice")
	assert.False(t, svc.IsLocked(ctx, "alice"), "counter restarted after success")
}

func TestLockExpiresAfterCooldown(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	now := time.Now()
	store.now = func() time.Time { return now }

	svc := testService(store)
	for i := 0; i < 3; i++ {
		svc.RecordFailure(ctx, "alice")
	}
	require.True(t, svc.IsLocked(ctx, "alice"))

	now = now.Add(16 * time.Minute)
	assert.False(t, svc.IsLocked(ctx, "alice"))
}

func TestWindowResetsFailureCount(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	now := time.Now()
	store.now = func() time.Time { return now }

	svc := testService(store)
	svc.RecordFailure(ctx, "alice")
	svc.RecordFailure(ctx, "alice")

	// Failures outside the window do not accumulate.
	now = now.Add(20 * time.Minute)
	svc.RecordFailure(ctx, "alice")
	assert.False(t, svc.IsLocked(ctx, "alice"))
}
