//go:build integration

package lockout_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"medigate/internal/auth/lockout"
	"medigate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *lockout.Redis
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = lockout.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRecordFailureCounts() {
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		n, err := s.store.RecordFailure(ctx, "alice", time.Minute)
		s.Require().NoError(err)
		s.Equal(want, n)
	}
}

func (s *RedisStoreSuite) TestFailuresArePerIdentifier() {
	ctx := context.Background()

	_, err := s.store.RecordFailure(ctx, "alice", time.Minute)
	s.Require().NoError(err)

	n, err := s.store.RecordFailure(ctx, "bob", time.Minute)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *RedisStoreSuite) TestWindowExpiry() {
	ctx := context.Background()

	_, err := s.store.RecordFailure(ctx, "alice", time.Second)
	s.Require().NoError(err)

	time.Sleep(1500 * time.Millisecond)

	n, err := s.store.RecordFailure(ctx, "alice", time.Second)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *RedisStoreSuite) TestLockAndUnlock() {
	ctx := context.Background()

	locked, err := s.store.IsLocked(ctx, "alice")
	s.Require().NoError(err)
	s.False(locked)

	s.Require().NoError(s.store.Lock(ctx, "alice", time.Minute))

	locked, err = s.store.IsLocked(ctx, "alice")
	s.Require().NoError(err)
	s.True(locked)
}

func (s *RedisStoreSuite) TestLockExpires() {
	ctx := context.Background()

	s.Require().NoError(s.store.Lock(ctx, "alice", time.Second))

	time.Sleep(1500 * time.Millisecond)

	locked, err := s.store.IsLocked(ctx, "alice")
	s.Require().NoError(err)
	s.False(locked)
}

func (s *RedisStoreSuite) TestClearResetsState() {
	ctx := context.Background()

	_, err := s.store.RecordFailure(ctx, "alice", time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Lock(ctx, "alice", time.Minute))

	s.Require().NoError(s.store.Clear(ctx, "alice"))

	locked, err := s.store.IsLocked(ctx, "alice")
	s.Require().NoError(err)
	s.False(locked)

	n, err := s.store.RecordFailure(ctx, "alice", time.Minute)
	s.Require().NoError(err)
	s.Equal(1, n)
}
