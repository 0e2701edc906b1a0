package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"medigate/internal/auth"
	"medigate/internal/auth/lockout"
	"medigate/internal/auth/store/user"
	"medigate/internal/auth/token"
	dErrors "medigate/pkg/domain-errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, withLockout bool) (*Service, *user.InMemory) {
	t.Helper()

	users := user.NewInMemory()
	tokens := token.NewService("test-signing-key", "test-issuer", time.Hour)

	var lo *lockout.Service
	if withLockout {
		lo = lockout.New(lockout.NewInMemory(), lockout.Config{
			Threshold: 3,
			Window:    15 * time.Minute,
			Cooldown:  15 * time.Minute,
		}, discardLogger(), nil)
	}

	return New(users, tokens, lo, discardLogger(), nil), users
}

func seedUser(t *testing.T, users *user.InMemory, username, password string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &auth.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         "USER",
	}))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return a verifiable token", func(t *testing.T) {
		svc, users := newTestService(t, false)
		seedUser(t, users, "alice", "pw123")

		tok, err := svc.Login(ctx, "alice", "pw123")
		require.NoError(t, err)
		require.NotEmpty(t, tok)

		require.NoError(t, svc.Validate("Bearer "+tok))
	})

	t.Run("wrong password and unknown user are indistinguishable", func(t *testing.T) {
		svc, users := newTestService(t, false)
		seedUser(t, users, "alice", "pw123")

		_, errWrongPw := svc.Login(ctx, "alice", "nope")
		_, errNoUser := svc.Login(ctx, "mallory", "nope")

		require.Error(t, errWrongPw)
		require.Error(t, errNoUser)
		assert.Equal(t, errWrongPw, errNoUser)
		assert.True(t, dErrors.Is(errWrongPw, dErrors.CodeUnauthorized))
	})

	t.Run("locked account rejects even correct credentials", func(t *testing.T) {
		svc, users := newTestService(t, true)
		seedUser(t, users, "alice", "pw123")

		for i := 0; i < 3; i++ {
			_, err := svc.Login(ctx, "alice", "wrong")
			require.Error(t, err)
		}

		_, err := svc.Login(ctx, "alice", "pw123")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("successful login clears failure count", func(t *testing.T) {
		svc, users := newTestService(t, true)
		seedUser(t, users, "alice", "pw123")

		for i := 0; i < 2; i++ {
			_, err := svc.Login(ctx, "alice", "wrong")
			require.Error(t, err)
		}
		_, err := svc.Login(ctx, "alice", "pw123")
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			_, err := svc.Login(ctx, "alice", "wrong")
			require.Error(t, err)
		}
		_, err = svc.Login(ctx, "alice", "pw123")
		require.NoError(t, err, "counter restarted, not locked")
	})
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t, false)
	seedUser(t, users, "alice", "pw123")

	tok, err := svc.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	t.Run("accepts a valid bearer header repeatedly", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, svc.Validate("Bearer "+tok))
		}
	})

	t.Run("rejects missing bearer prefix", func(t *testing.T) {
		assert.Error(t, svc.Validate(tok))
		assert.Error(t, svc.Validate("Basic abc"))
		assert.Error(t, svc.Validate(""))
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		err := svc.Validate("Bearer garbage")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expiredTokens := token.NewService("test-signing-key", "test-issuer", -time.Minute)
		expired, err := expiredTokens.Issue(uuid.New(), "alice")
		require.NoError(t, err)

		assert.Error(t, svc.Validate("Bearer "+expired))
	})
}
