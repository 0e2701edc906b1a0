package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "medigate/pkg/domain-errors"
	"medigate/pkg/platform/sentinel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeValidator counts calls and returns a fixed outcome.
type fakeValidator struct {
	calls atomic.Int32
	err   error
}

func (f *fakeValidator) Validate(ctx context.Context, authHeader string) error {
	f.calls.Add(1)
	return f.err
}

func filterChain(v TokenValidator, downstream *atomic.Int32) http.Handler {
	return RequireValidToken(v, discardLogger(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downstream.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireValidToken(t *testing.T) {
	t.Run("missing header rejected without remote call", func(t *testing.T) {
		v := &fakeValidator{}
		var downstream atomic.Int32
		h := filterChain(v, &downstream)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/patients", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Zero(t, v.calls.Load(), "no remote validation for missing token")
		assert.Zero(t, downstream.Load(), "no downstream call")
	})

	t.Run("non-bearer scheme rejected without remote call", func(t *testing.T) {
		v := &fakeValidator{}
		var downstream atomic.Int32
		h := filterChain(v, &downstream)

		req := httptest.NewRequest(http.MethodGet, "/patients", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwdw==")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Zero(t, v.calls.Load())
		assert.Zero(t, downstream.Load())
	})

	t.Run("rejected token becomes gateway 401", func(t *testing.T) {
		v := &fakeValidator{err: dErrors.New(dErrors.CodeUnauthorized, "token rejected")}
		var downstream atomic.Int32
		h := filterChain(v, &downstream)

		req := httptest.NewRequest(http.MethodGet, "/patients", nil)
		req.Header.Set("Authorization", "Bearer sometoken")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, int32(1), v.calls.Load())
		assert.Zero(t, downstream.Load())
	})

	t.Run("validator outage becomes 502 not 401", func(t *testing.T) {
		v := &fakeValidator{err: errors.Join(sentinel.ErrUnavailable, errors.New("connection refused"))}
		var downstream atomic.Int32
		h := filterChain(v, &downstream)

		req := httptest.NewRequest(http.MethodGet, "/patients", nil)
		req.Header.Set("Authorization", "Bearer sometoken")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Zero(t, downstream.Load())
	})

	t.Run("accepted token forwards unchanged", func(t *testing.T) {
		v := &fakeValidator{}
		var gotAuth string
		h := RequireValidToken(v, discardLogger(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/patients", nil)
		req.Header.Set("Authorization", "Bearer sometoken")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Bearer sometoken", gotAuth, "original header forwarded unmodified")
	})

	t.Run("every request is re-validated", func(t *testing.T) {
		v := &fakeValidator{}
		var downstream atomic.Int32
		h := filterChain(v, &downstream)

		req := httptest.NewRequest(http.MethodGet, "/patients", nil)
		req.Header.Set("Authorization", "Bearer sometoken")
		for i := 0; i < 3; i++ {
			h.ServeHTTP(httptest.NewRecorder(), req)
		}

		assert.Equal(t, int32(3), v.calls.Load(), "no caching of validation results")
	})
}

func TestRemoteValidator(t *testing.T) {
	t.Run("200 accepts", func(t *testing.T) {
		var gotHeader string
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeader = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		}))
		defer upstream.Close()

		v := NewRemoteValidator(upstream.URL, time.Second)
		require.NoError(t, v.Validate(context.Background(), "Bearer tok"))
		assert.Equal(t, "Bearer tok", gotHeader)
	})

	t.Run("401 maps to unauthorized", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer upstream.Close()

		v := NewRemoteValidator(upstream.URL, time.Second)
		err := v.Validate(context.Background(), "Bearer tok")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
		assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("500 maps to unavailable", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer upstream.Close()

		v := NewRemoteValidator(upstream.URL, time.Second)
		err := v.Validate(context.Background(), "Bearer tok")
		require.ErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("connection failure maps to unavailable", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		upstream.Close() // nothing listening anymore

		v := NewRemoteValidator(upstream.URL, time.Second)
		err := v.Validate(context.Background(), "Bearer tok")
		require.ErrorIs(t, err, sentinel.ErrUnavailable)
	})
}
