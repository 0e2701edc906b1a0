package gateway

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayRouting(t *testing.T) {
	authUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/validate" && r.Header.Get("Authorization") == "Bearer good" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.URL.Path == "/login" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"token":"good"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer authUpstream.Close()

	patientUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer patientUpstream.Close()

	router, err := NewRouter(RouterConfig{
		AuthServiceURL: authUpstream.URL,
		PatientBaseURL: patientUpstream.URL,
		Validator:      NewRemoteValidator(authUpstream.URL, 0),
		Logger:         discardLogger(),
	})
	require.NoError(t, err)

	gw := httptest.NewServer(router)
	defer gw.Close()

	get := func(path, authHeader string) (*http.Response, string) {
		req, err := http.NewRequest(http.MethodGet, gw.URL+path, nil)
		require.NoError(t, err)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return resp, string(body)
	}

	t.Run("auth routes proxied without filter", func(t *testing.T) {
		resp, _ := get("/auth/login", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("patient route with valid token is proxied with /api stripped", func(t *testing.T) {
		resp, body := get("/api/patients", "Bearer good")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "/patients", body)
	})

	t.Run("patient route without token is 401", func(t *testing.T) {
		resp, _ := get("/api/patients", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("patient route with bad token is 401", func(t *testing.T) {
		resp, _ := get("/api/patients", "Bearer bad")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("healthz open", func(t *testing.T) {
		resp, _ := get("/healthz", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
