package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medigate/internal/platform/metrics"
	"medigate/internal/platform/middleware"
)

// RouterConfig wires the gateway's upstreams and filter chain.
type RouterConfig struct {
	AuthServiceURL string
	PatientBaseURL string
	Validator      TokenValidator
	Logger         *slog.Logger
	Metrics        *metrics.Gateway
	RateLimiter    *middleware.RateLimiter
}

// NewRouter builds the edge router:
//
//	/auth/*         -> auth service (prefix stripped), unfiltered so login
//	                   is reachable
//	/api/patients*  -> patient service (/api stripped), behind the token
//	                   validation filter
//	/healthz        -> liveness
//	/metrics        -> prometheus
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	authProxy, err := newStripPrefixProxy(cfg.AuthServiceURL, "/auth")
	if err != nil {
		return nil, fmt.Errorf("auth upstream: %w", err)
	}
	patientProxy, err := newStripPrefixProxy(cfg.PatientBaseURL, "/api")
	if err != nil {
		return nil, fmt.Errorf("patient upstream: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Use(countRoute(cfg.Metrics, "auth"))
		r.Handle("/*", authProxy)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(countRoute(cfg.Metrics, "patients"))
		r.Use(RequireValidToken(cfg.Validator, cfg.Logger, cfg.Metrics))
		r.Handle("/*", patientProxy)
	})

	return r, nil
}

// newStripPrefixProxy proxies to target with the given path prefix removed,
// mirroring the original route declarations at the edge.
func newStripPrefixProxy(target, prefix string) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.URL.Path = strings.TrimPrefix(req.URL.Path, prefix)
		if req.URL.Path == "" {
			req.URL.Path = "/"
		}
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusBadGateway)
	}

	return proxy, nil
}

func countRoute(m *metrics.Gateway, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m != nil {
				m.RequestsTotal.WithLabelValues(route).Inc()
			}
			next.ServeHTTP(w, r)
		})
	}
}
