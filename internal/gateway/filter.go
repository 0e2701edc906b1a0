package gateway

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"medigate/internal/platform/metrics"
	"medigate/internal/platform/middleware"
	"medigate/pkg/platform/sentinel"
)

const bearerPrefix = "Bearer "

// RequireValidToken is the gateway auth filter. Per request:
//
//   - no Authorization header, or one without the bearer scheme: 401
//     immediately, no remote call (fail-closed short circuit)
//   - validator rejects: 401
//   - validator unreachable or erroring: 502, so an outage is not
//     mistaken for an invalid token
//   - validator accepts: forward unchanged; no headers injected, no
//     caching of the decision
func RequireValidToken(validator TokenValidator, logger *slog.Logger, m *metrics.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				if m != nil {
					m.UnauthorizedTotal.Inc()
				}
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			start := time.Now()
			err := validator.Validate(ctx, authHeader)
			if m != nil {
				m.ValidateLatency.Observe(time.Since(start).Seconds())
			}

			if err != nil {
				if errors.Is(err, sentinel.ErrUnavailable) {
					if m != nil {
						m.ValidatorErrors.Inc()
					}
					logger.ErrorContext(ctx, "token validator unavailable",
						"error", err,
						"request_id", middleware.GetRequestID(ctx),
					)
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				if m != nil {
					m.UnauthorizedTotal.Inc()
				}
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
