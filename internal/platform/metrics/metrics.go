// Package metrics registers the Prometheus instruments each service
// exposes on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway holds edge gateway metrics.
type Gateway struct {
	RequestsTotal     *prometheus.CounterVec
	UnauthorizedTotal prometheus.Counter
	ValidatorErrors   prometheus.Counter
	ValidateLatency   prometheus.Histogram
}

// NewGateway creates and registers gateway metrics.
func NewGateway() *Gateway {
	return &Gateway{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medigate_gateway_requests_total",
			Help: "Total requests received at the gateway, by route class.",
		}, []string{"route"}),
		UnauthorizedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medigate_gateway_unauthorized_total",
			Help: "Requests rejected with 401 at the gateway.",
		}),
		ValidatorErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medigate_gateway_validator_errors_total",
			Help: "Token validation attempts that failed for non-auth reasons.",
		}),
		ValidateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "medigate_gateway_validate_seconds",
			Help:    "Latency of remote token validation calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Auth holds auth service metrics.
type Auth struct {
	LoginsTotal        prometheus.Counter
	LoginFailuresTotal prometheus.Counter
	LockoutsTotal      prometheus.Counter
	ValidationsTotal   *prometheus.CounterVec
}

// NewAuth creates and registers auth service metrics.
func NewAuth() *Auth {
	return &Auth{
		LoginsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medigate_auth_logins_total",
			Help: "Successful logins.",
		}),
		LoginFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medigate_auth_login_failures_total",
			Help: "Rejected login attempts.",
		}),
		LockoutsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medigate_auth_lockouts_total",
			Help: "Accounts locked after repeated login failures.",
		}),
		ValidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medigate_auth_validations_total",
			Help: "Token validation outcomes.",
		}, []string{"outcome"}),
	}
}

// PatientMetrics holds patient service metrics.
type PatientMetrics struct {
	PatientsCreated   prometheus.Counter
	BillingFailures   prometheus.Counter
	EventsPublished   prometheus.Counter
	EventsFailed      prometheus.Counter
	OnboardingLatency prometheus.Histogram
}

// NewPatient creates and registers patient service metrics.
func NewPatient() *PatientMetrics {
	return &PatientMetrics{
		PatientsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medigate_patients_created_total",
			Help: "Total number of patients created.",
		}),
		BillingFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medigate_billing_failures_total",
			Help: "Billing account creations that failed.",
		}),
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medigate_patient_events_published_total",
			Help: "Patient lifecycle events published to the bus.",
		}),
		EventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medigate_patient_events_failed_total",
			Help: "Patient lifecycle events dropped after a publish failure.",
		}),
		OnboardingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "medigate_patient_onboarding_seconds",
			Help:    "End-to-end latency of patient creation.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
