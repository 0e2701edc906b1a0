// Package config builds per-service configuration from environment
// variables so each main stays lean. Defaults target local development;
// production deployments override everything.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Gateway captures edge gateway configuration.
type Gateway struct {
	Addr            string
	AuthServiceURL  string
	PatientBaseURL  string
	ValidateTimeout time.Duration
	RatePerSecond   float64
	RateBurst       int
}

// Auth captures auth service configuration.
type Auth struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration
	DatabaseURL   string
	RedisURL      string
	SeedUsername  string
	SeedPassword  string

	LockoutThreshold int
	LockoutWindow    time.Duration
	LockoutCooldown  time.Duration
}

// BillingPolicy names the orchestrator's behavior when billing-account
// creation fails after the patient record has been committed.
type BillingPolicy string

const (
	// BillingBestEffort keeps the committed patient and logs the failure.
	BillingBestEffort BillingPolicy = "best-effort"
	// BillingCompensate deletes the just-created patient and surfaces the
	// failure to the caller.
	BillingCompensate BillingPolicy = "compensate"
)

// Patient captures patient service configuration.
type Patient struct {
	Addr               string
	DatabaseURL        string
	BillingServiceAddr string
	BillingTimeout     time.Duration
	BillingPolicy      BillingPolicy
	KafkaBrokers       []string
	KafkaTopic         string
	PublishTimeout     time.Duration
}

// Billing captures billing service configuration.
type Billing struct {
	Addr string
}

// GatewayFromEnv builds gateway config.
func GatewayFromEnv() Gateway {
	return Gateway{
		Addr:            envOr("GATEWAY_ADDR", ":8080"),
		AuthServiceURL:  envOr("AUTH_SERVICE_URL", "http://localhost:8081"),
		PatientBaseURL:  envOr("PATIENT_SERVICE_URL", "http://localhost:8082"),
		ValidateTimeout: envDuration("GATEWAY_VALIDATE_TIMEOUT", 5*time.Second),
		RatePerSecond:   envFloat("GATEWAY_RATE_PER_SECOND", 20),
		RateBurst:       envInt("GATEWAY_RATE_BURST", 40),
	}
}

// AuthFromEnv builds auth service config.
func AuthFromEnv() Auth {
	return Auth{
		Addr:          envOr("AUTH_ADDR", ":8081"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     envOr("JWT_ISSUER", "medigate-auth"),
		TokenTTL:      envDuration("TOKEN_TTL", 10*time.Hour),
		DatabaseURL:   os.Getenv("AUTH_DATABASE_URL"),
		RedisURL:      os.Getenv("AUTH_REDIS_URL"),
		SeedUsername:  os.Getenv("AUTH_SEED_USER"),
		SeedPassword:  os.Getenv("AUTH_SEED_PASSWORD"),

		LockoutThreshold: envInt("AUTH_LOCKOUT_THRESHOLD", 5),
		LockoutWindow:    envDuration("AUTH_LOCKOUT_WINDOW", 15*time.Minute),
		LockoutCooldown:  envDuration("AUTH_LOCKOUT_COOLDOWN", 15*time.Minute),
	}
}

// PatientFromEnv builds patient service config.
func PatientFromEnv() Patient {
	policy := BillingPolicy(envOr("PATIENT_BILLING_POLICY", string(BillingBestEffort)))
	if policy != BillingCompensate {
		policy = BillingBestEffort
	}
	return Patient{
		Addr:               envOr("PATIENT_ADDR", ":8082"),
		DatabaseURL:        os.Getenv("PATIENT_DATABASE_URL"),
		BillingServiceAddr: envOr("BILLING_SERVICE_ADDR", "localhost:9001"),
		BillingTimeout:     envDuration("BILLING_TIMEOUT", 5*time.Second),
		BillingPolicy:      policy,
		KafkaBrokers:       splitList(envOr("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:         envOr("KAFKA_PATIENT_TOPIC", "patient"),
		PublishTimeout:     envDuration("PUBLISH_TIMEOUT", 5*time.Second),
	}
}

// BillingFromEnv builds billing service config.
func BillingFromEnv() Billing {
	return Billing{
		Addr: envOr("BILLING_ADDR", ":9001"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
