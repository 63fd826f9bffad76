// Package config builds service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Duplicate-claim policies. "allow" matches the reference behavior (a second
// identical claim produces a second record); "reject" turns the second
// submission into a DuplicateClaim rejection.
const (
	DuplicateAllow  = "allow"
	DuplicateReject = "reject"
)

// Server captures the full service configuration.
type Server struct {
	Addr       string
	AdminToken string

	// SigningKey signs session tokens. Rotating it invalidates every
	// outstanding token immediately.
	SigningKey string

	// TokenFreshness is the maximum age an issued token may have and still
	// be accepted. TokenRotation is the cadence at which the rotator mints
	// replacements; rotation must stay well under freshness so consecutive
	// tokens overlap.
	TokenFreshness time.Duration
	TokenRotation  time.Duration

	// DefaultRadiusM is the admission radius applied to sessions created
	// without one. FaceThreshold is the maximum descriptor distance that
	// still counts as the same person.
	DefaultRadiusM float64
	FaceThreshold  float64

	// DuplicatePolicy selects how a repeated accepted claim for the same
	// student and session is treated. DedupTTL bounds how long a redis-backed
	// reservation outlives its session.
	DuplicatePolicy string
	DedupTTL        time.Duration

	// LookupTimeout bounds each collaborator lookup during verification.
	// Exceeded lookups surface as DependencyUnavailable.
	LookupTimeout time.Duration

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables, applying the
// documented defaults for anything unset.
func FromEnv() Server {
	return Server{
		Addr:            envStr("ROLLCALL_ADDR", ":8080"),
		AdminToken:      os.Getenv("ROLLCALL_ADMIN_TOKEN"),
		SigningKey:      envStr("ROLLCALL_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenFreshness:  envDuration("ROLLCALL_TOKEN_FRESHNESS", 60*time.Second),
		TokenRotation:   envDuration("ROLLCALL_TOKEN_ROTATION", 10*time.Second),
		DefaultRadiusM:  envFloat("ROLLCALL_DEFAULT_RADIUS_M", 50),
		FaceThreshold:   envFloat("ROLLCALL_FACE_THRESHOLD", 0.65),
		DuplicatePolicy: envStr("ROLLCALL_DUPLICATE_POLICY", DuplicateAllow),
		DedupTTL:        envDuration("ROLLCALL_DEDUP_TTL", 12*time.Hour),
		LookupTimeout:   envDuration("ROLLCALL_LOOKUP_TIMEOUT", 2*time.Second),
		DatabaseURL:     os.Getenv("ROLLCALL_DATABASE_URL"),
		RedisURL:        os.Getenv("ROLLCALL_REDIS_URL"),
		KafkaBrokers:    os.Getenv("ROLLCALL_KAFKA_BROKERS"),
		KafkaTopic:      envStr("ROLLCALL_KAFKA_TOPIC", "rollcall.attendance.audit"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}
