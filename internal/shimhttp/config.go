// Package shimhttp implements SHIM: the HTTP façade in front of EXEC and
// SCORE. It owns authentication, rate limiting, CORS, response compression,
// and sanitized error translation — none of which the core components
// (internal/sandbox, internal/scoring) know anything about.
package shimhttp

import "time"

// Config is SHIM's runtime configuration, bound from environment variables
// by cmd/shim the way melisai's cmd/melisai binds cobra flags.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string

	// APIKey is the shared secret callers must present in the
	// X-API-Key header. A request missing it, or presenting the wrong
	// value, is rejected with 401 before it reaches any handler.
	APIKey string

	// AllowedOrigins is the CORS allow-list, as parsed from the
	// comma-separated ALLOWED_ORIGINS environment variable.
	AllowedOrigins []string

	// ExecutionServiceURL, when non-empty, makes the shim delegate
	// execution to a separately deployed executor at that base URL
	// instead of the in-process sandbox. The health endpoint's
	// docker_available comes from whichever executor is active; the
	// language lists on /health and /languages always come from the
	// in-process sandbox registry, not from the remote service.
	ExecutionServiceURL string

	// RedisAddr is the address of the Redis instance backing the rate
	// limiter. Empty disables rate limiting (e.g. in a dev environment
	// with no Redis reachable) rather than failing closed on every request.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// GlobalRateLimit is the default per-source-address budget, requests
	// per minute, applied to every route.
	GlobalRateLimit int
	// ExecuteRateLimit is the tighter per-source-address budget applied
	// specifically to POST /api/execute, since sandboxed execution is the
	// most expensive operation this service offers.
	ExecuteRateLimit int

	// CompressThresholdBytes is the minimum response body size that
	// triggers gzip compression.
	CompressThresholdBytes int
}

// DefaultConfig returns a Config with the defaults spec §4.4 and §6 name:
// 100 req/min global, 30 req/min for execute, responses >=1000 bytes
// compressed.
func DefaultConfig() Config {
	return Config{
		Port:                   "8080",
		GlobalRateLimit:        100,
		ExecuteRateLimit:       30,
		CompressThresholdBytes: 1000,
	}
}

// RateLimitWindow is the fixed window every rate-limit budget above is
// expressed per.
const RateLimitWindow = time.Minute
