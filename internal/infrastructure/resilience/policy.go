package resilience

import (
	"net/http"
	"time"
)

// Config controls how outbound calls are attempted. The zero value makes a
// single attempt with no circuit breaker.
type Config struct {
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
	Multiplier  float64

	Breaker BreakerConfig
}

type BreakerConfig struct {
	Enabled       bool
	MinRequests   uint32
	FailureRatio  float64
	OpenTimeout   time.Duration
	HalfOpenCalls uint32
}

// DefaultConfig is used for the AI services: one attempt per call so a slow
// provider is never hit twice within the request deadline.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 1,
		Backoff:     100 * time.Millisecond,
		MaxBackoff:  400 * time.Millisecond,
		Multiplier:  2.0,
		Breaker: BreakerConfig{
			Enabled:       true,
			MinRequests:   10,
			FailureRatio:  0.5,
			OpenTimeout:   30 * time.Second,
			HalfOpenCalls: 2,
		},
	}
}

// PublishConfig retries broker publishes a few times; events are best effort
// and never block a response for long.
func PublishConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	cfg.Backoff = 50 * time.Millisecond
	cfg.MaxBackoff = 200 * time.Millisecond
	return cfg
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 1
	}
	if out.Backoff <= 0 {
		out.Backoff = def.Backoff
	}
	if out.MaxBackoff < out.Backoff {
		out.MaxBackoff = out.Backoff
	}
	if out.Multiplier < 1.0 {
		out.Multiplier = def.Multiplier
	}

	b := &out.Breaker
	if b.MinRequests == 0 {
		b.MinRequests = def.Breaker.MinRequests
	}
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		b.FailureRatio = def.Breaker.FailureRatio
	}
	if b.OpenTimeout <= 0 {
		b.OpenTimeout = def.Breaker.OpenTimeout
	}
	if b.HalfOpenCalls == 0 {
		b.HalfOpenCalls = def.Breaker.HalfOpenCalls
	}
	return out
}

// RetryableStatus reports HTTP statuses that signal a transient upstream
// condition.
func RetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
