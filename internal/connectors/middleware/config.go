package middleware

import "time"

// LimitMode selects what the rate limiter does when no token is available.
type LimitMode string

const (
	// ModeBlock queues the call until a token is available (default).
	ModeBlock LimitMode = "block"
	// ModeReject fails the call immediately with domain.ErrRateLimited.
	ModeReject LimitMode = "reject"
)

// RetryConfig controls the retry layer.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps a single wait.
	MaxDelay time.Duration

	// Multiplier grows the delay between consecutive retries.
	Multiplier float64

	// AttemptTimeout bounds a single adapter call.
	AttemptTimeout time.Duration

	// Ceiling bounds the whole call including every retry and wait.
	Ceiling time.Duration
}

// RateLimitConfig controls the per-adapter token bucket.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the bucket size.
	Burst int

	// Mode is ModeBlock or ModeReject.
	Mode LimitMode
}

// Config is the full middleware configuration for one adapter.
type Config struct {
	Retry     RetryConfig
	RateLimit RateLimitConfig

	// Serialize forces one call at a time through the adapter.
	// Wrap sets it automatically for adapters that are not ConcurrentSafe.
	Serialize bool
}

// DefaultRetryConfig returns the default retry settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialDelay:   time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2,
		AttemptTimeout: 30 * time.Second,
		Ceiling:        2 * time.Minute,
	}
}

// DefaultRateLimitConfig returns conservative defaults that sit well below
// the published quotas of the supported providers.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 5,
		Burst:             10,
		Mode:              ModeBlock,
	}
}

// DefaultConfig returns the default middleware configuration.
func DefaultConfig() Config {
	return Config{
		Retry:     DefaultRetryConfig(),
		RateLimit: DefaultRateLimitConfig(),
	}
}

// withDefaults fills zero fields from the defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Retry.MaxRetries < 0 {
		c.Retry.MaxRetries = 0
	}
	if c.Retry.InitialDelay <= 0 {
		c.Retry.InitialDelay = d.Retry.InitialDelay
	}
	if c.Retry.MaxDelay <= 0 {
		c.Retry.MaxDelay = d.Retry.MaxDelay
	}
	if c.Retry.Multiplier < 1 {
		c.Retry.Multiplier = d.Retry.Multiplier
	}
	if c.Retry.AttemptTimeout <= 0 {
		c.Retry.AttemptTimeout = d.Retry.AttemptTimeout
	}
	if c.Retry.Ceiling <= 0 {
		c.Retry.Ceiling = d.Retry.Ceiling
	}
	if c.RateLimit.Mode == "" {
		c.RateLimit.Mode = ModeBlock
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 1
	}
	return c
}
