package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// RateLimiter throttles calls into one adapter instance.
// It uses a token bucket with optional backoff after provider 429
// responses, and an optional single slot for adapters that cannot
// handle concurrent calls.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	mode    LimitMode

	// slot serialises calls when non-nil.
	slot chan struct{}
}

// NewRateLimiter creates a rate limiter from configuration.
// A zero RequestsPerSecond disables the token bucket.
func NewRateLimiter(cfg RateLimitConfig, serialize bool) *RateLimiter {
	r := &RateLimiter{mode: cfg.Mode}
	if cfg.RequestsPerSecond > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	if serialize {
		r.slot = make(chan struct{}, 1)
	}
	return r
}

// Acquire admits one call. The returned release func must be called
// when the call completes.
func (r *RateLimiter) Acquire(ctx context.Context) (func(), error) {
	if err := r.admit(ctx); err != nil {
		return nil, err
	}

	if r.slot == nil {
		return func() {}, nil
	}
	select {
	case r.slot <- struct{}{}:
		return func() { <-r.slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *RateLimiter) admit(ctx context.Context) error {
	if r.mode == ModeReject {
		if !r.Allow() {
			return domain.ErrRateLimited
		}
		return nil
	}
	return r.Wait(ctx)
}

// Wait blocks until a request can be made without exceeding the rate limit
// or the back-off set by RecordRetryAfter. A back-off that outlasts the
// ctx deadline fails immediately with context.DeadlineExceeded.
func (r *RateLimiter) Wait(ctx context.Context) error {
	// First, check for backoff from previous rate limit errors
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		if deadline, ok := ctx.Deadline(); ok && retryAt.After(deadline) {
			return context.DeadlineExceeded
		}
		timer := time.NewTimer(time.Until(retryAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

// Allow checks if a request can be made immediately without blocking.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	if r.limiter == nil {
		return true
	}
	return r.limiter.Allow()
}

// RecordRetryAfter holds further calls back for d.
// Called when the provider answers with a throttling response.
func (r *RateLimiter) RecordRetryAfter(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d <= 0 {
		d = time.Minute
	}
	if until := time.Now().Add(d); until.After(r.retryAt) {
		r.retryAt = until
	}
}
