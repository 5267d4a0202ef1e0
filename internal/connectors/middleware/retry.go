package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// retrier re-invokes a call on transient failures with exponential backoff.
type retrier struct {
	cfg RetryConfig

	// sleep waits between attempts. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error

	// onRetryAfter is told about provider back-off hints.
	onRetryAfter func(d time.Duration)
}

func newRetrier(cfg RetryConfig) *retrier {
	return &retrier{cfg: cfg, sleep: sleepContext}
}

// do runs fn until it succeeds, fails permanently, or the retry budget
// is spent. It returns the number of attempts made.
func (r *retrier) do(ctx context.Context, maxRetries int, fn func(ctx context.Context) error) (int, error) {
	ceilCtx, cancel := context.WithTimeout(ctx, r.cfg.Ceiling)
	defer cancel()

	for attempt := 1; ; attempt++ {
		err := r.attempt(ceilCtx, fn)
		if err == nil {
			return attempt, nil
		}

		// Caller cancellation wins over every classification.
		if ctx.Err() != nil {
			return attempt, ctx.Err()
		}
		if ceilCtx.Err() != nil {
			return attempt, domain.Permanent(fmt.Errorf("%w: %w", domain.ErrRetryBudgetExhausted, err))
		}
		if !domain.IsTransient(err) || attempt > maxRetries {
			return attempt, err
		}

		delay := r.delay(attempt, err)
		if err := r.sleep(ceilCtx, delay); err != nil {
			if ctx.Err() != nil {
				return attempt, ctx.Err()
			}
			return attempt, domain.Permanent(fmt.Errorf("%w: %w", domain.ErrRetryBudgetExhausted, err))
		}
	}
}

// attempt runs one call under the per-attempt timeout.
func (r *retrier) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.AttemptTimeout)
	defer cancel()

	err := fn(attemptCtx)
	if err == nil {
		return nil
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return domain.Transient(fmt.Errorf("%w after %s: %w", domain.ErrTimeout, r.cfg.AttemptTimeout, err))
	}
	return err
}

// delay computes the wait before retry number attempt.
// A provider Retry-After hint replaces the computed value; like the
// backoff it is capped at MaxDelay, and the limiter is held back for the
// capped wait only.
func (r *retrier) delay(attempt int, err error) time.Duration {
	var ra *domain.RetryAfterError
	if errors.As(err, &ra) && ra.After > 0 {
		d := min(ra.After, r.cfg.MaxDelay)
		if r.onRetryAfter != nil {
			r.onRetryAfter(d)
		}
		return d
	}

	d := float64(r.cfg.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= r.cfg.Multiplier
		if d >= float64(r.cfg.MaxDelay) {
			return r.cfg.MaxDelay
		}
	}
	return time.Duration(d)
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
