package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// chain applies the middleware layers in a fixed order, outermost first:
// logging, error boundary, rate limiter, retry, adapter.
type chain struct {
	source  domain.SourceType
	limiter *RateLimiter
	retrier *retrier
	cfg     Config
}

func newChain(source domain.SourceType, cfg Config) *chain {
	cfg = cfg.withDefaults()
	c := &chain{
		source:  source,
		limiter: NewRateLimiter(cfg.RateLimit, cfg.Serialize),
		retrier: newRetrier(cfg.Retry),
		cfg:     cfg,
	}
	c.retrier.onRetryAfter = c.limiter.RecordRetryAfter
	return c
}

// callOpts tunes one invocation.
type callOpts struct {
	op string
	// noRetry disables retries for non-idempotent operations.
	noRetry bool
	// detail is logged with the call, never bodies or credentials.
	detail logger.Fields
}

// invoke runs fn through every layer. On failure it returns fallback
// together with a normalised *domain.ProviderError, except for
// capability misuse which passes through unchanged.
func invoke[T any](ctx context.Context, c *chain, o callOpts, fallback T, fn func(ctx context.Context) (T, error)) (T, error) {
	start := time.Now()
	attempts := 0

	out, err := protect(c.source, o.op, fallback, &attempts, func() (T, error) {
		release, err := c.acquire(ctx)
		if err != nil {
			return fallback, err
		}
		defer release()

		var result T
		maxRetries := c.cfg.Retry.MaxRetries
		if o.noRetry {
			maxRetries = 0
		}
		attempts, err = c.retrier.do(ctx, maxRetries, func(ctx context.Context) error {
			v, err := fn(ctx)
			if err == nil {
				result = v
			}
			return err
		})
		return result, err
	})

	c.observe(o, start, attempts, err)
	return out, err
}

// acquire admits the call through the rate limiter. Waiting counts
// against Retry.Ceiling: a limiter that cannot admit the call within it
// fails the call permanently instead of stalling the caller.
func (c *chain) acquire(ctx context.Context) (func(), error) {
	ceiling := time.Now().Add(c.cfg.Retry.Ceiling)
	admitCtx, cancel := context.WithDeadline(ctx, ceiling)
	defer cancel()

	release, err := c.limiter.Acquire(admitCtx)
	if err == nil {
		return release, nil
	}
	if errors.Is(err, domain.ErrRateLimited) || ctx.Err() != nil {
		return nil, err
	}
	if d, ok := ctx.Deadline(); ok && d.Before(ceiling) {
		// The caller's own deadline was the tighter bound.
		return nil, err
	}
	return nil, domain.Permanent(fmt.Errorf("%w: waiting for rate limiter: %w", domain.ErrRetryBudgetExhausted, err))
}

// protect is the error boundary: it converts panics and raw errors into
// classified provider errors so one adapter cannot abort an aggregate.
func protect[T any](source domain.SourceType, op string, fallback T, attempts *int, fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = fallback
			err = &domain.ProviderError{
				Kind:     domain.KindPermanent,
				Source:   source,
				Op:       op,
				Attempts: *attempts,
				Err:      fmt.Errorf("panic: %v", r),
			}
		}
	}()

	v, err := fn()
	if err == nil {
		return v, nil
	}
	return fallback, normalise(err, source, op, *attempts)
}

// normalise wraps err in a *domain.ProviderError carrying call context.
func normalise(err error, source domain.SourceType, op string, attempts int) error {
	if domain.IsCapabilityMisuse(err) {
		return err
	}

	kind := domain.KindPermanent
	if domain.IsTransient(err) {
		kind = domain.KindTransient
	}

	var pe *domain.ProviderError
	if errors.As(err, &pe) && pe.Source == "" && pe.Op == "" {
		// Unwrap the bare classification marker added by domain.Transient/Permanent.
		err = pe.Err
	}

	return &domain.ProviderError{
		Kind:     kind,
		Source:   source,
		Op:       op,
		Attempts: attempts,
		Err:      err,
	}
}

// observe is the logging layer: it records duration, attempts and outcome.
func (c *chain) observe(o callOpts, start time.Time, attempts int, err error) {
	elapsed := time.Since(start)
	src := string(c.source)

	callDuration.WithLabelValues(src, o.op).Observe(elapsed.Seconds())
	if attempts > 1 {
		retriesTotal.WithLabelValues(src, o.op).Add(float64(attempts - 1))
	}

	fields := logger.Fields{
		"source":      src,
		"op":          o.op,
		"duration_ms": elapsed.Milliseconds(),
		"attempts":    attempts,
	}
	for k, v := range o.detail {
		fields[k] = v
	}

	switch {
	case err == nil:
		callsTotal.WithLabelValues(src, o.op, outcomeOK).Inc()
		degradedGauge.WithLabelValues(src).Set(0)
		logger.WithFields(fields).Debug("provider call succeeded")
	case domain.IsCapabilityMisuse(err):
		callsTotal.WithLabelValues(src, o.op, outcomeMisuse).Inc()
		fields["error"] = err.Error()
		logger.WithFields(fields).Error("provider call rejected")
	default:
		outcome := outcomeError
		if errors.Is(err, domain.ErrRateLimited) && attempts == 0 {
			outcome = outcomeRejected
		}
		callsTotal.WithLabelValues(src, o.op, outcome).Inc()
		degradedGauge.WithLabelValues(src).Set(1)
		fields["error"] = err.Error()
		logger.WithFields(fields).Warn("provider call failed")
	}
}
