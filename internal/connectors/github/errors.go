package github

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/him6ul/AIAssistant/internal/connectors/httperr"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// wrapError converts go-github errors to classified domain errors.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// Primary rate limit: wait until the window resets.
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return fmt.Errorf("%s: %w", operation, &domain.RetryAfterError{
			After: time.Until(rateLimitErr.Rate.Reset.Time),
			Err:   err,
		})
	}

	// Secondary rate limit: GitHub may say how long to back off.
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w", operation, &domain.RetryAfterError{
			After: abuseErr.GetRetryAfter(),
			Err:   err,
		})
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return fmt.Errorf("%s: %w", operation, httperr.Classify(ghErr.Response.StatusCode, ghErr.Response.Header, err))
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w", operation, domain.Transient(err))
	}

	return fmt.Errorf("%s: %w", operation, domain.Permanent(err))
}

// IsNotFound reports whether err is a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrAuthInvalid)
}
