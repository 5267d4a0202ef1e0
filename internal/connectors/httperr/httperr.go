// Package httperr classifies HTTP API failures into domain errors.
//
// Every HTTP-backed adapter (Gmail, Microsoft Graph, GitHub, Notion)
// funnels provider status codes through Classify so the middleware
// retry layer sees the same transient/permanent split everywhere.
package httperr

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// StatusError is a non-2xx response from a provider API.
type StatusError struct {
	StatusCode int
	// Message is the provider's error text, if any.
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// Classify wraps a provider failure with its domain classification.
//
//   - 401, 403: permanent ErrAuthInvalid
//   - 404: permanent ErrNotFound
//   - 400, 409, 422: permanent ErrInvalidInput
//   - 429: RetryAfterError honouring the Retry-After header
//   - 408, 5xx: transient
//
// Anything else is permanent.
func Classify(status int, header http.Header, cause error) error {
	if cause == nil {
		cause = &StatusError{StatusCode: status}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.Permanent(fmt.Errorf("%w: %w", domain.ErrAuthInvalid, cause))
	case status == http.StatusNotFound:
		return domain.Permanent(fmt.Errorf("%w: %w", domain.ErrNotFound, cause))
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return domain.Permanent(fmt.Errorf("%w: %w", domain.ErrInvalidInput, cause))
	case status == http.StatusTooManyRequests:
		return &domain.RetryAfterError{After: RetryAfter(header, time.Now()), Err: cause}
	case status == http.StatusRequestTimeout || status >= 500:
		return domain.Transient(cause)
	default:
		return domain.Permanent(cause)
	}
}

// RetryAfter parses a Retry-After header given either as delta seconds
// or as an HTTP date. Returns zero when absent or unparseable.
func RetryAfter(h http.Header, now time.Time) time.Duration {
	if h == nil {
		return 0
	}
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// FromResponse classifies a non-2xx response. The body is not consumed.
// Returns nil for 2xx responses.
func FromResponse(resp *http.Response, message string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return Classify(resp.StatusCode, resp.Header, &StatusError{StatusCode: resp.StatusCode, Message: message})
}
