package domain

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity or adapter does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotConnected indicates an operation on an adapter that is not connected.
	ErrNotConnected = errors.New("adapter not connected")

	// ErrAllSourcesFailed indicates every adapter in a fan-out failed.
	ErrAllSourcesFailed = errors.New("all sources failed")

	// ErrTimeout indicates a single call exceeded its timeout.
	// It is always classified transient.
	ErrTimeout = errors.New("timeout")

	// ErrRateLimited indicates a provider or local rate limit was hit.
	// It is always classified transient.
	ErrRateLimited = errors.New("rate limited")

	// ErrRetryBudgetExhausted indicates the overall retry ceiling elapsed.
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")

	// Authentication Errors.

	// ErrAuthRequired indicates the adapter requires credentials but none are configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the credentials were rejected by the provider.
	ErrAuthInvalid = errors.New("authentication invalid")
)

// ErrorKind classifies a provider failure for the retry layer.
type ErrorKind int

const (
	// KindPermanent failures are never retried (bad credentials, not found, bad request).
	KindPermanent ErrorKind = iota
	// KindTransient failures may succeed on retry (network, timeout, 429, 5xx).
	KindTransient
)

// String returns the kind name.
func (k ErrorKind) String() string {
	if k == KindTransient {
		return "transient"
	}
	return "permanent"
}

// ProviderError is the normalised failure of an adapter call.
type ProviderError struct {
	Kind ErrorKind

	// Source is the adapter that failed. Empty when unknown.
	Source SourceType

	// Op is the adapter operation, e.g. "FetchEmails".
	Op string

	// Attempts is the number of calls made before giving up.
	Attempts int

	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	msg := e.Kind.String() + " provider error"
	if e.Source != "" {
		msg = fmt.Sprintf("%s: %s", e.Source, msg)
	}
	if e.Op != "" {
		msg = fmt.Sprintf("%s in %s", msg, e.Op)
	}
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient marks err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Kind: KindTransient, Err: err}
}

// Permanent marks err as not retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Kind: KindPermanent, Err: err}
}

// IsTransient reports whether err should be retried.
// Unclassified errors are permanent unless they are network errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsCapabilityMisuse(err) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind == KindTransient
	}
	var ra *RetryAfterError
	if errors.As(err, &ra) {
		return true
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// CapabilityMisuseError reports a call to an operation the adapter
// does not advertise. It is a programming error: never retried and
// never swallowed by the error boundary.
type CapabilityMisuseError struct {
	Source SourceType
	// Capability is the missing flag, e.g. "CanSend".
	Capability string
	Op         string
}

// Error implements the error interface.
func (e *CapabilityMisuseError) Error() string {
	return fmt.Sprintf("%s: %s called but adapter lacks %s", e.Source, e.Op, e.Capability)
}

// IsCapabilityMisuse reports whether err is a CapabilityMisuseError.
func IsCapabilityMisuse(err error) bool {
	var ce *CapabilityMisuseError
	return errors.As(err, &ce)
}

// RetryAfterError is a provider throttle response carrying the
// provider's requested back-off. The rate limiter honours After
// before admitting further calls to the same adapter.
type RetryAfterError struct {
	After time.Duration
	Err   error
}

// Error implements the error interface.
func (e *RetryAfterError) Error() string {
	msg := fmt.Sprintf("rate limited, retry after %s", e.After)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrRateLimited so errors.Is matches either sentinel.
func (e *RetryAfterError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRateLimited}
	}
	return []error{ErrRateLimited, e.Err}
}
