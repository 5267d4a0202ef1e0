package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrNotConnected", ErrNotConnected},
		{"ErrAllSourcesFailed", ErrAllSourcesFailed},
		{"ErrTimeout", ErrTimeout},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrRetryBudgetExhausted", ErrRetryBudgetExhausted},
		{"ErrAuthRequired", ErrAuthRequired},
		{"ErrAuthInvalid", ErrAuthInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

var _ net.Error = timeoutNetError{}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"timeout sentinel", ErrTimeout, true},
		{"wrapped timeout", fmt.Errorf("fetch: %w", ErrTimeout), true},
		{"rate limited", ErrRateLimited, true},
		{"marked transient", Transient(errors.New("503")), true},
		{"marked permanent", Permanent(ErrTimeout), false},
		{"net error", timeoutNetError{}, true},
		{"context cancelled", context.Canceled, false},
		{"capability misuse", &CapabilityMisuseError{Source: SourceGmail, Capability: "CanSend", Op: "SendEmail"}, false},
		{"provider error", &ProviderError{Kind: KindTransient, Source: SourceOutlook}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}

func TestTransientAndPermanent_Nil(t *testing.T) {
	assert.NoError(t, Transient(nil))
	assert.NoError(t, Permanent(nil))
}

func TestProviderError_Error(t *testing.T) {
	err := &ProviderError{
		Kind:     KindTransient,
		Source:   SourceGmail,
		Op:       "FetchEmails",
		Attempts: 4,
		Err:      errors.New("503 backend error"),
	}

	assert.Equal(t, "gmail: transient provider error in FetchEmails after 4 attempts: 503 backend error", err.Error())
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := fmt.Errorf("outer: %w", &ProviderError{Kind: KindPermanent, Err: cause})

	assert.True(t, errors.Is(err, cause))

	var pe *ProviderError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, KindPermanent, pe.Kind)
}

func TestCapabilityMisuseError(t *testing.T) {
	err := fmt.Errorf("send: %w", &CapabilityMisuseError{
		Source:     SourceOneNote,
		Capability: "CanSend",
		Op:         "SendMessage",
	})

	assert.True(t, IsCapabilityMisuse(err))
	assert.Contains(t, err.Error(), "onenote: SendMessage called but adapter lacks CanSend")
	assert.False(t, IsCapabilityMisuse(ErrNotFound))
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "transient", KindTransient.String())
	assert.Equal(t, "permanent", KindPermanent.String())
}

func TestRetryAfterError(t *testing.T) {
	err := fmt.Errorf("list: %w", &RetryAfterError{After: 2 * time.Second, Err: errors.New("429")})

	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "retry after 2s")
}
