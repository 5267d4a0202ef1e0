package httperr

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		sentinel  error
		transient bool
	}{
		{"unauthorised", http.StatusUnauthorized, domain.ErrAuthInvalid, false},
		{"forbidden", http.StatusForbidden, domain.ErrAuthInvalid, false},
		{"not found", http.StatusNotFound, domain.ErrNotFound, false},
		{"bad request", http.StatusBadRequest, domain.ErrInvalidInput, false},
		{"too many requests", http.StatusTooManyRequests, domain.ErrRateLimited, true},
		{"request timeout", http.StatusRequestTimeout, nil, true},
		{"bad gateway", http.StatusBadGateway, nil, true},
		{"service unavailable", http.StatusServiceUnavailable, nil, true},
		{"teapot", http.StatusTeapot, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.status, nil, nil)

			require.Error(t, err)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			assert.Equal(t, tt.transient, domain.IsTransient(err))

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
		})
	}
}

func TestClassify_KeepsCause(t *testing.T) {
	cause := errors.New("quota exceeded for project")
	err := Classify(http.StatusServiceUnavailable, nil, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClassify_TooManyRequestsCarriesRetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "7")

	err := Classify(http.StatusTooManyRequests, h, nil)

	var ra *domain.RetryAfterError
	require.ErrorAs(t, err, &ra)
	assert.Equal(t, 7*time.Second, ra.After)
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"absent", "", 0},
		{"seconds", "30", 30 * time.Second},
		{"negative seconds", "-5", 0},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"date in the past", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("Retry-After", tt.value)
			}
			assert.Equal(t, tt.want, RetryAfter(h, now))
		})
	}

	assert.Zero(t, RetryAfter(nil, now))
}

func TestFromResponse(t *testing.T) {
	assert.NoError(t, FromResponse(&http.Response{StatusCode: http.StatusNoContent}, ""))

	err := FromResponse(&http.Response{StatusCode: http.StatusNotFound, Header: http.Header{}}, "no such chat")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "no such chat")
}
