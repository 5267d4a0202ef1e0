package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// statusFor maps a core error to an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	switch {
	case domain.IsCapabilityMisuse(err):
		return http.StatusUnprocessableEntity, "capability_misuse"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, domain.ErrAllSourcesFailed), errors.Is(err, domain.ErrNotConnected):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrAuthInvalid):
		return http.StatusBadGateway, "upstream_auth"
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, domain.ErrRetryBudgetExhausted),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes err with the status statusFor picks. Throttled
// responses carry Retry-After when the provider named a delay.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	var ra *domain.RetryAfterError
	if errors.As(err, &ra) && ra.After > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(ra.After.Seconds()))))
	}

	if status >= http.StatusInternalServerError {
		logger.WithFields(logger.Fields{
			"request_id": RequestID(r.Context()),
			"path":       r.URL.Path,
			"status":     status,
		}).Warnf("request failed: %v", err)
	}

	writeJSON(w, status, view.Error{Error: err.Error(), Code: code})
}
