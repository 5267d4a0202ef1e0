package google

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/him6ul/AIAssistant/internal/connectors/httperr"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// Reasons Google reports on a 403 that is really a throttle.
var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == http.StatusTooManyRequests {
		return true
	}
	if gerr.Code == http.StatusForbidden {
		for _, item := range gerr.Errors {
			if rateLimitReasons[item.Reason] {
				return true
			}
		}
	}
	return false
}

// IsUnauthorized returns true if the error indicates invalid credentials,
// either from the API or from the token endpoint.
func IsUnauthorized(err error) bool {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized
	}
	return false
}

// WrapError classifies a Google API error for the retry layer.
// Errors that are not googleapi or oauth2 errors are returned unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return domain.Permanent(fmt.Errorf("%w: token refresh: %w", domain.ErrAuthInvalid, err))
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	status := gerr.Code
	if IsRateLimited(err) {
		status = http.StatusTooManyRequests
	}
	return httperr.Classify(status, gerr.Header, err)
}
