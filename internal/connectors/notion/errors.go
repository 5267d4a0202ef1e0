package notion

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jomei/notionapi"

	"github.com/him6ul/AIAssistant/internal/connectors/httperr"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// wrapError converts notionapi errors to classified domain errors.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return fmt.Errorf("%s: %w", operation, httperr.Classify(apiErr.Status, nil, err))
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w", operation, domain.Transient(err))
	}
	return fmt.Errorf("%s: %w", operation, domain.Permanent(err))
}
