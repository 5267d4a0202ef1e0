package imap

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/emersion/go-imap/client"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// wrapError classifies an IMAP client error for the retry layer.
// Dropped connections are transient; command rejections are permanent.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConnectionError(err) {
		return domain.Transient(fmt.Errorf("imap %s: %w", op, err))
	}
	return domain.Permanent(fmt.Errorf("imap %s: %w", op, err))
}

// isConnectionError reports whether the session is unusable after err.
func isConnectionError(err error) bool {
	if errors.Is(err, client.ErrAlreadyLoggedOut) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
