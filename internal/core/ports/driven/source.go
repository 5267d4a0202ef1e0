package driven

import (
	"context"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// Source is the lifecycle shared by every adapter.
// Each provider (gmail, outlook, notion, etc.) implements it together
// with one or more capability interfaces.
type Source interface {
	// SourceType returns the provider identifier.
	SourceType() domain.SourceType

	// Capabilities returns the fixed feature flags of this adapter.
	Capabilities() domain.Capabilities

	// Connect establishes the provider session.
	// Calling Connect on a connected adapter is a no-op.
	Connect(ctx context.Context) error

	// Disconnect releases the provider session.
	// Safe to call when not connected.
	Disconnect(ctx context.Context) error

	// IsConnected reports whether the adapter has a live session.
	IsConnected() bool
}

// MessageSource fetches and sends chat messages.
type MessageSource interface {
	Source

	// FetchMessages returns at most q.Limit messages newer than q.Since.
	// Results carry unified IDs and UTC timestamps.
	FetchMessages(ctx context.Context, q domain.MessageQuery) ([]domain.UnifiedMessage, error)

	// SearchMessages runs a provider-side search.
	// Only available if CanSearch is true.
	SearchMessages(ctx context.Context, query string, limit int) ([]domain.UnifiedMessage, error)

	// SendMessage sends a chat message.
	// Only available if CanSend is true.
	SendMessage(ctx context.Context, msg domain.OutgoingMessage) (*domain.UnifiedMessage, error)
}

// MailSource fetches and sends emails.
type MailSource interface {
	Source

	// FetchEmails returns at most q.Limit emails newer than q.Since.
	FetchEmails(ctx context.Context, q domain.EmailQuery) ([]domain.UnifiedEmail, error)

	// SearchEmails runs a provider-side search.
	// Only available if CanSearch is true.
	SearchEmails(ctx context.Context, query string, limit int) ([]domain.UnifiedEmail, error)

	// SendEmail sends an email.
	// Only available if CanSend is true.
	SendEmail(ctx context.Context, email domain.OutgoingEmail) (*domain.UnifiedEmail, error)
}

// NoteSource fetches and creates notes.
type NoteSource interface {
	Source

	// FetchNotes returns at most q.Limit notes modified after q.Since.
	FetchNotes(ctx context.Context, q domain.NoteQuery) ([]domain.UnifiedNote, error)

	// SearchNotes runs a provider-side search.
	// Only available if CanSearch is true.
	SearchNotes(ctx context.Context, query string, limit int) ([]domain.UnifiedNote, error)

	// CreateNote creates a note.
	// Only available if CanSend is true.
	CreateNote(ctx context.Context, note domain.NewNote) (*domain.UnifiedNote, error)
}

// Watcher is implemented by adapters that advertise CanSubscribe.
type Watcher interface {
	// Watch streams change events until ctx is cancelled.
	// The channel is closed when watching stops.
	Watch(ctx context.Context) (<-chan domain.SourceEvent, error)
}
