package driving

import (
	"context"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// Orchestrator is the single consumer-facing entry point of the hub.
// CLI, MCP, HTTP and TUI adapters drive the application through it.
type Orchestrator interface {
	// Initialize connects every registered adapter.
	// Adapters that fail to connect are logged and marked unavailable;
	// initialisation never aborts because one adapter failed.
	Initialize(ctx context.Context) (domain.InitReport, error)

	// GetAllMessages returns messages from every message source,
	// sorted newest first and truncated to the query limit.
	GetAllMessages(ctx context.Context, q domain.MessageQuery) ([]domain.UnifiedMessage, error)

	// GetAllEmails returns emails from every mail source.
	GetAllEmails(ctx context.Context, q domain.EmailQuery) ([]domain.UnifiedEmail, error)

	// GetAllNotes returns notes from every note source.
	GetAllNotes(ctx context.Context, q domain.NoteQuery) ([]domain.UnifiedNote, error)

	// SearchAcrossSources searches all three capabilities concurrently.
	SearchAcrossSources(ctx context.Context, query string, limit int) (*SearchResults, error)

	// GetNextActions ranks unread and flagged items into suggestions.
	GetNextActions(ctx context.Context, limit int) ([]domain.NextAction, error)

	// SendMessage sends through the adapter registered for msg.SourceType.
	SendMessage(ctx context.Context, msg domain.OutgoingMessage) (*domain.UnifiedMessage, error)

	// SendEmail sends through the adapter registered for email.SourceType.
	SendEmail(ctx context.Context, email domain.OutgoingEmail) (*domain.UnifiedEmail, error)

	// CreateNote creates through the adapter registered for note.SourceType.
	CreateNote(ctx context.Context, note domain.NewNote) (*domain.UnifiedNote, error)

	// Refresh invalidates the cache for the given capabilities,
	// or for every capability when none are given.
	Refresh(capabilities ...domain.Capability)

	// RefreshAll re-fetches every capability and repopulates the cache.
	RefreshAll(ctx context.Context) (domain.RefreshReport, error)

	// Status reports availability of every registered adapter.
	Status() []domain.SourceStatus

	// Shutdown disconnects every adapter best-effort and clears the cache.
	Shutdown(ctx context.Context) error
}

// SearchResults groups cross-source search hits by capability.
type SearchResults struct {
	Messages []domain.UnifiedMessage
	Emails   []domain.UnifiedEmail
	Notes    []domain.UnifiedNote
}

// Total returns the number of hits across all capabilities.
func (r *SearchResults) Total() int {
	return len(r.Messages) + len(r.Emails) + len(r.Notes)
}

// ConnectorCatalogue lists the built-in adapter types.
type ConnectorCatalogue interface {
	// List returns all built-in adapter types.
	List() []domain.ConnectorType

	// Get returns an adapter type by config section ID.
	// Returns domain.ErrNotFound if unknown.
	Get(id string) (*domain.ConnectorType, error)
}

// RefreshHistory exposes past refresh runs recorded by the scheduler.
type RefreshHistory interface {
	// History returns the most recent refresh runs, newest first.
	History(ctx context.Context, limit int) ([]domain.TaskResult, error)
}
