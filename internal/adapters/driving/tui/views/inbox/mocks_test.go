package inbox

import (
	"context"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// mockOrchestrator implements driving.Orchestrator with canned data.
type mockOrchestrator struct {
	driving.Orchestrator

	actions  []domain.NextAction
	emails   []domain.UnifiedEmail
	messages []domain.UnifiedMessage
	notes    []domain.UnifiedNote
	err      error

	lastLimit int
}

func (m *mockOrchestrator) GetNextActions(_ context.Context, limit int) ([]domain.NextAction, error) {
	m.lastLimit = limit
	return m.actions, m.err
}

func (m *mockOrchestrator) GetAllEmails(_ context.Context, q domain.EmailQuery) ([]domain.UnifiedEmail, error) {
	m.lastLimit = q.Limit
	return m.emails, m.err
}

func (m *mockOrchestrator) GetAllMessages(_ context.Context, _ domain.MessageQuery) ([]domain.UnifiedMessage, error) {
	return m.messages, m.err
}

func (m *mockOrchestrator) GetAllNotes(_ context.Context, _ domain.NoteQuery) ([]domain.UnifiedNote, error) {
	return m.notes, m.err
}
