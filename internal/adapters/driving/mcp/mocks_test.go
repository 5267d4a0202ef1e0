package mcp

import (
	"context"
	"sync"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// mockOrchestrator is a mock implementation of driving.Orchestrator.
type mockOrchestrator struct {
	mu sync.Mutex

	messages []domain.UnifiedMessage
	emails   []domain.UnifiedEmail
	notes    []domain.UnifiedNote
	search   *driving.SearchResults
	actions  []domain.NextAction
	status   []domain.SourceStatus
	report   domain.RefreshReport
	err      error

	lastMessageQuery domain.MessageQuery
	lastEmailQuery   domain.EmailQuery
	lastNoteQuery    domain.NoteQuery
	lastSearch       string
	lastLimit        int
	sentMessage      *domain.OutgoingMessage
	sentEmail        *domain.OutgoingEmail
	createdNote      *domain.NewNote
	refreshed        []domain.Capability
	refreshAllCalls  int
}

func (m *mockOrchestrator) Initialize(_ context.Context) (domain.InitReport, error) {
	return domain.InitReport{}, m.err
}

func (m *mockOrchestrator) GetAllMessages(_ context.Context, q domain.MessageQuery) ([]domain.UnifiedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastMessageQuery = q
	return m.messages, m.err
}

func (m *mockOrchestrator) GetAllEmails(_ context.Context, q domain.EmailQuery) ([]domain.UnifiedEmail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastEmailQuery = q
	return m.emails, m.err
}

func (m *mockOrchestrator) GetAllNotes(_ context.Context, q domain.NoteQuery) ([]domain.UnifiedNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastNoteQuery = q
	return m.notes, m.err
}

func (m *mockOrchestrator) SearchAcrossSources(_ context.Context, query string, limit int) (*driving.SearchResults, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSearch = query
	m.lastLimit = limit
	return m.search, m.err
}

func (m *mockOrchestrator) GetNextActions(_ context.Context, limit int) ([]domain.NextAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	return m.actions, m.err
}

func (m *mockOrchestrator) SendMessage(_ context.Context, msg domain.OutgoingMessage) (*domain.UnifiedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentMessage = &msg
	if m.err != nil {
		return nil, m.err
	}
	return &domain.UnifiedMessage{
		ID:         domain.UnifiedID(msg.SourceType, "sent-1"),
		SourceType: msg.SourceType,
		SourceID:   "sent-1",
		Content:    msg.Content,
		ThreadID:   msg.ThreadID,
		IsRead:     true,
	}, nil
}

func (m *mockOrchestrator) SendEmail(_ context.Context, email domain.OutgoingEmail) (*domain.UnifiedEmail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentEmail = &email
	if m.err != nil {
		return nil, m.err
	}
	return &domain.UnifiedEmail{
		ID:         domain.UnifiedID(email.SourceType, "sent-1"),
		SourceType: email.SourceType,
		SourceID:   "sent-1",
		Subject:    email.Subject,
		BodyText:   email.Body,
		IsRead:     true,
	}, nil
}

func (m *mockOrchestrator) CreateNote(_ context.Context, note domain.NewNote) (*domain.UnifiedNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createdNote = &note
	if m.err != nil {
		return nil, m.err
	}
	return &domain.UnifiedNote{
		ID:         domain.UnifiedID(note.SourceType, "new-1"),
		SourceType: note.SourceType,
		SourceID:   "new-1",
		Title:      note.Title,
		Content:    note.Content,
		NotebookID: note.NotebookID,
	}, nil
}

func (m *mockOrchestrator) Refresh(capabilities ...domain.Capability) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed = append(m.refreshed, capabilities...)
}

func (m *mockOrchestrator) RefreshAll(_ context.Context) (domain.RefreshReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshAllCalls++
	return m.report, m.err
}

func (m *mockOrchestrator) Status() []domain.SourceStatus {
	return m.status
}

func (m *mockOrchestrator) Shutdown(_ context.Context) error {
	return nil
}

// mockCatalogue is a mock implementation of driving.ConnectorCatalogue.
type mockCatalogue struct {
	types []domain.ConnectorType
}

func (m *mockCatalogue) List() []domain.ConnectorType {
	return m.types
}

func (m *mockCatalogue) Get(id string) (*domain.ConnectorType, error) {
	for i := range m.types {
		if m.types[i].ID == id {
			return &m.types[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockHistory is a mock implementation of driving.RefreshHistory.
type mockHistory struct {
	runs      []domain.TaskResult
	err       error
	lastLimit int
}

func (m *mockHistory) History(_ context.Context, limit int) ([]domain.TaskResult, error) {
	m.lastLimit = limit
	return m.runs, m.err
}
