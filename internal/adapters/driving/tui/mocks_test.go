package tui

import (
	"context"
	"sync"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// MockOrchestrator implements driving.Orchestrator for testing.
type MockOrchestrator struct {
	mu sync.Mutex

	Actions  []domain.NextAction
	Emails   []domain.UnifiedEmail
	Messages []domain.UnifiedMessage
	Notes    []domain.UnifiedNote
	Search   *driving.SearchResults
	Statuses []domain.SourceStatus
	Report   domain.RefreshReport
	Err      error

	RefreshAllCalls int
	EmailCalls      int
}

func (m *MockOrchestrator) Initialize(_ context.Context) (domain.InitReport, error) {
	return domain.InitReport{}, nil
}

func (m *MockOrchestrator) GetAllMessages(_ context.Context, _ domain.MessageQuery) ([]domain.UnifiedMessage, error) {
	return m.Messages, m.Err
}

func (m *MockOrchestrator) GetAllEmails(_ context.Context, _ domain.EmailQuery) ([]domain.UnifiedEmail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmailCalls++
	return m.Emails, m.Err
}

func (m *MockOrchestrator) GetAllNotes(_ context.Context, _ domain.NoteQuery) ([]domain.UnifiedNote, error) {
	return m.Notes, m.Err
}

func (m *MockOrchestrator) SearchAcrossSources(_ context.Context, _ string, _ int) (*driving.SearchResults, error) {
	return m.Search, m.Err
}

func (m *MockOrchestrator) GetNextActions(_ context.Context, _ int) ([]domain.NextAction, error) {
	return m.Actions, m.Err
}

func (m *MockOrchestrator) SendMessage(_ context.Context, _ domain.OutgoingMessage) (*domain.UnifiedMessage, error) {
	return nil, domain.ErrNotFound
}

func (m *MockOrchestrator) SendEmail(_ context.Context, _ domain.OutgoingEmail) (*domain.UnifiedEmail, error) {
	return nil, domain.ErrNotFound
}

func (m *MockOrchestrator) CreateNote(_ context.Context, _ domain.NewNote) (*domain.UnifiedNote, error) {
	return nil, domain.ErrNotFound
}

func (m *MockOrchestrator) Refresh(_ ...domain.Capability) {}

func (m *MockOrchestrator) RefreshAll(_ context.Context) (domain.RefreshReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RefreshAllCalls++
	return m.Report, m.Err
}

func (m *MockOrchestrator) Status() []domain.SourceStatus {
	return m.Statuses
}

func (m *MockOrchestrator) Shutdown(_ context.Context) error {
	return nil
}

// MockHistory implements driving.RefreshHistory for testing.
type MockHistory struct {
	Runs []domain.TaskResult
	Err  error
}

func (m *MockHistory) History(_ context.Context, _ int) ([]domain.TaskResult, error) {
	return m.Runs, m.Err
}
