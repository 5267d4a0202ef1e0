package sources

import (
	"context"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// mockOrchestrator implements the status half of driving.Orchestrator.
type mockOrchestrator struct {
	driving.Orchestrator

	statuses []domain.SourceStatus
}

func (m *mockOrchestrator) Status() []domain.SourceStatus {
	return m.statuses
}

// mockHistory implements driving.RefreshHistory.
type mockHistory struct {
	runs      []domain.TaskResult
	err       error
	lastLimit int
}

func (m *mockHistory) History(_ context.Context, limit int) ([]domain.TaskResult, error) {
	m.lastLimit = limit
	return m.runs, m.err
}
