package search

import (
	"context"

	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// mockOrchestrator implements the search half of driving.Orchestrator.
type mockOrchestrator struct {
	driving.Orchestrator

	results   *driving.SearchResults
	err       error
	lastQuery string
	lastLimit int
}

func (m *mockOrchestrator) SearchAcrossSources(_ context.Context, query string, limit int) (*driving.SearchResults, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.results, m.err
}
