package mcp

import (
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Orchestrator serves every tool.
	Orchestrator driving.Orchestrator

	// Catalogue backs the connectors resource. Optional.
	Catalogue driving.ConnectorCatalogue

	// History backs the refresh history resource. Optional.
	History driving.RefreshHistory
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Orchestrator == nil {
		return ErrMissingOrchestrator
	}
	return nil
}
