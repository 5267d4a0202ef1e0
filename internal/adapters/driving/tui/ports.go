// Package tui is the interactive terminal inbox of the hub: tabs for
// actions, messages, emails and notes, a search view and a sources view
// with refresh history.
package tui

import (
	"errors"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

var (
	ErrInvalidPorts        = errors.New("tui: ports are required")
	ErrMissingOrchestrator = errors.New("tui: orchestrator is required")
)

// Ports are the core services the TUI drives.
type Ports struct {
	Orchestrator driving.Orchestrator

	// History lists recent refresh runs on the sources view. Optional.
	History driving.RefreshHistory

	// Events reloads the open tab whenever a subscribed source reports a
	// change. Optional.
	Events <-chan domain.SourceEvent
}

// Validate checks that the required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p == nil:
		return ErrInvalidPorts
	case p.Orchestrator == nil:
		return ErrMissingOrchestrator
	}
	return nil
}
