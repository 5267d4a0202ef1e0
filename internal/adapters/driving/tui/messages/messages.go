// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewInbox shows the tabbed lists of actions, emails, messages and notes.
	ViewInbox ViewType = iota
	// ViewSearch is the cross-source search view.
	ViewSearch
	// ViewDetail shows one item in full.
	ViewDetail
	// ViewSources shows source status and refresh history.
	ViewSources
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewInbox:
		return "inbox"
	case ViewSearch:
		return "search"
	case ViewDetail:
		return "detail"
	case ViewSources:
		return "sources"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Tab identifies an inbox tab.
type Tab int

const (
	TabActions Tab = iota
	TabEmails
	TabMessages
	TabNotes
)

// Tabs lists the inbox tabs in display order.
var Tabs = []Tab{TabActions, TabEmails, TabMessages, TabNotes}

// String returns the tab title.
func (t Tab) String() string {
	switch t {
	case TabActions:
		return "Next actions"
	case TabEmails:
		return "Emails"
	case TabMessages:
		return "Messages"
	case TabNotes:
		return "Notes"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ActionsLoaded carries ranked next actions.
type ActionsLoaded struct {
	Actions []domain.NextAction
	Err     error
}

// EmailsLoaded carries emails from every mail source.
type EmailsLoaded struct {
	Emails []domain.UnifiedEmail
	Err    error
}

// MessagesLoaded carries chat messages from every messaging source.
type MessagesLoaded struct {
	Messages []domain.UnifiedMessage
	Err      error
}

// NotesLoaded carries notes from every note source.
type NotesLoaded struct {
	Notes []domain.UnifiedNote
	Err   error
}

// SearchCompleted carries cross-source search results back to the model.
type SearchCompleted struct {
	Query   string
	Results *driving.SearchResults
	Err     error
}

// StatusLoaded carries per-source state and recent refresh runs.
type StatusLoaded struct {
	Statuses []domain.SourceStatus
	Runs     []domain.TaskResult
	Err      error
}

// RefreshCompleted signals a full refresh finished.
type RefreshCompleted struct {
	Report domain.RefreshReport
	Err    error
}

// SourceChanged wraps a change pushed by a subscribing source.
type SourceChanged struct {
	Event domain.SourceEvent
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
