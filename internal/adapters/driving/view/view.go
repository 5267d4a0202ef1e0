// Package view converts domain entities into the JSON shapes shared by the
// CLI, MCP server and HTTP API.
package view

import (
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// Message is the external form of a UnifiedMessage.
type Message struct {
	ID         string   `json:"id"`
	SourceType string   `json:"source_type"`
	SourceID   string   `json:"source_id"`
	Content    string   `json:"content"`
	From       string   `json:"from"`
	To         []string `json:"to,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
	ThreadID   string   `json:"thread_id,omitempty"`
	IsRead     bool     `json:"is_read"`
	Important  bool     `json:"is_important"`
}

// Email is the external form of a UnifiedEmail.
type Email struct {
	ID         string   `json:"id"`
	SourceType string   `json:"source_type"`
	SourceID   string   `json:"source_id"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	From       string   `json:"from"`
	To         []string `json:"to,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
	IsRead     bool     `json:"is_read"`
	Importance string   `json:"importance,omitempty"`
	ThreadID   string   `json:"thread_id,omitempty"`
	Labels     []string `json:"labels,omitempty"`
}

// Note is the external form of a UnifiedNote.
type Note struct {
	ID           string `json:"id"`
	SourceType   string `json:"source_type"`
	SourceID     string `json:"source_id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	NotebookID   string `json:"notebook_id,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// Action is the external form of a NextAction.
type Action struct {
	Type        string  `json:"type"`
	Priority    string  `json:"priority"`
	Description string  `json:"description"`
	Capability  string  `json:"capability"`
	SourceType  string  `json:"source_type"`
	ItemID      string  `json:"item_id"`
	Flagged     bool    `json:"flagged"`
	Score       float64 `json:"score"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// Status is the external form of a SourceStatus.
type Status struct {
	SourceType   string   `json:"source_type"`
	Capabilities []string `json:"capabilities"`
	Connected    bool     `json:"connected"`
	Available    bool     `json:"available"`
	LastError    string   `json:"last_error,omitempty"`
	CanSend      bool     `json:"can_send"`
	CanSearch    bool     `json:"can_search"`
	CanSubscribe bool     `json:"can_subscribe"`
}

// SearchResults groups search hits by capability.
type SearchResults struct {
	Query    string    `json:"query"`
	Total    int       `json:"total"`
	Messages []Message `json:"messages"`
	Emails   []Email   `json:"emails"`
	Notes    []Note    `json:"notes"`
}

// Refresh is the external form of a RefreshReport.
type Refresh struct {
	ID        string   `json:"id"`
	StartedAt string   `json:"started_at,omitempty"`
	EndedAt   string   `json:"ended_at,omitempty"`
	Messages  int      `json:"messages"`
	Emails    int      `json:"emails"`
	Notes     int      `json:"notes"`
	Total     int      `json:"total"`
	Failed    []string `json:"failed,omitempty"`
}

// TaskRun is the external form of a TaskResult.
type TaskRun struct {
	RunID          string `json:"run_id"`
	TaskID         string `json:"task_id"`
	StartedAt      string `json:"started_at,omitempty"`
	EndedAt        string `json:"ended_at,omitempty"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	ItemsProcessed int    `json:"items_processed"`
}

// Connector is the external form of a ConnectorType.
type Connector struct {
	ID          string   `json:"id"`
	SourceType  string   `json:"source_type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Capability  string   `json:"capability"`
	AuthMethod  string   `json:"auth_method"`
	ConfigKeys  []string `json:"config_keys,omitempty"`
}

// Error is the body returned for failed requests.
type Error struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// FromMessage converts a message.
func FromMessage(m *domain.UnifiedMessage) Message {
	return Message{
		ID:         m.ID,
		SourceType: m.SourceType.String(),
		SourceID:   m.SourceID,
		Content:    m.Content,
		From:       m.FromUser.String(),
		To:         identities(m.ToUsers),
		Timestamp:  stamp(m.Timestamp),
		ThreadID:   m.ThreadID,
		IsRead:     m.IsRead,
		Important:  m.IsImportant,
	}
}

// FromEmail converts an email. The HTML body is dropped in favour of text.
func FromEmail(e *domain.UnifiedEmail) Email {
	return Email{
		ID:         e.ID,
		SourceType: e.SourceType.String(),
		SourceID:   e.SourceID,
		Subject:    e.Subject,
		Body:       e.BodyText,
		From:       e.FromAddress.String(),
		To:         identities(e.ToAddresses),
		Timestamp:  stamp(e.Timestamp),
		IsRead:     e.IsRead,
		Importance: string(e.Importance),
		ThreadID:   e.ThreadID,
		Labels:     e.Labels,
	}
}

// FromNote converts a note.
func FromNote(n *domain.UnifiedNote) Note {
	return Note{
		ID:           n.ID,
		SourceType:   n.SourceType.String(),
		SourceID:     n.SourceID,
		Title:        n.Title,
		Content:      n.Content,
		NotebookID:   n.NotebookID,
		LastModified: stamp(n.LastModified),
	}
}

// FromAction converts a next action.
func FromAction(a *domain.NextAction) Action {
	return Action{
		Type:        string(a.Type),
		Priority:    string(a.Priority),
		Description: a.Description,
		Capability:  string(a.Capability),
		SourceType:  a.SourceType.String(),
		ItemID:      a.ItemID,
		Flagged:     a.Flagged,
		Score:       a.Score,
		Timestamp:   stamp(a.Timestamp),
	}
}

// FromStatus converts a source status.
func FromStatus(s *domain.SourceStatus) Status {
	return Status{
		SourceType:   s.SourceType.String(),
		Capabilities: capabilities(s.Capabilities),
		Connected:    s.Connected,
		Available:    s.Available,
		LastError:    s.LastError,
		CanSend:      s.Flags.CanSend,
		CanSearch:    s.Flags.CanSearch,
		CanSubscribe: s.Flags.CanSubscribe,
	}
}

// FromRefresh converts a refresh report.
func FromRefresh(r *domain.RefreshReport) Refresh {
	failed := make([]string, 0, len(r.Failed))
	for _, st := range r.Failed {
		failed = append(failed, st.String())
	}
	return Refresh{
		ID:        r.ID,
		StartedAt: stamp(r.StartedAt),
		EndedAt:   stamp(r.EndedAt),
		Messages:  r.Messages,
		Emails:    r.Emails,
		Notes:     r.Notes,
		Total:     r.Total(),
		Failed:    failed,
	}
}

// FromTaskResult converts a scheduler run.
func FromTaskResult(r *domain.TaskResult) TaskRun {
	return TaskRun{
		RunID:          r.RunID,
		TaskID:         r.TaskID,
		StartedAt:      stamp(r.StartedAt),
		EndedAt:        stamp(r.EndedAt),
		Success:        r.Success,
		Error:          r.Error,
		ItemsProcessed: r.ItemsProcessed,
	}
}

// FromConnector converts a catalogue entry.
func FromConnector(c *domain.ConnectorType) Connector {
	keys := make([]string, 0, len(c.ConfigKeys))
	for _, k := range c.ConfigKeys {
		keys = append(keys, k.Key)
	}
	return Connector{
		ID:          c.ID,
		SourceType:  c.SourceType.String(),
		Name:        c.Name,
		Description: c.Description,
		Capability:  string(c.Capability),
		AuthMethod:  string(c.AuthMethod),
		ConfigKeys:  keys,
	}
}

// Messages converts a slice of messages. The result is never nil.
func Messages(items []domain.UnifiedMessage) []Message {
	out := make([]Message, 0, len(items))
	for i := range items {
		out = append(out, FromMessage(&items[i]))
	}
	return out
}

// Emails converts a slice of emails. The result is never nil.
func Emails(items []domain.UnifiedEmail) []Email {
	out := make([]Email, 0, len(items))
	for i := range items {
		out = append(out, FromEmail(&items[i]))
	}
	return out
}

// Notes converts a slice of notes. The result is never nil.
func Notes(items []domain.UnifiedNote) []Note {
	out := make([]Note, 0, len(items))
	for i := range items {
		out = append(out, FromNote(&items[i]))
	}
	return out
}

// Actions converts a slice of next actions.
func Actions(items []domain.NextAction) []Action {
	out := make([]Action, 0, len(items))
	for i := range items {
		out = append(out, FromAction(&items[i]))
	}
	return out
}

// Statuses converts a slice of source statuses.
func Statuses(items []domain.SourceStatus) []Status {
	out := make([]Status, 0, len(items))
	for i := range items {
		out = append(out, FromStatus(&items[i]))
	}
	return out
}

// TaskRuns converts a slice of scheduler runs.
func TaskRuns(items []domain.TaskResult) []TaskRun {
	out := make([]TaskRun, 0, len(items))
	for i := range items {
		out = append(out, FromTaskResult(&items[i]))
	}
	return out
}

// Connectors converts catalogue entries.
func Connectors(items []domain.ConnectorType) []Connector {
	out := make([]Connector, 0, len(items))
	for i := range items {
		out = append(out, FromConnector(&items[i]))
	}
	return out
}

// FromSearch converts search results. A nil result yields empty groups.
func FromSearch(query string, r *driving.SearchResults) SearchResults {
	if r == nil {
		r = &driving.SearchResults{}
	}
	return SearchResults{
		Query:    query,
		Total:    r.Total(),
		Messages: Messages(r.Messages),
		Emails:   Emails(r.Emails),
		Notes:    Notes(r.Notes),
	}
}

func identities(ids []domain.Identity) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func capabilities(caps []domain.Capability) []string {
	out := make([]string, 0, len(caps))
	for _, c := range caps {
		out = append(out, string(c))
	}
	return out
}

// stamp formats t as RFC 3339 in UTC. The zero time yields "".
func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
