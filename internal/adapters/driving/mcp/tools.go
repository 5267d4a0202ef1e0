package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

const defaultLimit = 20

// MessagesInput is the input schema for the get_messages tool.
type MessagesInput struct {
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of items to return (default 20)"`
	Since      string `json:"since,omitempty" jsonschema:"only items newer than this: a duration like 24h or 7d, an RFC 3339 time or a date"`
	Sources    string `json:"sources,omitempty" jsonschema:"comma separated source types to include, e.g. gmail,outlook"`
	UnreadOnly bool   `json:"unread_only,omitempty" jsonschema:"only unread messages"`
	ThreadID   string `json:"thread_id,omitempty" jsonschema:"only messages in this thread"`
}

// EmailsInput is the input schema for the get_emails tool.
type EmailsInput struct {
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of items to return (default 20)"`
	Since      string `json:"since,omitempty" jsonschema:"only items newer than this: a duration like 24h or 7d, an RFC 3339 time or a date"`
	Sources    string `json:"sources,omitempty" jsonschema:"comma separated source types to include, e.g. gmail,outlook"`
	UnreadOnly bool   `json:"unread_only,omitempty" jsonschema:"only unread emails"`
	Folder     string `json:"folder,omitempty" jsonschema:"mail folder or label"`
}

// NotesInput is the input schema for the get_notes tool.
type NotesInput struct {
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of items to return (default 20)"`
	Since      string `json:"since,omitempty" jsonschema:"only items newer than this: a duration like 24h or 7d, an RFC 3339 time or a date"`
	Sources    string `json:"sources,omitempty" jsonschema:"comma separated source types to include, e.g. gmail,outlook"`
	NotebookID string `json:"notebook_id,omitempty" jsonschema:"only notes in this notebook"`
}

// MessagesOutput is the output schema for the get_messages tool.
type MessagesOutput struct {
	Messages []view.Message `json:"messages"`
	Count    int            `json:"count"`
}

// EmailsOutput is the output schema for the get_emails tool.
type EmailsOutput struct {
	Emails []view.Email `json:"emails"`
	Count  int          `json:"count"`
}

// NotesOutput is the output schema for the get_notes tool.
type NotesOutput struct {
	Notes []view.Note `json:"notes"`
	Count int         `json:"count"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to look for in messages, emails and notes"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum hits per capability (default 20)"`
}

// ActionsInput is the input schema for the next_actions tool.
type ActionsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of suggestions (default 20)"`
}

// ActionsOutput is the output schema for the next_actions tool.
type ActionsOutput struct {
	Actions []view.Action `json:"actions"`
	Count   int           `json:"count"`
}

// SendMessageInput is the input schema for the send_message tool.
type SendMessageInput struct {
	Source   string `json:"source" jsonschema:"source type to send through, e.g. teams"`
	To       string `json:"to" jsonschema:"recipient or chat ID"`
	Content  string `json:"content" jsonschema:"message text"`
	ThreadID string `json:"thread_id,omitempty" jsonschema:"thread to reply in"`
}

// SendEmailInput is the input schema for the send_email tool.
type SendEmailInput struct {
	Source  string   `json:"source" jsonschema:"source type to send through, e.g. gmail"`
	To      []string `json:"to" jsonschema:"recipient addresses"`
	Cc      []string `json:"cc,omitempty" jsonschema:"carbon copy addresses"`
	Subject string   `json:"subject" jsonschema:"subject line"`
	Body    string   `json:"body" jsonschema:"message body"`
	HTML    bool     `json:"html,omitempty" jsonschema:"treat body as HTML"`
}

// CreateNoteInput is the input schema for the create_note tool.
type CreateNoteInput struct {
	Source     string `json:"source" jsonschema:"source type to create in, e.g. notion"`
	Title      string `json:"title" jsonschema:"note title"`
	Content    string `json:"content" jsonschema:"note body"`
	NotebookID string `json:"notebook_id,omitempty" jsonschema:"notebook, section or parent page"`
}

// StatusInput is the empty input schema for the status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the status tool.
type StatusOutput struct {
	Sources []view.Status `json:"sources"`
}

// RefreshInput is the input schema for the refresh tool.
type RefreshInput struct {
	Capabilities []string `json:"capabilities,omitempty" jsonschema:"capabilities to re-fetch (message, mail, note); all when empty"`
}

// RefreshOutput is the output schema for the refresh tool.
type RefreshOutput struct {
	Invalidated []string      `json:"invalidated,omitempty"`
	Report      *view.Refresh `json:"report,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_messages",
		Description: "List chat messages from every connected messaging source, newest first",
	}, s.handleGetMessages)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_emails",
		Description: "List emails from every connected mail source, newest first",
	}, s.handleGetEmails)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_notes",
		Description: "List notes from every connected note source, most recently modified first",
	}, s.handleGetNotes)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search messages, emails and notes across all sources",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "next_actions",
		Description: "Suggest what to attend to next, ranked by importance and recency",
	}, s.handleNextActions)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "send_message",
		Description: "Send a chat message through one messaging source",
	}, s.handleSendMessage)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "send_email",
		Description: "Send an email through one mail source",
	}, s.handleSendEmail)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_note",
		Description: "Create a note in one note source",
	}, s.handleCreateNote)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "status",
		Description: "Report which sources are registered and connected",
	}, s.handleStatus)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh",
		Description: "Drop cached items and re-fetch from the sources",
	}, s.handleRefresh)
}

func (s *Server) window(limit int, since, sources string) (domain.Window, error) {
	types, err := view.ParseSourceTypes(sources)
	if err != nil {
		return domain.Window{}, err
	}
	after, err := view.ParseSince(since, s.now())
	if err != nil {
		return domain.Window{}, err
	}
	return domain.Window{Limit: limitOrDefault(limit), Since: after, SourceTypes: types}, nil
}

func (s *Server) handleGetMessages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MessagesInput,
) (*mcp.CallToolResult, MessagesOutput, error) {
	w, err := s.window(input.Limit, input.Since, input.Sources)
	if err != nil {
		return nil, MessagesOutput{}, err
	}
	items, err := s.ports.Orchestrator.GetAllMessages(ctx, domain.MessageQuery{
		Window:     w,
		UnreadOnly: input.UnreadOnly,
		ThreadID:   input.ThreadID,
	})
	if err != nil {
		return nil, MessagesOutput{}, err
	}
	return nil, MessagesOutput{Messages: view.Messages(items), Count: len(items)}, nil
}

func (s *Server) handleGetEmails(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EmailsInput,
) (*mcp.CallToolResult, EmailsOutput, error) {
	w, err := s.window(input.Limit, input.Since, input.Sources)
	if err != nil {
		return nil, EmailsOutput{}, err
	}
	items, err := s.ports.Orchestrator.GetAllEmails(ctx, domain.EmailQuery{
		Window:     w,
		UnreadOnly: input.UnreadOnly,
		Folder:     input.Folder,
	})
	if err != nil {
		return nil, EmailsOutput{}, err
	}
	return nil, EmailsOutput{Emails: view.Emails(items), Count: len(items)}, nil
}

func (s *Server) handleGetNotes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NotesInput,
) (*mcp.CallToolResult, NotesOutput, error) {
	w, err := s.window(input.Limit, input.Since, input.Sources)
	if err != nil {
		return nil, NotesOutput{}, err
	}
	items, err := s.ports.Orchestrator.GetAllNotes(ctx, domain.NoteQuery{
		Window:     w,
		NotebookID: input.NotebookID,
	})
	if err != nil {
		return nil, NotesOutput{}, err
	}
	return nil, NotesOutput{Notes: view.Notes(items), Count: len(items)}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, view.SearchResults, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, view.SearchResults{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	results, err := s.ports.Orchestrator.SearchAcrossSources(ctx, query, limitOrDefault(input.Limit))
	if err != nil {
		return nil, view.SearchResults{}, err
	}
	return nil, view.FromSearch(query, results), nil
}

func (s *Server) handleNextActions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ActionsInput,
) (*mcp.CallToolResult, ActionsOutput, error) {
	actions, err := s.ports.Orchestrator.GetNextActions(ctx, limitOrDefault(input.Limit))
	if err != nil {
		return nil, ActionsOutput{}, err
	}
	return nil, ActionsOutput{Actions: view.Actions(actions), Count: len(actions)}, nil
}

func (s *Server) handleSendMessage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SendMessageInput,
) (*mcp.CallToolResult, view.Message, error) {
	st, err := domain.ParseSourceType(input.Source)
	if err != nil {
		return nil, view.Message{}, fmt.Errorf("source %q: %w", input.Source, err)
	}
	sent, err := s.ports.Orchestrator.SendMessage(ctx, domain.OutgoingMessage{
		SourceType: st,
		To:         input.To,
		Content:    input.Content,
		ThreadID:   input.ThreadID,
	})
	if err != nil {
		return nil, view.Message{}, err
	}
	return nil, view.FromMessage(sent), nil
}

func (s *Server) handleSendEmail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SendEmailInput,
) (*mcp.CallToolResult, view.Email, error) {
	st, err := domain.ParseSourceType(input.Source)
	if err != nil {
		return nil, view.Email{}, fmt.Errorf("source %q: %w", input.Source, err)
	}
	sent, err := s.ports.Orchestrator.SendEmail(ctx, domain.OutgoingEmail{
		SourceType: st,
		To:         input.To,
		Cc:         input.Cc,
		Subject:    input.Subject,
		Body:       input.Body,
		HTML:       input.HTML,
	})
	if err != nil {
		return nil, view.Email{}, err
	}
	return nil, view.FromEmail(sent), nil
}

func (s *Server) handleCreateNote(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateNoteInput,
) (*mcp.CallToolResult, view.Note, error) {
	st, err := domain.ParseSourceType(input.Source)
	if err != nil {
		return nil, view.Note{}, fmt.Errorf("source %q: %w", input.Source, err)
	}
	created, err := s.ports.Orchestrator.CreateNote(ctx, domain.NewNote{
		SourceType: st,
		Title:      input.Title,
		Content:    input.Content,
		NotebookID: input.NotebookID,
	})
	if err != nil {
		return nil, view.Note{}, err
	}
	return nil, view.FromNote(created), nil
}

func (s *Server) handleStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return nil, StatusOutput{Sources: view.Statuses(s.ports.Orchestrator.Status())}, nil
}

// handleRefresh invalidates the named capabilities, or re-fetches
// everything when none are named.
func (s *Server) handleRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RefreshInput,
) (*mcp.CallToolResult, RefreshOutput, error) {
	caps, err := view.ParseCapabilities(input.Capabilities)
	if err != nil {
		return nil, RefreshOutput{}, err
	}
	if len(caps) > 0 {
		s.ports.Orchestrator.Refresh(caps...)
		names := make([]string, 0, len(caps))
		for _, c := range caps {
			names = append(names, string(c))
		}
		return nil, RefreshOutput{Invalidated: names}, nil
	}

	report, err := s.ports.Orchestrator.RefreshAll(ctx)
	if err != nil {
		return nil, RefreshOutput{}, err
	}
	v := view.FromRefresh(&report)
	return nil, RefreshOutput{Report: &v}, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
