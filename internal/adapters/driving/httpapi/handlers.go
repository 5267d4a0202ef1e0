package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

var errEmptyBody = errors.New("empty request body")

// window reads limit, since and sources from the query string.
func (s *Server) window(r *http.Request) (domain.Window, error) {
	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		return domain.Window{}, err
	}
	sources, err := view.ParseSourceTypes(q.Get("sources"))
	if err != nil {
		return domain.Window{}, err
	}
	since, err := view.ParseSince(q.Get("since"), s.now())
	if err != nil {
		return domain.Window{}, err
	}
	return domain.Window{Limit: limit, Since: since, SourceTypes: sources}, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidInput)
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, nil
}

func parseBool(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// fields and bodies over the configured limit.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrInvalidInput, maxErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errEmptyBody)
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	win, err := s.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.ports.Orchestrator.GetAllMessages(r.Context(), domain.MessageQuery{
		Window:     win,
		UnreadOnly: parseBool(r.URL.Query().Get("unread")),
		ThreadID:   r.URL.Query().Get("thread"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Messages(items))
}

func (s *Server) handleEmails(w http.ResponseWriter, r *http.Request) {
	win, err := s.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.ports.Orchestrator.GetAllEmails(r.Context(), domain.EmailQuery{
		Window:     win,
		UnreadOnly: parseBool(r.URL.Query().Get("unread")),
		Folder:     r.URL.Query().Get("folder"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Emails(items))
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	win, err := s.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.ports.Orchestrator.GetAllNotes(r.Context(), domain.NoteQuery{
		Window:     win,
		NotebookID: r.URL.Query().Get("notebook"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Notes(items))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, r, fmt.Errorf("%w: q is required", domain.ErrInvalidInput))
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	results, err := s.ports.Orchestrator.SearchAcrossSources(r.Context(), query, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.FromSearch(query, results))
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	actions, err := s.ports.Orchestrator.GetNextActions(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Actions(actions))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, view.Statuses(s.ports.Orchestrator.Status()))
}

func (s *Server) handleConnectors(w http.ResponseWriter, _ *http.Request) {
	if s.ports.Catalogue == nil {
		writeJSON(w, http.StatusOK, []view.Connector{})
		return
	}
	writeJSON(w, http.StatusOK, view.Connectors(s.ports.Catalogue.List()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.ports.History == nil {
		writeJSON(w, http.StatusOK, []view.TaskRun{})
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	runs, err := s.ports.History.History(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.TaskRuns(runs))
}

type sendMessageRequest struct {
	Source   string `json:"source"`
	To       string `json:"to"`
	Content  string `json:"content"`
	ThreadID string `json:"thread_id"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	st, err := domain.ParseSourceType(req.Source)
	if err != nil {
		writeError(w, r, fmt.Errorf("source %q: %w", req.Source, err))
		return
	}
	sent, err := s.ports.Orchestrator.SendMessage(r.Context(), domain.OutgoingMessage{
		SourceType: st,
		To:         req.To,
		Content:    req.Content,
		ThreadID:   req.ThreadID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view.FromMessage(sent))
}

type sendEmailRequest struct {
	Source  string   `json:"source"`
	To      []string `json:"to"`
	Cc      []string `json:"cc"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	HTML    bool     `json:"html"`
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	st, err := domain.ParseSourceType(req.Source)
	if err != nil {
		writeError(w, r, fmt.Errorf("source %q: %w", req.Source, err))
		return
	}
	sent, err := s.ports.Orchestrator.SendEmail(r.Context(), domain.OutgoingEmail{
		SourceType: st,
		To:         req.To,
		Cc:         req.Cc,
		Subject:    req.Subject,
		Body:       req.Body,
		HTML:       req.HTML,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view.FromEmail(sent))
}

type createNoteRequest struct {
	Source     string `json:"source"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	NotebookID string `json:"notebook_id"`
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	st, err := domain.ParseSourceType(req.Source)
	if err != nil {
		writeError(w, r, fmt.Errorf("source %q: %w", req.Source, err))
		return
	}
	created, err := s.ports.Orchestrator.CreateNote(r.Context(), domain.NewNote{
		SourceType: st,
		Title:      req.Title,
		Content:    req.Content,
		NotebookID: req.NotebookID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view.FromNote(created))
}

type refreshRequest struct {
	Capabilities []string `json:"capabilities"`
}

// handleRefresh invalidates the named capabilities, or runs a full
// refresh when none are named. An empty body is a full refresh.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := s.decodeBody(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, r, err)
		return
	}
	caps, err := view.ParseCapabilities(req.Capabilities)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if len(caps) > 0 {
		s.ports.Orchestrator.Refresh(caps...)
		names := make([]string, 0, len(caps))
		for _, c := range caps {
			names = append(names, string(c))
		}
		writeJSON(w, http.StatusAccepted, map[string][]string{"invalidated": names})
		return
	}

	if s.ports.Runner != nil {
		result, err := s.ports.Runner.RunNow(r.Context(), domain.TaskIDSourceRefresh)
		if result == nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view.FromTaskResult(result))
		return
	}

	report, err := s.ports.Orchestrator.RefreshAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.FromRefresh(&report))
}
