package msgraph

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/normalisers/html"
)

var _ driven.NoteSource = (*OneNoteSource)(nil)

// OneNoteSource reads and creates OneNote pages.
type OneNoteSource struct {
	session
}

// NewOneNote creates a OneNote page source.
func NewOneNote(cfg *Config) *OneNoteSource {
	return &OneNoteSource{session: newSession(cfg, scope("Notes.ReadWrite"), scope("User.Read"))}
}

// SourceType returns the provider identifier.
func (s *OneNoteSource) SourceType() domain.SourceType { return domain.SourceOneNote }

// Capabilities returns the adapter feature flags.
func (s *OneNoteSource) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		CanSend:        true,
		CanReceive:     true,
		ConcurrentSafe: true,
	}
}

type page struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	CreatedDateTime      time.Time `json:"createdDateTime"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
	ParentSection        *struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"parentSection"`
}

// FetchNotes lists pages, newest edit first, and downloads their content.
// A NotebookID is read as a section ID.
func (s *OneNoteSource) FetchNotes(ctx context.Context, q domain.NoteQuery) ([]domain.UnifiedNote, error) {
	c, _, err := s.conn()
	if err != nil {
		return nil, err
	}
	limit := q.EffectiveLimit()

	path := "/me/onenote/pages"
	if q.NotebookID != "" {
		path = "/me/onenote/sections/" + url.PathEscape(q.NotebookID) + "/pages"
	}
	query := url.Values{}
	query.Set("$top", strconv.Itoa(s.pageSize(limit)))
	query.Set("$orderby", "lastModifiedDateTime desc")
	query.Set("$expand", "parentSection($select=id,displayName)")
	if q.Since != nil {
		query.Set("$filter", "lastModifiedDateTime ge "+graphTime(*q.Since))
	}

	pages, err := list[page](ctx, c, path, query, limit)
	if err != nil {
		return nil, err
	}

	notes := make([]domain.UnifiedNote, 0, len(pages))
	for i := range pages {
		content, err := c.GetRaw(ctx, "/me/onenote/pages/"+url.PathEscape(pages[i].ID)+"/content")
		if err != nil {
			return nil, fmt.Errorf("page %s content: %w", pages[i].ID, err)
		}
		notes = append(notes, toUnifiedNote(&pages[i], string(content), q.NotebookID))
	}
	return domain.FilterNotes(notes, q), nil
}

// SearchNotes is not supported by the OneNote API.
func (s *OneNoteSource) SearchNotes(context.Context, string, int) ([]domain.UnifiedNote, error) {
	return nil, &domain.CapabilityMisuseError{Source: domain.SourceOneNote, Capability: "CanSearch", Op: "SearchNotes"}
}

// CreateNote creates a page in the section named by NotebookID, or in the
// default section when it is empty.
func (s *OneNoteSource) CreateNote(ctx context.Context, note domain.NewNote) (*domain.UnifiedNote, error) {
	c, _, err := s.conn()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(note.Title) == "" {
		return nil, fmt.Errorf("%w: note needs a title", domain.ErrInvalidInput)
	}

	path := "/me/onenote/pages"
	if note.NotebookID != "" {
		path = "/me/onenote/sections/" + url.PathEscape(note.NotebookID) + "/pages"
	}
	body := pageHTML(note.Title, note.Content, s.now())

	var created page
	if err := c.PostContent(ctx, path, "text/html", []byte(body), &created); err != nil {
		return nil, err
	}
	if created.Title == "" {
		created.Title = note.Title
	}
	if created.LastModifiedDateTime.IsZero() {
		created.LastModifiedDateTime = s.now()
	}
	n := toUnifiedNote(&created, body, note.NotebookID)
	n.Content = note.Content
	return &n, nil
}

// pageHTML renders a page for the OneNote create endpoint.
// Each paragraph of content becomes a <p>.
func pageHTML(title, content string, created time.Time) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<title>" + html.Escape(title) + "</title>\n")
	b.WriteString(`<meta name="created" content="` + created.Format(time.RFC3339) + `" />` + "\n")
	b.WriteString("</head>\n<body>\n")
	for _, para := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		if para = strings.TrimSpace(para); para == "" {
			continue
		}
		b.WriteString("<p>" + strings.ReplaceAll(html.Escape(para), "\n", "<br/>") + "</p>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func toUnifiedNote(p *page, content, sectionID string) domain.UnifiedNote {
	n := domain.UnifiedNote{
		ID:           domain.UnifiedID(domain.SourceOneNote, p.ID),
		SourceType:   domain.SourceOneNote,
		SourceID:     p.ID,
		Title:        p.Title,
		Content:      html.Text(content),
		NotebookID:   sectionID,
		LastModified: p.LastModifiedDateTime.UTC(),
		RawData:      domain.RawJSON(p),
	}
	if p.ParentSection != nil && p.ParentSection.ID != "" {
		n.NotebookID = p.ParentSection.ID
	}
	if n.Title == "" {
		n.Title = html.Title(content)
	}
	return n
}
