// Package notion implements a note source over the Notion API.
//
// Every page shared with the integration is a note. Its title property is
// the note title, its top-level blocks are the content and its parent page
// or database is the notebook.
package notion

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jomei/notionapi"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.NoteSource = (*Source)(nil)

// Source reads, searches and creates Notion pages.
type Source struct {
	cfg        *Config
	httpClient *http.Client
	now        func() time.Time

	mu     sync.RWMutex
	client *notionapi.Client
}

// New creates a Notion source. A nil httpClient uses the library default.
func New(cfg *Config, httpClient *http.Client) *Source {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Source{cfg: cfg, httpClient: httpClient, now: time.Now}
}

// SourceType returns the provider identifier.
func (s *Source) SourceType() domain.SourceType { return domain.SourceNotion }

// Capabilities returns the adapter feature flags.
func (s *Source) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		CanSend:        true,
		CanReceive:     true,
		CanSearch:      true,
		ConcurrentSafe: true,
	}
}

// Connect builds the client and checks the token against the bot user.
func (s *Source) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}
	if s.cfg.Token == "" {
		return domain.Permanent(fmt.Errorf("%w: notion token is required", domain.ErrAuthRequired))
	}

	var opts []notionapi.ClientOption
	if s.httpClient != nil {
		opts = append(opts, notionapi.WithHTTPClient(s.httpClient))
	}
	client := notionapi.NewClient(notionapi.Token(s.cfg.Token), opts...)

	bot, err := client.User.Me(ctx)
	if err != nil {
		return wrapError(err, "validate token")
	}

	s.client = client
	logger.Debug("notion: connected as %s", bot.Name)
	return nil
}

// Disconnect drops the client.
func (s *Source) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	return nil
}

// IsConnected reports whether Connect succeeded.
func (s *Source) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

func (s *Source) session() (*notionapi.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, domain.ErrNotConnected
	}
	return s.client, nil
}

// FetchNotes lists pages by last edit, newest first.
func (s *Source) FetchNotes(ctx context.Context, q domain.NoteQuery) ([]domain.UnifiedNote, error) {
	client, err := s.session()
	if err != nil {
		return nil, err
	}
	pages, err := s.search(ctx, client, "", q.EffectiveLimit(), q.Since, q.NotebookID)
	if err != nil {
		return nil, err
	}
	notes, err := s.toNotes(ctx, client, pages)
	if err != nil {
		return nil, err
	}
	return domain.FilterNotes(notes, q), nil
}

// SearchNotes runs a Notion title search.
func (s *Source) SearchNotes(ctx context.Context, query string, limit int) ([]domain.UnifiedNote, error) {
	client, err := s.session()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = domain.DefaultFetchLimit
	}
	pages, err := s.search(ctx, client, query, limit, nil, "")
	if err != nil {
		return nil, err
	}
	return s.toNotes(ctx, client, pages)
}

// search pages through /v1/search sorted by last edit. Paging stops at
// the first page edited before since.
func (s *Source) search(
	ctx context.Context, client *notionapi.Client, query string, limit int, since *time.Time, parentID string,
) ([]*notionapi.Page, error) {
	req := &notionapi.SearchRequest{
		Query:    query,
		PageSize: min(limit, s.cfg.PageSize),
		Filter:   notionapi.SearchFilter{Property: "object", Value: "page"},
		Sort: &notionapi.SortObject{
			Direction: notionapi.SortOrderDESC,
			Timestamp: notionapi.TimestampLastEdited,
		},
	}

	var pages []*notionapi.Page
	for {
		resp, err := client.Search.Do(ctx, req)
		if err != nil {
			return nil, wrapError(err, "search pages")
		}
		for _, obj := range resp.Results {
			page, ok := obj.(*notionapi.Page)
			if !ok || page.Archived {
				continue
			}
			if since != nil && page.LastEditedTime.Before(*since) {
				return pages, nil
			}
			if parentID != "" && parentOf(page) != parentID {
				continue
			}
			pages = append(pages, page)
			if len(pages) == limit {
				return pages, nil
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}

func (s *Source) toNotes(ctx context.Context, client *notionapi.Client, pages []*notionapi.Page) ([]domain.UnifiedNote, error) {
	notes := make([]domain.UnifiedNote, 0, len(pages))
	for _, page := range pages {
		var content string
		if !s.cfg.SkipContent {
			var err error
			if content, err = s.pageContent(ctx, client, string(page.ID)); err != nil {
				return nil, err
			}
		}
		notes = append(notes, toUnifiedNote(page, content))
	}
	return notes, nil
}

// pageContent reads the top-level blocks of a page.
func (s *Source) pageContent(ctx context.Context, client *notionapi.Client, pageID string) (string, error) {
	var blocks []notionapi.Block
	pagination := &notionapi.Pagination{PageSize: 100}
	for {
		resp, err := client.Block.GetChildren(ctx, notionapi.BlockID(pageID), pagination)
		if err != nil {
			return "", wrapError(err, "get page blocks")
		}
		blocks = append(blocks, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		pagination.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
	return blocksText(blocks), nil
}

// CreateNote creates a page under NotebookID, or under the configured
// parent page when it is empty.
func (s *Source) CreateNote(ctx context.Context, note domain.NewNote) (*domain.UnifiedNote, error) {
	client, err := s.session()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(note.Title) == "" {
		return nil, fmt.Errorf("%w: note needs a title", domain.ErrInvalidInput)
	}
	parentID := note.NotebookID
	if parentID == "" {
		parentID = s.cfg.ParentPageID
	}
	if parentID == "" {
		return nil, fmt.Errorf("%w: no parent page configured for new notes", domain.ErrInvalidInput)
	}

	page, err := client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{Type: notionapi.ParentTypePageID, PageID: notionapi.PageID(parentID)},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Type:  notionapi.PropertyTypeTitle,
				Title: []notionapi.RichText{{Text: &notionapi.Text{Content: note.Title}}},
			},
		},
		Children: paragraphs(note.Content),
	})
	if err != nil {
		return nil, wrapError(err, "create page")
	}

	n := toUnifiedNote(page, note.Content)
	if n.Title == "" {
		n.Title = note.Title
	}
	if n.NotebookID == "" {
		n.NotebookID = parentID
	}
	if n.LastModified.IsZero() {
		n.LastModified = s.now().UTC()
	}
	return &n, nil
}

func toUnifiedNote(page *notionapi.Page, content string) domain.UnifiedNote {
	id := string(page.ID)
	return domain.UnifiedNote{
		ID:           domain.UnifiedID(domain.SourceNotion, id),
		SourceType:   domain.SourceNotion,
		SourceID:     id,
		Title:        pageTitle(page),
		Content:      content,
		NotebookID:   parentOf(page),
		LastModified: page.LastEditedTime.UTC(),
		RawData:      domain.RawJSON(page),
	}
}

// pageTitle returns the text of the page's title property.
func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		switch p := prop.(type) {
		case *notionapi.TitleProperty:
			return plainText(p.Title)
		case notionapi.TitleProperty:
			return plainText(p.Title)
		}
	}
	return ""
}

// parentOf returns the parent page or database ID.
func parentOf(page *notionapi.Page) string {
	switch page.Parent.Type {
	case notionapi.ParentTypePageID:
		return string(page.Parent.PageID)
	case notionapi.ParentTypeDatabaseID:
		return string(page.Parent.DatabaseID)
	default:
		return ""
	}
}
