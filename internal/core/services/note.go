package services

import (
	"context"
	"fmt"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
)

// NoteService aggregates every registered note source.
type NoteService struct {
	registry *ConnectorRegistry
}

// NewNoteService creates a note service over registry.
func NewNoteService(registry *ConnectorRegistry) *NoteService {
	return &NoteService{registry: registry}
}

// Aggregate fetches from every wanted source and merges the results.
func (s *NoteService) Aggregate(ctx context.Context, q domain.NoteQuery) (AggregateResult[domain.UnifiedNote], error) {
	sources := filterSources(s.registry.NoteSources(), q.Window)
	items, agg, err := fanOut(ctx, "FetchNotes", sources,
		func(ctx context.Context, src driven.NoteSource) ([]domain.UnifiedNote, error) {
			return src.FetchNotes(ctx, q)
		})
	if err != nil {
		return agg, err
	}
	agg.Items = merge(items, noteEntity, q.EffectiveLimit())
	return agg, nil
}

// GetAll returns notes from every source, most recently modified first.
func (s *NoteService) GetAll(ctx context.Context, q domain.NoteQuery) ([]domain.UnifiedNote, error) {
	agg, err := s.Aggregate(ctx, q)
	if err != nil {
		return []domain.UnifiedNote{}, err
	}
	return agg.Items, nil
}

// Search finds notes whose title or content contains query.
func (s *NoteService) Search(ctx context.Context, query string, limit int) ([]domain.UnifiedNote, error) {
	if query == "" {
		return []domain.UnifiedNote{}, fmt.Errorf("%w: empty search query", domain.ErrInvalidInput)
	}
	limit = domain.Window{Limit: limit}.EffectiveLimit()

	items, _, err := fanOut(ctx, "SearchNotes", s.registry.NoteSources(),
		func(ctx context.Context, src driven.NoteSource) ([]domain.UnifiedNote, error) {
			if src.Capabilities().CanSearch {
				return src.SearchNotes(ctx, query, limit)
			}
			all, err := src.FetchNotes(ctx, domain.NoteQuery{Window: domain.Window{Limit: limit * searchFetchFactor}})
			if err != nil {
				return nil, err
			}
			return localMatch(all, func(n *domain.UnifiedNote) bool { return n.Matches(query) }), nil
		})
	if err != nil {
		return []domain.UnifiedNote{}, err
	}
	return merge(items, noteEntity, limit), nil
}

// Create creates note through the source registered for note.SourceType.
func (s *NoteService) Create(ctx context.Context, note domain.NewNote) (*domain.UnifiedNote, error) {
	src, ok := s.registry.GetNoteSource(note.SourceType)
	if !ok {
		return nil, fmt.Errorf("note source %q: %w", note.SourceType, domain.ErrNotFound)
	}
	if !src.Capabilities().CanSend {
		return nil, &domain.CapabilityMisuseError{Source: note.SourceType, Capability: "CanSend", Op: "CreateNote"}
	}
	if !src.IsConnected() {
		return nil, fmt.Errorf("note source %q: %w", note.SourceType, domain.ErrNotConnected)
	}
	if note.Title == "" {
		return nil, fmt.Errorf("%w: note title is required", domain.ErrInvalidInput)
	}
	return src.CreateNote(ctx, note)
}
