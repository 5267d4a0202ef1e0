package services

import (
	"context"
	"fmt"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
)

// MessageService aggregates every registered message source.
type MessageService struct {
	registry *ConnectorRegistry
}

// NewMessageService creates a message service over registry.
func NewMessageService(registry *ConnectorRegistry) *MessageService {
	return &MessageService{registry: registry}
}

// Aggregate fetches from every wanted source and merges the results.
func (s *MessageService) Aggregate(ctx context.Context, q domain.MessageQuery) (AggregateResult[domain.UnifiedMessage], error) {
	sources := filterSources(s.registry.MessageSources(), q.Window)
	items, agg, err := fanOut(ctx, "FetchMessages", sources,
		func(ctx context.Context, src driven.MessageSource) ([]domain.UnifiedMessage, error) {
			return src.FetchMessages(ctx, q)
		})
	if err != nil {
		return agg, err
	}
	agg.Items = merge(items, messageEntity, q.EffectiveLimit())
	return agg, nil
}

// GetAll returns messages from every source, newest first.
func (s *MessageService) GetAll(ctx context.Context, q domain.MessageQuery) ([]domain.UnifiedMessage, error) {
	agg, err := s.Aggregate(ctx, q)
	if err != nil {
		return []domain.UnifiedMessage{}, err
	}
	return agg.Items, nil
}

// Search finds messages containing query. Sources with server-side search
// are asked directly; the others are fetched and matched locally.
func (s *MessageService) Search(ctx context.Context, query string, limit int) ([]domain.UnifiedMessage, error) {
	if query == "" {
		return []domain.UnifiedMessage{}, fmt.Errorf("%w: empty search query", domain.ErrInvalidInput)
	}
	limit = domain.Window{Limit: limit}.EffectiveLimit()

	items, _, err := fanOut(ctx, "SearchMessages", s.registry.MessageSources(),
		func(ctx context.Context, src driven.MessageSource) ([]domain.UnifiedMessage, error) {
			if src.Capabilities().CanSearch {
				return src.SearchMessages(ctx, query, limit)
			}
			all, err := src.FetchMessages(ctx, domain.MessageQuery{Window: domain.Window{Limit: limit * searchFetchFactor}})
			if err != nil {
				return nil, err
			}
			return localMatch(all, func(m *domain.UnifiedMessage) bool { return m.Matches(query) }), nil
		})
	if err != nil {
		return []domain.UnifiedMessage{}, err
	}
	return merge(items, messageEntity, limit), nil
}

// Send sends msg through the source registered for msg.SourceType.
func (s *MessageService) Send(ctx context.Context, msg domain.OutgoingMessage) (*domain.UnifiedMessage, error) {
	src, ok := s.registry.GetMessageSource(msg.SourceType)
	if !ok {
		return nil, fmt.Errorf("message source %q: %w", msg.SourceType, domain.ErrNotFound)
	}
	if !src.Capabilities().CanSend {
		return nil, &domain.CapabilityMisuseError{Source: msg.SourceType, Capability: "CanSend", Op: "SendMessage"}
	}
	if !src.IsConnected() {
		return nil, fmt.Errorf("message source %q: %w", msg.SourceType, domain.ErrNotConnected)
	}
	if msg.To == "" || msg.Content == "" {
		return nil, fmt.Errorf("%w: recipient and content are required", domain.ErrInvalidInput)
	}
	return src.SendMessage(ctx, msg)
}
