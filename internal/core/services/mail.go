package services

import (
	"context"
	"fmt"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
)

// MailService aggregates every registered mail source.
type MailService struct {
	registry *ConnectorRegistry
}

// NewMailService creates a mail service over registry.
func NewMailService(registry *ConnectorRegistry) *MailService {
	return &MailService{registry: registry}
}

// Aggregate fetches from every wanted source and merges the results.
func (s *MailService) Aggregate(ctx context.Context, q domain.EmailQuery) (AggregateResult[domain.UnifiedEmail], error) {
	sources := filterSources(s.registry.MailSources(), q.Window)
	items, agg, err := fanOut(ctx, "FetchEmails", sources,
		func(ctx context.Context, src driven.MailSource) ([]domain.UnifiedEmail, error) {
			return src.FetchEmails(ctx, q)
		})
	if err != nil {
		return agg, err
	}
	agg.Items = merge(items, emailEntity, q.EffectiveLimit())
	return agg, nil
}

// GetAll returns emails from every source, newest first.
func (s *MailService) GetAll(ctx context.Context, q domain.EmailQuery) ([]domain.UnifiedEmail, error) {
	agg, err := s.Aggregate(ctx, q)
	if err != nil {
		return []domain.UnifiedEmail{}, err
	}
	return agg.Items, nil
}

// Search finds emails whose subject or body contains query.
func (s *MailService) Search(ctx context.Context, query string, limit int) ([]domain.UnifiedEmail, error) {
	if query == "" {
		return []domain.UnifiedEmail{}, fmt.Errorf("%w: empty search query", domain.ErrInvalidInput)
	}
	limit = domain.Window{Limit: limit}.EffectiveLimit()

	items, _, err := fanOut(ctx, "SearchEmails", s.registry.MailSources(),
		func(ctx context.Context, src driven.MailSource) ([]domain.UnifiedEmail, error) {
			if src.Capabilities().CanSearch {
				return src.SearchEmails(ctx, query, limit)
			}
			all, err := src.FetchEmails(ctx, domain.EmailQuery{Window: domain.Window{Limit: limit * searchFetchFactor}})
			if err != nil {
				return nil, err
			}
			return localMatch(all, func(e *domain.UnifiedEmail) bool { return e.Matches(query) }), nil
		})
	if err != nil {
		return []domain.UnifiedEmail{}, err
	}
	return merge(items, emailEntity, limit), nil
}

// Send sends email through the source registered for email.SourceType.
func (s *MailService) Send(ctx context.Context, email domain.OutgoingEmail) (*domain.UnifiedEmail, error) {
	src, ok := s.registry.GetMailSource(email.SourceType)
	if !ok {
		return nil, fmt.Errorf("mail source %q: %w", email.SourceType, domain.ErrNotFound)
	}
	if !src.Capabilities().CanSend {
		return nil, &domain.CapabilityMisuseError{Source: email.SourceType, Capability: "CanSend", Op: "SendEmail"}
	}
	if !src.IsConnected() {
		return nil, fmt.Errorf("mail source %q: %w", email.SourceType, domain.ErrNotConnected)
	}
	if len(email.To) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", domain.ErrInvalidInput)
	}
	return src.SendEmail(ctx, email)
}
