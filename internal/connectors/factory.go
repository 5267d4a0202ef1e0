package connectors

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/him6ul/AIAssistant/internal/connectors/filesystem"
	"github.com/him6ul/AIAssistant/internal/connectors/github"
	"github.com/him6ul/AIAssistant/internal/connectors/google/gmail"
	"github.com/him6ul/AIAssistant/internal/connectors/imap"
	"github.com/him6ul/AIAssistant/internal/connectors/middleware"
	"github.com/him6ul/AIAssistant/internal/connectors/msgraph"
	"github.com/him6ul/AIAssistant/internal/connectors/notion"
	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
)

// Builder creates an adapter from its provider config section.
type Builder func(values map[string]string) (driven.Source, error)

// Factory creates adapters by ID.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]Builder
	limits   map[string]middleware.RateLimitConfig
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{
		builders: make(map[string]Builder),
		limits:   make(map[string]middleware.RateLimitConfig),
	}
}

// NewDefaultFactory creates a factory with every built-in adapter.
func NewDefaultFactory() *Factory {
	f := NewFactory()

	f.Register("gmail", func(values map[string]string) (driven.Source, error) {
		cfg, err := gmail.ParseConfig(values)
		if err != nil {
			return nil, err
		}
		return gmail.New(cfg), nil
	})
	f.Register("imap", func(values map[string]string) (driven.Source, error) {
		cfg, err := imap.ParseConfig(values)
		if err != nil {
			return nil, err
		}
		return imap.New(cfg), nil
	})
	f.Register("outlook", graphBuilder(func(cfg *msgraph.Config) driven.Source { return msgraph.NewOutlook(cfg) }))
	f.Register("teams", graphBuilder(func(cfg *msgraph.Config) driven.Source { return msgraph.NewTeams(cfg) }))
	f.Register("onenote", graphBuilder(func(cfg *msgraph.Config) driven.Source { return msgraph.NewOneNote(cfg) }))
	f.Register("github", func(values map[string]string) (driven.Source, error) {
		cfg, err := github.ParseConfig(values)
		if err != nil {
			return nil, err
		}
		return github.New(cfg), nil
	})
	f.Register("notion", func(values map[string]string) (driven.Source, error) {
		cfg, err := notion.ParseConfig(values)
		if err != nil {
			return nil, err
		}
		return notion.New(cfg, http.DefaultClient), nil
	})
	f.Register("filesystem", func(values map[string]string) (driven.Source, error) {
		cfg, err := filesystem.ParseConfig(values)
		if err != nil {
			return nil, err
		}
		return filesystem.New(cfg), nil
	})

	// Published quotas: Gmail 250 quota units/s per user with list calls
	// costing 5, Notion an average of 3 requests/s, GitHub 5000/h.
	f.SetRateLimit("gmail", middleware.RateLimitConfig{RequestsPerSecond: 2, Burst: 5})
	f.SetRateLimit("notion", middleware.RateLimitConfig{RequestsPerSecond: 3, Burst: 3})
	f.SetRateLimit("github", middleware.RateLimitConfig{RequestsPerSecond: 1, Burst: 5})

	return f
}

func graphBuilder(build func(*msgraph.Config) driven.Source) Builder {
	return func(values map[string]string) (driven.Source, error) {
		cfg, err := msgraph.ParseConfig(values)
		if err != nil {
			return nil, err
		}
		return build(cfg), nil
	}
}

// Register adds a builder for id, replacing any existing one.
func (f *Factory) Register(id string, b Builder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[id] = b
}

// SetRateLimit sets the default rate limit for an adapter ID. Config
// values still override it.
func (f *Factory) SetRateLimit(id string, cfg middleware.RateLimitConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits[id] = cfg
}

// RateLimit returns the default rate limit for an adapter ID.
func (f *Factory) RateLimit(id string) middleware.RateLimitConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if cfg, ok := f.limits[id]; ok {
		return cfg
	}
	return middleware.DefaultRateLimitConfig()
}

// SupportedTypes returns all registered adapter IDs, sorted.
func (f *Factory) SupportedTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make([]string, 0, len(f.builders))
	for id := range f.builders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Create builds the adapter registered for id.
// Returns ErrUnsupportedType if id is unknown.
func (f *Factory) Create(id string, values map[string]string) (driven.Source, error) {
	f.mu.RLock()
	b, ok := f.builders[id]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, id)
	}

	src, err := b(values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return src, nil
}
