package github

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// Config holds the parsed configuration for the GitHub source.
type Config struct {
	Token string

	// Participating limits fetches to threads the user takes part in.
	Participating bool

	// BaseURL overrides the API endpoint. Must end with a slash.
	BaseURL string

	// PerPage is the page size for list requests.
	PerPage int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{PerPage: 50}
}

// ParseConfig parses a provider config section.
func ParseConfig(values map[string]string) (*Config, error) {
	cfg := DefaultConfig()

	cfg.Token = strings.TrimSpace(values["token"])
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: github token is required", domain.ErrAuthRequired)
	}

	switch strings.ToLower(strings.TrimSpace(values["participating"])) {
	case "", "false":
	case "true":
		cfg.Participating = true
	default:
		return nil, fmt.Errorf("%w: participating must be true or false", domain.ErrInvalidInput)
	}

	if raw := strings.TrimSpace(values["base_url"]); raw != "" {
		if _, err := url.Parse(raw); err != nil {
			return nil, fmt.Errorf("%w: base_url: %w", domain.ErrInvalidInput, err)
		}
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		cfg.BaseURL = raw
	}

	return cfg, nil
}
