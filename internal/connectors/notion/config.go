package notion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// Config holds the Notion adapter configuration.
type Config struct {
	// Token is the internal integration secret.
	Token string

	// ParentPageID is the page new notes are created under.
	ParentPageID string

	// PageSize is the page size for search and block requests.
	PageSize int

	// SkipContent lists pages without downloading their blocks.
	SkipContent bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{PageSize: 50}
}

// ParseConfig parses a provider config section.
func ParseConfig(values map[string]string) (*Config, error) {
	cfg := DefaultConfig()

	cfg.Token = strings.TrimSpace(values["token"])
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: notion token is required", domain.ErrAuthRequired)
	}
	cfg.ParentPageID = strings.TrimSpace(values["parent_page_id"])

	if val := values["page_size"]; val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 || n > 100 {
			return nil, fmt.Errorf("%w: page_size must be 1-100", domain.ErrInvalidInput)
		}
		cfg.PageSize = n
	}
	cfg.SkipContent = values["skip_content"] == "true"

	return cfg, nil
}
