package gmail

import (
	"strconv"
	"strings"

	"github.com/him6ul/AIAssistant/internal/connectors/google"
)

// Config holds Gmail adapter configuration.
type Config struct {
	Credentials google.Credentials

	// LabelIDs limits fetches to specific label IDs.
	// If empty, fetches INBOX by default.
	LabelIDs []string
	// Query is a Gmail search query added to every fetch (optional).
	Query string
	// MaxResults is the page size for API requests.
	MaxResults int64
	// IncludeSpamTrash includes spam and trash if true.
	IncludeSpamTrash bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LabelIDs:   []string{"INBOX"},
		MaxResults: 100,
	}
}

// ParseConfig extracts configuration from a provider config section.
func ParseConfig(values map[string]string) (*Config, error) {
	cfg := DefaultConfig()

	cfg.Credentials = google.Credentials{
		ClientID:     values["client_id"],
		ClientSecret: values["client_secret"],
		RefreshToken: values["refresh_token"],
		AccessToken:  values["access_token"],
	}
	if err := cfg.Credentials.Validate(); err != nil {
		return nil, err
	}

	if val := values["label_ids"]; val != "" {
		cfg.LabelIDs = splitList(val)
	}

	if val := values["query"]; val != "" {
		cfg.Query = val
	}

	if val := values["max_results"]; val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 && n <= 500 {
			cfg.MaxResults = n
		}
	}

	if values["include_spam_trash"] == "true" {
		cfg.IncludeSpamTrash = true
	}

	return cfg, nil
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
