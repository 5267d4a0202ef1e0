package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// Config holds the filesystem adapter configuration.
type Config struct {
	// Path is the notes root directory.
	Path string

	// Patterns are the file name globs treated as notes.
	Patterns []string

	// Watch enables change events through fsnotify.
	Watch bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{Patterns: []string{"*.md", "*.txt"}}
}

// ParseConfig parses a provider config section.
func ParseConfig(values map[string]string) (*Config, error) {
	cfg := DefaultConfig()

	path, err := expandHome(strings.TrimSpace(values["path"]))
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("%w: filesystem path is required", domain.ErrInvalidInput)
	}
	cfg.Path = filepath.Clean(path)

	if val := values["patterns"]; val != "" {
		var patterns []string
		for _, p := range strings.Split(val, ",") {
			if p = strings.TrimSpace(p); p == "" {
				continue
			}
			if _, err := filepath.Match(p, ""); err != nil {
				return nil, fmt.Errorf("%w: pattern %q: %w", domain.ErrInvalidInput, p, err)
			}
			patterns = append(patterns, p)
		}
		if len(patterns) == 0 {
			return nil, fmt.Errorf("%w: patterns is empty", domain.ErrInvalidInput)
		}
		cfg.Patterns = patterns
	}

	switch values["watch"] {
	case "", "false":
	case "true":
		cfg.Watch = true
	default:
		return nil, fmt.Errorf("%w: watch must be true or false", domain.ErrInvalidInput)
	}

	return cfg, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// matches reports whether name matches one of the note patterns.
func (c *Config) matches(name string) bool {
	for _, p := range c.Patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
