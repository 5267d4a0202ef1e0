package imap

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// Config holds IMAP adapter configuration.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// Mailbox is read when a query names no folder.
	Mailbox string

	// TLS dials with implicit TLS. Disabled only for local test servers.
	TLS bool

	// Timeout bounds each IMAP command.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:    993,
		Mailbox: "INBOX",
		TLS:     true,
		Timeout: 30 * time.Second,
	}
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ParseConfig extracts configuration from a provider config section.
func ParseConfig(values map[string]string) (*Config, error) {
	cfg := DefaultConfig()

	cfg.Host = values["host"]
	cfg.Username = values["username"]
	cfg.Password = values["password"]
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: imap host is required", domain.ErrInvalidInput)
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("%w: imap username and password are required", domain.ErrAuthRequired)
	}

	if val := values["port"]; val != "" {
		port, err := strconv.Atoi(val)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("%w: imap port %q", domain.ErrInvalidInput, val)
		}
		cfg.Port = port
	}
	if val := values["mailbox"]; val != "" {
		cfg.Mailbox = val
	}
	if values["tls"] == "false" {
		cfg.TLS = false
	}
	if val := values["timeout"]; val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg, nil
}
