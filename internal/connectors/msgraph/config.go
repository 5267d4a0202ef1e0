package msgraph

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// DefaultBaseURL is the Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Config holds the Microsoft Graph account configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// AccessToken is used as-is when no refresh token is configured.
	AccessToken string

	// Tenant is the Azure AD tenant: "common", "organizations" or a tenant ID.
	Tenant string
	// BaseURL overrides the Graph endpoint.
	BaseURL string

	// PageSize is the $top value for list requests.
	PageSize int
	// MailFolder is the folder read when a query names none.
	MailFolder string
	// MaxChats bounds the Teams chats scanned per fetch.
	MaxChats int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Tenant:     "common",
		BaseURL:    DefaultBaseURL,
		PageSize:   50,
		MailFolder: "inbox",
		MaxChats:   20,
	}
}

// ParseConfig extracts configuration from a provider config section.
func ParseConfig(values map[string]string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.ClientID = values["client_id"]
	cfg.ClientSecret = values["client_secret"]
	cfg.RefreshToken = values["refresh_token"]
	cfg.AccessToken = values["access_token"]

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if val := strings.TrimSpace(values["tenant"]); val != "" {
		cfg.Tenant = val
	}
	if val := strings.TrimSpace(values["base_url"]); val != "" {
		cfg.BaseURL = strings.TrimRight(val, "/")
	}
	if val := strings.TrimSpace(values["mail_folder"]); val != "" {
		cfg.MailFolder = val
	}
	if val := values["page_size"]; val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 || n > 999 {
			return nil, fmt.Errorf("%w: page_size %q", domain.ErrInvalidInput, val)
		}
		cfg.PageSize = n
	}
	if val := values["max_chats"]; val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: max_chats %q", domain.ErrInvalidInput, val)
		}
		cfg.MaxChats = n
	}
	return cfg, nil
}

// Validate checks that the credentials can produce a token.
func (c *Config) Validate() error {
	if c.RefreshToken != "" {
		if c.ClientID == "" {
			return fmt.Errorf("%w: refresh_token needs client_id", domain.ErrAuthRequired)
		}
		return nil
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: no refresh_token or access_token configured", domain.ErrAuthRequired)
	}
	return nil
}

// TokenSource returns a token source for the configured credentials.
// Public clients may omit the client secret.
func (c *Config) TokenSource(ctx context.Context, scopes ...string) (oauth2.TokenSource, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.RefreshToken == "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.AccessToken, TokenType: "Bearer"}), nil
	}

	oc := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     microsoft.AzureADEndpoint(c.Tenant),
		Scopes:       append(append([]string(nil), scopes...), "offline_access"),
	}
	return oc.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken}), nil
}

func scope(name string) string {
	return "https://graph.microsoft.com/" + name
}
