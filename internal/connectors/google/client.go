package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// Credentials are the OAuth values of a provider config section.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// AccessToken is used as-is when no refresh token is configured.
	AccessToken string
}

// Validate checks that the credentials can produce a token.
func (c Credentials) Validate() error {
	switch {
	case c.RefreshToken != "" && (c.ClientID == "" || c.ClientSecret == ""):
		return fmt.Errorf("%w: refresh_token needs client_id and client_secret", domain.ErrAuthRequired)
	case c.RefreshToken == "" && c.AccessToken == "":
		return fmt.Errorf("%w: no refresh_token or access_token configured; run `hub login gmail`", domain.ErrAuthRequired)
	}
	return nil
}

// NewTokenSource refreshes against Google's token endpoint when a refresh
// token is configured and serves the bare access token otherwise.
func NewTokenSource(ctx context.Context, creds Credentials, scopes ...string) (oauth2.TokenSource, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if creds.RefreshToken == "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"}), nil
	}

	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       scopes,
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}), nil
}

// NewGmailService builds a Gmail client for creds with read and send
// scopes. opts follow the token source, so tests can point the client at
// a fake server.
func NewGmailService(ctx context.Context, creds Credentials, opts ...option.ClientOption) (*gmail.Service, error) {
	ts, err := NewTokenSource(ctx, creds, gmail.GmailReadonlyScope, gmail.GmailSendScope)
	if err != nil {
		return nil, err
	}
	svc, err := gmail.NewService(ctx, append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return svc, nil
}
