// Package oauth describes the OAuth authorization servers of the adapters
// that authenticate with a refresh token, and exchanges authorization
// codes for tokens.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

const (
	googleScope = "https://www.googleapis.com/auth/"
	graphScope  = "https://graph.microsoft.com/"
)

// Provider is the authorization server and scopes for one adapter.
type Provider struct {
	// ID is the provider config section ("gmail", "outlook").
	ID string
	// Scopes are requested on authorization.
	Scopes []string
	// NeedsSecret is true when the token endpoint requires a client secret.
	NeedsSecret bool

	endpoint   func(values map[string]string) oauth2.Endpoint
	authParams []oauth2.AuthCodeOption
}

func microsoftEndpoint(values map[string]string) oauth2.Endpoint {
	tenant := strings.TrimSpace(values["tenant"])
	if tenant == "" {
		tenant = "common"
	}
	return endpoints.AzureAD(tenant)
}

func microsoft(id string, scopes ...string) Provider {
	full := make([]string, 0, len(scopes)+2)
	for _, s := range scopes {
		full = append(full, graphScope+s)
	}
	full = append(full, graphScope+"User.Read", "offline_access")
	return Provider{ID: id, Scopes: full, endpoint: microsoftEndpoint}
}

var providers = map[string]Provider{
	"gmail": {
		ID:          "gmail",
		Scopes:      []string{googleScope + "gmail.readonly", googleScope + "gmail.send"},
		NeedsSecret: true,
		endpoint:    func(map[string]string) oauth2.Endpoint { return endpoints.Google },
		// Google only returns a refresh token for offline access with a
		// fresh consent screen.
		authParams: []oauth2.AuthCodeOption{oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")},
	},
	"outlook": microsoft("outlook", "Mail.ReadWrite", "Mail.Send"),
	"teams":   microsoft("teams", "Chat.ReadWrite"),
	"onenote": microsoft("onenote", "Notes.ReadWrite"),
}

// Lookup returns the provider for a config section ID.
func Lookup(id string) (Provider, error) {
	p, ok := providers[id]
	if !ok {
		return Provider{}, fmt.Errorf("%w: %q has no OAuth login (supported: %s)",
			domain.ErrUnsupportedType, id, strings.Join(IDs(), ", "))
	}
	return p, nil
}

// IDs returns the provider IDs that support OAuth login, sorted.
func IDs() []string {
	ids := make([]string, 0, len(providers))
	for id := range providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Config builds the OAuth client for the provider from its config section.
// auth_url and token_url override the provider's endpoint.
func (p Provider) Config(values map[string]string, redirectURI string) (*oauth2.Config, error) {
	clientID := strings.TrimSpace(values["client_id"])
	if clientID == "" {
		return nil, fmt.Errorf("%w: providers.%s.client_id is not set", domain.ErrAuthRequired, p.ID)
	}
	secret := strings.TrimSpace(values["client_secret"])
	if p.NeedsSecret && secret == "" {
		return nil, fmt.Errorf("%w: providers.%s.client_secret is not set", domain.ErrAuthRequired, p.ID)
	}

	endpoint := p.endpoint(values)
	if v := strings.TrimSpace(values["auth_url"]); v != "" {
		endpoint.AuthURL = v
	}
	if v := strings.TrimSpace(values["token_url"]); v != "" {
		endpoint.TokenURL = v
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: secret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURI,
		Scopes:       append([]string(nil), p.Scopes...),
	}, nil
}

// AuthCodeURL returns the URL the user opens to grant access. verifier is
// the PKCE code verifier later passed to Exchange.
func (p Provider) AuthCodeURL(cfg *oauth2.Config, state, verifier string) string {
	opts := append([]oauth2.AuthCodeOption{oauth2.S256ChallengeOption(verifier)}, p.authParams...)
	return cfg.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens. The result must carry
// a refresh token, since that is what the adapters are configured with.
func Exchange(ctx context.Context, cfg *oauth2.Config, code, verifier string) (*oauth2.Token, error) {
	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.ErrorCode != "" {
			return nil, fmt.Errorf("%w: token error: %s - %s", domain.ErrAuthRequired, rerr.ErrorCode, rerr.ErrorDescription)
		}
		return nil, fmt.Errorf("token request: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token returned; revoke the app's access and retry", domain.ErrAuthRequired)
	}
	return tok, nil
}
