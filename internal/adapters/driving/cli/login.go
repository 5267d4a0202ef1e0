package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	oauthprovider "github.com/him6ul/AIAssistant/internal/adapters/driven/oauth"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/oauth"
	"github.com/him6ul/AIAssistant/internal/connectors"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// ConfigOpener opens the config store at path; an empty path means the
// default location.
type ConfigOpener func(path string) (driven.ConfigStore, error)

var (
	openConfig  ConfigOpener
	openBrowser = oauth.OpenBrowser
)

// SetConfigOpener sets how the login command opens the config store.
func SetConfigOpener(fn ConfigOpener) {
	openConfig = fn
}

var (
	loginPort      int
	loginNoBrowser bool
	loginTimeout   time.Duration
)

var loginCmd = &cobra.Command{
	Use:   "login <provider>",
	Short: "Authorize an OAuth provider and store its refresh token",
	Long: `Runs the OAuth authorization code flow for a provider section and saves
the refresh token to the config file. The section must already carry a
client_id (and a client_secret for gmail). Register
http://localhost:<port>/callback as a redirect URI with the provider.

Supported providers: ` + strings.Join(oauthprovider.IDs(), ", "),
	Example:     "  hub login gmail --port 8765",
	Args:        cobra.ExactArgs(1),
	ValidArgs:   oauthprovider.IDs(),
	Annotations: map[string]string{skipServicesAnnotation: "true"},
	RunE:        runLogin,
}

func init() {
	loginCmd.Flags().IntVar(&loginPort, "port", 8765, "callback port (0 picks a free port)")
	loginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "print the authorization URL without opening a browser")
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "how long to wait for the authorization")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	id := args[0]
	provider, err := oauthprovider.Lookup(id)
	if err != nil {
		return err
	}
	if openConfig == nil {
		return errors.New("config store not configured")
	}
	store, err := openConfig(options.ConfigPath)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	state := uuid.NewString()
	srv := oauth.NewCallbackServer(loginPort, state)
	if err := srv.Start(); err != nil {
		return err
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			logger.Debug("login: stopping callback server: %v", err)
		}
	}()

	cfg, err := provider.Config(connectors.ProviderValues(store, id), srv.RedirectURI())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	tok, err := authorize(ctx, cmd, provider, cfg, srv, state)
	if err != nil {
		return err
	}

	key := "providers." + id + ".refresh_token"
	if err := store.Set(key, tok.RefreshToken); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	cmd.Printf("Saved %s to %s.\n", key, store.Path())
	return nil
}

// authorize sends the user to the consent page and exchanges the code the
// callback server receives.
func authorize(
	ctx context.Context,
	cmd *cobra.Command,
	provider oauthprovider.Provider,
	cfg *oauth2.Config,
	srv *oauth.CallbackServer,
	state string,
) (*oauth2.Token, error) {
	verifier := oauth2.GenerateVerifier()
	authURL := provider.AuthCodeURL(cfg, state, verifier)

	cmd.Printf("Open this URL to authorize %s:\n\n  %s\n\n", provider.ID, authURL)
	if !loginNoBrowser {
		if err := openBrowser(authURL); err != nil {
			logger.Debug("login: opening browser: %v", err)
		}
	}
	cmd.Println("Waiting for authorization...")

	code, err := srv.WaitForCode(ctx)
	if err != nil {
		return nil, err
	}
	return oauthprovider.Exchange(ctx, cfg, code, verifier)
}
