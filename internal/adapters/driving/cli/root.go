// Package cli implements the hub command line: one command per
// orchestrator operation plus the long-running serve, mcp and tui modes.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/httpapi"
	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// skipServicesAnnotation marks commands that run without services.
const skipServicesAnnotation = "hub/skip-services"

// Services are the ports the commands drive.
type Services struct {
	Orchestrator driving.Orchestrator
	Catalogue    driving.ConnectorCatalogue
	History      driving.RefreshHistory

	// Runner records manual refreshes in the scheduler history. Optional.
	Runner httpapi.Runner

	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig

	// Events pushes source changes to the TUI. Optional.
	Events <-chan domain.SourceEvent

	HTTP httpapi.ServerConfig

	// Close releases adapters and stores. Optional.
	Close func(ctx context.Context) error
}

// Options are the global flags passed to the bootstrap function.
type Options struct {
	ConfigPath string
	Verbose    bool
	LogFormat  string
}

// BootstrapFunc builds the services from the global options.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	services  *Services
	bootstrap BootstrapFunc
	options   Options
)

var rootCmd = &cobra.Command{
	Use:   "hub",
	Short: "One inbox for messages, emails and notes",
	Long: `hub aggregates chat messages, emails and notes from Gmail, IMAP,
Outlook, Teams, OneNote, GitHub, Notion and local notebooks behind one
interface.

Providers are configured in ~/.hub/config.toml:

  [providers.gmail]
  client_id = "..."
  client_secret = "${GMAIL_CLIENT_SECRET}"
  refresh_token = "${GMAIL_REFRESH_TOKEN}"

  [providers.filesystem]
  path = "~/notes"

Run "hub login gmail" (or outlook, teams, onenote) to obtain a refresh
token through the browser.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "c", "", "config file (default ~/.hub/config.toml)")
	flags.BoolVarP(&options.Verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&options.LogFormat, "log-format", "", "log format: text or json")
}

// SetServices installs prebuilt services, bypassing the bootstrap.
func SetServices(s *Services) {
	services = s
}

// SetBootstrap sets the function that builds services on first use.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// prepare configures logging and builds services unless the command
// opts out.
func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(options.Verbose)
	if options.LogFormat != "" {
		logger.SetFormat(options.LogFormat)
	}

	if cmd.Annotations[skipServicesAnnotation] == "true" || services != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}

	s, err := bootstrap(cmd.Context(), options)
	if err != nil {
		return fmt.Errorf("starting hub: %w", err)
	}
	services = s
	return nil
}

func closeServices() {
	if services == nil || services.Close == nil {
		return
	}
	if err := services.Close(context.Background()); err != nil {
		logger.Warn("shutdown: %v", err)
	}
}

// orchestrator returns the configured orchestrator or an error.
func orchestrator() (driving.Orchestrator, error) {
	if services == nil || services.Orchestrator == nil {
		return nil, errors.New("orchestrator not configured")
	}
	return services.Orchestrator, nil
}
