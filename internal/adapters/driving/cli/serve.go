package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/httpapi"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/mcp"
)

var (
	serveAddr       string
	serveMCP        bool
	serveNoSchedule bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run background refreshes",
	Long: `Starts the JSON API under /v1, Prometheus metrics on /metrics and the
periodic source refresh. The MCP streamable HTTP endpoint is mounted at /mcp
unless --mcp=false.

Endpoints:
  GET  /v1/messages /v1/emails /v1/notes   ?limit=&since=&sources=
  GET  /v1/search?q=                        cross-source search
  GET  /v1/actions                          ranked next actions
  GET  /v1/status /v1/connectors            source state
  POST /v1/messages /v1/emails /v1/notes    send or create
  POST /v1/refresh                          re-fetch everything
  GET  /v1/refresh/history                  recent refresh runs`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default http.addr or "+httpapi.DefaultAddr+")")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", true, "mount the MCP endpoint at /mcp")
	serveCmd.Flags().BoolVar(&serveNoSchedule, "no-scheduler", false, "do not run periodic refreshes")
	rootCmd.AddCommand(serveCmd)
}

// newHTTPServer builds the API server from the services and flags.
func newHTTPServer() (*httpapi.Server, error) {
	orch, err := orchestrator()
	if err != nil {
		return nil, err
	}

	cfg := services.HTTP
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if serveMCP {
		mcpServer, err := mcp.NewServer(&mcp.Ports{
			Orchestrator: orch,
			Catalogue:    services.Catalogue,
			History:      services.History,
		})
		if err != nil {
			return nil, err
		}
		cfg.MCP = mcpServer.Handler()
	}

	return httpapi.NewServer(httpapi.Ports{
		Orchestrator: orch,
		Catalogue:    services.Catalogue,
		History:      services.History,
		Runner:       services.Runner,
	}, cfg)
}

func runServe(cmd *cobra.Command, _ []string) error {
	server, err := newHTTPServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !serveNoSchedule {
		stopScheduler := startScheduler(ctx)
		defer stopScheduler()
	}

	return server.ListenAndServe(ctx)
}
