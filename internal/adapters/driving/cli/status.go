package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
)

var (
	statusJSON       bool
	statusConnectors bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show registered sources and their state",
	Long: `Shows every registered source, its capability and whether it connected.
With --connectors, lists the built-in connector types instead.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	statusCmd.Flags().BoolVar(&statusConnectors, "connectors", false, "list built-in connector types")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusConnectors {
		return runConnectors(cmd)
	}

	orch, err := orchestrator()
	if err != nil {
		return err
	}
	statuses := view.Statuses(orch.Status())

	if statusJSON {
		return printJSON(cmd, statuses)
	}
	if len(statuses) == 0 {
		cmd.Println("No sources configured. Add a [providers.<id>] section to the config file.")
		return nil
	}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := "connected"
		switch {
		case !s.Available:
			state = "unavailable"
		case !s.Connected:
			state = "disconnected"
		}
		rows = append(rows, []string{
			s.SourceType,
			strings.Join(s.Capabilities, ","),
			state,
			features(s),
			cell(s.LastError, 50),
		})
	}
	printTable(cmd, []string{"Source", "Capability", "State", "Features", "Last error"}, rows)
	return nil
}

func runConnectors(cmd *cobra.Command) error {
	if services == nil || services.Catalogue == nil {
		return errors.New("connector catalogue not configured")
	}
	connectors := view.Connectors(services.Catalogue.List())

	if statusJSON {
		return printJSON(cmd, connectors)
	}

	rows := make([][]string, 0, len(connectors))
	for _, c := range connectors {
		rows = append(rows, []string{c.ID, c.Capability, c.AuthMethod, strings.Join(c.ConfigKeys, ", ")})
	}
	printTable(cmd, []string{"ID", "Capability", "Auth", "Config keys"}, rows)
	return nil
}

func features(s view.Status) string {
	var parts []string
	if s.CanSend {
		parts = append(parts, "send")
	}
	if s.CanSearch {
		parts = append(parts, "search")
	}
	if s.CanSubscribe {
		parts = append(parts, "watch")
	}
	return strings.Join(parts, ",")
}
