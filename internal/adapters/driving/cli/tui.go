package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the unified inbox: next actions, emails, messages and notes in
tabs, with search and a detail view. Background refreshes keep running
while the TUI is open.

Controls:
  tab/1-4  - Switch tabs
  ↑/k, ↓/j - Navigate
  Enter    - Open item
  /        - Search
  r        - Refresh
  s        - Source status
  Esc      - Back
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	orch, err := orchestrator()
	if err != nil {
		return err
	}

	// TUI is long-running, keep background refreshes going.
	stopScheduler := startScheduler(cmd.Context())
	defer stopScheduler()

	app, err := tui.NewApp(&tui.Ports{
		Orchestrator: orch,
		History:      services.History,
		Events:       services.Events,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
