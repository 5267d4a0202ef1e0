package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
)

var (
	actionsLimit int
	actionsJSON  bool
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Suggest what to attend to next",
	Long: `Ranks unread messages, unread emails and recently edited notes.
Flagged items always come first; within each group newer items rank higher.`,
	Args: cobra.NoArgs,
	RunE: runActions,
}

func init() {
	actionsCmd.Flags().IntVarP(&actionsLimit, "limit", "n", 10, "maximum number of suggestions")
	actionsCmd.Flags().BoolVar(&actionsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(actionsCmd)
}

func runActions(cmd *cobra.Command, _ []string) error {
	orch, err := orchestrator()
	if err != nil {
		return err
	}

	actions, err := orch.GetNextActions(cmd.Context(), actionsLimit)
	if err != nil {
		return fmt.Errorf("ranking actions: %w", err)
	}

	if actionsJSON {
		return printJSON(cmd, view.Actions(actions))
	}
	if len(actions) == 0 {
		cmd.Println("Nothing needs attention.")
		return nil
	}

	rows := make([][]string, 0, len(actions))
	for i := range actions {
		a := &actions[i]
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			string(a.Priority),
			a.SourceType.String(),
			cell(a.Description, cellWidth),
			when(a.Timestamp, now()),
		})
	}
	printTable(cmd, []string{"#", "Priority", "Source", "Action", "When"}, rows)
	return nil
}
