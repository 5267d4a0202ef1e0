package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

var (
	refreshHistory bool
	refreshLimit   int
	refreshJSON    bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [capability...]",
	Short: "Re-fetch items from every source",
	Long: `Without arguments, re-fetches messages, emails and notes from every
source and records the run. With capability names (message, mail, note),
only drops the cached results for those capabilities.

Use --history to list recent runs, including degraded providers.`,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshHistory, "history", false, "show recent refresh runs")
	refreshCmd.Flags().IntVarP(&refreshLimit, "limit", "n", 20, "number of runs to show with --history")
	refreshCmd.Flags().BoolVar(&refreshJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if refreshHistory {
		return runRefreshHistory(cmd)
	}

	orch, err := orchestrator()
	if err != nil {
		return err
	}

	caps, err := view.ParseCapabilities(args)
	if err != nil {
		return err
	}
	if len(caps) > 0 {
		orch.Refresh(caps...)
		cmd.Printf("Invalidated cached %s.\n", strings.Join(args, ", "))
		return nil
	}

	if services.Runner != nil {
		result, err := services.Runner.RunNow(cmd.Context(), domain.TaskIDSourceRefresh)
		if result == nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		if refreshJSON {
			return printJSON(cmd, view.FromTaskResult(result))
		}
		printRun(cmd, result)
		return err
	}

	report, err := orch.RefreshAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	if refreshJSON {
		return printJSON(cmd, view.FromRefresh(&report))
	}
	cmd.Printf("Refreshed %d items (%d messages, %d emails, %d notes).\n",
		report.Total(), report.Messages, report.Emails, report.Notes)
	if len(report.Failed) > 0 {
		names := make([]string, 0, len(report.Failed))
		for _, st := range report.Failed {
			names = append(names, st.String())
		}
		cmd.Printf("Degraded: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func printRun(cmd *cobra.Command, r *domain.TaskResult) {
	status := "ok"
	if !r.Success {
		status = "failed"
	}
	cmd.Printf("Refresh %s: %s, %d items in %s.\n",
		r.RunID, status, r.ItemsProcessed, r.Duration().Round(time.Millisecond))
	if r.Error != "" {
		cmd.Printf("  %s\n", r.Error)
	}
}

func runRefreshHistory(cmd *cobra.Command) error {
	if services == nil || services.History == nil {
		return errors.New("refresh history not configured")
	}

	runs, err := services.History.History(cmd.Context(), refreshLimit)
	if err != nil {
		return fmt.Errorf("loading refresh history: %w", err)
	}

	if refreshJSON {
		return printJSON(cmd, view.TaskRuns(runs))
	}
	if len(runs) == 0 {
		cmd.Println("No refresh runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for i := range runs {
		r := &runs[i]
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			fmt.Sprintf("%d", r.ItemsProcessed),
			r.Duration().Round(time.Millisecond).String(),
			cell(r.Error, 50),
		})
	}
	printTable(cmd, []string{"Started", "Status", "Items", "Took", "Notes"}, rows)
	return nil
}
