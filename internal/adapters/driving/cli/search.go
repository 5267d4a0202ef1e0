package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search messages, emails and notes",
	Long: `Searches every capability concurrently. Sources with native search are
queried directly; the rest are matched case-insensitively on fetched items.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum results per capability")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}

	orch, err := orchestrator()
	if err != nil {
		return err
	}

	results, err := orch.SearchAcrossSources(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, view.FromSearch(query, results))
	}
	if results == nil || results.Total() == 0 {
		cmd.Println("No results found.")
		return nil
	}

	rows := make([][]string, 0, results.Total())
	for i := range results.Emails {
		e := &results.Emails[i]
		rows = append(rows, []string{"mail", e.SourceType.String(), when(e.Timestamp, now()), cell(e.Subject, cellWidth)})
	}
	for i := range results.Messages {
		m := &results.Messages[i]
		rows = append(rows, []string{"message", m.SourceType.String(), when(m.Timestamp, now()), cell(m.Content, cellWidth)})
	}
	for i := range results.Notes {
		n := &results.Notes[i]
		rows = append(rows, []string{"note", n.SourceType.String(), when(n.LastModified, now()), cell(n.Title, cellWidth)})
	}

	cmd.Printf("%d results for %q\n", results.Total(), query)
	printTable(cmd, []string{"Kind", "Source", "When", "Title"}, rows)
	return nil
}
