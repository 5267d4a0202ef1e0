package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

var (
	noteSource   string
	noteTitle    string
	noteNotebook string
	noteJSON     bool
)

var noteCmd = &cobra.Command{
	Use:   "note [content]",
	Short: "Create a note in one source",
	Long: `Creates a note in the named note source. Use "-" as the content to read
it from stdin.

Example:
  hub note --source filesystem --title "Standup" --notebook work "- shipped retry budget"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNote,
}

func init() {
	noteCmd.Flags().StringVar(&noteSource, "source", "", "source type to create in (required)")
	noteCmd.Flags().StringVarP(&noteTitle, "title", "t", "", "note title")
	noteCmd.Flags().StringVar(&noteNotebook, "notebook", "", "notebook, section or parent page")
	noteCmd.Flags().BoolVar(&noteJSON, "json", false, "output the created note as JSON")
	_ = noteCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(noteCmd)
}

func runNote(cmd *cobra.Command, args []string) error {
	orch, err := orchestrator()
	if err != nil {
		return err
	}
	st, err := domain.ParseSourceType(noteSource)
	if err != nil {
		return fmt.Errorf("source %q: %w", noteSource, err)
	}
	content, err := readText(cmd, args)
	if err != nil {
		return err
	}

	created, err := orch.CreateNote(cmd.Context(), domain.NewNote{
		SourceType: st,
		Title:      noteTitle,
		Content:    content,
		NotebookID: noteNotebook,
	})
	if err != nil {
		return fmt.Errorf("creating note: %w", err)
	}

	if noteJSON {
		return printJSON(cmd, view.FromNote(created))
	}
	cmd.Printf("Created note %s\n", created.ID)
	return nil
}
