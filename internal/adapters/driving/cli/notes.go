package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

var (
	notesFlags    windowFlags
	notesNotebook string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List notes from all note sources",
	Long: `Lists notes from every connected note source (Notion, OneNote, local
notebooks), most recently modified first.`,
	Args: cobra.NoArgs,
	RunE: runNotes,
}

func init() {
	notesFlags.register(notesCmd)
	notesCmd.Flags().StringVar(&notesNotebook, "notebook", "", "only notes in this notebook")
	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, _ []string) error {
	orch, err := orchestrator()
	if err != nil {
		return err
	}
	win, err := notesFlags.window()
	if err != nil {
		return err
	}

	items, err := orch.GetAllNotes(cmd.Context(), domain.NoteQuery{
		Window:     win,
		NotebookID: notesNotebook,
	})
	if err != nil {
		return fmt.Errorf("fetching notes: %w", err)
	}

	if notesFlags.json {
		return printJSON(cmd, view.Notes(items))
	}
	if len(items) == 0 {
		cmd.Println("No notes.")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for i := range items {
		n := &items[i]
		rows = append(rows, []string{
			when(n.LastModified, now()),
			n.SourceType.String(),
			cell(n.Title, 40),
			cell(n.Content, cellWidth),
		})
	}
	printTable(cmd, []string{"Modified", "Source", "Title", "Preview"}, rows)
	return nil
}
