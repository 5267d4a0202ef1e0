package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

var (
	emailsFlags  windowFlags
	emailsUnread bool
	emailsFolder string
)

var emailsCmd = &cobra.Command{
	Use:   "emails",
	Short: "List emails from all mail sources",
	Long: `Lists emails from every connected mail source (Gmail, IMAP, Outlook),
newest first. A failing source is skipped and the rest are still shown.`,
	Args: cobra.NoArgs,
	RunE: runEmails,
}

func init() {
	emailsFlags.register(emailsCmd)
	emailsCmd.Flags().BoolVarP(&emailsUnread, "unread", "u", false, "only unread emails")
	emailsCmd.Flags().StringVar(&emailsFolder, "folder", "", "mail folder or label")
	rootCmd.AddCommand(emailsCmd)
}

func runEmails(cmd *cobra.Command, _ []string) error {
	orch, err := orchestrator()
	if err != nil {
		return err
	}
	win, err := emailsFlags.window()
	if err != nil {
		return err
	}

	items, err := orch.GetAllEmails(cmd.Context(), domain.EmailQuery{
		Window:     win,
		UnreadOnly: emailsUnread,
		Folder:     emailsFolder,
	})
	if err != nil {
		return fmt.Errorf("fetching emails: %w", err)
	}

	if emailsFlags.json {
		return printJSON(cmd, view.Emails(items))
	}
	if len(items) == 0 {
		cmd.Println("No emails.")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for i := range items {
		e := &items[i]
		rows = append(rows, []string{
			when(e.Timestamp, now()),
			e.SourceType.String(),
			cell(e.FromAddress.String(), 28),
			cell(e.Subject, cellWidth),
			mark(!e.IsRead, "●") + mark(e.IsFlagged(), "!"),
		})
	}
	printTable(cmd, []string{"When", "Source", "From", "Subject", ""}, rows)
	return nil
}
