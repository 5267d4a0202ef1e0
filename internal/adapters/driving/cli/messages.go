package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

var (
	messagesFlags  windowFlags
	messagesUnread bool
	messagesThread string
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "List chat messages from all messaging sources",
	Long: `Lists chat messages from every connected messaging source (Teams,
GitHub notifications), newest first.`,
	Args: cobra.NoArgs,
	RunE: runMessages,
}

func init() {
	messagesFlags.register(messagesCmd)
	messagesCmd.Flags().BoolVarP(&messagesUnread, "unread", "u", false, "only unread messages")
	messagesCmd.Flags().StringVar(&messagesThread, "thread", "", "only messages in this thread")
	rootCmd.AddCommand(messagesCmd)
}

func runMessages(cmd *cobra.Command, _ []string) error {
	orch, err := orchestrator()
	if err != nil {
		return err
	}
	win, err := messagesFlags.window()
	if err != nil {
		return err
	}

	items, err := orch.GetAllMessages(cmd.Context(), domain.MessageQuery{
		Window:     win,
		UnreadOnly: messagesUnread,
		ThreadID:   messagesThread,
	})
	if err != nil {
		return fmt.Errorf("fetching messages: %w", err)
	}

	if messagesFlags.json {
		return printJSON(cmd, view.Messages(items))
	}
	if len(items) == 0 {
		cmd.Println("No messages.")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for i := range items {
		m := &items[i]
		rows = append(rows, []string{
			when(m.Timestamp, now()),
			m.SourceType.String(),
			cell(m.FromUser.String(), 24),
			cell(m.Content, cellWidth),
			mark(!m.IsRead, "●") + mark(m.IsImportant, "!"),
		})
	}
	printTable(cmd, []string{"When", "Source", "From", "Message", ""}, rows)
	return nil
}
