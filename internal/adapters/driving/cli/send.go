package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

var (
	sendSource  string
	sendJSON    bool
	sendTo      string
	sendThread  string
	sendEmailTo []string
	sendCc      []string
	sendSubject string
	sendHTML    bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message or email through one source",
}

var sendMessageCmd = &cobra.Command{
	Use:   "message [text]",
	Short: "Send a chat message",
	Long: `Sends a chat message through the named source. Use "-" as the text to
read it from stdin.

Example:
  hub send message --source teams --to 19:abc@thread.v2 "running late"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSendMessage,
}

var sendEmailCmd = &cobra.Command{
	Use:   "email [body]",
	Short: "Send an email",
	Long: `Sends an email through the named source. Use "-" as the body to read it
from stdin.

Example:
  hub send email --source gmail --to ana@example.com --subject "Notes" "See you at 3"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSendEmail,
}

func init() {
	for _, c := range []*cobra.Command{sendMessageCmd, sendEmailCmd} {
		c.Flags().StringVar(&sendSource, "source", "", "source type to send through (required)")
		c.Flags().BoolVar(&sendJSON, "json", false, "output the sent item as JSON")
		_ = c.MarkFlagRequired("source")
	}

	sendMessageCmd.Flags().StringVar(&sendTo, "to", "", "recipient or chat ID (required)")
	sendMessageCmd.Flags().StringVar(&sendThread, "thread", "", "thread to reply in")
	_ = sendMessageCmd.MarkFlagRequired("to")

	sendEmailCmd.Flags().StringSliceVar(&sendEmailTo, "to", nil, "recipient addresses (required)")
	sendEmailCmd.Flags().StringSliceVar(&sendCc, "cc", nil, "carbon copy addresses")
	sendEmailCmd.Flags().StringVar(&sendSubject, "subject", "", "subject line")
	sendEmailCmd.Flags().BoolVar(&sendHTML, "html", false, "send the body as HTML")
	_ = sendEmailCmd.MarkFlagRequired("to")

	sendCmd.AddCommand(sendMessageCmd, sendEmailCmd)
	rootCmd.AddCommand(sendCmd)
}

func runSendMessage(cmd *cobra.Command, args []string) error {
	orch, err := orchestrator()
	if err != nil {
		return err
	}
	st, err := domain.ParseSourceType(sendSource)
	if err != nil {
		return fmt.Errorf("source %q: %w", sendSource, err)
	}
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}

	sent, err := orch.SendMessage(cmd.Context(), domain.OutgoingMessage{
		SourceType: st,
		To:         sendTo,
		Content:    text,
		ThreadID:   sendThread,
	})
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	if sendJSON {
		return printJSON(cmd, view.FromMessage(sent))
	}
	cmd.Printf("Sent message %s\n", sent.ID)
	return nil
}

func runSendEmail(cmd *cobra.Command, args []string) error {
	orch, err := orchestrator()
	if err != nil {
		return err
	}
	st, err := domain.ParseSourceType(sendSource)
	if err != nil {
		return fmt.Errorf("source %q: %w", sendSource, err)
	}
	body, err := readText(cmd, args)
	if err != nil {
		return err
	}

	sent, err := orch.SendEmail(cmd.Context(), domain.OutgoingEmail{
		SourceType: st,
		To:         sendEmailTo,
		Cc:         sendCc,
		Subject:    sendSubject,
		Body:       body,
		HTML:       sendHTML,
	})
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	if sendJSON {
		return printJSON(cmd, view.FromEmail(sent))
	}
	cmd.Printf("Sent email %s\n", sent.ID)
	return nil
}

// readText joins args, or reads stdin when the only arg is "-".
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	return strings.Join(args, " "), nil
}
