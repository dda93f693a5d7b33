package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/app"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Read and send messages through the legacy chat endpoints",
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history [phone]",
	Short: "Show chat history (defaults to your own number)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChatHistory,
}

var chatSendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send a message as yourself",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChatSend,
}

func init() {
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatSendCmd)
}

func runChatHistory(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		phone := a.Sessions.Current().User.PhoneNumber
		if len(args) == 1 {
			phone = args[0]
		}

		msgs := a.API.ChatHistory(ctx, phone)
		out := cmd.OutOrStdout()
		if len(msgs) == 0 {
			fmt.Fprintln(out, "No messages.")
			return nil
		}
		for _, m := range msgs {
			when := ""
			if !m.ReceivedAt.IsZero() {
				when = m.ReceivedAt.Local().Format("Jan 2 15:04")
			}
			fmt.Fprintf(out, "  %-11s %-16s %s\n", when, m.From, m.Message)
		}
		return nil
	})
}

func runChatSend(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		err := a.API.SendChat(ctx, api.ChatSend{
			PhoneNumber: a.Sessions.Current().User.PhoneNumber,
			Message:     strings.Join(args, " "),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "📨 Sent.")
		return nil
	})
}
