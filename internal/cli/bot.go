package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/kawai/internal/bot"
)

var botCmd = &cobra.Command{
	Use:   "bot [message]",
	Short: "Print the WhatsApp link to chat with the bot",
	Long: `Print a wa.me link that opens a chat with the Kawai bot, pre-filled
with the given message (or a greeting).

Examples:
  kawai bot
  kawai bot remind me to stretch at 4pm`,
	RunE: func(cmd *cobra.Command, args []string) error {
		link, err := bot.DeepLink(cfg.BotNumber, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}
