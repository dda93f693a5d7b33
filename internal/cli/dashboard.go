package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/kawai/internal/app"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show counts and recent notes",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		st := a.Sessions.Current()
		sum := a.API.Summary(ctx)
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "\nHi %s 👋\n", st.User.Name)
		fmt.Fprintln(out, strings.Repeat("─", 60))
		fmt.Fprintf(out, "  📝 %d notes   🔗 %d links   ⏰ %d reminders\n", sum.NoteCount, sum.LinkCount, sum.ReminderCount)

		if len(sum.RecentNotes) > 0 {
			fmt.Fprintln(out, "\nRecent notes")
			for _, n := range sum.RecentNotes {
				printNote(cmd, n)
			}
		}
		fmt.Fprintln(out)
		return nil
	})
}
