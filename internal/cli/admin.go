package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/kawai/internal/app"
	"github.com/existflow/kawai/internal/auth"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin tools (admin session required)",
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show user statistics",
	Args:  cobra.NoArgs,
	RunE:  runAdminStats,
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE:  runAdminUsers,
}

var adminBanCmd = &cobra.Command{
	Use:   "ban [phone]",
	Short: "Ban a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminBan,
}

var adminUnbanCmd = &cobra.Command{
	Use:   "unban [phone]",
	Short: "Lift a ban",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminBan,
}

func init() {
	adminCmd.AddCommand(adminStatsCmd)
	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminBanCmd)
	adminCmd.AddCommand(adminUnbanCmd)

	adminBanCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func runAdminStats(cmd *cobra.Command, args []string) error {
	return withAdmin(cmd, func(ctx context.Context, a *app.App) error {
		s := a.API.AdminStats(ctx)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Total users:  %d\n", s.TotalUsers)
		fmt.Fprintf(out, "Active today: %d\n", s.ActiveToday)
		fmt.Fprintf(out, "Banned:       %d\n", s.BannedUsers)
		return nil
	})
}

func runAdminUsers(cmd *cobra.Command, args []string) error {
	return withAdmin(cmd, func(ctx context.Context, a *app.App) error {
		users := a.API.ListUsers(ctx)
		out := cmd.OutOrStdout()
		if len(users) == 0 {
			fmt.Fprintln(out, "No users.")
			return nil
		}

		fmt.Fprintf(out, "\n👥 Users (%d)\n", len(users))
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, u := range users {
			flag := "   "
			if u.Banned() {
				flag = "🚫 "
			}
			fmt.Fprintf(out, "  %s%-16s  %-20s  %s\n", flag, u.PhoneNumber, clip(u.Name, 20), u.Role)
		}
		fmt.Fprintln(out)
		return nil
	})
}

// runAdminBan serves both ban and unban
func runAdminBan(cmd *cobra.Command, args []string) error {
	phone := strings.TrimSpace(args[0])
	if err := auth.ValidatePhone(phone); err != nil {
		return err
	}
	ban := cmd.Name() == "ban"

	return withAdmin(cmd, func(ctx context.Context, a *app.App) error {
		if ban {
			if !confirm(cmd, fmt.Sprintf("Ban %s?", phone)) {
				return nil
			}
			if err := a.API.BanUser(ctx, phone); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🚫 Banned %s\n", phone)
			return nil
		}

		if err := a.API.UnbanUser(ctx, phone); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Unbanned %s\n", phone)
		return nil
	})
}
