package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/app"
	"github.com/existflow/kawai/internal/model"
)

// atLayout is the local time format accepted by --at
const atLayout = "2006-01-02 15:04"

var remindersCmd = &cobra.Command{
	Use:     "reminders",
	Aliases: []string{"reminder", "r"},
	Short:   "List and manage reminders",
	Long: `Reminders are created by chatting with the bot ("remind me to call mum
tomorrow at 9"). Here you can list, reschedule and delete them.`,
}

var remindersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List reminders",
	Args:    cobra.NoArgs,
	RunE:    runRemindersList,
}

var remindersEditCmd = &cobra.Command{
	Use:   "edit [reminder-id]",
	Short: "Change a reminder",
	Long: `Change a reminder's title, time or status.

Examples:
  kawai reminders edit 65f1 --title "call mum"
  kawai reminders edit 65f1 --at "2026-10-20 09:00"
  kawai reminders edit 65f1 --status sent`,
	Args: cobra.ExactArgs(1),
	RunE: runRemindersEdit,
}

var remindersDeleteCmd = &cobra.Command{
	Use:     "delete [reminder-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a reminder",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemindersDelete,
}

var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Show reminders grouped by day",
	Args:    cobra.NoArgs,
	RunE:    runCalendar,
}

var (
	remindersSearch string
	editTitle       string
	editAt          string
	editStatus      string
)

func init() {
	remindersCmd.AddCommand(remindersListCmd)
	remindersCmd.AddCommand(remindersEditCmd)
	remindersCmd.AddCommand(remindersDeleteCmd)

	remindersListCmd.Flags().StringVarP(&remindersSearch, "search", "s", "", "Only reminders matching this text")
	remindersEditCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	remindersEditCmd.Flags().StringVar(&editAt, "at", "", "New local time, as \"YYYY-MM-DD HH:MM\"")
	remindersEditCmd.Flags().StringVar(&editStatus, "status", "", "New status (pending, sent)")
	remindersDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func runRemindersList(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		reminders := a.API.ListReminders(ctx, remindersSearch)
		out := cmd.OutOrStdout()
		if len(reminders) == 0 {
			fmt.Fprintln(out, "No reminders. Ask the bot to remind you of something.")
			return nil
		}

		fmt.Fprintf(out, "\n⏰ Reminders (%d)\n", len(reminders))
		fmt.Fprintln(out, strings.Repeat("─", 60))
		now := time.Now()
		for _, r := range reminders {
			printReminder(cmd, r, now, "Jan 2 15:04")
		}
		fmt.Fprintln(out)
		return nil
	})
}

func printReminder(cmd *cobra.Command, r model.Reminder, now time.Time, layout string) {
	icon := "[ ]"
	switch {
	case r.Status == model.ReminderSent:
		icon = "[x]"
	case r.IsOverdue(now):
		icon = "[!]"
	}
	when := "unscheduled"
	if !r.ScheduledTime.IsZero() {
		when = r.ScheduledTime.Local().Format(layout)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s  %-8s  %-12s  %s\n", icon, shortID(r.ID), when, clip(r.Title, 40))
}

func resolveReminder(ctx context.Context, a *app.App, prefix string) (string, error) {
	reminders := a.API.ListReminders(ctx, "")
	ids := make([]string, len(reminders))
	for i, r := range reminders {
		ids[i] = r.ID
	}
	return resolveID(prefix, ids)
}

// reminderUpdate builds the update from the edit flags
func reminderUpdate(title, at, status string) (model.ReminderUpdate, error) {
	u := model.ReminderUpdate{Title: strings.TrimSpace(title), Status: status}
	if at != "" {
		t, err := time.ParseInLocation(atLayout, at, time.Local)
		if err != nil {
			return u, fmt.Errorf("invalid --at %q: want %q", at, atLayout)
		}
		u.ScheduledTime = &t
	}
	switch status {
	case "", model.ReminderPending, model.ReminderSent:
	default:
		return u, fmt.Errorf("invalid --status %q: want %q or %q", status, model.ReminderPending, model.ReminderSent)
	}
	if u.Title == "" && u.ScheduledTime == nil && u.Status == "" {
		return u, fmt.Errorf("nothing to change: pass --title, --at or --status")
	}
	return u, nil
}

func runRemindersEdit(cmd *cobra.Command, args []string) error {
	u, err := reminderUpdate(editTitle, editAt, editStatus)
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		id, err := resolveReminder(ctx, a, args[0])
		if err != nil {
			return err
		}
		if err := a.API.UpdateReminder(ctx, id, u); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✏️  Updated reminder %s\n", shortID(id))
		return nil
	})
}

func runRemindersDelete(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		id, err := resolveReminder(ctx, a, args[0])
		if err != nil {
			return err
		}
		if !confirm(cmd, fmt.Sprintf("Delete reminder %s?", shortID(id))) {
			return nil
		}
		if err := a.API.DeleteReminder(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted reminder %s\n", shortID(id))
		return nil
	})
}

func runCalendar(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		days := api.Calendar(a.API.ListReminders(ctx, ""))
		out := cmd.OutOrStdout()
		if len(days) == 0 {
			fmt.Fprintln(out, "Nothing scheduled.")
			return nil
		}

		now := time.Now()
		for _, d := range days {
			fmt.Fprintf(out, "\n📅 %s\n", d.Day.Format("Mon, Jan 2 2006"))
			for _, r := range d.Reminders {
				printReminder(cmd, r, now, "15:04")
			}
		}
		fmt.Fprintln(out)
		return nil
	})
}
