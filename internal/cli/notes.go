package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/app"
	"github.com/existflow/kawai/internal/model"
)

var notesCmd = &cobra.Command{
	Use:     "notes",
	Aliases: []string{"note", "n"},
	Short:   "List and manage notes",
}

var notesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes",
	Long: `List notes, newest as returned by the backend.

Examples:
  kawai notes list
  kawai notes ls --search groceries`,
	Args: cobra.NoArgs,
	RunE: runNotesList,
}

var notesShowCmd = &cobra.Command{
	Use:   "show [note-id]",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesShow,
}

var notesAddCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Add a note",
	Long: `Add a note. Everything after 'add' becomes the note.

Examples:
  kawai notes add buy milk
  kawai notes add "read https://go.dev/blog later"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNotesAdd,
}

var notesEditCmd = &cobra.Command{
	Use:   "edit [note-id] [content]",
	Short: "Replace a note's content",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runNotesEdit,
}

var notesDeleteCmd = &cobra.Command{
	Use:     "delete [note-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a note",
	Args:    cobra.ExactArgs(1),
	RunE:    runNotesDelete,
}

var notesSearch string

func init() {
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesShowCmd)
	notesCmd.AddCommand(notesAddCmd)
	notesCmd.AddCommand(notesEditCmd)
	notesCmd.AddCommand(notesDeleteCmd)

	notesListCmd.Flags().StringVarP(&notesSearch, "search", "s", "", "Only notes matching this text")
	notesDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func runNotesList(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		notes := a.API.ListNotes(ctx, notesSearch)
		out := cmd.OutOrStdout()
		if len(notes) == 0 {
			fmt.Fprintln(out, "No notes found. Send one to the bot, or add one with: kawai notes add \"...\"")
			return nil
		}

		fmt.Fprintf(out, "\n📝 Notes (%d)\n", len(notes))
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, n := range notes {
			printNote(cmd, n)
		}
		fmt.Fprintln(out)
		return nil
	})
}

func printNote(cmd *cobra.Command, n model.Note) {
	when := ""
	if !n.CreatedAt.IsZero() {
		when = n.CreatedAt.Local().Format("Jan 2")
	}
	marker := " "
	if n.Type == model.NoteMixed {
		marker = "🔗"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s %-44s  %s\n", shortID(n.ID), marker, clip(n.Content, 44), when)
}

// resolveNote expands a short note id against the current list
func resolveNote(ctx context.Context, a *app.App, prefix string) (string, error) {
	notes := a.API.ListNotes(ctx, "")
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return resolveID(prefix, ids)
}

func runNotesShow(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		id, err := resolveNote(ctx, a, args[0])
		if err != nil {
			return err
		}
		n, err := a.API.NoteDetail(ctx, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:      %s\n", n.ID)
		if !n.CreatedAt.IsZero() {
			fmt.Fprintf(out, "Created: %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		if n.Type != "" {
			fmt.Fprintf(out, "Type:    %s\n", n.Type)
		}
		fmt.Fprintf(out, "\n%s\n", n.Content)
		if n.Original != "" && n.Original != n.Content {
			fmt.Fprintf(out, "\nOriginal message:\n%s\n", n.Original)
		}
		return nil
	})
}

func runNotesAdd(cmd *cobra.Command, args []string) error {
	content := strings.Join(args, " ")
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		n, err := a.API.CreateNote(ctx, api.NewNote{Content: content})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Added note %s\n", shortID(n.ID))
		return nil
	})
}

func runNotesEdit(cmd *cobra.Command, args []string) error {
	content := strings.Join(args[1:], " ")
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		id, err := resolveNote(ctx, a, args[0])
		if err != nil {
			return err
		}
		if err := a.API.UpdateNote(ctx, id, content); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✏️  Updated note %s\n", shortID(id))
		return nil
	})
}

func runNotesDelete(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		id, err := resolveNote(ctx, a, args[0])
		if err != nil {
			return err
		}
		if !confirm(cmd, fmt.Sprintf("Delete note %s?", shortID(id))) {
			return nil
		}
		if err := a.API.DeleteNote(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted note %s\n", shortID(id))
		return nil
	})
}
