package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/kawai/internal/app"
)

var linksCmd = &cobra.Command{
	Use:     "links",
	Aliases: []string{"link"},
	Short:   "List and delete saved links",
	Long: `Links are notes that contain a URL. Deleting a link deletes the note
it came from.`,
}

var linksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List links",
	Args:    cobra.NoArgs,
	RunE:    runLinksList,
}

var linksDeleteCmd = &cobra.Command{
	Use:     "delete [link-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a link and its note",
	Args:    cobra.ExactArgs(1),
	RunE:    runLinksDelete,
}

var linksSearch string

func init() {
	linksCmd.AddCommand(linksListCmd)
	linksCmd.AddCommand(linksDeleteCmd)

	linksListCmd.Flags().StringVarP(&linksSearch, "search", "s", "", "Only links whose note matches this text")
	linksDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func runLinksList(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		links := a.API.ListLinks(ctx, linksSearch)
		out := cmd.OutOrStdout()
		if len(links) == 0 {
			fmt.Fprintln(out, "No links yet. Send the bot a message with a URL in it.")
			return nil
		}

		fmt.Fprintf(out, "\n🔗 Links (%d)\n", len(links))
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, l := range links {
			fmt.Fprintf(out, "  %-8s %s\n", shortID(l.ID), l.URL)
			if l.NoteContent != "" && l.NoteContent != l.URL {
				fmt.Fprintf(out, "           %s\n", clip(l.NoteContent, 50))
			}
		}
		fmt.Fprintln(out)
		return nil
	})
}

func runLinksDelete(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		links := a.API.ListLinks(ctx, "")
		ids := make([]string, len(links))
		for i, l := range links {
			ids[i] = l.ID
		}
		id, err := resolveID(args[0], ids)
		if err != nil {
			return err
		}

		if !confirm(cmd, fmt.Sprintf("Delete link %s? Its note is deleted too.", shortID(id))) {
			return nil
		}
		if err := a.API.DeleteLink(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted link %s\n", shortID(id))
		return nil
	})
}
