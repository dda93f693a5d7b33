package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// confirm asks a yes/no question unless confirmation is off or --yes was given
func confirm(cmd *cobra.Command, question string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes || !cfg.ConfirmDelete {
		return true
	}
	out := cmd.OutOrStdout()
	answer := prompt(bufio.NewReader(cmd.InOrStdin()), out, question+" [y/N]: ")
	if answer != "y" && answer != "Y" {
		fmt.Fprintln(out, "Cancelled.")
		return false
	}
	return true
}

// resolveID finds the single id starting with prefix. Full ids pass through.
func resolveID(prefix string, ids []string) (string, error) {
	var match string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("id %q is ambiguous", prefix)
			}
			match = id
		}
	}
	if match == "" {
		return prefix, nil
	}
	return match, nil
}

// shortID trims backend ids for table output
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// clip shortens s to n runes with ellipsis
func clip(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
