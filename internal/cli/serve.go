package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/existflow/kawai/internal/app"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local web dashboard and magic-link landing page",
	Long: `Run the local web dashboard. Magic links from the bot can point at
http://<addr>/auth/magic?token=... to log this machine in.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	return withApp(cmd, func(_ context.Context, a *app.App) error {
		return a.Serve(ctx, addr, func(addr string) {
			fmt.Fprintf(cmd.OutOrStdout(), "🌐 Kawai dashboard on http://%s\n", addr)
		})
	})
}
