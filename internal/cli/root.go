package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/existflow/kawai/internal/app"
	"github.com/existflow/kawai/internal/config"
	"github.com/existflow/kawai/internal/logger"
	"github.com/existflow/kawai/internal/tui"
)

var (
	apiURL     string
	logLevel   string
	logFile    string
	logConsole bool

	// cfg is loaded once per invocation by the root command
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kawai",
	Short: "Kawai - your WhatsApp assistant's notes, links and reminders",
	Long: `Kawai is the client for the Kawai WhatsApp assistant. Chat with the bot
to save notes and links or schedule reminders, then browse them here.

Run 'kawai' without arguments to launch the interactive dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()

		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("api-url") {
			cfg.APIURL = apiURL
			configChanged = true
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("Kawai started", logger.F("command", cmd.Name()), logger.F("api", cfg.APIURL))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			// Pick up logins and logouts made by other kawai processes.
			w := a.Sessions.Watch(ctx, cfg.WatchEvery)
			defer w.Stop()

			logger.Info("Launching TUI")
			m := tui.NewModel(a.API, a.Sessions)
			defer m.Close()

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				logger.Error("TUI error", logger.F("error", err))
				return fmt.Errorf("failed to run TUI: %w", err)
			}

			logger.Info("TUI exited normally")
			return nil
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("Kawai exiting", logger.F("command", cmd.Name()))
		_ = logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// withApp opens the session database for the duration of fn
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open app", logger.F("error", err))
		return err
	}
	defer func() {
		_ = a.Close()
	}()
	return fn(ctx, a)
}

// withSession is withApp for commands that need a logged-in user
func withSession(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if _, err := a.RequireSession(); err != nil {
			return err
		}
		return fn(ctx, a)
	})
}

// withAdmin is withApp for commands that need an admin session
func withAdmin(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if _, err := a.RequireAdmin(); err != nil {
			return err
		}
		return fn(ctx, a)
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (saved to config)")

	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	// Add subcommands
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(remindersCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(serveCmd)
}
