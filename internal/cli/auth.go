package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/kawai/internal/app"
	"github.com/existflow/kawai/internal/auth"
	"github.com/existflow/kawai/internal/bot"
	"github.com/existflow/kawai/internal/token"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your session",
	Long:  `Log in with a magic link from the WhatsApp bot, or as an admin with a password.`,
}

var magicCmd = &cobra.Command{
	Use:   "magic [link-or-token]",
	Short: "Log in with a magic link from the bot",
	Long: `Log in with the magic link the WhatsApp bot sent you. The full link
or just its token is accepted.

Examples:
  kawai auth magic "https://kawai.example/auth/magic?token=eyJ..."
  kawai auth magic eyJ...`,
	Args: cobra.ExactArgs(1),
	RunE: runMagic,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as an admin",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out on this machine",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is logged in",
	RunE:  runStatus,
}

func init() {
	authCmd.AddCommand(magicCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	loginCmd.Flags().String("phone", "", "Admin phone number")
	registerCmd.Flags().String("name", "", "Your name")
	registerCmd.Flags().String("phone", "", "WhatsApp phone number, digits only")
	registerCmd.Flags().String("secret", "", "Invite code, if you have one")
}

func runMagic(cmd *cobra.Command, args []string) error {
	raw, err := auth.FromURL(args[0])
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "🔄 Verifying login link...")

		res := a.Handshake.Run(ctx, raw)
		if !res.OK() {
			return errors.New(res.Message)
		}

		fmt.Fprintf(out, "✅ %s Logged in as %s (%s).\n", res.Message, res.User.PhoneNumber, res.User.Role)
		fmt.Fprintf(out, "   Dashboard: http://%s%s\n", a.Config.ListenAddr, res.Route)
		return nil
	})
}

func runLogin(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	phone, _ := cmd.Flags().GetString("phone")
	if phone == "" {
		phone = prompt(in, out, "Phone: ")
	}
	password, err := readPassword(cmd, in, "Password: ")
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		fmt.Fprintln(out, "🔄 Logging in...")
		user, err := a.Auth.AdminLogin(ctx, phone, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Logged in as %s (admin).\n", user.Name)
		return nil
	})
}

func runRegister(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	form := auth.RegisterForm{}
	form.Name, _ = cmd.Flags().GetString("name")
	form.PhoneNumber, _ = cmd.Flags().GetString("phone")
	form.SecretCode, _ = cmd.Flags().GetString("secret")
	if form.Name == "" {
		form.Name = prompt(in, out, "Name: ")
	}
	if form.PhoneNumber == "" {
		form.PhoneNumber = prompt(in, out, "Phone: ")
	}
	password, err := readPassword(cmd, in, "Password: ")
	if err != nil {
		return err
	}
	form.Password = password

	// Catch form errors before touching the database.
	if err := form.Validate(); err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := a.Auth.Register(ctx, form); err != nil {
			return err
		}
		fmt.Fprintln(out, "✅ Account created. Say hi to the bot on WhatsApp to get your login link:")
		if link, err := bot.DeepLink(a.Config.BotNumber, ""); err == nil {
			fmt.Fprintln(out, "   "+link)
		}
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		out := cmd.OutOrStdout()
		if !a.Sessions.Current().Authenticated {
			fmt.Fprintln(out, "Not logged in.")
			return nil
		}
		if err := a.Sessions.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "👋 Logged out.")
		return nil
	})
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		out := cmd.OutOrStdout()
		st := a.Sessions.Current()
		if !st.Authenticated {
			fmt.Fprintln(out, "Not logged in.")
			return nil
		}

		fmt.Fprintf(out, "Logged in as %s\n", st.User.Name)
		fmt.Fprintf(out, "  Phone: %s\n", st.User.PhoneNumber)
		fmt.Fprintf(out, "  Role:  %s\n", st.User.Role)
		if claims, err := token.Decode(st.Token); err == nil {
			if exp, ok, _ := claims.ExpiresAt(); ok {
				fmt.Fprintf(out, "  Expires: %s\n", exp.Local().Format("2006-01-02 15:04"))
			} else {
				fmt.Fprintln(out, "  Expires: never")
			}
		}
		return nil
	})
}

func prompt(in *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// readPassword reads without echo from a terminal, or a plain line otherwise
func readPassword(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	out := cmd.OutOrStdout()
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	return prompt(in, out, label), nil
}
