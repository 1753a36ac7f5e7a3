package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edugen/edugen/internal/app"
	"github.com/edugen/edugen/internal/auth"
)

var errDemoAccounts = errors.New("accounts are not available in demo mode")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the tutoring service",
	Long: "Sign in with the interactive form, or pass --email and pipe the password " +
		"on stdin with --password-stdin for scripted use.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if e.demo {
			return errDemoAccounts
		}

		email, _ := cmd.Flags().GetString("email")
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")
		if !fromStdin {
			return app.Run(e.deps(), app.Start{Kind: app.StartLogin})
		}

		password, err := readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
		id, err := e.accounts.Login(cmd.Context(), email, password)
		if err != nil {
			return errors.New(auth.LoginMessage(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", id.DisplayName())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if e.demo {
			return errDemoAccounts
		}
		return logout(cmd.Context(), e.accounts, cmd.OutOrStdout())
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email (with --password-stdin)")
	loginCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
}

// readPassword reads the first line of r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func logout(ctx context.Context, a *auth.Authenticator, out io.Writer) error {
	if a.Current(ctx) == nil {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}
	if err := a.Logout(ctx); err != nil {
		fmt.Fprintln(out, "Signed out locally; the server could not be reached.")
		return nil
	}
	fmt.Fprintln(out, "Signed out.")
	return nil
}
