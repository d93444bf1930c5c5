package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/ghostreel/internal/application"
	"github.com/bnema/ghostreel/internal/domain"
	"github.com/spf13/cobra"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage platform accounts",
	}

	cmd.AddCommand(
		newAccountListCmd(app),
		newAccountStatusCmd(app),
		newAccountSetCmd(app),
		newAccountRemoveCmd(app),
		newAccountLoginCmd(app),
		newAccountLogoutCmd(app),
		newAccountPostsCmd(app),
	)

	return cmd
}

func newAccountListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := app.accounts.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summaries)
			}

			if len(summaries) == 0 {
				printf(cmd.OutOrStdout(), "No accounts configured in %s\n", app.credentials.Path())
				return nil
			}

			for _, summary := range summaries {
				printf(cmd.OutOrStdout(), "%s\tproxy=%t\ttotp=%t\n", sanitizeForTerminal(string(summary.ID)), summary.ProxyConfigured, summary.TOTPConfigured)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newAccountStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pool membership without logging in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := app.accountPool(cmd.Context())
			if err != nil {
				return err
			}

			statuses := pool.Status()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), statuses)
			}

			if len(statuses) == 0 {
				printf(cmd.OutOrStdout(), "No accounts configured.\n")
				return nil
			}
			for _, status := range statuses {
				state := "not authenticated"
				if status.Authenticated {
					state = "authenticated"
				}
				printf(cmd.OutOrStdout(), "%s\t%s\tproxy=%t\n", sanitizeForTerminal(string(status.ID)), state, status.ProxyConfigured)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newAccountSetCmd(app *app) *cobra.Command {
	var identity string
	var password string
	var proxy string
	var totpSeed string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Add or update an account; the password goes to the secret store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(password) == "" {
				read, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = read
			}

			err := app.accounts.SetCredentials(cmd.Context(), application.SetCredentialsCommand{
				ID:       domain.AccountID(identity),
				Secret:   password,
				Proxy:    strings.TrimSpace(proxy),
				TOTPSeed: strings.TrimSpace(totpSeed),
			})
			if err != nil {
				return err
			}

			printf(cmd.OutOrStdout(), "Saved account %s\n", sanitizeForTerminal(strings.TrimPrefix(strings.TrimSpace(identity), "@")))
			return nil
		},
	}

	cmd.Flags().StringVar(&identity, "identity", "", "Account username")
	cmd.Flags().StringVar(&password, "password", "", "Account password (read from stdin when omitted)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "Proxy URL for this account")
	cmd.Flags().StringVar(&totpSeed, "totp-seed", "", "Base32 TOTP seed for two-factor login")
	_ = cmd.MarkFlagRequired("identity")

	return cmd
}

func newAccountRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <identity>",
		Short: "Remove an account, its secret and its cached session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.AccountID(strings.TrimSpace(args[0]))
			if err := app.accounts.RemoveAccount(cmd.Context(), id); err != nil {
				return err
			}

			printf(cmd.OutOrStdout(), "Removed account %s\n", sanitizeForTerminal(string(id)))
			return nil
		},
	}
}

func newAccountLoginCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "login [identity]",
		Short: "Authenticate an account, or the next one in rotation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := app.accountPool(cmd.Context())
			if err != nil {
				return err
			}

			var identity domain.AccountID
			if len(args) == 1 {
				identity = domain.AccountID(strings.TrimSpace(args[0]))
			}
			if force && identity == "" {
				return errors.New("--force needs an account identity")
			}

			var session *application.Session
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Logging in...", false, func(ctx context.Context) error {
				var loginErr error
				if force {
					session, loginErr = pool.ForceReauthenticate(ctx, identity)
				} else {
					session, loginErr = pool.SelectAccount(ctx, identity)
				}
				return loginErr
			})
			if err != nil {
				return err
			}

			how := "logged in"
			if session.Restored {
				how = "restored cached session"
			}
			printf(cmd.OutOrStdout(), "%s: %s\n", sanitizeForTerminal(string(session.Identity())), how)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Discard the cached session and log in again")

	return cmd
}

func newAccountLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout <identity>",
		Short: "Drop the cached session of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.AccountID(strings.TrimSpace(args[0]))
			if err := app.sessions.Delete(cmd.Context(), id); err != nil {
				return err
			}

			printf(cmd.OutOrStdout(), "Dropped session for %s\n", sanitizeForTerminal(string(id)))
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
