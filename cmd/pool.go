package cmd

import (
	"context"

	"github.com/bnema/ghostreel/internal/application"
	"github.com/spf13/cobra"
)

func newPoolCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Inspect and rotate the account pool",
	}

	cmd.AddCommand(
		newPoolNextCmd(app),
	)

	return cmd
}

func newPoolNextCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Authenticate the next account in rotation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := app.accountPool(cmd.Context())
			if err != nil {
				return err
			}

			var session *application.Session
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Selecting next account...", asJSON, func(ctx context.Context) error {
				var selectErr error
				session, selectErr = pool.SelectAccount(ctx, "")
				return selectErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"account":  session.Identity(),
					"restored": session.Restored,
				})
			}

			printf(cmd.OutOrStdout(), "Using account %s\n", sanitizeForTerminal(string(session.Identity())))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
