package cmd

import (
	"fmt"

	statusadapter "github.com/bnema/ghostreel/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show accounts, chunks and campaign progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := loadSnapshot(cmd, app)
			if err != nil {
				return err
			}

			return writeSnapshot(cmd, app, snapshot, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

// loadSnapshot reads pool membership, the chunk catalog and campaign summaries.
// No account is authenticated.
func loadSnapshot(cmd *cobra.Command, app *app) (statusadapter.Snapshot, error) {
	pool, err := app.accountPool(cmd.Context())
	if err != nil {
		return statusadapter.Snapshot{}, err
	}

	chunks, err := app.chunks.ListAvailable(cmd.Context())
	if err != nil {
		return statusadapter.Snapshot{}, fmt.Errorf("list chunks: %w", err)
	}

	campaigns, err := app.campaigns.List(cmd.Context())
	if err != nil {
		return statusadapter.Snapshot{}, err
	}

	return statusadapter.Snapshot{
		Pool:      pool.PoolStatus(),
		Campaigns: campaigns,
		Chunks:    len(chunks),
	}, nil
}

func writeSnapshot(cmd *cobra.Command, app *app, snapshot statusadapter.Snapshot, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), snapshot)
	}

	rendered, err := app.statusRenderer(snapshot, statusadapter.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
