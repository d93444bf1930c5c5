package cmd

import (
	"context"
	"strings"

	"github.com/bnema/ghostreel/internal/application"
	"github.com/bnema/ghostreel/internal/domain"
	"github.com/spf13/cobra"
)

func newPersonalizeCmd(app *app) *cobra.Command {
	var chunkID string
	var campaignID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "personalize <target>",
		Short: "Render a personalized clip for one target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var artifact domain.PersonalizedArtifact
			err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Rendering overlay...", asJSON, func(ctx context.Context) error {
				var renderErr error
				artifact, renderErr = app.engine.Personalize(ctx, application.PersonalizeRequest{
					ChunkID:    strings.TrimSpace(chunkID),
					Target:     args[0],
					CampaignID: domain.CampaignID(strings.TrimSpace(campaignID)),
				})
				return renderErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), artifact)
			}

			printf(cmd.OutOrStdout(), "%s\tchunk=%s\t%d bytes\n", artifact.Path, artifact.ChunkID, artifact.SizeBytes)
			return nil
		},
	}

	cmd.Flags().StringVar(&chunkID, "chunk", "", "Chunk ID (default: random chunk)")
	cmd.Flags().StringVar(&campaignID, "campaign", "", "Campaign ID used as the file name prefix")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
