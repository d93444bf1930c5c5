package cmd

import (
	"github.com/bnema/ghostreel/internal/application"
	"github.com/bnema/ghostreel/internal/domain"
	"github.com/spf13/cobra"
)

func newAudienceCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audience",
		Short: "Pick targets from a profile dataset",
	}

	cmd.AddCommand(
		newAudienceSelectCmd(app),
	)

	return cmd
}

func newAudienceSelectCmd(app *app) *cobra.Command {
	var count int
	var datasetPath string
	var includeUsed bool
	var criteria domain.FilterCriteria
	var campaignName string
	var template string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Randomly select users, skipping ones picked before",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if datasetPath == "" {
				datasetPath = app.cfg.DatasetPath
			}

			result, err := app.audience.Select(cmd.Context(), application.SelectRequest{
				Count:       count,
				DatasetPath: datasetPath,
				ExcludeUsed: !includeUsed,
				Criteria:    criteria,
			})
			if err != nil {
				return err
			}

			var campaign *domain.CampaignSummary
			if campaignName != "" {
				created, err := app.campaigns.Create(cmd.Context(), campaignName, result.Usernames, template)
				if err != nil {
					return err
				}
				summary := created.Summarize()
				campaign = &summary
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					application.SelectResult
					Campaign *domain.CampaignSummary `json:",omitempty"`
				}{result, campaign})
			}

			for _, username := range result.Usernames {
				printf(cmd.OutOrStdout(), "%s\n", sanitizeForTerminal(username))
			}
			printf(cmd.ErrOrStderr(), "selected %d of %d available (%d in dataset, %d excluded as used)\n",
				len(result.Usernames), result.TotalAvailable, result.TotalInDataset, result.ExcludedUsers)
			if campaign != nil {
				printf(cmd.ErrOrStderr(), "created campaign %s\n", campaign.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 10, "Number of users to select")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Dataset file, JSON or YAML (default: audience.dataset)")
	cmd.Flags().BoolVar(&includeUsed, "include-used", false, "Allow users selected in earlier rounds")
	cmd.Flags().IntVar(&criteria.MinFollowers, "min-followers", 0, "Minimum follower count")
	cmd.Flags().IntVar(&criteria.MaxFollowers, "max-followers", 0, "Maximum follower count")
	cmd.Flags().Float64Var(&criteria.MinEngagement, "min-engagement", 0, "Minimum average engagement")
	cmd.Flags().BoolVar(&criteria.RequireBio, "require-bio", false, "Only users with a biography")
	cmd.Flags().StringSliceVar(&criteria.Hashtags, "hashtag", nil, "Match any of these post hashtags")
	cmd.Flags().StringVar(&campaignName, "create-campaign", "", "Create a campaign with the selected users")
	cmd.Flags().StringVar(&template, "template", "", "Message template for --create-campaign")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
