package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bnema/ghostreel/internal/application"
	"github.com/bnema/ghostreel/internal/domain"
	"github.com/spf13/cobra"
)

func newCampaignCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Create and run outreach campaigns",
	}

	cmd.AddCommand(
		newCampaignCreateCmd(app),
		newCampaignStatusCmd(app),
		newCampaignDeleteCmd(app),
		newCampaignPrepareCmd(app),
		newCampaignRunCmd(app),
		newCampaignResetCmd(app),
	)

	return cmd
}

func newCampaignCreateCmd(app *app) *cobra.Command {
	var name string
	var targets []string
	var targetsFile string
	var template string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a campaign with every target pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all := splitList(targets)
			if targetsFile != "" {
				fromFile, err := readTargetsFile(targetsFile)
				if err != nil {
					return err
				}
				all = append(all, fromFile...)
			}

			campaign, err := app.campaigns.Create(cmd.Context(), name, all, template)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), campaign.Summarize())
			}

			printf(cmd.OutOrStdout(), "Created campaign %s (%d targets)\n", campaign.ID, len(campaign.Targets))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Campaign name")
	cmd.Flags().StringSliceVar(&targets, "targets", nil, "Target usernames, comma separated")
	cmd.Flags().StringVar(&targetsFile, "targets-file", "", "File with one target username per line")
	cmd.Flags().StringVar(&template, "template", "", "Message template; {username} is replaced per target")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newCampaignStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status [campaign-id]",
		Short: "Show progress of one or all campaigns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var summaries []domain.CampaignSummary
			if len(args) == 1 {
				summary, err := app.campaigns.Get(cmd.Context(), domain.CampaignID(strings.TrimSpace(args[0])))
				if err != nil {
					return err
				}
				summaries = append(summaries, summary)
			} else {
				list, err := app.campaigns.List(cmd.Context())
				if err != nil {
					return err
				}
				summaries = list
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summaries)
			}

			if len(summaries) == 0 {
				printf(cmd.OutOrStdout(), "No campaigns yet.\n")
				return nil
			}
			for _, summary := range summaries {
				writeSummary(cmd, summary)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newCampaignDeleteCmd(app *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "delete [campaign-id...]",
		Short: "Delete campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return errors.New("pass campaign ids or --all")
			}
			if len(args) > 0 && all {
				return errors.New("--all cannot be combined with campaign ids")
			}

			ids := make([]domain.CampaignID, 0, len(args))
			for _, arg := range args {
				ids = append(ids, domain.CampaignID(strings.TrimSpace(arg)))
			}

			result, err := app.campaigns.Delete(cmd.Context(), ids)
			if err != nil {
				return err
			}

			for _, id := range result.Deleted {
				printf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			for _, id := range result.NotFound {
				printf(cmd.ErrOrStderr(), "Not found: %s\n", sanitizeForTerminal(string(id)))
			}
			if len(result.Deleted) == 0 && len(result.NotFound) > 0 {
				return domain.ErrCampaignNotFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Delete every campaign")

	return cmd
}

func newCampaignPrepareCmd(app *app) *cobra.Command {
	var targets []string
	var ensureChunks int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "prepare <campaign-id>",
		Short: "Render personalized clips for pending targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := app.runner(cmd.Context())
			if err != nil {
				return err
			}

			var result application.PrepareResult
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Preparing clips...", asJSON, func(ctx context.Context) error {
				var prepareErr error
				result, prepareErr = runner.PrepareCampaignVideos(ctx, application.PrepareRequest{
					CampaignID:   domain.CampaignID(strings.TrimSpace(args[0])),
					Targets:      splitList(targets),
					EnsureChunks: ensureChunks,
				})
				return prepareErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			printf(cmd.OutOrStdout(), "Prepared %d clip(s)\n", len(result.Created))
			for _, msg := range result.Errors {
				printf(cmd.ErrOrStderr(), "error: %s\n", sanitizeForTerminal(msg))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&targets, "targets", nil, "Only prepare these targets (default: all pending)")
	cmd.Flags().IntVar(&ensureChunks, "ensure-chunks", 0, "Cut chunks first until at least this many exist")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newCampaignRunCmd(app *app) *cobra.Command {
	var workers int
	var retryFailed bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run <campaign-id>",
		Short: "Deliver every open target of a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := app.runner(cmd.Context())
			if err != nil {
				return err
			}

			var result application.RunResult
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Running campaign...", asJSON, func(ctx context.Context) error {
				var runErr error
				result, runErr = runner.RunCampaign(ctx, application.RunRequest{
					CampaignID:  domain.CampaignID(strings.TrimSpace(args[0])),
					Workers:     workers,
					RetryFailed: retryFailed,
				})
				return runErr
			})
			if err != nil {
				// A run stopped by an exhausted pool still reports what it did.
				if result.Attempted > 0 {
					_ = writeRunResult(cmd, result, asJSON)
				}
				return err
			}

			return writeRunResult(cmd, result, asJSON)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent deliveries (default: workers.delivery)")
	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "Also retry targets that previously failed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeRunResult(cmd *cobra.Command, result application.RunResult, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), runOutput(result))
	}

	printf(cmd.OutOrStdout(), "Attempted %d: %d sent, %d failed\n", result.Attempted, result.Sent, result.Failed)
	for _, msg := range result.Errors {
		printf(cmd.ErrOrStderr(), "error: %s\n", sanitizeForTerminal(msg))
	}
	writeSummary(cmd, result.Summary)
	return nil
}

func newCampaignResetCmd(app *app) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "reset <campaign-id>",
		Short: "Move targets back to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]domain.TargetStatus, 0, len(statuses))
			for _, raw := range splitList(statuses) {
				status := domain.TargetStatus(strings.ToLower(raw))
				if !status.Valid() {
					return fmt.Errorf("invalid status %q", raw)
				}
				parsed = append(parsed, status)
			}

			id := domain.CampaignID(strings.TrimSpace(args[0]))
			reset, err := app.campaigns.ResetTargets(cmd.Context(), id, parsed...)
			if err != nil {
				return err
			}

			printf(cmd.OutOrStdout(), "Reset %d target(s) in %s\n", reset, id)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", []string{string(domain.TargetError)}, "Statuses to reset")

	return cmd
}

type deliveryOutput struct {
	Target  string           `json:"target"`
	Account domain.AccountID `json:"account,omitempty"`
	Success bool             `json:"success"`
	PostURL string           `json:"post_url,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type runResultOutput struct {
	Attempted int                    `json:"attempted"`
	Sent      int                    `json:"sent"`
	Failed    int                    `json:"failed"`
	Results   []deliveryOutput       `json:"results"`
	Errors    []string               `json:"errors,omitempty"`
	Summary   domain.CampaignSummary `json:"summary"`
}

// runOutput flattens delivery errors, which do not marshal on their own.
func runOutput(result application.RunResult) runResultOutput {
	out := runResultOutput{
		Attempted: result.Attempted,
		Sent:      result.Sent,
		Failed:    result.Failed,
		Results:   make([]deliveryOutput, 0, len(result.Results)),
		Errors:    result.Errors,
		Summary:   result.Summary,
	}
	for _, delivery := range result.Results {
		entry := deliveryOutput{
			Target:  delivery.Target,
			Account: delivery.Account,
			Success: delivery.Success,
			PostURL: delivery.PostRef.URL,
		}
		if delivery.Err != nil {
			entry.Error = delivery.Err.Error()
		}
		out.Results = append(out.Results, entry)
	}
	return out
}

func writeSummary(cmd *cobra.Command, summary domain.CampaignSummary) {
	out := cmd.OutOrStdout()
	printf(out, "%s\t%s\t%s sent\n", summary.ID, sanitizeForTerminal(summary.Name), summary.CompletionRate)
	printf(out, "  %d sent, %d failed, %d pending of %d\n", summary.Completed, summary.Failed, summary.Pending, summary.Total)
	if !summary.CreatedAt.IsZero() {
		printf(out, "  created %s\n", summary.CreatedAt.Local().Format(time.DateTime))
	}
}

func readTargetsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}

	var targets []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	return targets, nil
}
