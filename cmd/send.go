package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/ghostreel/internal/application"
	"github.com/bnema/ghostreel/internal/domain"
	"github.com/spf13/cobra"
)

type sendOutput struct {
	Success  bool             `json:"success"`
	Target   string           `json:"target"`
	Account  domain.AccountID `json:"account,omitempty"`
	Post     domain.PostRef   `json:"post"`
	Artifact string           `json:"artifact,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func newSendCmd(app *app) *cobra.Command {
	var account string
	var campaignID string
	var chunkID string
	var videoPath string
	var message string
	var force bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "send <target>",
		Short: "Publish, share and message one target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := app.runner(cmd.Context())
			if err != nil {
				return err
			}

			var result application.DeliveryResult
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Delivering...", asJSON, func(ctx context.Context) error {
				var sendErr error
				result, sendErr = runner.SendOne(ctx, application.SendRequest{
					Target:       args[0],
					Account:      domain.AccountID(strings.TrimSpace(account)),
					CampaignID:   domain.CampaignID(strings.TrimSpace(campaignID)),
					ChunkID:      strings.TrimSpace(chunkID),
					ArtifactPath: strings.TrimSpace(videoPath),
					Message:      message,
					Force:        force,
				})
				return sendErr
			})
			if err != nil {
				if asJSON {
					_ = writeJSON(cmd.OutOrStdout(), sendOutput{Target: strings.TrimPrefix(strings.TrimSpace(args[0]), "@"), Error: err.Error()})
				}
				return err
			}

			out := sendOutput{
				Success:  result.Success,
				Target:   result.Target,
				Account:  result.Account,
				Post:     result.PostRef,
				Artifact: result.ArtifactPath,
			}
			if result.Err != nil {
				out.Error = result.Err.Error()
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else if result.Success {
				printf(cmd.OutOrStdout(), "Sent to %s via %s: %s\n", sanitizeForTerminal(result.Target), sanitizeForTerminal(string(result.Account)), result.PostRef.URL)
			}

			if !result.Success {
				if result.Err == nil {
					return fmt.Errorf("send to %s failed", result.Target)
				}
				return fmt.Errorf("send to %s: %w", result.Target, result.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account to send from (default: next free account)")
	cmd.Flags().StringVar(&campaignID, "campaign", "", "Campaign to record the delivery in")
	cmd.Flags().StringVar(&chunkID, "chunk", "", "Chunk to personalize (default: random)")
	cmd.Flags().StringVar(&videoPath, "video", "", "Send this file instead of rendering a clip")
	cmd.Flags().StringVar(&message, "message", "", "Message text (default: campaign template)")
	cmd.Flags().BoolVar(&force, "force", false, "Deliver again to a campaign target that is already sent")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
