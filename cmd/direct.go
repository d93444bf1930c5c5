package cmd

import (
	"context"
	"strings"

	"github.com/bnema/ghostreel/internal/application"
	"github.com/bnema/ghostreel/internal/domain"
	"github.com/spf13/cobra"
)

type actionOutput struct {
	Account   domain.AccountID `json:"account"`
	Target    string           `json:"target,omitempty"`
	Post      *domain.PostRef  `json:"post,omitempty"`
	ThreadID  string           `json:"thread_id,omitempty"`
	MessageID string           `json:"message_id,omitempty"`
}

func newActionOutput(result application.ActionResult) actionOutput {
	out := actionOutput{
		Account:   result.Account,
		Target:    result.Target,
		ThreadID:  result.ThreadID,
		MessageID: result.MessageID,
	}
	if !result.Post.IsZero() {
		post := result.Post
		out.Post = &post
	}
	return out
}

func newMessageCmd(app *app) *cobra.Command {
	var account string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "message <target> <text>",
		Short: "Send a direct message without the clip workflow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := app.actions(cmd.Context())
			if err != nil {
				return err
			}

			var result application.ActionResult
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Sending message...", asJSON, func(ctx context.Context) error {
				var sendErr error
				result, sendErr = actions.SendMessage(ctx, application.MessageRequest{
					Target:  args[0],
					Text:    args[1],
					Account: domain.AccountID(strings.TrimSpace(account)),
				})
				return sendErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), newActionOutput(result))
			}
			printf(cmd.OutOrStdout(), "Messaged %s via %s\n", sanitizeForTerminal(result.Target), sanitizeForTerminal(string(result.Account)))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account to send from (default: next free account)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newPostCmd(app *app) *cobra.Command {
	var account string
	var caption string
	var tagged string
	var tagX float64
	var tagY float64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "post <video>",
		Short: "Publish a video as a clip, optionally tagging a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := app.actions(cmd.Context())
			if err != nil {
				return err
			}

			var result application.ActionResult
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Uploading clip...", asJSON, func(ctx context.Context) error {
				var postErr error
				result, postErr = actions.PublishClip(ctx, application.PostRequest{
					VideoPath: args[0],
					Caption:   caption,
					Tagged:    tagged,
					TagX:      tagX,
					TagY:      tagY,
					Account:   domain.AccountID(strings.TrimSpace(account)),
				})
				return postErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), newActionOutput(result))
			}
			printf(cmd.OutOrStdout(), "Published %s via %s: %s\n", sanitizeForTerminal(result.Post.MediaID), sanitizeForTerminal(string(result.Account)), sanitizeForTerminal(result.Post.URL))
			return nil
		},
	}

	cmd.Flags().StringVar(&caption, "caption", "", "Post caption")
	cmd.Flags().StringVar(&tagged, "tag", "", "User to tag in the clip")
	cmd.Flags().Float64Var(&tagX, "tag-x", 0.5, "Horizontal tag position in [0, 1]")
	cmd.Flags().Float64Var(&tagY, "tag-y", 0.5, "Vertical tag position in [0, 1]")
	cmd.Flags().StringVar(&account, "account", "", "Account to post from (default: next free account)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("caption")

	return cmd
}

func newShareCmd(app *app) *cobra.Command {
	var account string
	var message string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "share <target> <post-url>",
		Short: "Share an existing post to a user's inbox",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := app.actions(cmd.Context())
			if err != nil {
				return err
			}

			var result application.ActionResult
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Sharing post...", asJSON, func(ctx context.Context) error {
				var shareErr error
				result, shareErr = actions.SharePost(ctx, application.ShareRequest{
					Target:  args[0],
					PostURL: args[1],
					Message: message,
					Account: domain.AccountID(strings.TrimSpace(account)),
				})
				return shareErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), newActionOutput(result))
			}
			printf(cmd.OutOrStdout(), "Shared %s with %s via %s\n", sanitizeForTerminal(result.Post.Code), sanitizeForTerminal(result.Target), sanitizeForTerminal(string(result.Account)))
			return nil
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "Message to send after the share")
	cmd.Flags().StringVar(&account, "account", "", "Account to share from (default: next free account)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
