package cmd

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/spf13/cobra"
)

type postOutput struct {
	MediaID  string    `json:"media_id"`
	Code     string    `json:"code,omitempty"`
	URL      string    `json:"url,omitempty"`
	Kind     string    `json:"kind"`
	Caption  string    `json:"caption,omitempty"`
	Likes    int       `json:"likes"`
	Comments int       `json:"comments"`
	TakenAt  time.Time `json:"taken_at,omitzero"`
	VideoURL string    `json:"video_url,omitempty"`
}

func newUserCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Look up platform users",
	}

	cmd.AddCommand(
		newUserResolveCmd(app),
		newUserInfoCmd(app),
		newUserPostsCmd(app),
	)

	return cmd
}

func newUserResolveCmd(app *app) *cobra.Command {
	var account string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <username>",
		Short: "Print the platform id of a username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := app.actions(cmd.Context())
			if err != nil {
				return err
			}

			var handle domain.UserHandle
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Resolving...", asJSON, func(ctx context.Context) error {
				var resolveErr error
				handle, _, resolveErr = actions.ResolveUser(ctx, args[0], domain.AccountID(strings.TrimSpace(account)))
				return resolveErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"user_id": handle.ID, "username": handle.Username})
			}
			printf(cmd.OutOrStdout(), "%s\t%s\n", sanitizeForTerminal(handle.Username), sanitizeForTerminal(handle.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account to query with")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newUserInfoCmd(app *app) *cobra.Command {
	var account string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <username>",
		Short: "Show a user's public profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := app.actions(cmd.Context())
			if err != nil {
				return err
			}

			var info domain.UserInfo
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching profile...", asJSON, func(ctx context.Context) error {
				var infoErr error
				info, _, infoErr = actions.UserInfo(ctx, args[0], domain.AccountID(strings.TrimSpace(account)))
				return infoErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"user_id":         info.ID,
					"username":        info.Username,
					"full_name":       info.FullName,
					"biography":       info.Biography,
					"follower_count":  info.Followers,
					"following_count": info.Following,
					"media_count":     info.MediaCount,
					"is_private":      info.Private,
					"is_verified":     info.Verified,
					"profile_pic_url": info.ProfilePicURL,
					"external_url":    info.ExternalURL,
					"category":        info.Category,
				})
			}

			out := cmd.OutOrStdout()
			printf(out, "%s (%s)\n", sanitizeForTerminal(info.Username), sanitizeForTerminal(info.ID))
			if info.FullName != "" {
				printf(out, "  name: %s\n", sanitizeForTerminal(info.FullName))
			}
			printf(out, "  followers: %d  following: %d  posts: %d\n", info.Followers, info.Following, info.MediaCount)
			printf(out, "  private=%t verified=%t\n", info.Private, info.Verified)
			if info.Biography != "" {
				printf(out, "  bio: %s\n", sanitizeForTerminal(info.Biography))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account to query with")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newUserPostsCmd(app *app) *cobra.Command {
	return newPostsCmd(app, "posts <username>", "List a user's recent posts", cobra.ExactArgs(1))
}

func newAccountPostsCmd(app *app) *cobra.Command {
	return newPostsCmd(app, "posts", "List recent posts of a pool account", cobra.NoArgs)
}

// newPostsCmd lists posts of the username argument, or of the leased account
// when the command takes no arguments.
func newPostsCmd(app *app, use, short string, positional cobra.PositionalArgs) *cobra.Command {
	var account string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  positional,
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := app.actions(cmd.Context())
			if err != nil {
				return err
			}

			username := ""
			if len(args) > 0 {
				username = args[0]
			}

			var posts []domain.Post
			var used domain.AccountID
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching posts...", asJSON, func(ctx context.Context) error {
				var postsErr error
				posts, used, postsErr = actions.RecentPosts(ctx, username, limit, domain.AccountID(strings.TrimSpace(account)))
				return postsErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				out := make([]postOutput, 0, len(posts))
				for _, post := range posts {
					out = append(out, postOutput{
						MediaID:  post.Ref.MediaID,
						Code:     post.Ref.Code,
						URL:      post.Ref.URL,
						Kind:     post.Kind.String(),
						Caption:  post.Caption,
						Likes:    post.Likes,
						Comments: post.Comments,
						TakenAt:  post.TakenAt,
						VideoURL: post.VideoURL,
					})
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"account": used, "count": len(out), "posts": out})
			}

			writePosts(cmd.OutOrStdout(), posts)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 12, "Maximum number of posts (at most 50)")
	cmd.Flags().StringVar(&account, "account", "", "Account to query with")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writePosts(w io.Writer, posts []domain.Post) {
	if len(posts) == 0 {
		printf(w, "No posts.\n")
		return
	}

	for _, post := range posts {
		taken := ""
		if !post.TakenAt.IsZero() {
			taken = post.TakenAt.Format("2006-01-02")
		}
		printf(w, "%s\t%s\t%s\t%d likes\t%s\n",
			sanitizeForTerminal(post.Ref.MediaID),
			post.Kind,
			taken,
			post.Likes,
			sanitizeForTerminal(post.Ref.URL),
		)
	}
}
