package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bnema/ghostreel/internal/domain"
)

const defaultRecentPosts = 12

// AccountOperator hands out leased sessions and refreshes expired ones.
type AccountOperator interface {
	Checkout(ctx context.Context, preferred domain.AccountID) (*Lease, error)
	Reauthenticator
}

type MessageRequest struct {
	Target  string
	Text    string
	Account domain.AccountID
}

type PostRequest struct {
	VideoPath string
	Caption   string
	// Tagged is optional. The tag sits at (TagX, TagY).
	Tagged  string
	TagX    float64
	TagY    float64
	Account domain.AccountID
}

type ShareRequest struct {
	Target  string
	PostURL string
	// Message is sent after the share when set.
	Message string
	Account domain.AccountID
}

type ActionResult struct {
	Account   domain.AccountID
	Target    string
	Post      domain.PostRef
	ThreadID  string
	MessageID string
}

// AccountActions runs single platform operations outside the campaign
// workflow. Every call holds an account lease for its duration.
type AccountActions struct {
	accounts AccountOperator
	logger   *zap.Logger
}

func NewAccountActions(accounts AccountOperator, logger *zap.Logger) *AccountActions {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AccountActions{accounts: accounts, logger: logger}
}

func (a *AccountActions) SendMessage(ctx context.Context, req MessageRequest) (ActionResult, error) {
	target, err := singleIdentity(req.Target)
	if err != nil {
		return ActionResult{}, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return ActionResult{}, errors.New("message text is required")
	}

	result := ActionResult{Target: target}
	result.Account, err = a.withSession(ctx, req.Account, func(session *Session) error {
		handle, err := session.Client.ResolveIdentity(ctx, target)
		if err != nil {
			return err
		}
		result.MessageID, err = session.Client.SendMessage(ctx, req.Text, handle)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrMessageFailed, err)
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	a.logger.Info("message sent", zap.String("target", target), zap.String("account", string(result.Account)))
	return result, nil
}

// PublishClip uploads a video as a clip, optionally tagging one user.
func (a *AccountActions) PublishClip(ctx context.Context, req PostRequest) (ActionResult, error) {
	if !usableFile(req.VideoPath) {
		return ActionResult{}, fmt.Errorf("video file not found or empty: %s", req.VideoPath)
	}
	if strings.TrimSpace(req.Caption) == "" {
		return ActionResult{}, errors.New("caption is required")
	}
	if req.TagX < 0 || req.TagX > 1 || req.TagY < 0 || req.TagY > 1 {
		return ActionResult{}, fmt.Errorf("tag position must be within [0, 1], got (%g, %g)", req.TagX, req.TagY)
	}

	var tagged string
	if strings.TrimSpace(req.Tagged) != "" {
		var err error
		if tagged, err = singleIdentity(req.Tagged); err != nil {
			return ActionResult{}, err
		}
	}

	result := ActionResult{Target: tagged}
	var err error
	result.Account, err = a.withSession(ctx, req.Account, func(session *Session) error {
		publish := domain.PublishRequest{VideoPath: req.VideoPath, Caption: req.Caption}
		if tagged != "" {
			handle, err := session.Client.ResolveIdentity(ctx, tagged)
			if err != nil {
				return err
			}
			publish.Tags = []domain.UserTag{{User: handle, X: req.TagX, Y: req.TagY}}
		}

		post, err := session.Client.Publish(ctx, publish)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPublishFailed, err)
		}
		result.Post = post
		return nil
	})
	if err != nil {
		return result, err
	}

	a.logger.Info("clip published", zap.String("media", result.Post.MediaID), zap.String("account", string(result.Account)))
	return result, nil
}

// SharePost sends an existing post to a user's inbox, followed by an optional
// message. A share that already went through is not repeated after a
// re-authentication.
func (a *AccountActions) SharePost(ctx context.Context, req ShareRequest) (ActionResult, error) {
	target, err := singleIdentity(req.Target)
	if err != nil {
		return ActionResult{}, err
	}
	code, err := domain.PostCodeFromURL(req.PostURL)
	if err != nil {
		return ActionResult{}, err
	}

	result := ActionResult{Target: target}
	shared := false
	result.Account, err = a.withSession(ctx, req.Account, func(session *Session) error {
		handle, err := session.Client.ResolveIdentity(ctx, target)
		if err != nil {
			return err
		}

		if !shared {
			post, err := session.Client.ResolvePost(ctx, code)
			if err != nil {
				return err
			}
			result.Post = post
			if result.ThreadID, err = session.Client.Share(ctx, post, handle); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrShareFailed, err)
			}
			shared = true
		}

		if strings.TrimSpace(req.Message) == "" {
			return nil
		}
		if result.MessageID, err = session.Client.SendMessage(ctx, req.Message, handle); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrMessageFailed, err)
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	a.logger.Info("post shared", zap.String("target", target), zap.String("media", result.Post.MediaID))
	return result, nil
}

func (a *AccountActions) ResolveUser(ctx context.Context, username string, account domain.AccountID) (domain.UserHandle, domain.AccountID, error) {
	username, err := singleIdentity(username)
	if err != nil {
		return domain.UserHandle{}, "", err
	}

	var handle domain.UserHandle
	used, err := a.withSession(ctx, account, func(session *Session) error {
		handle, err = session.Client.ResolveIdentity(ctx, username)
		return err
	})

	return handle, used, err
}

func (a *AccountActions) UserInfo(ctx context.Context, username string, account domain.AccountID) (domain.UserInfo, domain.AccountID, error) {
	username, err := singleIdentity(username)
	if err != nil {
		return domain.UserInfo{}, "", err
	}

	var info domain.UserInfo
	used, err := a.withSession(ctx, account, func(session *Session) error {
		info, err = session.Client.UserInfo(ctx, username)
		return err
	})

	return info, used, err
}

// RecentPosts lists posts of username, or of the leased account itself when
// username is empty. limit is clamped to [1, domain.MaxRecentPosts].
func (a *AccountActions) RecentPosts(ctx context.Context, username string, limit int, account domain.AccountID) ([]domain.Post, domain.AccountID, error) {
	if strings.TrimSpace(username) != "" {
		var err error
		if username, err = singleIdentity(username); err != nil {
			return nil, "", err
		}
	}
	switch {
	case limit <= 0:
		limit = defaultRecentPosts
	case limit > domain.MaxRecentPosts:
		limit = domain.MaxRecentPosts
	}

	var posts []domain.Post
	used, err := a.withSession(ctx, account, func(session *Session) error {
		var err error
		posts, err = session.Client.RecentPosts(ctx, username, limit)
		return err
	})

	return posts, used, err
}

// withSession runs fn on a leased session. An expired session is refreshed
// once and fn runs again.
func (a *AccountActions) withSession(ctx context.Context, preferred domain.AccountID, fn func(*Session) error) (domain.AccountID, error) {
	lease, err := a.accounts.Checkout(ctx, preferred)
	if err != nil {
		return "", err
	}
	defer lease.Release()

	session := lease.Session
	err = fn(session)
	if !errors.Is(err, domain.ErrAuthExpired) {
		return session.Identity(), err
	}

	a.logger.Info("session expired, re-authenticating", zap.String("account", string(session.Identity())))
	fresh, reauthErr := a.accounts.ForceReauthenticate(ctx, session.Identity())
	if reauthErr != nil {
		return session.Identity(), reauthErr
	}

	return fresh.Identity(), fn(fresh)
}

func singleIdentity(value string) (string, error) {
	identities, err := domain.NormalizeIdentities([]string{value})
	if err != nil {
		return "", err
	}
	if len(identities) == 0 {
		return "", errors.New("username is required")
	}

	return identities[0], nil
}
