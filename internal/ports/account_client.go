package ports

import (
	"context"

	"github.com/bnema/ghostreel/internal/domain"
)

// AccountClient talks to the remote platform on behalf of one account.
// Failures are classified with domain.ErrAuthExpired, domain.ErrTransient,
// domain.ErrNotFound or domain.ErrTwoFactorRequired.
type AccountClient interface {
	Login(ctx context.Context, identity, secret, otp string) error
	LoadSession(ctx context.Context, blob []byte) error
	DumpSession(ctx context.Context) ([]byte, error)
	Probe(ctx context.Context) error
	ResolveIdentity(ctx context.Context, username string) (domain.UserHandle, error)
	Publish(ctx context.Context, req domain.PublishRequest) (domain.PostRef, error)
	Share(ctx context.Context, post domain.PostRef, to domain.UserHandle) (string, error)
	SendMessage(ctx context.Context, text string, to domain.UserHandle) (string, error)
	UserInfo(ctx context.Context, username string) (domain.UserInfo, error)
	// RecentPosts lists up to limit posts of username, or of the signed-in
	// account when username is empty.
	RecentPosts(ctx context.Context, username string, limit int) ([]domain.Post, error)
	ResolvePost(ctx context.Context, code string) (domain.PostRef, error)
}

type AccountClientFactory interface {
	NewClient(account domain.Account) (AccountClient, error)
}
