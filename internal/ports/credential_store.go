package ports

import (
	"context"

	"github.com/bnema/ghostreel/internal/domain"
)

// CredentialStore returns the configured accounts in load order.
type CredentialStore interface {
	List(ctx context.Context) ([]domain.Account, error)
}

// AccountRepository edits stored account definitions. Definition returns the
// entry as written, without resolving secret references.
type AccountRepository interface {
	CredentialStore
	Definition(ctx context.Context, id domain.AccountID) (domain.Account, error)
	Save(ctx context.Context, account domain.Account) error
	Remove(ctx context.Context, id domain.AccountID) error
}

// SessionStore persists opaque session blobs keyed by account identity.
type SessionStore interface {
	Load(ctx context.Context, id domain.AccountID) ([]byte, error)
	Save(ctx context.Context, id domain.AccountID, blob []byte) error
	Delete(ctx context.Context, id domain.AccountID) error
}
