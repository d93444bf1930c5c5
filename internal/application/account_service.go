package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
)

// AccountService edits stored account definitions and keeps their secrets and
// cached sessions consistent with them.
type AccountService struct {
	repo     ports.AccountRepository
	store    ports.SecretStore
	sessions ports.SessionStore
}

func NewAccountService(repo ports.AccountRepository, store ports.SecretStore, sessions ports.SessionStore) *AccountService {
	return &AccountService{repo: repo, store: store, sessions: sessions}
}

// SetCredentials stores the password in the secret store and points the
// account definition at it. A previous secret under another key is removed
// once the definition is saved.
func (s *AccountService) SetCredentials(ctx context.Context, cmd SetCredentialsCommand) error {
	id := domain.AccountID(strings.TrimPrefix(strings.TrimSpace(string(cmd.ID)), "@"))
	if id == "" {
		return errors.New("identity is required")
	}
	if err := domain.ValidateIdentity(string(id)); err != nil {
		return err
	}
	if cmd.Secret == "" {
		return errors.New("secret is required")
	}

	account, err := s.repo.Definition(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return fmt.Errorf("get account definition: %w", err)
		}
		account = domain.Account{ID: id}
	}
	originalAccount := account
	previousSecretRef := account.SecretRef

	secretKey := domain.SecretKey(id, domain.SecretPassword)
	if err := s.store.Put(ctx, secretKey, cmd.Secret); err != nil {
		return fmt.Errorf("store account secret: %w", err)
	}

	account.Secret = ""
	account.SecretRef = secretKey
	if cmd.Proxy != "" {
		account.Proxy = cmd.Proxy
	}
	if cmd.TOTPSeed != "" {
		account.TOTPSeed = cmd.TOTPSeed
	}

	if err := s.repo.Save(ctx, account); err != nil {
		if rollbackErr := s.store.Delete(ctx, secretKey); rollbackErr != nil {
			return fmt.Errorf("save account and rollback stored secret: %w", errors.Join(err, rollbackErr))
		}

		return fmt.Errorf("save account: %w", err)
	}

	if previousSecretRef != "" && previousSecretRef != secretKey {
		if err := s.store.Delete(ctx, previousSecretRef); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
			var rollbackErr error
			if restoreErr := s.repo.Save(ctx, originalAccount); restoreErr != nil {
				rollbackErr = errors.Join(rollbackErr, restoreErr)
			}
			if newSecretDeleteErr := s.store.Delete(ctx, secretKey); newSecretDeleteErr != nil {
				rollbackErr = errors.Join(rollbackErr, newSecretDeleteErr)
			}
			if rollbackErr != nil {
				return fmt.Errorf("delete previous account secret and rollback update: %w", errors.Join(err, rollbackErr))
			}
			return fmt.Errorf("delete previous account secret: %w", err)
		}
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("drop cached session: %w", err)
	}

	return nil
}

// RemoveAccount deletes the definition, its secret and its cached session. If
// the secret cannot be deleted the definition is restored.
func (s *AccountService) RemoveAccount(ctx context.Context, id domain.AccountID) error {
	account, err := s.repo.Definition(ctx, id)
	if err != nil {
		return fmt.Errorf("get account definition: %w", err)
	}

	if err := s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove account: %w", err)
	}

	if account.SecretRef != "" {
		if err := s.store.Delete(ctx, account.SecretRef); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
			if restoreErr := s.repo.Save(ctx, account); restoreErr != nil {
				return fmt.Errorf("delete account secret and restore definition: %w", errors.Join(err, restoreErr))
			}
			return fmt.Errorf("delete account secret: %w", err)
		}
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("drop cached session: %w", err)
	}

	return nil
}

func (s *AccountService) List(ctx context.Context) ([]AccountSummary, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, AccountSummary{
			ID:              account.ID,
			SecretRef:       account.SecretRef,
			ProxyConfigured: account.HasProxy(),
			TOTPConfigured:  account.HasTOTP(),
		})
	}

	return summaries, nil
}
