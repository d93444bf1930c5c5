package application

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tomlrepo "github.com/bnema/ghostreel/internal/adapters/repo/toml"
	filestore "github.com/bnema/ghostreel/internal/adapters/secrets/file"
	sessionfile "github.com/bnema/ghostreel/internal/adapters/sessions/file"
	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports/mocks"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const nightOwlKey = "ghost/accounts/night.owl/password"

func TestAccountServiceSetCredentialsNewAccount(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	store := mocks.NewMockSecretStore(t)
	sessions := mocks.NewMockSessionStore(t)
	service := NewAccountService(repo, store, sessions)

	repo.EXPECT().Definition(mockAnyContext(), domain.AccountID("night.owl")).Return(domain.Account{}, domain.ErrAccountNotFound)
	store.EXPECT().Put(mockAnyContext(), nightOwlKey, "hunter2").Return(nil)
	repo.EXPECT().Save(mockAnyContext(), domain.Account{ID: "night.owl", SecretRef: nightOwlKey, Proxy: "http://proxy:8080"}).Return(nil)
	sessions.EXPECT().Delete(mockAnyContext(), domain.AccountID("night.owl")).Return(nil)

	err := service.SetCredentials(context.Background(), SetCredentialsCommand{ID: "@night.owl", Secret: "hunter2", Proxy: "http://proxy:8080"})
	require.NoError(t, err)
}

func TestAccountServiceSetCredentialsRotationDeletesPreviousSecretRef(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	store := mocks.NewMockSecretStore(t)
	sessions := mocks.NewMockSessionStore(t)
	service := NewAccountService(repo, store, sessions)

	account := domain.Account{ID: "night.owl", SecretRef: "legacy/night.owl", TOTPSeed: "JBSWY3DPEHPK3PXP"}
	repo.EXPECT().Definition(mockAnyContext(), domain.AccountID("night.owl")).Return(account, nil)
	store.EXPECT().Put(mockAnyContext(), nightOwlKey, "hunter2").Return(nil)
	repo.EXPECT().Save(mockAnyContext(), domain.Account{ID: "night.owl", SecretRef: nightOwlKey, TOTPSeed: "JBSWY3DPEHPK3PXP"}).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), "legacy/night.owl").Return(nil)
	sessions.EXPECT().Delete(mockAnyContext(), domain.AccountID("night.owl")).Return(nil)

	err := service.SetCredentials(context.Background(), SetCredentialsCommand{ID: "night.owl", Secret: "hunter2"})
	require.NoError(t, err)
}

func TestAccountServiceSetCredentialsRollsBackWhenPreviousSecretDeleteFails(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	store := mocks.NewMockSecretStore(t)
	sessions := mocks.NewMockSessionStore(t)
	service := NewAccountService(repo, store, sessions)

	deleteErr := errors.New("delete old secret failed")
	account := domain.Account{ID: "night.owl", SecretRef: "legacy/night.owl"}
	repo.EXPECT().Definition(mockAnyContext(), domain.AccountID("night.owl")).Return(account, nil)
	store.EXPECT().Put(mockAnyContext(), nightOwlKey, "hunter2").Return(nil)
	repo.EXPECT().Save(mockAnyContext(), domain.Account{ID: "night.owl", SecretRef: nightOwlKey}).Return(nil).Once()
	store.EXPECT().Delete(mockAnyContext(), "legacy/night.owl").Return(deleteErr)
	repo.EXPECT().Save(mockAnyContext(), account).Return(nil).Once()
	store.EXPECT().Delete(mockAnyContext(), nightOwlKey).Return(nil)

	err := service.SetCredentials(context.Background(), SetCredentialsCommand{ID: "night.owl", Secret: "hunter2"})
	require.ErrorIs(t, err, deleteErr)
}

func TestAccountServiceSetCredentialsFailsWhenSecretStorePutFails(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	store := mocks.NewMockSecretStore(t)
	sessions := mocks.NewMockSessionStore(t)
	service := NewAccountService(repo, store, sessions)

	putErr := errors.New("put failed")
	repo.EXPECT().Definition(mockAnyContext(), domain.AccountID("night.owl")).Return(domain.Account{ID: "night.owl"}, nil)
	store.EXPECT().Put(mockAnyContext(), nightOwlKey, "hunter2").Return(putErr)

	err := service.SetCredentials(context.Background(), SetCredentialsCommand{ID: "night.owl", Secret: "hunter2"})
	require.ErrorIs(t, err, putErr)
}

func TestAccountServiceSetCredentialsCompensatesSecretWriteWhenSaveFails(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	store := mocks.NewMockSecretStore(t)
	sessions := mocks.NewMockSessionStore(t)
	service := NewAccountService(repo, store, sessions)

	saveErr := errors.New("save failed")
	rollbackErr := errors.New("rollback failed")
	repo.EXPECT().Definition(mockAnyContext(), domain.AccountID("night.owl")).Return(domain.Account{ID: "night.owl"}, nil)
	store.EXPECT().Put(mockAnyContext(), nightOwlKey, "hunter2").Return(nil)
	repo.EXPECT().Save(mockAnyContext(), domain.Account{ID: "night.owl", SecretRef: nightOwlKey}).Return(saveErr)
	store.EXPECT().Delete(mockAnyContext(), nightOwlKey).Return(rollbackErr)

	err := service.SetCredentials(context.Background(), SetCredentialsCommand{ID: "night.owl", Secret: "hunter2"})
	require.ErrorIs(t, err, saveErr)
	require.ErrorIs(t, err, rollbackErr)
}

func TestAccountServiceSetCredentialsValidatesInput(t *testing.T) {
	t.Parallel()

	service := NewAccountService(nil, nil, nil)

	require.Error(t, service.SetCredentials(context.Background(), SetCredentialsCommand{ID: " @ ", Secret: "x"}))
	require.Error(t, service.SetCredentials(context.Background(), SetCredentialsCommand{ID: "night.owl"}))
	require.ErrorIs(t, service.SetCredentials(context.Background(), SetCredentialsCommand{ID: "../night.owl", Secret: "x"}), domain.ErrInvalidIdentity)
}

func TestAccountServiceRemoveAccountSuccess(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	store := mocks.NewMockSecretStore(t)
	sessions := mocks.NewMockSessionStore(t)
	service := NewAccountService(repo, store, sessions)

	account := domain.Account{ID: "night.owl", SecretRef: nightOwlKey}
	repo.EXPECT().Definition(mockAnyContext(), domain.AccountID("night.owl")).Return(account, nil)
	repo.EXPECT().Remove(mockAnyContext(), domain.AccountID("night.owl")).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), nightOwlKey).Return(nil)
	sessions.EXPECT().Delete(mockAnyContext(), domain.AccountID("night.owl")).Return(nil)

	require.NoError(t, service.RemoveAccount(context.Background(), "night.owl"))
}

func TestAccountServiceRemoveAccountToleratesMissingSecret(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	store := mocks.NewMockSecretStore(t)
	sessions := mocks.NewMockSessionStore(t)
	service := NewAccountService(repo, store, sessions)

	account := domain.Account{ID: "night.owl", SecretRef: nightOwlKey}
	repo.EXPECT().Definition(mockAnyContext(), domain.AccountID("night.owl")).Return(account, nil)
	repo.EXPECT().Remove(mockAnyContext(), domain.AccountID("night.owl")).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), nightOwlKey).Return(domain.ErrSecretNotFound)
	sessions.EXPECT().Delete(mockAnyContext(), domain.AccountID("night.owl")).Return(nil)

	require.NoError(t, service.RemoveAccount(context.Background(), "night.owl"))
}

func TestAccountServiceRemoveAccountRestoresDefinitionWhenDeleteFails(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	store := mocks.NewMockSecretStore(t)
	sessions := mocks.NewMockSessionStore(t)
	service := NewAccountService(repo, store, sessions)

	deleteErr := errors.New("delete failed")
	account := domain.Account{ID: "night.owl", SecretRef: nightOwlKey}
	repo.EXPECT().Definition(mockAnyContext(), domain.AccountID("night.owl")).Return(account, nil)
	repo.EXPECT().Remove(mockAnyContext(), domain.AccountID("night.owl")).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), nightOwlKey).Return(deleteErr)
	repo.EXPECT().Save(mockAnyContext(), account).Return(nil)

	err := service.RemoveAccount(context.Background(), "night.owl")
	require.ErrorIs(t, err, deleteErr)
}

func TestAccountServiceRemoveAccountMissing(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	service := NewAccountService(repo, mocks.NewMockSecretStore(t), mocks.NewMockSessionStore(t))

	repo.EXPECT().Definition(mockAnyContext(), domain.AccountID("ghost")).Return(domain.Account{}, domain.ErrAccountNotFound)

	err := service.RemoveAccount(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountServiceCredentialsPersistAcrossServiceInstances(t *testing.T) {
	home := t.TempDir()
	cfg := viper.New()
	cfg.Set("accounts.path", filepath.Join(home, "accounts.toml"))

	store := filestore.NewStore(filepath.Join(home, "secrets"))
	repo, err := tomlrepo.NewCredentialRepository(cfg, store)
	require.NoError(t, err)
	sessions := sessionfile.NewStore(filepath.Join(home, "sessions"), nil)

	first := NewAccountService(repo, store, sessions)
	require.NoError(t, first.SetCredentials(context.Background(), SetCredentialsCommand{ID: "night.owl", Secret: "hunter2", TOTPSeed: "JBSWY3DPEHPK3PXP"}))

	reopened, err := tomlrepo.NewCredentialRepository(cfg, store)
	require.NoError(t, err)
	accounts, err := reopened.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, domain.AccountID("night.owl"), accounts[0].ID)
	assert.Equal(t, "hunter2", accounts[0].Secret)
	assert.Equal(t, nightOwlKey, accounts[0].SecretRef)
	assert.True(t, accounts[0].HasTOTP())

	second := NewAccountService(reopened, store, sessions)
	summaries, err := second.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []AccountSummary{{ID: "night.owl", SecretRef: nightOwlKey, TOTPConfigured: true}}, summaries)

	require.NoError(t, second.RemoveAccount(context.Background(), "night.owl"))
	_, err = store.Get(context.Background(), nightOwlKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func mockAnyContext() interface{} {
	return mock.Anything
}
