package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports/mocks"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTOTPSeed = "JBSWY3DPEHPK3PXP"

func newTestPool(platform *fakePlatform, sessions *memorySessions, accounts []domain.Account) *AccountPool {
	return NewAccountPool(accounts, sessions, fakeFactory{platform: platform}, fixedClock{now: testNow}, nil)
}

func TestAccountPoolRoundRobinVisitsEveryAccountInOrder(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(passwordsFor("a", "b", "c"))
	pool := newTestPool(platform, newMemorySessions(), accountsFor("a", "b", "c"))

	var picked []domain.AccountID
	for range 4 {
		session, err := pool.SelectAccount(context.Background(), "")
		require.NoError(t, err)
		picked = append(picked, session.Identity())
	}

	assert.Equal(t, []domain.AccountID{"a", "b", "c", "a"}, picked)
	assert.Equal(t, 1, platform.loginCount("a"))
	assert.Equal(t, 1, platform.loginCount("b"))
	assert.Equal(t, 1, platform.loginCount("c"))
}

func TestAccountPoolRestoresCachedSessionWithoutLogin(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(passwordsFor("a"))
	platform.validTokens["tok-cached"] = true
	sessions := newMemorySessions()
	sessions.blobs["a"] = []byte(`{"token":"tok-cached"}`)
	pool := newTestPool(platform, sessions, accountsFor("a"))

	session, err := pool.SelectAccount(context.Background(), "")
	require.NoError(t, err)

	assert.True(t, session.Restored)
	assert.Equal(t, 0, platform.loginCount("a"))
	assert.Equal(t, 1, platform.probes["a"])

	_, err = pool.SelectAccount(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, platform.probes["a"])
}

func TestAccountPoolLogsInWhenCachedSessionIsStale(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(passwordsFor("a"))
	sessions := newMemorySessions()
	sessions.blobs["a"] = []byte(`{"token":"tok-expired"}`)
	pool := newTestPool(platform, sessions, accountsFor("a"))

	session, err := pool.SelectAccount(context.Background(), "")
	require.NoError(t, err)

	assert.False(t, session.Restored)
	assert.Equal(t, 1, platform.loginCount("a"))
	assert.JSONEq(t, `{"token":"tok-a-1"}`, string(sessions.blobs["a"]))
}

func TestAccountPoolDerivesTOTPCodeOnSecondFactorChallenge(t *testing.T) {
	client := mocks.NewMockAccountClient(t)
	factory := mocks.NewMockAccountClientFactory(t)
	sessions := mocks.NewMockSessionStore(t)

	account := domain.Account{ID: "night.owl", Secret: "hunter2", TOTPSeed: testTOTPSeed}
	code, err := totp.GenerateCode(testTOTPSeed, testNow)
	require.NoError(t, err)

	factory.EXPECT().NewClient(account).Return(client, nil).Once()
	sessions.EXPECT().Load(mockAnyContext(), domain.AccountID("night.owl")).Return(nil, domain.ErrSessionNotFound).Once()
	client.EXPECT().Login(mockAnyContext(), "night.owl", "hunter2", "").Return(domain.ErrTwoFactorRequired).Once()
	client.EXPECT().Login(mockAnyContext(), "night.owl", "hunter2", code).Return(nil).Once()
	client.EXPECT().DumpSession(mockAnyContext()).Return([]byte(`{"token":"t"}`), nil).Once()
	sessions.EXPECT().Save(mockAnyContext(), domain.AccountID("night.owl"), []byte(`{"token":"t"}`)).Return(nil).Once()

	pool := NewAccountPool([]domain.Account{account}, sessions, factory, fixedClock{now: testNow}, nil)

	session, err := pool.SelectAccount(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID("night.owl"), session.Identity())
}

func TestAccountPoolSecondFactorWithoutSeedFails(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(passwordsFor("a"))
	platform.totpRequired["a"] = true
	pool := newTestPool(platform, newMemorySessions(), accountsFor("a"))

	_, err := pool.SelectAccount(context.Background(), "a")
	require.ErrorIs(t, err, domain.ErrTwoFactorRequired)
	assert.ErrorIs(t, err, domain.ErrAuthFailed)

	_, err = pool.SelectAccount(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNoAccountsAvailable)
}

func TestAccountPoolSelectionSkipsFailingAccounts(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(map[string]string{"a": "wrong", "b": "pw-b"})
	pool := newTestPool(platform, newMemorySessions(), accountsFor("a", "b"))

	session, err := pool.SelectAccount(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID("b"), session.Identity())
}

func TestAccountPoolSelectionIsBoundedWhenEveryAccountFails(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(map[string]string{})
	pool := newTestPool(platform, newMemorySessions(), accountsFor("a", "b", "c"))

	_, err := pool.SelectAccount(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrNoAccountsAvailable)
	assert.ErrorIs(t, err, domain.ErrAuthFailed)

	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, 1, platform.loginCount(id), id)
	}
}

func TestAccountPoolEmpty(t *testing.T) {
	t.Parallel()

	pool := newTestPool(newFakePlatform(nil), newMemorySessions(), nil)

	_, err := pool.SelectAccount(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrNoAccountsAvailable)

	_, err = pool.Checkout(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrNoAccountsAvailable)
	assert.Zero(t, pool.Accounts())
}

func TestAccountPoolPreferredAccountSkipsRotation(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(passwordsFor("a", "b"))
	pool := newTestPool(platform, newMemorySessions(), accountsFor("a", "b"))

	session, err := pool.SelectAccount(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID("b"), session.Identity())

	session, err = pool.SelectAccount(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID("a"), session.Identity())

	_, err = pool.SelectAccount(context.Background(), "nobody")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountPoolConcurrentSelectionLogsInOnce(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(passwordsFor("a"))
	pool := newTestPool(platform, newMemorySessions(), accountsFor("a"))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.SelectAccount(context.Background(), "a")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, platform.loginCount("a"))
}

func TestAccountPoolForceReauthenticateReplacesSession(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(passwordsFor("a"))
	sessions := newMemorySessions()
	pool := newTestPool(platform, sessions, accountsFor("a"))

	first, err := pool.SelectAccount(context.Background(), "")
	require.NoError(t, err)

	fresh, err := pool.ForceReauthenticate(context.Background(), "a")
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	assert.Equal(t, 2, platform.loginCount("a"))
	assert.JSONEq(t, `{"token":"tok-a-2"}`, string(sessions.blobs["a"]))

	again, err := pool.SelectAccount(context.Background(), "a")
	require.NoError(t, err)
	assert.Same(t, fresh, again)
}

func TestAccountPoolForceReauthenticateFailureWrapsAuthFailed(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(map[string]string{"a": "rotated"})
	pool := newTestPool(platform, newMemorySessions(), accountsFor("a"))

	_, err := pool.ForceReauthenticate(context.Background(), "a")
	require.ErrorIs(t, err, domain.ErrAuthFailed)

	_, err = pool.ForceReauthenticate(context.Background(), "zzz")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountPoolStatusNeverAuthenticates(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(passwordsFor("a", "b"))
	accounts := accountsFor("a", "b")
	accounts[1].Proxy = "http://proxy:3128"
	pool := newTestPool(platform, newMemorySessions(), accounts)

	assert.Equal(t, []domain.AccountStatus{
		{ID: "a"},
		{ID: "b", ProxyConfigured: true},
	}, pool.Status())
	assert.Zero(t, platform.loginCount("a"))

	lease, err := pool.Checkout(context.Background(), "")
	require.NoError(t, err)

	status := pool.PoolStatus()
	assert.Equal(t, 1, status.AuthenticatedCount())
	assert.Equal(t, domain.AccountStatus{ID: "a", Authenticated: true, InUse: true}, status.Accounts[0])
	assert.Equal(t, 1, status.Cursor)

	lease.Release()
	lease.Release()
	assert.False(t, pool.Status()[0].InUse)
}

func TestAccountPoolCheckoutSkipsLeasedAccounts(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(passwordsFor("a", "b"))
	pool := newTestPool(platform, newMemorySessions(), accountsFor("a", "b"))

	first, err := pool.Checkout(context.Background(), "")
	require.NoError(t, err)
	second, err := pool.Checkout(context.Background(), "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Session.Identity(), second.Session.Identity())
	first.Release()
	second.Release()
}

func TestAccountPoolCheckoutWaitsForRelease(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(passwordsFor("a"))
	pool := newTestPool(platform, newMemorySessions(), accountsFor("a"))

	held, err := pool.Checkout(context.Background(), "")
	require.NoError(t, err)

	acquired := make(chan *Lease, 1)
	go func() {
		lease, err := pool.Checkout(context.Background(), "")
		assert.NoError(t, err)
		acquired <- lease
	}()

	select {
	case <-acquired:
		t.Fatal("checkout succeeded while the only account was leased")
	case <-time.After(50 * time.Millisecond):
	}

	held.Release()

	select {
	case lease := <-acquired:
		require.NotNil(t, lease)
		assert.Equal(t, domain.AccountID("a"), lease.Session.Identity())
		lease.Release()
	case <-time.After(2 * time.Second):
		t.Fatal("checkout did not resume after release")
	}
}

func TestAccountPoolCheckoutHonorsContext(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(passwordsFor("a"))
	pool := newTestPool(platform, newMemorySessions(), accountsFor("a"))

	held, err := pool.Checkout(context.Background(), "a")
	require.NoError(t, err)
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = pool.Checkout(ctx, "a")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAccountPoolCheckoutGivesUpWhenEveryAccountFails(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(map[string]string{"b": "pw-b"})
	pool := newTestPool(platform, newMemorySessions(), accountsFor("a", "b"))

	held, err := pool.Checkout(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID("b"), held.Session.Identity())
	held.Release()

	platform.mu.Lock()
	platform.passwords = map[string]string{}
	platform.mu.Unlock()

	_, err = pool.Checkout(context.Background(), "a")
	require.ErrorIs(t, err, domain.ErrNoAccountsAvailable)
}

func TestLoadAccountPoolUsesCredentialStore(t *testing.T) {
	creds := mocks.NewMockCredentialStore(t)
	creds.EXPECT().List(mock.Anything).Return(accountsFor("a", "b"), nil).Once()

	pool, err := LoadAccountPool(context.Background(), creds, newMemorySessions(), fakeFactory{platform: newFakePlatform(nil)}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Accounts())
}
