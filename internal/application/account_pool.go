package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
)

// Session is a live authenticated client bound to one account.
type Session struct {
	Account         domain.Account
	Client          ports.AccountClient
	AuthenticatedAt time.Time
	// Restored is true when the session came from the cache without a login.
	Restored bool
}

func (s *Session) Identity() domain.AccountID {
	return s.Account.ID
}

// AccountPool rotates through configured accounts, authenticating each one on
// first use and caching the live session for the rest of the process.
type AccountPool struct {
	accounts []domain.Account
	sessions ports.SessionStore
	clients  ports.AccountClientFactory
	clock    ports.Clock
	logger   *zap.Logger

	auth singleflight.Group

	mu       sync.Mutex
	cursor   int
	live     map[domain.AccountID]*Session
	leased   map[domain.AccountID]bool
	released chan struct{}
}

func NewAccountPool(accounts []domain.Account, sessions ports.SessionStore, clients ports.AccountClientFactory, clock ports.Clock, logger *zap.Logger) *AccountPool {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AccountPool{
		accounts: append([]domain.Account(nil), accounts...),
		sessions: sessions,
		clients:  clients,
		clock:    clock,
		logger:   logger,
		live:     make(map[domain.AccountID]*Session, len(accounts)),
		leased:   make(map[domain.AccountID]bool, len(accounts)),
		released: make(chan struct{}),
	}
}

// LoadAccountPool reads the credential store once and builds a pool over it.
func LoadAccountPool(ctx context.Context, creds ports.CredentialStore, sessions ports.SessionStore, clients ports.AccountClientFactory, clock ports.Clock, logger *zap.Logger) (*AccountPool, error) {
	accounts, err := creds.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	return NewAccountPool(accounts, sessions, clients, clock, logger), nil
}

func (p *AccountPool) Accounts() int {
	return len(p.accounts)
}

// SelectAccount returns a session for preferred when set. Otherwise it
// advances the rotation cursor and returns the next account that
// authenticates, trying each account at most once.
func (p *AccountPool) SelectAccount(ctx context.Context, preferred domain.AccountID) (*Session, error) {
	if len(p.accounts) == 0 {
		return nil, domain.ErrNoAccountsAvailable
	}

	if preferred != "" {
		account, ok := p.find(preferred)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, preferred)
		}
		return p.authenticate(ctx, account)
	}

	var errs []error
	for range p.accounts {
		p.mu.Lock()
		account := p.accounts[p.cursor%len(p.accounts)]
		p.cursor++
		p.mu.Unlock()

		session, err := p.authenticate(ctx, account)
		if err == nil {
			return session, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		p.logger.Warn("account unavailable, trying next", zap.String("account", string(account.ID)), zap.Error(err))
		errs = append(errs, err)
	}

	return nil, errors.Join(append([]error{domain.ErrNoAccountsAvailable}, errs...)...)
}

// ForceReauthenticate discards any cached session for identity and logs in
// again.
func (p *AccountPool) ForceReauthenticate(ctx context.Context, identity domain.AccountID) (*Session, error) {
	account, ok := p.find(identity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, identity)
	}

	result, err, _ := p.auth.Do("reauth:"+string(identity), func() (any, error) {
		p.mu.Lock()
		delete(p.live, identity)
		p.mu.Unlock()

		if err := p.sessions.Delete(ctx, identity); err != nil {
			p.logger.Warn("drop cached session", zap.String("account", string(identity)), zap.Error(err))
		}

		client, err := p.clients.NewClient(account)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrAuthFailed, identity, err)
		}

		session, err := p.login(ctx, account, client)
		if err != nil {
			return nil, err
		}
		p.logger.Info("account re-authenticated", zap.String("account", string(identity)))

		return session, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Session), nil
}

// Status reports every account in load order. It never authenticates.
func (p *AccountPool) Status() []domain.AccountStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]domain.AccountStatus, 0, len(p.accounts))
	for _, account := range p.accounts {
		_, authenticated := p.live[account.ID]
		statuses = append(statuses, domain.AccountStatus{
			ID:              account.ID,
			Authenticated:   authenticated,
			ProxyConfigured: account.HasProxy(),
			InUse:           p.leased[account.ID],
		})
	}

	return statuses
}

func (p *AccountPool) PoolStatus() domain.PoolStatus {
	statuses := p.Status()

	p.mu.Lock()
	cursor := 0
	if len(p.accounts) > 0 {
		cursor = p.cursor % len(p.accounts)
	}
	p.mu.Unlock()

	return domain.PoolStatus{Accounts: statuses, Cursor: cursor}
}

// Lease is exclusive use of one authenticated account. Release is safe to
// call more than once.
type Lease struct {
	Session *Session

	pool *AccountPool
	once sync.Once
}

func (l *Lease) Release() {
	l.once.Do(func() {
		l.pool.release(l.Session.Identity())
	})
}

// Checkout leases an account for exclusive use. Busy accounts are skipped and
// the call blocks while every remaining candidate is leased elsewhere.
func (p *AccountPool) Checkout(ctx context.Context, preferred domain.AccountID) (*Lease, error) {
	if len(p.accounts) == 0 {
		return nil, domain.ErrNoAccountsAvailable
	}
	if preferred != "" {
		if _, ok := p.find(preferred); !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, preferred)
		}
	}

	failed := make(map[domain.AccountID]struct{}, len(p.accounts))
	var errs []error

	for {
		p.mu.Lock()
		account, ok, exhausted := p.nextFreeLocked(preferred, failed)
		if exhausted {
			p.mu.Unlock()
			return nil, errors.Join(append([]error{domain.ErrNoAccountsAvailable}, errs...)...)
		}
		if !ok {
			wait := p.released
			p.mu.Unlock()

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-wait:
			}
			continue
		}
		p.leased[account.ID] = true
		p.mu.Unlock()

		session, err := p.authenticate(ctx, account)
		if err == nil {
			return &Lease{Session: session, pool: p}, nil
		}

		p.release(account.ID)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		p.logger.Warn("account unavailable for checkout", zap.String("account", string(account.ID)), zap.Error(err))
		failed[account.ID] = struct{}{}
		errs = append(errs, err)
	}
}

// nextFreeLocked picks the next unleased account that has not already failed.
// exhausted is true when no candidate is left at all.
func (p *AccountPool) nextFreeLocked(preferred domain.AccountID, failed map[domain.AccountID]struct{}) (domain.Account, bool, bool) {
	pending := 0
	for i := range p.accounts {
		index := (p.cursor + i) % len(p.accounts)
		account := p.accounts[index]
		if preferred != "" && account.ID != preferred {
			continue
		}
		if _, ok := failed[account.ID]; ok {
			continue
		}
		pending++
		if p.leased[account.ID] {
			continue
		}
		if preferred == "" {
			p.cursor = index + 1
		}
		return account, true, false
	}

	return domain.Account{}, false, pending == 0
}

func (p *AccountPool) release(id domain.AccountID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.leased, id)
	close(p.released)
	p.released = make(chan struct{})
}

func (p *AccountPool) find(id domain.AccountID) (domain.Account, bool) {
	for _, account := range p.accounts {
		if account.ID == id {
			return account, true
		}
	}
	return domain.Account{}, false
}

func (p *AccountPool) cached(id domain.AccountID) (*Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	session, ok := p.live[id]
	return session, ok
}

// authenticate returns the live session for account, restoring it from the
// session cache or logging in when needed. Concurrent calls for the same
// account share one attempt.
func (p *AccountPool) authenticate(ctx context.Context, account domain.Account) (*Session, error) {
	if session, ok := p.cached(account.ID); ok {
		return session, nil
	}

	result, err, _ := p.auth.Do(string(account.ID), func() (any, error) {
		if session, ok := p.cached(account.ID); ok {
			return session, nil
		}

		client, err := p.clients.NewClient(account)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrAuthFailed, account.ID, err)
		}

		if session, ok := p.restore(ctx, account, client); ok {
			return session, nil
		}

		return p.login(ctx, account, client)
	})
	if err != nil {
		return nil, err
	}

	return result.(*Session), nil
}

func (p *AccountPool) restore(ctx context.Context, account domain.Account, client ports.AccountClient) (*Session, bool) {
	blob, err := p.sessions.Load(ctx, account.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			p.logger.Debug("session cache unreadable", zap.String("account", string(account.ID)), zap.Error(err))
		}
		return nil, false
	}

	if err := client.LoadSession(ctx, blob); err != nil {
		p.logger.Debug("cached session rejected", zap.String("account", string(account.ID)), zap.Error(err))
		return nil, false
	}
	if err := client.Probe(ctx); err != nil {
		p.logger.Debug("cached session failed probe", zap.String("account", string(account.ID)), zap.Error(err))
		return nil, false
	}

	session := &Session{Account: account, Client: client, AuthenticatedAt: p.clock.Now(), Restored: true}
	p.store(session)
	p.logger.Debug("session restored from cache", zap.String("account", string(account.ID)))

	return session, true
}

func (p *AccountPool) login(ctx context.Context, account domain.Account, client ports.AccountClient) (*Session, error) {
	err := client.Login(ctx, string(account.ID), account.Secret, "")
	if errors.Is(err, domain.ErrTwoFactorRequired) {
		if !account.HasTOTP() {
			return nil, fmt.Errorf("%w: login %s: %w", domain.ErrAuthFailed, account.ID, err)
		}

		code, codeErr := totp.GenerateCode(account.TOTPSeed, p.clock.Now())
		if codeErr != nil {
			return nil, fmt.Errorf("%w: %s: generate totp code: %w", domain.ErrAuthFailed, account.ID, codeErr)
		}
		err = client.Login(ctx, string(account.ID), account.Secret, code)
	}
	if err != nil {
		if errors.Is(err, domain.ErrAuthFailed) {
			return nil, fmt.Errorf("login %s: %w", account.ID, err)
		}
		return nil, fmt.Errorf("%w: login %s: %w", domain.ErrAuthFailed, account.ID, err)
	}

	blob, err := client.DumpSession(ctx)
	if err != nil {
		p.logger.Warn("dump session", zap.String("account", string(account.ID)), zap.Error(err))
	} else if err := p.sessions.Save(ctx, account.ID, blob); err != nil {
		p.logger.Warn("persist session", zap.String("account", string(account.ID)), zap.Error(err))
	}

	session := &Session{Account: account, Client: client, AuthenticatedAt: p.clock.Now()}
	p.store(session)
	p.logger.Info("account authenticated", zap.String("account", string(account.ID)))

	return session, nil
}

func (p *AccountPool) store(session *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.live[session.Account.ID] = session
}
