package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	accountsPathKey  = "accounts.path"
	dataFileMode     = 0o600
	dataDirMode      = 0o700
	ghostConfigDir   = ".ghost"
	accountsFileName = "accounts.toml"

	envUsername = "GHOST_USERNAME"
	envPassword = "GHOST_PASSWORD"
	envTOTPSeed = "GHOST_TOTP_SEED"
	envProxy    = "GHOST_PROXY"
)

// CredentialRepository reads account definitions from accounts.toml. Secrets
// are inline or referenced through the secret store.
type CredentialRepository struct {
	path      string
	mu        *sync.RWMutex
	secrets   ports.SecretStore
	lookupEnv func(string) (string, bool)
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.AccountRepository = (*CredentialRepository)(nil)

func NewCredentialRepository(cfg *viper.Viper, secrets ports.SecretStore) (*CredentialRepository, error) {
	path, err := resolvePath(cfg, accountsPathKey, accountsFileName)
	if err != nil {
		return nil, err
	}

	return &CredentialRepository{
		path:      path,
		mu:        lockForPath(path),
		secrets:   secrets,
		lookupEnv: os.LookupEnv,
	}, nil
}

func (r *CredentialRepository) Path() string {
	return r.path
}

// List returns accounts in file order with secrets resolved. With no accounts
// file, a single account may come from GHOST_USERNAME and GHOST_PASSWORD.
func (r *CredentialRepository) List(ctx context.Context) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	file, err := r.readSchema()
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if len(file.Accounts) == 0 {
		if account, ok := r.accountFromEnv(); ok {
			return []domain.Account{account}, nil
		}
		return nil, nil
	}

	accounts := make([]domain.Account, 0, len(file.Accounts))
	seen := make(map[string]struct{}, len(file.Accounts))
	for _, entry := range file.Accounts {
		if _, ok := seen[entry.Identity]; ok {
			return nil, fmt.Errorf("duplicate account identity %q in %s", entry.Identity, r.path)
		}
		seen[entry.Identity] = struct{}{}

		account, err := r.resolve(ctx, entry)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// Save upserts an account definition. Inline secrets are dropped when a
// secret reference is present.
func (r *CredentialRepository) Save(ctx context.Context, account domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := account.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toAccountSchema(account)
	updated := false
	for i := range file.Accounts {
		if file.Accounts[i].Identity == encoded.Identity {
			file.Accounts[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Accounts = append(file.Accounts, encoded)
	}

	return writeTOMLFile(r.path, file)
}

// Definition returns the stored entry without resolving secrets.
func (r *CredentialRepository) Definition(ctx context.Context, id domain.AccountID) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Account{}, err
	}

	for _, entry := range file.Accounts {
		if entry.Identity == string(id) {
			return fromAccountSchema(entry), nil
		}
	}

	return domain.Account{}, domain.ErrAccountNotFound
}

func (r *CredentialRepository) Remove(ctx context.Context, id domain.AccountID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	kept := file.Accounts[:0]
	found := false
	for _, entry := range file.Accounts {
		if entry.Identity == string(id) {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return domain.ErrAccountNotFound
	}
	file.Accounts = kept

	return writeTOMLFile(r.path, file)
}

func (r *CredentialRepository) resolve(ctx context.Context, entry accountSchema) (domain.Account, error) {
	account := fromAccountSchema(entry)

	if account.Secret == "" && account.SecretRef != "" {
		secret, err := r.lookupSecret(ctx, account.SecretRef)
		if err != nil {
			return domain.Account{}, fmt.Errorf("resolve secret for %s: %w", account.ID, err)
		}
		account.Secret = secret
	}

	if account.TOTPSeed == "" && entry.TOTPRef != "" {
		seed, err := r.lookupSecret(ctx, entry.TOTPRef)
		if err != nil {
			return domain.Account{}, fmt.Errorf("resolve totp seed for %s: %w", account.ID, err)
		}
		account.TOTPSeed = seed
	}

	if err := account.Validate(); err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

func (r *CredentialRepository) lookupSecret(ctx context.Context, ref string) (string, error) {
	if r.secrets == nil {
		return "", fmt.Errorf("secret reference %q: %w", ref, domain.ErrSecretNotFound)
	}

	return r.secrets.Get(ctx, ref)
}

func (r *CredentialRepository) accountFromEnv() (domain.Account, bool) {
	username, ok := r.lookupEnv(envUsername)
	if !ok || strings.TrimSpace(username) == "" {
		return domain.Account{}, false
	}
	password, ok := r.lookupEnv(envPassword)
	if !ok || password == "" {
		return domain.Account{}, false
	}

	seed, _ := r.lookupEnv(envTOTPSeed)
	proxy, _ := r.lookupEnv(envProxy)

	return domain.Account{
		ID:       domain.AccountID(strings.TrimSpace(username)),
		Secret:   password,
		TOTPSeed: strings.TrimSpace(seed),
		Proxy:    strings.TrimSpace(proxy),
	}, true
}

func (r *CredentialRepository) readSchema() (accountsFileSchema, error) {
	var file accountsFileSchema
	if err := readTOMLFile(r.path, "accounts", &file); err != nil {
		return accountsFileSchema{}, err
	}
	if err := file.validateVersion(); err != nil {
		return accountsFileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func resolvePath(cfg *viper.Viper, key string, defaultFile string) (string, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(key)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, ghostConfigDir, defaultFile)
	}

	return normalizePath(path)
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

// readTOMLFile leaves out untouched when the file does not exist.
func readTOMLFile(path string, label string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s file: %w", label, err)
	}

	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s file: %w", label, err)
	}

	return nil
}

func writeTOMLFile(path string, file any) error {
	if err := os.MkdirAll(filepath.Dir(path), dataDirMode); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tempFile.Chmod(dataFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}

	cleanup = false

	if err := os.Chmod(path, dataFileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}

	return nil
}

func toAccountSchema(account domain.Account) accountSchema {
	schema := accountSchema{
		Identity:  string(account.ID),
		SecretRef: account.SecretRef,
		Proxy:     account.Proxy,
		TOTPSeed:  account.TOTPSeed,
	}
	if account.SecretRef == "" {
		schema.Secret = account.Secret
	}

	return schema
}

func fromAccountSchema(schema accountSchema) domain.Account {
	return domain.Account{
		ID:        domain.AccountID(strings.TrimSpace(schema.Identity)),
		Secret:    schema.Secret,
		SecretRef: strings.TrimSpace(schema.SecretRef),
		Proxy:     strings.TrimSpace(schema.Proxy),
		TOTPSeed:  strings.TrimSpace(schema.TOTPSeed),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
