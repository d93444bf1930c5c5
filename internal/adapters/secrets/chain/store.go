package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/ghostreel/internal/adapters/secrets/file"
	passstore "github.com/bnema/ghostreel/internal/adapters/secrets/pass"
	"github.com/bnema/ghostreel/internal/ports"
	"go.uber.org/zap"
)

// Store tries the primary backend first and falls back on any error except
// context cancellation.
type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
	logger   *zap.Logger
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

func NewStore(primary ports.SecretStore, fallback ports.SecretStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.SecretStore, fallback ports.SecretStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback, logger: zap.NewNop()}, nil
}

func NewPassFirstWithFileFallback(fileRoot string, logger *zap.Logger) (*Store, error) {
	store, err := NewStoreChecked(passstore.NewStore(), filestore.NewStore(fileRoot))
	if err != nil {
		return nil, err
	}
	if logger != nil {
		store.logger = logger
	}

	return store, nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	_, err := s.withFallback(ctx, "put", key, func(store ports.SecretStore) (string, error) {
		return "", store.Put(ctx, key, value)
	})
	return err
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.withFallback(ctx, "get", key, func(store ports.SecretStore) (string, error) {
		return store.Get(ctx, key)
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.withFallback(ctx, "delete", key, func(store ports.SecretStore) (string, error) {
		return "", store.Delete(ctx, key)
	})
	return err
}

func (s *Store) withFallback(ctx context.Context, op string, key string, call func(ports.SecretStore) (string, error)) (string, error) {
	value, err := call(s.primary)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) || ctx.Err() != nil {
		return "", err
	}

	s.logger.Debug("secret primary backend failed, using fallback",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)

	fallbackValue, fallbackErr := call(s.fallback)
	if fallbackErr == nil {
		return fallbackValue, nil
	}

	return "", fmt.Errorf("primary backend %s failed: %w; fallback backend %s failed: %w", op, err, op, fallbackErr)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
