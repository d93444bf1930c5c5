package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
)

const (
	storeDirMode    = 0o700
	sessionFileMode = 0o600
	sessionFileExt  = ".json"
	tempFilePattern = ".session-*.json.tmp"
)

// Store caches one session blob per account under root/<identity>.json.
// The blob is opaque; it is wrapped in a small envelope so a truncated or
// foreign file is rejected instead of handed to the client.
type Store struct {
	root  string
	mu    sync.RWMutex
	clock ports.Clock
}

var _ ports.SessionStore = (*Store)(nil)

type envelope struct {
	Identity string          `json:"identity"`
	SavedAt  time.Time       `json:"saved_at"`
	Session  json.RawMessage `json:"session"`
}

func NewStore(root string, clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Store{root: filepath.Clean(root), clock: clock}
}

func (s *Store) Load(ctx context.Context, id domain.AccountID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if env.Identity != string(id) || len(env.Session) == 0 {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}

	return []byte(env.Session), nil
}

func (s *Store) Save(ctx context.Context, id domain.AccountID, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathFor(id)
	if err != nil {
		return err
	}

	session := json.RawMessage(blob)
	if !json.Valid(blob) {
		encoded, err := json.Marshal(string(blob))
		if err != nil {
			return fmt.Errorf("encode session %s: %w", id, err)
		}
		session = encoded
	}

	data, err := json.MarshalIndent(envelope{
		Identity: string(id),
		SavedAt:  s.clock.Now().UTC(),
		Session:  session,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return writeAtomic(path, data)
}

func (s *Store) Delete(ctx context.Context, id domain.AccountID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathFor(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session %s: %w", id, err)
	}

	return nil
}

func (s *Store) pathFor(id domain.AccountID) (string, error) {
	trimmed := strings.TrimSpace(string(id))
	if trimmed == "" {
		return "", errors.New("account identity is empty")
	}
	if strings.ContainsAny(trimmed, `/\`) || trimmed == "." || trimmed == ".." {
		return "", fmt.Errorf("invalid account identity %q", id)
	}

	return filepath.Join(s.root, trimmed+sessionFileExt), nil
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), storeDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
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
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tempFile.Chmod(sessionFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	cleanup = false
	return nil
}
