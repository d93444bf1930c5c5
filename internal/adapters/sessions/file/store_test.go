package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func TestStoreSaveLoadRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root, fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)})
	blob := []byte(`{"token":"abc","cookies":{"sid":"1"}}`)

	require.NoError(t, store.Save(context.Background(), "night.owl", blob))

	got, err := store.Load(context.Background(), "night.owl")
	require.NoError(t, err)
	assert.JSONEq(t, string(blob), string(got))

	info, err := os.Stat(filepath.Join(root, "night.owl.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(sessionFileMode), info.Mode().Perm())
}

func TestStoreSaveWrapsNonJSONBlob(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir(), nil)

	require.NoError(t, store.Save(context.Background(), "night.owl", []byte("raw-token")))

	got, err := store.Load(context.Background(), "night.owl")
	require.NoError(t, err)
	assert.Equal(t, `"raw-token"`, string(got))
}

func TestStoreLoadMissingSession(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir(), nil)

	_, err := store.Load(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStoreLoadRejectsForeignIdentity(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root, nil)
	require.NoError(t, store.Save(context.Background(), "alpha", []byte(`{"token":"a"}`)))
	require.NoError(t, os.Rename(filepath.Join(root, "alpha.json"), filepath.Join(root, "beta.json")))

	_, err := store.Load(context.Background(), "beta")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir(), nil)
	require.NoError(t, store.Save(context.Background(), "alpha", []byte(`{}`)))

	require.NoError(t, store.Delete(context.Background(), "alpha"))
	require.NoError(t, store.Delete(context.Background(), "alpha"))

	_, err := store.Load(context.Background(), "alpha")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStoreRejectsInvalidIdentities(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir(), nil)
	for _, id := range []domain.AccountID{"", "  ", "../x", "a/b", ".."} {
		err := store.Save(context.Background(), id, []byte(`{}`))
		assert.Error(t, err, "identity %q", id)
	}
}
