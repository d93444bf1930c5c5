package toml

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCatalogRoundTripDerivesPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo, err := NewChunkCatalogRepository(dir)
	require.NoError(t, err)

	empty, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)

	chunk := domain.Chunk{
		ID:          "a1b2c3d4",
		Filename:    "chunk_a1b2c3d4.mp4",
		Source:      "tape.mp4",
		StartOffset: 12.5,
		Duration:    15,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, repo.Save(context.Background(), map[string]domain.Chunk{chunk.ID: chunk}))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	chunk.Path = filepath.Join(dir, chunk.Filename)
	assert.Equal(t, map[string]domain.Chunk{chunk.ID: chunk}, loaded)
}
