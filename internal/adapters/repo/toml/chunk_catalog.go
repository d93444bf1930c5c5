package toml

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
)

const chunksCatalogFileName = "chunks.toml"

// ChunkCatalogRepository persists chunk metadata next to the chunk files.
// Chunk.Path is derived from the directory and is not stored.
type ChunkCatalogRepository struct {
	dir  string
	path string
	mu   *sync.RWMutex
}

var _ ports.ChunkCatalog = (*ChunkCatalogRepository)(nil)

func NewChunkCatalogRepository(chunkDir string) (*ChunkCatalogRepository, error) {
	dir, err := normalizePath(chunkDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, chunksCatalogFileName)
	return &ChunkCatalogRepository{dir: dir, path: path, mu: lockForPath(path)}, nil
}

func (r *ChunkCatalogRepository) Load(ctx context.Context) (map[string]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var file chunksFileSchema
	if err := readTOMLFile(r.path, "chunks", &file); err != nil {
		return nil, err
	}
	if err := file.validateVersion(); err != nil {
		return nil, err
	}
	file.applyDefaults()

	chunks := make(map[string]domain.Chunk, len(file.Chunks))
	for id, entry := range file.Chunks {
		filename := entry.Filename
		if filename == "" {
			filename = domain.ChunkFilename(id)
		}
		chunks[id] = domain.Chunk{
			ID:          id,
			Filename:    filename,
			Path:        filepath.Join(r.dir, filename),
			Source:      entry.Source,
			StartOffset: entry.StartOffset,
			Duration:    entry.Duration,
			CreatedAt:   parseTime(entry.CreatedAt),
		}
	}

	return chunks, nil
}

func (r *ChunkCatalogRepository) Save(ctx context.Context, chunks map[string]domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := chunksFileSchema{Chunks: make(map[string]chunkSchema, len(chunks))}
	file.applyDefaults()
	for id, chunk := range chunks {
		file.Chunks[id] = chunkSchema{
			Filename:    chunk.Filename,
			Source:      chunk.Source,
			StartOffset: chunk.StartOffset,
			Duration:    chunk.Duration,
			CreatedAt:   formatTime(chunk.CreatedAt),
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return writeTOMLFile(r.path, file)
}
