package domain

import (
	"strings"
	"time"
)

const (
	ChunkFilePrefix = "chunk_"
	ChunkFileExt    = ".mp4"
)

// Chunk is a reusable base clip cut from a raw source video.
type Chunk struct {
	ID          string
	Filename    string
	Path        string
	Source      string
	StartOffset float64
	Duration    float64
	CreatedAt   time.Time
}

func ChunkFilename(id string) string {
	return ChunkFilePrefix + id + ChunkFileExt
}

// ChunkIDFromFilename extracts the id from chunk_<id>.mp4. ok is false for any
// other name.
func ChunkIDFromFilename(name string) (string, bool) {
	if !strings.HasPrefix(name, ChunkFilePrefix) || !strings.HasSuffix(name, ChunkFileExt) {
		return "", false
	}

	id := strings.TrimSuffix(strings.TrimPrefix(name, ChunkFilePrefix), ChunkFileExt)
	if id == "" {
		return "", false
	}

	return id, true
}

// PersonalizedArtifact is a per-target clip. It is not catalogued.
type PersonalizedArtifact struct {
	Path       string
	Filename   string
	ChunkID    string
	Target     string
	CampaignID CampaignID
	SizeBytes  int64
}
