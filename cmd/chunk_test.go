package cmd

import (
	"testing"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFilterChunks(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	chunks := []domain.Chunk{
		{ID: "a", Source: "tape.mp4", CreatedAt: base},
		{ID: "b", Source: "other.mp4", CreatedAt: base.Add(time.Hour)},
		{ID: "c", Source: "tape.mp4", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "d", Source: "tape.mp4", CreatedAt: base.Add(3 * time.Hour)},
	}

	ids := func(in []domain.Chunk) []string {
		out := make([]string, 0, len(in))
		for _, chunk := range in {
			out = append(out, chunk.ID)
		}
		return out
	}

	assert.Equal(t, []string{"d", "c", "b", "a"}, ids(filterChunks(chunks, "", 0)))
	assert.Equal(t, []string{"d", "c", "a"}, ids(filterChunks(chunks, "tape.mp4", 0)))
	assert.Equal(t, []string{"d", "c"}, ids(filterChunks(chunks, "tape.mp4", 2)))
	assert.Empty(t, filterChunks(chunks, "missing.mp4", 5))
}
