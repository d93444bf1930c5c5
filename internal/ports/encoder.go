package ports

import (
	"context"

	"github.com/bnema/ghostreel/internal/domain"
)

type Encoder interface {
	// Probe returns the media duration in seconds.
	Probe(ctx context.Context, path string) (float64, error)
	Transcode(ctx context.Context, job domain.TranscodeJob) error
}
