package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
)

const (
	chunkSafetyMargin   = 5.0
	minChunkSeconds     = 13
	maxChunkSeconds     = 20
	chunkEncodeTimeout  = 120 * time.Second
	chunkVideoFilter    = "crop=ih*9/16:ih,scale=1080:1920"
	chunkLogoFilter     = "[0:v]crop=ih*9/16:ih,scale=1080:1920[vid];[1:v]scale=iw*0.88:ih*0.88[logo];[vid][logo]overlay=x=(W-w)/2:y=H*0.075:enable='gte(t,7)'"
	chunkUnknownSource  = "unknown"
)

var sourceExtensions = map[string]bool{".mp4": true, ".avi": true, ".mkv": true}

type ChunkLibraryConfig struct {
	RawDir   string
	ChunkDir string
	LogoPath string
}

type ChunkRequest struct {
	// Source is a raw-dir filename or a video path. Empty picks one at random.
	Source string
	// Duration in seconds. Zero picks a whole number in [13, 20].
	Duration float64
}

type BatchResult struct {
	Created []domain.Chunk
	Errors  []string
}

type PurgeResult struct {
	Removed []string
	Failed  []string
}

// ChunkLibrary cuts reusable base clips out of raw source videos and keeps a
// catalog of them next to the files.
type ChunkLibrary struct {
	cfg     ChunkLibraryConfig
	encoder ports.Encoder
	catalog ports.ChunkCatalog
	clock   ports.Clock
	random  Random
	logger  *zap.Logger

	mu sync.Mutex
}

func NewChunkLibrary(cfg ChunkLibraryConfig, encoder ports.Encoder, catalog ports.ChunkCatalog, clock ports.Clock, random Random, logger *zap.Logger) *ChunkLibrary {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ChunkLibrary{
		cfg:     cfg,
		encoder: encoder,
		catalog: catalog,
		clock:   clock,
		random:  defaultRandom(random),
		logger:  logger,
	}
}

// ListAvailable joins the chunk files on disk with the catalog. Entries whose
// file is gone are pruned and files missing from the catalog are added.
func (l *ChunkLibrary) ListAvailable(ctx context.Context) ([]domain.Chunk, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.syncLocked(ctx)
}

func (l *ChunkLibrary) syncLocked(ctx context.Context) ([]domain.Chunk, error) {
	catalog, err := l.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chunk catalog: %w", err)
	}
	if catalog == nil {
		catalog = make(map[string]domain.Chunk)
	}

	files, err := filepath.Glob(filepath.Join(l.cfg.ChunkDir, domain.ChunkFilePrefix+"*"+domain.ChunkFileExt))
	if err != nil {
		return nil, fmt.Errorf("list chunk files: %w", err)
	}

	onDisk := make(map[string]string, len(files))
	for _, file := range files {
		if id, ok := domain.ChunkIDFromFilename(filepath.Base(file)); ok {
			onDisk[id] = file
		}
	}

	changed := false
	for id := range catalog {
		if _, ok := onDisk[id]; !ok {
			delete(catalog, id)
			changed = true
		}
	}
	for id, file := range onDisk {
		entry, ok := catalog[id]
		if ok {
			entry.Path = file
			catalog[id] = entry
			continue
		}

		createdAt := l.clock.Now()
		if info, statErr := os.Stat(file); statErr == nil {
			createdAt = info.ModTime()
		}
		catalog[id] = domain.Chunk{
			ID:        id,
			Filename:  filepath.Base(file),
			Path:      file,
			Source:    chunkUnknownSource,
			CreatedAt: createdAt,
		}
		changed = true
	}

	if changed {
		if err := l.catalog.Save(ctx, catalog); err != nil {
			return nil, fmt.Errorf("save chunk catalog: %w", err)
		}
	}

	chunks := make([]domain.Chunk, 0, len(catalog))
	for _, chunk := range catalog {
		chunks = append(chunks, chunk)
	}
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].CreatedAt.Equal(chunks[j].CreatedAt) {
			return chunks[i].ID < chunks[j].ID
		}
		return chunks[i].CreatedAt.Before(chunks[j].CreatedAt)
	})

	return chunks, nil
}

func (l *ChunkLibrary) Get(ctx context.Context, id string) (domain.Chunk, error) {
	chunks, err := l.ListAvailable(ctx)
	if err != nil {
		return domain.Chunk{}, err
	}

	for _, chunk := range chunks {
		if chunk.ID == id {
			return chunk, nil
		}
	}

	return domain.Chunk{}, fmt.Errorf("%w: %s", domain.ErrChunkNotFound, id)
}

// Sources lists raw source videos in name order.
func (l *ChunkLibrary) Sources() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(l.cfg.RawDir, "*.mp4"))
	if err != nil {
		return nil, fmt.Errorf("list raw sources: %w", err)
	}
	sort.Strings(files)

	return files, nil
}

// Create encodes one chunk and records it in the catalog.
func (l *ChunkLibrary) Create(ctx context.Context, req ChunkRequest) (domain.Chunk, error) {
	source, err := l.resolveSource(req.Source)
	if err != nil {
		return domain.Chunk{}, err
	}

	sourceDuration, err := l.encoder.Probe(ctx, source)
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("probe %s: %w", filepath.Base(source), err)
	}

	duration := req.Duration
	if duration <= 0 {
		duration = float64(minChunkSeconds + l.random.IntN(maxChunkSeconds-minChunkSeconds+1))
	}

	start, err := l.pickStart(sourceDuration, duration)
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("%s: %w", filepath.Base(source), err)
	}

	if err := os.MkdirAll(l.cfg.ChunkDir, 0o755); err != nil {
		return domain.Chunk{}, fmt.Errorf("create chunk directory: %w", err)
	}

	id := shortID()
	chunk := domain.Chunk{
		ID:          id,
		Filename:    domain.ChunkFilename(id),
		Path:        filepath.Join(l.cfg.ChunkDir, domain.ChunkFilename(id)),
		Source:      filepath.Base(source),
		StartOffset: start,
		Duration:    duration,
	}

	if err := l.encoder.Transcode(ctx, l.chunkJob(source, chunk)); err != nil {
		_ = os.Remove(chunk.Path)
		return domain.Chunk{}, fmt.Errorf("encode chunk from %s: %w", chunk.Source, err)
	}
	chunk.CreatedAt = l.clock.Now()

	if err := l.record(ctx, chunk); err != nil {
		return domain.Chunk{}, err
	}

	l.logger.Info("chunk created",
		zap.String("chunk", chunk.ID),
		zap.String("source", chunk.Source),
		zap.Float64("start", chunk.StartOffset),
		zap.Float64("duration", chunk.Duration),
	)

	return chunk, nil
}

// CreateBatch creates n chunks, cycling through the raw sources in order.
func (l *ChunkLibrary) CreateBatch(ctx context.Context, n int) BatchResult {
	var result BatchResult

	sources, err := l.Sources()
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	if len(sources) == 0 {
		result.Errors = append(result.Errors, domain.ErrNoSourceMedia.Error())
		return result
	}

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, ctx.Err().Error())
			break
		}

		chunk, err := l.Create(ctx, ChunkRequest{Source: sources[i%len(sources)]})
		if err != nil {
			l.logger.Warn("chunk failed", zap.Int("index", i), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("chunk %d: %v", i+1, err))
			continue
		}
		result.Created = append(result.Created, chunk)
	}

	return result
}

// CreateMany creates n chunks from the same request.
func (l *ChunkLibrary) CreateMany(ctx context.Context, n int, req ChunkRequest) BatchResult {
	var result BatchResult

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, ctx.Err().Error())
			break
		}

		chunk, err := l.Create(ctx, req)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("chunk %d: %v", i+1, err))
			continue
		}
		result.Created = append(result.Created, chunk)
	}

	return result
}

// PurgeOlderThan removes chunk files last modified before now-age. Failures
// are collected and the rest of the purge continues.
func (l *ChunkLibrary) PurgeOlderThan(ctx context.Context, age time.Duration) PurgeResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result PurgeResult
	cutoff := l.clock.Now().Add(-age)

	chunks, err := l.syncLocked(ctx)
	if err != nil {
		result.Failed = append(result.Failed, err.Error())
		return result
	}

	for _, chunk := range chunks {
		info, err := os.Stat(chunk.Path)
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(chunk.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("purge chunk", zap.String("chunk", chunk.ID), zap.Error(err))
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", chunk.Filename, err))
			continue
		}
		result.Removed = append(result.Removed, chunk.ID)
	}

	if len(result.Removed) > 0 {
		if _, err := l.syncLocked(ctx); err != nil {
			result.Failed = append(result.Failed, err.Error())
		}
	}

	return result
}

// pickStart keeps the clip clear of the first and last seconds of the source
// when the source is long enough.
func (l *ChunkLibrary) pickStart(sourceDuration, duration float64) (float64, error) {
	if sourceDuration <= duration {
		return 0, fmt.Errorf("%w: %.1fs source, %.1fs chunk", domain.ErrSourceTooShort, sourceDuration, duration)
	}

	low, high := chunkSafetyMargin, sourceDuration-duration-chunkSafetyMargin
	if high < low {
		low, high = 0, sourceDuration-duration
	}

	return low + l.random.Float64()*(high-low), nil
}

func (l *ChunkLibrary) resolveSource(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		sources, err := l.Sources()
		if err != nil {
			return "", err
		}
		if len(sources) == 0 {
			return "", fmt.Errorf("%w in %s", domain.ErrNoSourceMedia, l.cfg.RawDir)
		}
		return sources[l.random.IntN(len(sources))], nil
	}

	candidate := name
	if !strings.ContainsRune(name, filepath.Separator) {
		candidate = filepath.Join(l.cfg.RawDir, name)
	}
	if !sourceExtensions[strings.ToLower(filepath.Ext(candidate))] {
		return "", fmt.Errorf("%w: unsupported source %s", domain.ErrNoSourceMedia, name)
	}
	if _, err := os.Stat(candidate); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrNoSourceMedia, name)
	}

	return candidate, nil
}

func (l *ChunkLibrary) chunkJob(source string, chunk domain.Chunk) domain.TranscodeJob {
	job := domain.TranscodeJob{
		Inputs:       []domain.TranscodeInput{{Path: source, Seek: chunk.StartOffset}},
		Duration:     chunk.Duration,
		VideoFilter:  chunkVideoFilter,
		VideoCodec:   "libx264",
		Preset:       "fast",
		CRF:          23,
		PixelFormat:  "yuv420p",
		AudioCodec:   "aac",
		AudioBitrate: "128k",
		FastStart:    true,
		Output:       chunk.Path,
		Timeout:      chunkEncodeTimeout,
	}

	if l.cfg.LogoPath != "" {
		if _, err := os.Stat(l.cfg.LogoPath); err == nil {
			job.Inputs = append(job.Inputs, domain.TranscodeInput{Path: l.cfg.LogoPath})
			job.VideoFilter = ""
			job.FilterGraph = chunkLogoFilter
		}
	}

	return job
}

func (l *ChunkLibrary) record(ctx context.Context, chunk domain.Chunk) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	catalog, err := l.catalog.Load(ctx)
	if err != nil {
		return fmt.Errorf("load chunk catalog: %w", err)
	}
	if catalog == nil {
		catalog = make(map[string]domain.Chunk, 1)
	}
	catalog[chunk.ID] = chunk

	if err := l.catalog.Save(ctx, catalog); err != nil {
		return fmt.Errorf("save chunk catalog: %w", err)
	}

	return nil
}
