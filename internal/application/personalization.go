package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
)

const (
	overlaySlots         = 16
	overlaySlotSeconds   = 0.5
	overlayFontSize      = 56
	legacyFontSize       = 48
	personalizeTimeout   = 60 * time.Second
	adhocCampaignID      = "single"
	overlayChosenMessage = "YOUVE BEEN CHOSEN"
)

var overlayMessages = []string{"", overlayChosenMessage, "FIND THE GHOST", "FOLLOW THE TRACE"}

// ChunkSource lists the base clips a personalization can start from.
type ChunkSource interface {
	ListAvailable(ctx context.Context) ([]domain.Chunk, error)
}

type PersonalizationConfig struct {
	OutputDir    string
	Font         string
	FallbackFont string
}

type PersonalizeRequest struct {
	ChunkID    string
	ChunkPath  string
	Target     string
	CampaignID domain.CampaignID
}

// PersonalizationEngine burns a per-target text sequence into a base clip.
type PersonalizationEngine struct {
	cfg     PersonalizationConfig
	encoder ports.Encoder
	chunks  ChunkSource
	random  Random
	logger  *zap.Logger
}

func NewPersonalizationEngine(cfg PersonalizationConfig, encoder ports.Encoder, chunks ChunkSource, random Random, logger *zap.Logger) *PersonalizationEngine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PersonalizationEngine{
		cfg:     cfg,
		encoder: encoder,
		chunks:  chunks,
		random:  defaultRandom(random),
		logger:  logger,
	}
}

func (e *PersonalizationEngine) Personalize(ctx context.Context, req PersonalizeRequest) (domain.PersonalizedArtifact, error) {
	target := strings.TrimPrefix(strings.TrimSpace(req.Target), "@")
	if target == "" {
		return domain.PersonalizedArtifact{}, fmt.Errorf("target is required")
	}
	if err := domain.ValidateIdentity(target); err != nil {
		return domain.PersonalizedArtifact{}, err
	}

	chunk, err := e.resolveChunk(ctx, req)
	if err != nil {
		return domain.PersonalizedArtifact{}, err
	}

	if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
		return domain.PersonalizedArtifact{}, fmt.Errorf("create output directory: %w", err)
	}

	campaignID := string(req.CampaignID)
	if campaignID == "" {
		campaignID = adhocCampaignID
	}
	if err := domain.ValidateIdentity(campaignID); err != nil {
		return domain.PersonalizedArtifact{}, fmt.Errorf("campaign id: %w", err)
	}
	filename := fmt.Sprintf("%s_%s_%s.mp4", campaignID, target, shortID())
	output := filepath.Join(e.cfg.OutputDir, filename)

	job := domain.TranscodeJob{
		Inputs:      []domain.TranscodeInput{{Path: chunk.Path}},
		VideoFilter: OverlaySequence(target, e.font()),
		VideoCodec:  "libx264",
		Preset:      "veryfast",
		CRF:         23,
		CopyAudio:   true,
		Output:      output,
		Timeout:     personalizeTimeout,
	}
	if err := e.encoder.Transcode(ctx, job); err != nil {
		_ = os.Remove(output)
		return domain.PersonalizedArtifact{}, fmt.Errorf("personalize %s: %w", target, err)
	}

	artifact := domain.PersonalizedArtifact{
		Path:       output,
		Filename:   filename,
		ChunkID:    chunk.ID,
		Target:     target,
		CampaignID: req.CampaignID,
	}
	if info, err := os.Stat(output); err == nil {
		artifact.SizeBytes = info.Size()
	}

	e.logger.Debug("artifact personalized", zap.String("target", target), zap.String("chunk", chunk.ID), zap.String("path", output))

	return artifact, nil
}

// PickRandomChunk returns any catalogued chunk.
func (e *PersonalizationEngine) PickRandomChunk(ctx context.Context) (domain.Chunk, bool) {
	chunks, err := e.chunks.ListAvailable(ctx)
	if err != nil || len(chunks) == 0 {
		return domain.Chunk{}, false
	}

	return chunks[e.random.IntN(len(chunks))], true
}

func (e *PersonalizationEngine) PickChunkByID(ctx context.Context, id string) (domain.Chunk, bool) {
	chunks, err := e.chunks.ListAvailable(ctx)
	if err != nil {
		return domain.Chunk{}, false
	}

	for _, chunk := range chunks {
		if chunk.ID == id {
			return chunk, true
		}
	}

	return domain.Chunk{}, false
}

// LegacyOverlay writes a shorter two-message overlay of source to output in a
// single encoder call.
func (e *PersonalizationEngine) LegacyOverlay(ctx context.Context, source, target, output string) error {
	target = strings.TrimPrefix(strings.TrimSpace(target), "@")
	font := e.font()

	filters := make([]string, 0, 6)
	filters = append(filters, glitchText("@"+target, font, legacyFontSize, "between(t,0,2)+between(t,4,6)")...)
	filters = append(filters, glitchText(overlayChosenMessage, font, legacyFontSize, "between(t,2,4)+between(t,6,8)")...)

	job := domain.TranscodeJob{
		Inputs:      []domain.TranscodeInput{{Path: source}},
		VideoFilter: strings.Join(filters, ","),
		VideoCodec:  "libx264",
		Preset:      "fast",
		CopyAudio:   true,
		Output:      output,
		Timeout:     personalizeTimeout,
	}
	if err := e.encoder.Transcode(ctx, job); err != nil {
		return fmt.Errorf("legacy overlay for %s: %w", target, err)
	}

	return nil
}

func (e *PersonalizationEngine) resolveChunk(ctx context.Context, req PersonalizeRequest) (domain.Chunk, error) {
	switch {
	case req.ChunkPath != "":
		if _, err := os.Stat(req.ChunkPath); err != nil {
			return domain.Chunk{}, fmt.Errorf("%w: %s", domain.ErrChunkNotFound, req.ChunkPath)
		}
		id, _ := domain.ChunkIDFromFilename(filepath.Base(req.ChunkPath))
		return domain.Chunk{ID: id, Filename: filepath.Base(req.ChunkPath), Path: req.ChunkPath}, nil
	case req.ChunkID != "":
		chunk, ok := e.PickChunkByID(ctx, req.ChunkID)
		if !ok {
			return domain.Chunk{}, fmt.Errorf("%w: %s", domain.ErrChunkNotFound, req.ChunkID)
		}
		return chunk, nil
	default:
		chunk, ok := e.PickRandomChunk(ctx)
		if !ok {
			return domain.Chunk{}, fmt.Errorf("%w: library is empty", domain.ErrChunkNotFound)
		}
		return chunk, nil
	}
}

func (e *PersonalizationEngine) font() string {
	for _, candidate := range []string{e.cfg.Font, e.cfg.FallbackFont} {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// OverlaySequence builds the 8 second cycle of 16 half-second slots that
// alternate between @target and the three fixed messages. Every slot is drawn
// as a cyan, magenta and green pass.
func OverlaySequence(target, font string) string {
	filters := make([]string, 0, overlaySlots*3)
	for slot := 0; slot < overlaySlots; slot++ {
		message := overlayMessages[slot%len(overlayMessages)]
		if message == "" {
			message = "@" + target
		}

		start := float64(slot) * overlaySlotSeconds
		enable := fmt.Sprintf("between(t,%s,%s)", formatSlot(start), formatSlot(start+overlaySlotSeconds))
		filters = append(filters, glitchText(message, font, overlayFontSize, enable)...)
	}

	return strings.Join(filters, ",")
}

func glitchText(message, font string, size int, enable string) []string {
	text := escapeDrawtext(message)
	return []string{
		drawtext(text, font, size, "#00ffff@0.7", "(w-text_w)/2-2", "h/2-2", enable),
		drawtext(text, font, size, "#ff00ff@0.7", "(w-text_w)/2+2", "h/2+2", enable),
		drawtext(text, font, size, "#00ff00", "(w-text_w)/2", "h/2", enable),
	}
}

func drawtext(text, font string, size int, color, x, y, enable string) string {
	var b strings.Builder
	b.WriteString("drawtext=text='")
	b.WriteString(text)
	b.WriteString("'")
	if font != "" {
		b.WriteString(":fontfile=")
		b.WriteString(font)
	}
	fmt.Fprintf(&b, ":fontsize=%d:fontcolor=%s:x=%s:y=%s:enable='%s'", size, color, x, y, enable)
	return b.String()
}

func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`, `%`, `\%`)
	return replacer.Replace(text)
}

func formatSlot(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 1, 64)
}
