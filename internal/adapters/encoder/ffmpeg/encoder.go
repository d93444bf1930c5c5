package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
	"go.uber.org/zap"
)

const (
	stderrTailBytes = 2048
	probeTimeout    = 30 * time.Second
	killGrace       = 2 * time.Second
)

type runFunc func(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)

type Options struct {
	FFmpeg  string
	FFprobe string
	Logger  *zap.Logger
}

// Encoder shells out to ffmpeg and ffprobe. Every call runs under a deadline;
// the child process is killed when it expires.
type Encoder struct {
	ffmpeg  string
	ffprobe string
	run     runFunc
	logger  *zap.Logger
}

var _ ports.Encoder = (*Encoder)(nil)

func New(opts Options) *Encoder {
	if opts.FFmpeg == "" {
		opts.FFmpeg = "ffmpeg"
	}
	if opts.FFprobe == "" {
		opts.FFprobe = "ffprobe"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Encoder{ffmpeg: opts.FFmpeg, ffprobe: opts.FFprobe, run: runCommand, logger: opts.Logger}
}

func (e *Encoder) Probe(ctx context.Context, path string) (float64, error) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	stdout, stderr, err := e.run(probeCtx, e.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		if ctxErr := classifyDeadline(ctx, probeCtx); ctxErr != nil {
			return 0, fmt.Errorf("probe %s: %w", path, ctxErr)
		}
		return 0, fmt.Errorf("probe %s: %w: %s", path, domain.ErrEncodeFailed, tail(stderr))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout), 64)
	if err != nil {
		return 0, fmt.Errorf("probe %s: parse duration %q: %w", path, strings.TrimSpace(stdout), domain.ErrEncodeFailed)
	}

	return duration, nil
}

func (e *Encoder) Transcode(ctx context.Context, job domain.TranscodeJob) error {
	if len(job.Inputs) == 0 || job.Output == "" {
		return fmt.Errorf("transcode: inputs and output are required: %w", domain.ErrEncodeFailed)
	}

	encodeCtx := ctx
	cancel := func() {}
	if job.Timeout > 0 {
		encodeCtx, cancel = context.WithTimeout(ctx, job.Timeout)
	}
	defer cancel()

	args := BuildArgs(job)
	started := time.Now()
	e.logger.Debug("encoder started", zap.String("output", job.Output), zap.Strings("args", args))

	_, stderr, err := e.run(encodeCtx, e.ffmpeg, args...)
	if err != nil {
		if ctxErr := classifyDeadline(ctx, encodeCtx); ctxErr != nil {
			e.logger.Warn("encoder stopped", zap.String("output", job.Output), zap.Duration("timeout", job.Timeout), zap.Error(ctxErr))
			return fmt.Errorf("transcode %s: %w", job.Output, ctxErr)
		}
		return fmt.Errorf("transcode %s: %w: %s", job.Output, domain.ErrEncodeFailed, tail(stderr))
	}

	e.logger.Debug("encoder finished", zap.String("output", job.Output), zap.Duration("elapsed", time.Since(started)))
	return nil
}

// BuildArgs renders a job as ffmpeg arguments.
func BuildArgs(job domain.TranscodeJob) []string {
	args := []string{"-y"}
	for _, input := range job.Inputs {
		if input.Seek > 0 {
			args = append(args, "-ss", formatSeconds(input.Seek))
		}
		args = append(args, "-i", input.Path)
	}
	if job.Duration > 0 {
		args = append(args, "-t", formatSeconds(job.Duration))
	}

	switch {
	case job.FilterGraph != "":
		args = append(args, "-filter_complex", job.FilterGraph)
	case job.VideoFilter != "":
		args = append(args, "-vf", job.VideoFilter)
	}

	if job.VideoCodec != "" {
		args = append(args, "-c:v", job.VideoCodec)
	}
	if job.Preset != "" {
		args = append(args, "-preset", job.Preset)
	}
	if job.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(job.CRF))
	}
	if job.PixelFormat != "" {
		args = append(args, "-pix_fmt", job.PixelFormat)
	}

	switch {
	case job.CopyAudio:
		args = append(args, "-c:a", "copy")
	case job.AudioCodec != "":
		args = append(args, "-c:a", job.AudioCodec)
		if job.AudioBitrate != "" {
			args = append(args, "-b:a", job.AudioBitrate)
		}
	}

	if job.FastStart {
		args = append(args, "-movflags", "+faststart")
	}

	return append(args, job.Output)
}

// classifyDeadline distinguishes our own deadline from a caller cancellation.
func classifyDeadline(parent, child context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	if errors.Is(child.Err(), context.DeadlineExceeded) {
		return domain.ErrEncodeTimeout
	}

	return nil
}

func runCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", "", fmt.Errorf("locate %s: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.WaitDelay = killGrace

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func tail(stderr string) string {
	if len(stderr) <= stderrTailBytes {
		return stderr
	}

	return stderr[len(stderr)-stderrTailBytes:]
}
