package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/ghostreel/internal/domain"
)

const (
	captionFormat = "The signal found @%s 📼 #vhsghost"
	tagCenter     = 0.5
)

type DeliveryConfig struct {
	PublishRetryDelay time.Duration
	ShareRetryDelay   time.Duration
	ShareMessageGap   time.Duration
}

func DefaultDeliveryConfig() DeliveryConfig {
	return DeliveryConfig{
		PublishRetryDelay: 5 * time.Second,
		ShareRetryDelay:   3 * time.Second,
		ShareMessageGap:   2 * time.Second,
	}
}

// Reauthenticator replaces a session whose remote auth expired.
type Reauthenticator interface {
	ForceReauthenticate(ctx context.Context, identity domain.AccountID) (*Session, error)
}

// MediaSource is what the workflow needs from the chunk library to fall back
// to an unpersonalized clip.
type MediaSource interface {
	ChunkSource
	Sources() ([]string, error)
}

type DeliveryRequest struct {
	CampaignID domain.CampaignID
	Target     string
	ChunkID    string
	// ArtifactPath is used as-is when it points at a non-empty file.
	ArtifactPath string
	// Message overrides the campaign template.
	Message string
	// Force re-delivers a campaign target that is already sent.
	Force bool
}

type DeliveryResult struct {
	Success      bool
	Target       string
	Account      domain.AccountID
	PostRef      domain.PostRef
	ArtifactPath string
	Message      string
	Err          error
}

// DeliveryWorkflow runs the per-target sequence: artifact, publish, share,
// follow-up message.
type DeliveryWorkflow struct {
	accounts  Reauthenticator
	engine    *PersonalizationEngine
	media     MediaSource
	campaigns *CampaignService
	cfg       DeliveryConfig
	random    Random
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewDeliveryWorkflow(accounts Reauthenticator, engine *PersonalizationEngine, media MediaSource, campaigns *CampaignService, cfg DeliveryConfig, random Random, logger *zap.Logger) *DeliveryWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DeliveryWorkflow{
		accounts:  accounts,
		engine:    engine,
		media:     media,
		campaigns: campaigns,
		cfg:       cfg,
		random:    defaultRandom(random),
		logger:    logger,
		sleep:     sleepContext,
	}
}

// Deliver runs the workflow for one target with session. The result always
// describes the outcome; the error is non-nil only when ctx is done.
func (w *DeliveryWorkflow) Deliver(ctx context.Context, session *Session, req DeliveryRequest) (DeliveryResult, error) {
	result := DeliveryResult{Target: req.Target, Account: session.Identity()}
	logger := w.logger.With(zap.String("target", req.Target), zap.String("account", string(session.Identity())))

	message, record, err := w.prepare(ctx, req)
	if err != nil {
		return w.fail(ctx, logger, req, result, err)
	}
	if req.ChunkID == "" {
		req.ChunkID = record.ChunkID
	}
	if req.ArtifactPath == "" {
		req.ArtifactPath = record.ArtifactPath
	}

	artifact, cleanup, err := w.resolveArtifact(ctx, logger, req)
	if err != nil {
		return w.fail(ctx, logger, req, result, err)
	}
	defer cleanup()
	result.ArtifactPath = artifact

	handle, err := w.resolveTarget(ctx, &session, req.Target)
	if err != nil {
		return w.fail(ctx, logger, req, result, fmt.Errorf("%w: %w", domain.ErrPublishFailed, err))
	}
	result.Account = session.Identity()

	post, err := w.publish(ctx, &session, artifact, handle)
	if err != nil {
		return w.fail(ctx, logger, req, result, err)
	}
	result.PostRef = post
	logger.Info("clip published", zap.String("media", post.MediaID))

	if err := w.shareAndMessage(ctx, session, post, handle, message); err != nil {
		return w.fail(ctx, logger, req, result, err)
	}

	if req.CampaignID != "" {
		if _, err := w.campaigns.UpdateTarget(ctx, req.CampaignID, req.Target, TargetPatch{Status: domain.TargetSent, Post: post}); err != nil {
			logger.Warn("record sent target", zap.Error(err))
		}
	}

	result.Success = true
	result.Message = "sent"
	logger.Info("target delivered")

	return result, nil
}

func (w *DeliveryWorkflow) prepare(ctx context.Context, req DeliveryRequest) (string, domain.TargetRecord, error) {
	if req.CampaignID == "" {
		message := req.Message
		if message == "" {
			message = domain.Campaign{}.RenderMessage(req.Target)
		}
		return message, domain.TargetRecord{}, nil
	}

	campaign, err := w.campaigns.Campaign(ctx, req.CampaignID)
	if err != nil {
		return "", domain.TargetRecord{}, err
	}
	record, ok := campaign.Targets[req.Target]
	if !ok {
		return "", domain.TargetRecord{}, fmt.Errorf("%w: %s", domain.ErrTargetNotFound, req.Target)
	}
	if record.Status == domain.TargetSent && !req.Force {
		return "", domain.TargetRecord{}, fmt.Errorf("%w: %s in %s", domain.ErrTargetSent, req.Target, req.CampaignID)
	}

	message := req.Message
	if message == "" {
		message = campaign.RenderMessage(req.Target)
	}

	return message, record, nil
}

// resolveArtifact returns a clip for the target. It prefers a usable supplied
// path, then a fresh personalization, then a legacy overlay into a temporary
// file that cleanup removes.
func (w *DeliveryWorkflow) resolveArtifact(ctx context.Context, logger *zap.Logger, req DeliveryRequest) (string, func(), error) {
	noop := func() {}

	if usableFile(req.ArtifactPath) {
		return req.ArtifactPath, noop, nil
	}

	artifact, err := w.engine.Personalize(ctx, PersonalizeRequest{ChunkID: req.ChunkID, Target: req.Target, CampaignID: req.CampaignID})
	if err == nil {
		if req.CampaignID != "" {
			patch := TargetPatch{Status: domain.TargetPersonalized, ChunkID: artifact.ChunkID, ArtifactPath: artifact.Path}
			if _, updateErr := w.campaigns.UpdateTarget(ctx, req.CampaignID, req.Target, patch); updateErr != nil {
				logger.Warn("record personalized target", zap.Error(updateErr))
			}
		}
		return artifact.Path, noop, nil
	}
	if ctx.Err() != nil {
		return "", noop, ctx.Err()
	}
	logger.Warn("personalization failed, using legacy overlay", zap.Error(err))

	source, ok := w.legacySource(ctx)
	if !ok {
		return "", noop, domain.ErrNoVideoSources
	}

	tmp, err := os.CreateTemp("", "ghost_legacy_*.mp4")
	if err != nil {
		return "", noop, fmt.Errorf("create temp clip: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	cleanup := func() { _ = os.Remove(path) }

	if err := w.engine.LegacyOverlay(ctx, source, req.Target, path); err != nil {
		cleanup()
		return "", noop, err
	}

	return path, cleanup, nil
}

func (w *DeliveryWorkflow) legacySource(ctx context.Context) (string, bool) {
	if chunk, ok := w.engine.PickRandomChunk(ctx); ok {
		return chunk.Path, true
	}

	sources, err := w.media.Sources()
	if err != nil || len(sources) == 0 {
		return "", false
	}

	return sources[w.random.IntN(len(sources))], true
}

// resolveTarget looks the target up, re-authenticating the session once if
// its auth expired.
func (w *DeliveryWorkflow) resolveTarget(ctx context.Context, session **Session, target string) (domain.UserHandle, error) {
	handle, err := (*session).Client.ResolveIdentity(ctx, target)
	if !errors.Is(err, domain.ErrAuthExpired) {
		return handle, err
	}

	if err := w.reauthenticate(ctx, session); err != nil {
		return domain.UserHandle{}, err
	}

	return (*session).Client.ResolveIdentity(ctx, target)
}

func (w *DeliveryWorkflow) publish(ctx context.Context, session **Session, artifact string, handle domain.UserHandle) (domain.PostRef, error) {
	req := domain.PublishRequest{
		VideoPath: artifact,
		Caption:   fmt.Sprintf(captionFormat, handle.Username),
		Tags:      []domain.UserTag{{User: handle, X: tagCenter, Y: tagCenter}},
	}

	post, err := (*session).Client.Publish(ctx, req)
	if err == nil {
		return post, nil
	}
	w.logger.Warn("publish failed, retrying", zap.String("target", handle.Username), zap.Error(err))

	if sleepErr := w.sleep(ctx, w.cfg.PublishRetryDelay); sleepErr != nil {
		return domain.PostRef{}, sleepErr
	}
	if errors.Is(err, domain.ErrAuthExpired) {
		if reauthErr := w.reauthenticate(ctx, session); reauthErr != nil {
			return domain.PostRef{}, fmt.Errorf("%w: %w", domain.ErrPublishFailed, reauthErr)
		}
	}

	post, err = (*session).Client.Publish(ctx, req)
	if err != nil {
		return domain.PostRef{}, fmt.Errorf("%w: %w", domain.ErrPublishFailed, err)
	}

	return post, nil
}

// shareAndMessage treats share plus message as one unit that is retried once.
func (w *DeliveryWorkflow) shareAndMessage(ctx context.Context, session *Session, post domain.PostRef, handle domain.UserHandle, message string) error {
	attempt := func(gap time.Duration) error {
		if _, err := session.Client.Share(ctx, post, handle); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrShareFailed, err)
		}
		if gap > 0 {
			if err := w.sleep(ctx, gap); err != nil {
				return err
			}
		}
		if _, err := session.Client.SendMessage(ctx, message, handle); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrMessageFailed, err)
		}
		return nil
	}

	err := attempt(0)
	if err == nil {
		return nil
	}
	w.logger.Warn("share or message failed, retrying", zap.String("target", handle.Username), zap.Error(err))

	if sleepErr := w.sleep(ctx, w.cfg.ShareRetryDelay); sleepErr != nil {
		return sleepErr
	}

	return attempt(w.cfg.ShareMessageGap)
}

func (w *DeliveryWorkflow) reauthenticate(ctx context.Context, session **Session) error {
	fresh, err := w.accounts.ForceReauthenticate(ctx, (*session).Identity())
	if err != nil {
		return err
	}
	*session = fresh
	return nil
}

func (w *DeliveryWorkflow) fail(ctx context.Context, logger *zap.Logger, req DeliveryRequest, result DeliveryResult, err error) (DeliveryResult, error) {
	result.Err = err
	result.Message = err.Error()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	logger.Warn("delivery failed", zap.Error(err))
	if req.CampaignID != "" && !errors.Is(err, domain.ErrTargetNotFound) && !errors.Is(err, domain.ErrCampaignNotFound) && !errors.Is(err, domain.ErrTargetSent) {
		patch := TargetPatch{Status: domain.TargetError, Error: err.Error(), Post: result.PostRef}
		if _, updateErr := w.campaigns.UpdateTarget(ctx, req.CampaignID, req.Target, patch); updateErr != nil {
			logger.Warn("record failed target", zap.Error(updateErr))
		}
	}

	return result, nil
}

func usableFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(filepath.Clean(path))
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
