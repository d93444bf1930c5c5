package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/ghostreel/internal/domain"
)

// AccountLeaser hands out exclusive account sessions.
type AccountLeaser interface {
	Checkout(ctx context.Context, preferred domain.AccountID) (*Lease, error)
	Accounts() int
}

// ChunkProducer tops up the chunk library.
type ChunkProducer interface {
	ChunkSource
	CreateBatch(ctx context.Context, n int) BatchResult
}

type RunnerConfig struct {
	DeliveryWorkers int
	EncodeWorkers   int
}

type PrepareRequest struct {
	CampaignID domain.CampaignID
	// Targets limits preparation to these targets. Empty means every pending
	// target.
	Targets []string
	// EnsureChunks creates chunks until at least this many exist.
	EnsureChunks int
}

type PrepareResult struct {
	Created []domain.PersonalizedArtifact
	Errors  []string
}

type RunRequest struct {
	CampaignID  domain.CampaignID
	Workers     int
	RetryFailed bool
}

type RunResult struct {
	Attempted int
	Sent      int
	Failed    int
	Results   []DeliveryResult
	Errors    []string
	Summary   domain.CampaignSummary
}

type SendRequest struct {
	Target       string
	Account      domain.AccountID
	CampaignID   domain.CampaignID
	ChunkID      string
	ArtifactPath string
	Message      string
	Force        bool
}

// CampaignRunner fans campaign work out over the encoder and the account pool.
type CampaignRunner struct {
	campaigns *CampaignService
	chunks    ChunkProducer
	engine    *PersonalizationEngine
	workflow  *DeliveryWorkflow
	accounts  AccountLeaser
	cfg       RunnerConfig
	random    Random
	logger    *zap.Logger
}

func NewCampaignRunner(campaigns *CampaignService, chunks ChunkProducer, engine *PersonalizationEngine, workflow *DeliveryWorkflow, accounts AccountLeaser, cfg RunnerConfig, random Random, logger *zap.Logger) *CampaignRunner {
	if cfg.DeliveryWorkers <= 0 {
		cfg.DeliveryWorkers = 1
	}
	if cfg.EncodeWorkers <= 0 {
		cfg.EncodeWorkers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CampaignRunner{
		campaigns: campaigns,
		chunks:    chunks,
		engine:    engine,
		workflow:  workflow,
		accounts:  accounts,
		cfg:       cfg,
		random:    defaultRandom(random),
		logger:    logger,
	}
}

// PrepareCampaignVideos personalizes a clip for every selected target,
// spreading targets over the available chunks in shuffled order.
func (r *CampaignRunner) PrepareCampaignVideos(ctx context.Context, req PrepareRequest) (PrepareResult, error) {
	var result PrepareResult

	campaign, err := r.campaigns.Campaign(ctx, req.CampaignID)
	if err != nil {
		return result, err
	}

	targets, err := domain.NormalizeIdentities(req.Targets)
	if err != nil {
		return result, err
	}
	if len(targets) == 0 {
		targets = campaign.TargetsWith(domain.TargetPending)
	}
	if len(targets) == 0 {
		return result, nil
	}

	chunks, err := r.chunks.ListAvailable(ctx)
	if err != nil {
		return result, err
	}
	if missing := req.EnsureChunks - len(chunks); missing > 0 {
		batch := r.chunks.CreateBatch(ctx, missing)
		result.Errors = append(result.Errors, batch.Errors...)
		chunks = append(chunks, batch.Created...)
	}
	if len(chunks) == 0 {
		return result, domain.ErrNoVideoSources
	}

	r.random.Shuffle(len(chunks), func(i, j int) { chunks[i], chunks[j] = chunks[j], chunks[i] })

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(r.cfg.EncodeWorkers)

	for i, target := range targets {
		if _, ok := campaign.Targets[target]; !ok {
			mu.Lock()
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", target, domain.ErrTargetNotFound))
			mu.Unlock()
			continue
		}
		chunk := chunks[i%len(chunks)]

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			artifact, err := r.engine.Personalize(ctx, PersonalizeRequest{ChunkPath: chunk.Path, Target: target, CampaignID: campaign.ID})
			if err == nil {
				artifact.ChunkID = chunk.ID
				_, err = r.campaigns.UpdateTarget(ctx, campaign.ID, target, TargetPatch{
					Status:       domain.TargetPersonalized,
					ChunkID:      chunk.ID,
					ChunkSource:  chunk.Source,
					ArtifactPath: artifact.Path,
				})
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Warn("prepare target", zap.String("target", target), zap.Error(err))
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", target, err))
				return nil
			}
			result.Created = append(result.Created, artifact)
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return result, err
	}

	r.logger.Info("campaign prepared",
		zap.String("campaign", string(campaign.ID)),
		zap.Int("created", len(result.Created)),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

// RunCampaign delivers every open target. Each delivery holds an exclusive
// account lease, so at most min(workers, accounts) run at once. When no
// account can authenticate the run stops and returns ErrNoAccountsAvailable.
func (r *CampaignRunner) RunCampaign(ctx context.Context, req RunRequest) (RunResult, error) {
	var result RunResult

	campaign, err := r.campaigns.Campaign(ctx, req.CampaignID)
	if err != nil {
		return result, err
	}

	statuses := []domain.TargetStatus{domain.TargetPending, domain.TargetPersonalized}
	if req.RetryFailed {
		statuses = append(statuses, domain.TargetError)
	}
	targets := campaign.TargetsWith(statuses...)

	if len(targets) > 0 {
		if r.accounts.Accounts() == 0 {
			return result, domain.ErrNoAccountsAvailable
		}

		workers := req.Workers
		if workers <= 0 {
			workers = r.cfg.DeliveryWorkers
		}
		workers = min(workers, r.accounts.Accounts(), len(targets))

		if err := r.deliverAll(ctx, campaign, targets, workers, &result); err != nil {
			if summary, summaryErr := r.campaigns.Get(context.WithoutCancel(ctx), campaign.ID); summaryErr == nil {
				result.Summary = summary
			}
			return result, err
		}
	}

	summary, err := r.campaigns.Get(ctx, campaign.ID)
	if err != nil {
		return result, err
	}
	result.Summary = summary

	r.logger.Info("campaign run finished",
		zap.String("campaign", string(campaign.ID)),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.String("completion", summary.CompletionRate),
	)

	return result, nil
}

func (r *CampaignRunner) deliverAll(ctx context.Context, campaign domain.Campaign, targets []string, workers int, result *RunResult) error {
	jobs := make(chan string)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for _, target := range targets {
			select {
			case jobs <- target:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var mu sync.Mutex
	for range workers {
		g.Go(func() error {
			for target := range jobs {
				record := campaign.Targets[target]
				delivery, err := r.deliverLeased(gctx, "", DeliveryRequest{
					CampaignID:   campaign.ID,
					Target:       target,
					ChunkID:      record.ChunkID,
					ArtifactPath: record.ArtifactPath,
				})
				if err != nil {
					if errors.Is(err, domain.ErrNoAccountsAvailable) {
						r.recordUndeliverable(ctx, campaign.ID, target, err, result, &mu)
					}
					return err
				}

				mu.Lock()
				result.Attempted++
				result.Results = append(result.Results, delivery)
				if delivery.Success {
					result.Sent++
				} else {
					result.Failed++
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", target, delivery.Message))
				}
				mu.Unlock()
			}
			return nil
		})
	}

	return g.Wait()
}

// SendOne delivers a single target, optionally on a specific account.
func (r *CampaignRunner) SendOne(ctx context.Context, req SendRequest) (DeliveryResult, error) {
	target, err := domain.NormalizeIdentities([]string{req.Target})
	if err != nil {
		return DeliveryResult{}, err
	}
	if len(target) == 0 {
		return DeliveryResult{}, errors.New("target is required")
	}

	return r.deliverLeased(ctx, req.Account, DeliveryRequest{
		CampaignID:   req.CampaignID,
		Target:       target[0],
		ChunkID:      req.ChunkID,
		ArtifactPath: req.ArtifactPath,
		Message:      req.Message,
		Force:        req.Force,
	})
}

// recordUndeliverable marks target as failed after the pool ran out of
// accounts. The campaign write uses a context that outlives the run's
// cancellation.
func (r *CampaignRunner) recordUndeliverable(ctx context.Context, id domain.CampaignID, target string, cause error, result *RunResult, mu *sync.Mutex) {
	if _, err := r.campaigns.UpdateTarget(context.WithoutCancel(ctx), id, target, TargetPatch{Status: domain.TargetError, Error: cause.Error()}); err != nil {
		r.logger.Warn("record failed target", zap.String("target", target), zap.Error(err))
	}

	mu.Lock()
	defer mu.Unlock()
	result.Attempted++
	result.Failed++
	result.Results = append(result.Results, DeliveryResult{Target: target, Message: cause.Error(), Err: cause})
	result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", target, cause))
}

// deliverLeased runs one delivery on a leased account. Checkout failures,
// including an exhausted pool, are returned as errors.
func (r *CampaignRunner) deliverLeased(ctx context.Context, preferred domain.AccountID, req DeliveryRequest) (DeliveryResult, error) {
	lease, err := r.accounts.Checkout(ctx, preferred)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return DeliveryResult{}, ctxErr
		}
		r.logger.Warn("no account for delivery", zap.String("target", req.Target), zap.Error(err))
		return DeliveryResult{}, err
	}
	defer lease.Release()

	return r.workflow.Deliver(ctx, lease.Session, req)
}
