package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/ghostreel/internal/adapters/accountclient/gateway"
	"github.com/bnema/ghostreel/internal/adapters/dataset"
	"github.com/bnema/ghostreel/internal/adapters/encoder/ffmpeg"
	statusadapter "github.com/bnema/ghostreel/internal/adapters/render/status"
	tomlrepo "github.com/bnema/ghostreel/internal/adapters/repo/toml"
	chainstore "github.com/bnema/ghostreel/internal/adapters/secrets/chain"
	sessionstore "github.com/bnema/ghostreel/internal/adapters/sessions/file"
	"github.com/bnema/ghostreel/internal/application"
	"github.com/bnema/ghostreel/internal/config"
	"github.com/bnema/ghostreel/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	cfg    config.Config
	logger *zap.Logger
	clock  ports.Clock

	credentials *tomlrepo.CredentialRepository
	sessions    ports.SessionStore
	clients     ports.AccountClientFactory
	accounts    *application.AccountService
	campaigns   *application.CampaignService
	chunks      *application.ChunkLibrary
	engine      *application.PersonalizationEngine
	audience    *application.AudienceSelector

	statusRenderer func(statusadapter.Snapshot, statusadapter.RenderOptions) (string, error)
	now            func() time.Time

	poolOnce sync.Once
	pool     *application.AccountPool
	poolErr  error
}

// wireApp builds every service from cfg. v must be the viper instance cfg was
// loaded from; the repositories resolve their paths through it.
func wireApp(v *viper.Viper, cfg config.Config, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := ports.SystemClock{}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(cfg.SecretsDir, logger.Named("secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	credentials, err := tomlrepo.NewCredentialRepository(v, secretStore)
	if err != nil {
		return nil, fmt.Errorf("wire account repository: %w", err)
	}
	campaignRepo, err := tomlrepo.NewCampaignRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire campaign repository: %w", err)
	}
	historyRepo, err := tomlrepo.NewSelectionHistoryRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire selection history: %w", err)
	}
	catalog, err := tomlrepo.NewChunkCatalogRepository(cfg.Media.ChunkDir)
	if err != nil {
		return nil, fmt.Errorf("wire chunk catalog: %w", err)
	}

	sessions := sessionstore.NewStore(cfg.SessionsDir, clock)
	encoder := ffmpeg.New(ffmpeg.Options{
		FFmpeg:  cfg.Encoder.FFmpeg,
		FFprobe: cfg.Encoder.FFprobe,
		Logger:  logger.Named("ffmpeg"),
	})

	chunks := application.NewChunkLibrary(application.ChunkLibraryConfig{
		RawDir:   cfg.Media.RawDir,
		ChunkDir: cfg.Media.ChunkDir,
		LogoPath: cfg.Media.LogoPath,
	}, encoder, catalog, clock, nil, logger.Named("chunks"))

	engine := application.NewPersonalizationEngine(application.PersonalizationConfig{
		OutputDir:    cfg.Media.CampaignDir,
		Font:         cfg.Encoder.Font,
		FallbackFont: cfg.Encoder.FallbackFont,
	}, encoder, chunks, nil, logger.Named("personalize"))

	return &app{
		cfg:         cfg,
		logger:      logger,
		clock:       clock,
		credentials: credentials,
		sessions:    sessions,
		clients: gateway.Factory{
			BaseURL:        cfg.Gateway.URL,
			RequestTimeout: cfg.Gateway.Timeout,
		},
		accounts:       application.NewAccountService(credentials, secretStore, sessions),
		campaigns:      application.NewCampaignService(campaignRepo, clock, logger.Named("campaigns")),
		chunks:         chunks,
		engine:         engine,
		audience:       application.NewAudienceSelector(dataset.Loader{}, historyRepo, clock, nil, logger.Named("audience")),
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}, nil
}

// accountPool loads the configured accounts on first use. Commands that never
// touch a session do not read secrets.
func (a *app) accountPool(ctx context.Context) (*application.AccountPool, error) {
	a.poolOnce.Do(func() {
		a.pool, a.poolErr = application.LoadAccountPool(ctx, a.credentials, a.sessions, a.clients, a.clock, a.logger.Named("pool"))
	})

	return a.pool, a.poolErr
}

func (a *app) runner(ctx context.Context) (*application.CampaignRunner, error) {
	pool, err := a.accountPool(ctx)
	if err != nil {
		return nil, err
	}

	workflow := application.NewDeliveryWorkflow(pool, a.engine, a.chunks, a.campaigns, application.DeliveryConfig{
		PublishRetryDelay: a.cfg.Delivery.PublishRetryDelay,
		ShareRetryDelay:   a.cfg.Delivery.ShareRetryDelay,
		ShareMessageGap:   a.cfg.Delivery.ShareMessageGap,
	}, nil, a.logger.Named("delivery"))

	return application.NewCampaignRunner(a.campaigns, a.chunks, a.engine, workflow, pool, application.RunnerConfig{
		DeliveryWorkers: a.cfg.Workers.Delivery,
		EncodeWorkers:   a.cfg.Workers.Encode,
	}, nil, a.logger.Named("runner")), nil
}

func (a *app) actions(ctx context.Context) (*application.AccountActions, error) {
	pool, err := a.accountPool(ctx)
	if err != nil {
		return nil, err
	}

	return application.NewAccountActions(pool, a.logger.Named("actions")), nil
}
