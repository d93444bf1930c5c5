package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
)

// TargetPatch is merged into a target record. Empty fields leave the record
// unchanged. Moving to any status other than error clears the stored error.
type TargetPatch struct {
	Status       domain.TargetStatus
	ChunkID      string
	ChunkSource  string
	ArtifactPath string
	Post         domain.PostRef
	Error        string
}

type DeleteResult struct {
	Deleted  []domain.CampaignID
	NotFound []domain.CampaignID
}

type CampaignService struct {
	repo   ports.CampaignRepository
	clock  ports.Clock
	logger *zap.Logger
}

func NewCampaignService(repo ports.CampaignRepository, clock ports.Clock, logger *zap.Logger) *CampaignService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CampaignService{repo: repo, clock: clock, logger: logger}
}

// Create stores a new active campaign with every target pending. Blank and
// duplicate targets are dropped; malformed handles are rejected.
func (s *CampaignService) Create(ctx context.Context, name string, targets []string, template string) (domain.Campaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Campaign{}, errors.New("campaign name is required")
	}

	identities, err := domain.NormalizeIdentities(targets)
	if err != nil {
		return domain.Campaign{}, err
	}
	if len(identities) == 0 {
		return domain.Campaign{}, errors.New("at least one target is required")
	}
	if strings.TrimSpace(template) == "" {
		template = domain.DefaultMessageTemplate
	}

	now := s.clock.Now()
	campaign := domain.Campaign{
		ID:              domain.CampaignID("campaign_" + shortID()),
		Name:            name,
		State:           domain.CampaignActive,
		CreatedAt:       now,
		MessageTemplate: template,
		Targets:         make(map[string]domain.TargetRecord, len(identities)),
	}
	for _, identity := range identities {
		campaign.Targets[identity] = domain.TargetRecord{Status: domain.TargetPending, UpdatedAt: now}
	}

	if err := s.repo.Save(ctx, campaign); err != nil {
		return domain.Campaign{}, fmt.Errorf("save campaign: %w", err)
	}

	s.logger.Info("campaign created", zap.String("campaign", string(campaign.ID)), zap.Int("targets", len(identities)))

	return campaign, nil
}

func (s *CampaignService) Get(ctx context.Context, id domain.CampaignID) (domain.CampaignSummary, error) {
	campaign, err := s.Campaign(ctx, id)
	if err != nil {
		return domain.CampaignSummary{}, err
	}

	return campaign.Summarize(), nil
}

func (s *CampaignService) Campaign(ctx context.Context, id domain.CampaignID) (domain.Campaign, error) {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("get campaign %s: %w", id, err)
	}

	return campaign, nil
}

func (s *CampaignService) List(ctx context.Context) ([]domain.CampaignSummary, error) {
	campaigns, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	summaries := make([]domain.CampaignSummary, 0, len(campaigns))
	for _, campaign := range campaigns {
		summaries = append(summaries, campaign.Summarize())
	}

	return summaries, nil
}

// UpdateTarget merges patch into one target inside a single repository
// critical section and refreshes the campaign counters.
func (s *CampaignService) UpdateTarget(ctx context.Context, id domain.CampaignID, target string, patch TargetPatch) (domain.TargetRecord, error) {
	if patch.Status != "" && !patch.Status.Valid() {
		return domain.TargetRecord{}, fmt.Errorf("invalid target status %q", patch.Status)
	}

	var updated domain.TargetRecord
	_, err := s.repo.Update(ctx, id, func(campaign *domain.Campaign) error {
		record, ok := campaign.Targets[target]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrTargetNotFound, target)
		}

		now := s.clock.Now()
		applyPatch(&record, patch, now)
		campaign.Targets[target] = record
		campaign.Stats = countStats(campaign.Targets)
		updated = record

		return nil
	})
	if err != nil {
		return domain.TargetRecord{}, fmt.Errorf("update %s in %s: %w", target, id, err)
	}

	return updated, nil
}

// ResetTargets moves targets in one of statuses back to pending and returns
// how many were reset.
func (s *CampaignService) ResetTargets(ctx context.Context, id domain.CampaignID, statuses ...domain.TargetStatus) (int, error) {
	if len(statuses) == 0 {
		statuses = []domain.TargetStatus{domain.TargetError}
	}

	reset := 0
	_, err := s.repo.Update(ctx, id, func(campaign *domain.Campaign) error {
		now := s.clock.Now()
		for _, target := range campaign.TargetsWith(statuses...) {
			record := campaign.Targets[target]
			record.Status = domain.TargetPending
			record.Error = ""
			record.UpdatedAt = now
			campaign.Targets[target] = record
			reset++
		}
		campaign.Stats = countStats(campaign.Targets)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("reset targets in %s: %w", id, err)
	}

	return reset, nil
}

// Delete removes the given campaigns. No ids removes every campaign.
func (s *CampaignService) Delete(ctx context.Context, ids []domain.CampaignID) (DeleteResult, error) {
	if len(ids) == 0 {
		deleted, err := s.repo.DeleteAll(ctx)
		if err != nil {
			return DeleteResult{}, fmt.Errorf("delete all campaigns: %w", err)
		}
		return DeleteResult{Deleted: deleted}, nil
	}

	deleted, notFound, err := s.repo.Delete(ctx, ids)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete campaigns: %w", err)
	}

	return DeleteResult{Deleted: deleted, NotFound: notFound}, nil
}

func applyPatch(record *domain.TargetRecord, patch TargetPatch, now time.Time) {
	if patch.Status != "" {
		if patch.Status != domain.TargetError {
			record.Error = ""
		}
		switch {
		case patch.Status == domain.TargetPersonalized && record.Status != domain.TargetPersonalized:
			record.PersonalizedAt = now
		case patch.Status == domain.TargetSent:
			record.SentAt = now
		}
		record.Status = patch.Status
	}
	if patch.ChunkID != "" {
		record.ChunkID = patch.ChunkID
	}
	if patch.ChunkSource != "" {
		record.ChunkSource = patch.ChunkSource
	}
	if patch.ArtifactPath != "" {
		record.ArtifactPath = patch.ArtifactPath
	}
	if !patch.Post.IsZero() {
		record.Post = patch.Post
	}
	if patch.Error != "" {
		record.Error = patch.Error
	}
	record.UpdatedAt = now
}

func countStats(targets map[string]domain.TargetRecord) domain.CampaignStats {
	var stats domain.CampaignStats
	for _, record := range targets {
		switch record.Status {
		case domain.TargetSent:
			stats.Sent++
		case domain.TargetError:
			stats.Errors++
		}
	}
	return stats
}
