package toml

import (
	"context"
	"sort"
	"sync"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
	"github.com/spf13/viper"
)

const (
	campaignsPathKey  = "campaigns.path"
	campaignsFileName = "campaigns.toml"
)

type CampaignRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.CampaignRepository = (*CampaignRepository)(nil)

func NewCampaignRepository(cfg *viper.Viper) (*CampaignRepository, error) {
	path, err := resolvePath(cfg, campaignsPathKey, campaignsFileName)
	if err != nil {
		return nil, err
	}

	return &CampaignRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *CampaignRepository) Save(ctx context.Context, campaign domain.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := campaign.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	file.Campaigns[string(campaign.ID)] = toCampaignSchema(campaign)
	return writeTOMLFile(r.path, file)
}

func (r *CampaignRepository) GetByID(ctx context.Context, id domain.CampaignID) (domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Campaign{}, err
	}

	entry, ok := file.Campaigns[string(id)]
	if !ok {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}

	return fromCampaignSchema(string(id), entry), nil
}

// List returns campaigns ordered by creation time, oldest first.
func (r *CampaignRepository) List(ctx context.Context) ([]domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	campaigns := make([]domain.Campaign, 0, len(file.Campaigns))
	for id, entry := range file.Campaigns {
		campaigns = append(campaigns, fromCampaignSchema(id, entry))
	}
	sort.Slice(campaigns, func(i, j int) bool {
		if campaigns[i].CreatedAt.Equal(campaigns[j].CreatedAt) {
			return campaigns[i].ID < campaigns[j].ID
		}
		return campaigns[i].CreatedAt.Before(campaigns[j].CreatedAt)
	})

	return campaigns, nil
}

func (r *CampaignRepository) Update(ctx context.Context, id domain.CampaignID, fn func(*domain.Campaign) error) (domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Campaign{}, err
	}

	entry, ok := file.Campaigns[string(id)]
	if !ok {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}

	campaign := fromCampaignSchema(string(id), entry)
	if err := fn(&campaign); err != nil {
		return domain.Campaign{}, err
	}
	if err := campaign.Validate(); err != nil {
		return domain.Campaign{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, err
	}

	file.Campaigns[string(id)] = toCampaignSchema(campaign)
	if err := writeTOMLFile(r.path, file); err != nil {
		return domain.Campaign{}, err
	}

	return campaign, nil
}

func (r *CampaignRepository) Delete(ctx context.Context, ids []domain.CampaignID) ([]domain.CampaignID, []domain.CampaignID, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, nil, err
	}

	deleted := make([]domain.CampaignID, 0, len(ids))
	notFound := make([]domain.CampaignID, 0)
	for _, id := range ids {
		if _, ok := file.Campaigns[string(id)]; !ok {
			notFound = append(notFound, id)
			continue
		}
		delete(file.Campaigns, string(id))
		deleted = append(deleted, id)
	}

	if len(deleted) == 0 {
		return deleted, notFound, nil
	}
	if err := writeTOMLFile(r.path, file); err != nil {
		return nil, nil, err
	}

	return deleted, notFound, nil
}

func (r *CampaignRepository) DeleteAll(ctx context.Context) ([]domain.CampaignID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	deleted := make([]domain.CampaignID, 0, len(file.Campaigns))
	for id := range file.Campaigns {
		deleted = append(deleted, domain.CampaignID(id))
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i] < deleted[j] })

	file.Campaigns = map[string]campaignSchema{}
	if err := writeTOMLFile(r.path, file); err != nil {
		return nil, err
	}

	return deleted, nil
}

func (r *CampaignRepository) readSchema() (campaignsFileSchema, error) {
	var file campaignsFileSchema
	if err := readTOMLFile(r.path, "campaigns", &file); err != nil {
		return campaignsFileSchema{}, err
	}
	if err := file.validateVersion(); err != nil {
		return campaignsFileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func toCampaignSchema(campaign domain.Campaign) campaignSchema {
	targets := make(map[string]targetSchema, len(campaign.Targets))
	for identity, record := range campaign.Targets {
		targets[identity] = targetSchema{
			Status:         string(record.Status),
			ChunkID:        record.ChunkID,
			ChunkSource:    record.ChunkSource,
			ArtifactPath:   record.ArtifactPath,
			MediaID:        record.Post.MediaID,
			PostCode:       record.Post.Code,
			PostURL:        record.Post.URL,
			PersonalizedAt: formatTime(record.PersonalizedAt),
			SentAt:         formatTime(record.SentAt),
			UpdatedAt:      formatTime(record.UpdatedAt),
			Error:          record.Error,
		}
	}

	return campaignSchema{
		Name:            campaign.Name,
		Status:          string(campaign.State),
		CreatedAt:       formatTime(campaign.CreatedAt),
		MessageTemplate: campaign.MessageTemplate,
		Stats: campaignStatsSchema{
			TotalTargets: len(campaign.Targets),
			Sent:         campaign.Stats.Sent,
			Errors:       campaign.Stats.Errors,
		},
		Targets: targets,
	}
}

func fromCampaignSchema(id string, schema campaignSchema) domain.Campaign {
	targets := make(map[string]domain.TargetRecord, len(schema.Targets))
	for identity, entry := range schema.Targets {
		status := domain.TargetStatus(entry.Status)
		if status == "" {
			status = domain.TargetPending
		}
		targets[identity] = domain.TargetRecord{
			Status:       status,
			ChunkID:      entry.ChunkID,
			ChunkSource:  entry.ChunkSource,
			ArtifactPath: entry.ArtifactPath,
			Post: domain.PostRef{
				MediaID: entry.MediaID,
				Code:    entry.PostCode,
				URL:     entry.PostURL,
			},
			PersonalizedAt: parseTime(entry.PersonalizedAt),
			SentAt:         parseTime(entry.SentAt),
			UpdatedAt:      parseTime(entry.UpdatedAt),
			Error:          entry.Error,
		}
	}

	return domain.Campaign{
		ID:              domain.CampaignID(id),
		Name:            schema.Name,
		State:           domain.CampaignState(schema.Status),
		CreatedAt:       parseTime(schema.CreatedAt),
		MessageTemplate: schema.MessageTemplate,
		Stats: domain.CampaignStats{
			Sent:   schema.Stats.Sent,
			Errors: schema.Stats.Errors,
		},
		Targets: targets,
	}
}
