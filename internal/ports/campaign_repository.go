package ports

import (
	"context"

	"github.com/bnema/ghostreel/internal/domain"
)

type CampaignRepository interface {
	GetByID(ctx context.Context, id domain.CampaignID) (domain.Campaign, error)
	List(ctx context.Context) ([]domain.Campaign, error)
	Save(ctx context.Context, campaign domain.Campaign) error
	// Update runs fn against the stored campaign inside one critical section
	// and persists the result when fn returns nil.
	Update(ctx context.Context, id domain.CampaignID, fn func(*domain.Campaign) error) (domain.Campaign, error)
	Delete(ctx context.Context, ids []domain.CampaignID) (deleted []domain.CampaignID, notFound []domain.CampaignID, err error)
	DeleteAll(ctx context.Context) ([]domain.CampaignID, error)
}

type ChunkCatalog interface {
	Load(ctx context.Context) (map[string]domain.Chunk, error)
	Save(ctx context.Context, chunks map[string]domain.Chunk) error
}

type SelectionHistoryRepository interface {
	Load(ctx context.Context) (domain.SelectionHistory, error)
	Save(ctx context.Context, history domain.SelectionHistory) error
}

type DatasetLoader interface {
	Load(ctx context.Context, path string) ([]domain.Profile, error)
}
