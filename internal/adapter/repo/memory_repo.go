package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"studio/internal/domain"
)

// MemoryRepository keeps renders and campaigns in process. The API uses it
// when no database is configured, and the CLI always does.
type MemoryRepository struct {
	mu        sync.Mutex
	renders   map[string]domain.RenderResult
	campaigns map[string]*domain.Campaign
	order     []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		renders:   make(map[string]domain.RenderResult),
		campaigns: make(map[string]*domain.Campaign),
	}
}

// Renders returns the render view of the repository.
func (m *MemoryRepository) Renders() domain.RenderRepository { return memoryRenders{m} }

// Campaigns returns the campaign view of the repository.
func (m *MemoryRepository) Campaigns() domain.CampaignRepository { return memoryCampaigns{m} }

type memoryRenders struct{ m *MemoryRepository }

func (r memoryRenders) Save(_ context.Context, res *domain.RenderResult) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.renders[res.ID] = *res
	return nil
}

func (r memoryRenders) GetByID(_ context.Context, id string) (*domain.RenderResult, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	res, ok := r.m.renders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &res, nil
}

type memoryCampaigns struct{ m *MemoryRepository }

func (r memoryCampaigns) Create(_ context.Context, c *domain.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = domain.CampaignPending
	}
	for i := range c.Assets {
		if c.Assets[i].ID == "" {
			c.Assets[i].ID = uuid.NewString()
		}
		if c.Assets[i].Status == "" {
			c.Assets[i].Status = domain.AssetPending
		}
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.campaigns[c.ID] = cloneCampaign(c)
	r.m.order = append(r.m.order, c.ID)
	return nil
}

func (r memoryCampaigns) GetByID(_ context.Context, id string) (*domain.Campaign, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneCampaign(c), nil
}

func (r memoryCampaigns) ClaimPending(_ context.Context) (*domain.Campaign, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, id := range r.m.order {
		c := r.m.campaigns[id]
		if c.Status == domain.CampaignPending {
			c.Status = domain.CampaignGenerating
			c.UpdatedAt = time.Now().UTC()
			return cloneCampaign(c), nil
		}
	}
	return nil, nil
}

func (r memoryCampaigns) UpdateStatus(_ context.Context, id string, status domain.CampaignStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.campaigns[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r memoryCampaigns) UpdateAsset(_ context.Context, campaignID string, asset domain.CampaignAsset) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.campaigns[campaignID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range c.Assets {
		if c.Assets[i].ID == asset.ID {
			c.Assets[i] = asset
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r memoryCampaigns) UpdateConsistency(_ context.Context, id string, score domain.ConsistencyScore) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.campaigns[id]
	if !ok {
		return domain.ErrNotFound
	}
	score.Recommendations = append([]string(nil), score.Recommendations...)
	c.Consistency = &score
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneCampaign(c *domain.Campaign) *domain.Campaign {
	cp := *c
	cp.Assets = append([]domain.CampaignAsset(nil), c.Assets...)
	if c.Consistency != nil {
		score := *c.Consistency
		score.Recommendations = append([]string(nil), c.Consistency.Recommendations...)
		cp.Consistency = &score
	}
	return &cp
}

var (
	_ domain.RenderRepository   = memoryRenders{}
	_ domain.CampaignRepository = memoryCampaigns{}
)
