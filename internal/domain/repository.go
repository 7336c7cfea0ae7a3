package domain

import "context"

// RenderRepository persists render results together with their blueprint.
type RenderRepository interface {
	Save(ctx context.Context, result *RenderResult) error
	GetByID(ctx context.Context, id string) (*RenderResult, error)
}

// CampaignRepository persists campaigns and their assets.
type CampaignRepository interface {
	Create(ctx context.Context, c *Campaign) error
	GetByID(ctx context.Context, id string) (*Campaign, error)
	ClaimPending(ctx context.Context) (*Campaign, error)
	UpdateStatus(ctx context.Context, id string, status CampaignStatus) error
	UpdateAsset(ctx context.Context, campaignID string, asset CampaignAsset) error
	UpdateConsistency(ctx context.Context, id string, score ConsistencyScore) error
}

// MemoryEntry is one strategy outcome recorded for a brand.
type MemoryEntry struct {
	Objective          Objective
	MessagingFramework string
	EmotionalTone      string
}

// MemorySnapshot is the per-brand read model of recent strategy outcomes,
// newest first.
type MemorySnapshot struct {
	BrandID             string
	Objectives          []Objective
	MessagingFrameworks []string
	EmotionalTones      []string
	AssetCount          int
}

// MemoryStore reads and appends campaign memory.
type MemoryStore interface {
	Load(ctx context.Context, brandID string) (MemorySnapshot, error)
	Record(ctx context.Context, brandID string, entry MemoryEntry) error
}
