package repo

import (
	"context"
	"testing"

	"studio/internal/domain"
)

func TestMemoryRepositoryCampaignLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryRepository()
	campaigns := m.Campaigns()

	c := &domain.Campaign{Assets: []domain.CampaignAsset{{AssetType: "instagram_post"}}}
	if err := campaigns.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	claimed, err := campaigns.ClaimPending(ctx)
	if err != nil || claimed == nil || claimed.ID != c.ID || claimed.Status != domain.CampaignGenerating {
		t.Fatalf("claim = %+v, %v", claimed, err)
	}
	if again, _ := campaigns.ClaimPending(ctx); again != nil {
		t.Fatal("campaign claimed twice")
	}

	asset := claimed.Assets[0]
	asset.Status = domain.AssetComplete
	if err := campaigns.UpdateAsset(ctx, c.ID, asset); err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}
	// callers hold copies
	claimed.Assets[0].Label = "mutated"
	got, _ := campaigns.GetByID(ctx, c.ID)
	if got.Assets[0].Status != domain.AssetComplete || got.Assets[0].Label == "mutated" {
		t.Fatalf("stored asset = %+v", got.Assets[0])
	}
	if err := campaigns.UpdateStatus(ctx, "missing", domain.CampaignComplete); err != domain.ErrNotFound {
		t.Fatalf("err = %v", err)
	}

	score := domain.ConsistencyScore{Overall: 9, Recommendations: []string{"keep going"}}
	if err := campaigns.UpdateConsistency(ctx, c.ID, score); err != nil {
		t.Fatalf("UpdateConsistency: %v", err)
	}
	score.Recommendations[0] = "mutated"
	got, _ = campaigns.GetByID(ctx, c.ID)
	if got.Consistency == nil || got.Consistency.Overall != 9 || got.Consistency.Recommendations[0] != "keep going" {
		t.Fatalf("consistency = %+v", got.Consistency)
	}
	if err := campaigns.UpdateConsistency(ctx, "missing", score); err != domain.ErrNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestMemoryRepositoryRenders(t *testing.T) {
	t.Parallel()
	renders := NewMemoryRepository().Renders()
	res := &domain.RenderResult{SessionID: "s"}
	if err := renders.Save(context.Background(), res); err != nil || res.ID == "" {
		t.Fatalf("Save: %v id=%q", err, res.ID)
	}
	got, err := renders.GetByID(context.Background(), res.ID)
	if err != nil || got.SessionID != "s" {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}
	if _, err := renders.GetByID(context.Background(), "x"); err != domain.ErrNotFound {
		t.Fatalf("err = %v", err)
	}
}
