package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/sqlinline"
)

// CampaignRepositoryPG implements domain.CampaignRepository on PostgreSQL.
type CampaignRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewCampaignRepository constructs a campaign repository.
func NewCampaignRepository(sql infra.SQLExecutor) *CampaignRepositoryPG {
	return &CampaignRepositoryPG{sql: sql}
}

type assetRow struct {
	ID        string             `json:"id"`
	Position  int                `json:"position"`
	AssetType string             `json:"assetType"`
	Intent    string             `json:"intent"`
	Label     string             `json:"label"`
	Status    domain.AssetStatus `json:"status"`
}

// Create stores the campaign and its assets, assigning missing ids.
func (r *CampaignRepositoryPG) Create(ctx context.Context, c *domain.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = domain.CampaignPending
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	rows := make([]assetRow, 0, len(c.Assets))
	for i := range c.Assets {
		a := &c.Assets[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.Status == "" {
			a.Status = domain.AssetPending
		}
		rows = append(rows, assetRow{ID: a.ID, Position: i, AssetType: a.AssetType, Intent: a.Intent, Label: a.Label, Status: a.Status})
	}
	assets, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode assets: %w", err)
	}
	brand, err := jsonOrNil(c.Brand)
	if err != nil {
		return fmt.Errorf("encode brand: %w", err)
	}
	constraints, err := jsonOrNil(c.DesignConstraints)
	if err != nil {
		return fmt.Errorf("encode constraints: %w", err)
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertCampaign,
		c.ID, c.UserID, c.Title, string(c.Status), brand, c.BrandLockEnabled, constraints,
		c.LogoImageURL, now, string(assets),
	)
	return err
}

// GetByID loads a campaign with its assets in position order.
func (r *CampaignRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	var (
		c                               domain.Campaign
		status                          string
		brand, constraints, consistency []byte
	)
	err := r.sql.QueryRow(ctx, sqlinline.QSelectCampaignByID, id).Scan(
		&c.ID, &c.UserID, &c.Title, &status, &brand, &c.BrandLockEnabled, &constraints,
		&c.LogoImageURL, &c.CreatedAt, &c.UpdatedAt, &consistency,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Status = domain.CampaignStatus(status)
	if len(brand) > 0 {
		if err := json.Unmarshal(brand, &c.Brand); err != nil {
			return nil, fmt.Errorf("decode brand: %w", err)
		}
	}
	if len(constraints) > 0 {
		if err := json.Unmarshal(constraints, &c.DesignConstraints); err != nil {
			return nil, fmt.Errorf("decode constraints: %w", err)
		}
	}
	if len(consistency) > 0 {
		if err := json.Unmarshal(consistency, &c.Consistency); err != nil {
			return nil, fmt.Errorf("decode consistency: %w", err)
		}
	}

	rows, err := r.sql.Query(ctx, sqlinline.QSelectCampaignAssets, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			a                      domain.CampaignAsset
			assetStatus, kind, obj string
		)
		if err := rows.Scan(&a.ID, &a.AssetType, &a.Intent, &a.Label, &assetStatus, &kind, &a.RenderID, &a.ImageURL,
			&a.Width, &a.Height, &obj, &a.Framework, &a.Tone, &a.Composited); err != nil {
			return nil, err
		}
		a.Status = domain.AssetStatus(assetStatus)
		a.Kind = domain.AssetKind(kind)
		a.Objective = domain.Objective(obj)
		c.Assets = append(c.Assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ClaimPending flips the oldest pending campaign to generating and loads it.
// It returns nil, nil when nothing is pending.
func (r *CampaignRepositoryPG) ClaimPending(ctx context.Context) (*domain.Campaign, error) {
	var id string
	if err := r.sql.QueryRow(ctx, sqlinline.QClaimPendingCampaign).Scan(&id); err != nil {
		if infra.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *CampaignRepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateCampaignStatus, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CampaignRepositoryPG) UpdateAsset(ctx context.Context, campaignID string, a domain.CampaignAsset) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpdateCampaignAsset,
		a.ID, campaignID, string(a.Status), a.Label, string(a.Kind), a.RenderID, a.ImageURL,
		a.Width, a.Height, string(a.Objective), a.Framework, a.Tone, a.Composited,
	)
	return err
}

// UpdateConsistency stores the consistency score of a finished campaign.
func (r *CampaignRepositoryPG) UpdateConsistency(ctx context.Context, id string, score domain.ConsistencyScore) error {
	payload, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("encode consistency: %w", err)
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateCampaignConsistency, id, string(payload))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func jsonOrNil(v any) (*string, error) {
	switch t := v.(type) {
	case *domain.BrandProfile:
		if t == nil {
			return nil, nil
		}
	case *domain.DesignConstraints:
		if t == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

var _ domain.CampaignRepository = (*CampaignRepositoryPG)(nil)
