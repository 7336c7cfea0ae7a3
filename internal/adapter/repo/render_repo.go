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

// RenderRepositoryPG implements domain.RenderRepository on PostgreSQL.
type RenderRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewRenderRepository constructs a render repository.
func NewRenderRepository(sql infra.SQLExecutor) *RenderRepositoryPG {
	return &RenderRepositoryPG{sql: sql}
}

// Save inserts the render together with its serialized blueprint. A missing
// ID is assigned.
func (r *RenderRepositoryPG) Save(ctx context.Context, res *domain.RenderResult) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	bp, err := json.Marshal(res.Blueprint)
	if err != nil {
		return fmt.Errorf("encode blueprint: %w", err)
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertRender,
		res.ID, res.SessionID, res.BrandID, res.Blueprint.AssetTypeSlug,
		res.BackgroundURL, res.FinalImageURL, string(bp), res.FinalPrompt,
		res.Width, res.Height, res.Composited, res.RenderBackend, res.StrategySource, res.CreatedAt,
	)
	return err
}

// GetByID loads a render. Unknown ids return domain.ErrNotFound.
func (r *RenderRepositoryPG) GetByID(ctx context.Context, id string) (*domain.RenderResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	var (
		res domain.RenderResult
		bp  []byte
	)
	err := r.sql.QueryRow(ctx, sqlinline.QSelectRenderByID, id).Scan(
		&res.ID, &res.SessionID, &res.BrandID, &res.BackgroundURL, &res.FinalImageURL, &bp,
		&res.FinalPrompt, &res.Width, &res.Height, &res.Composited, &res.RenderBackend, &res.StrategySource, &res.CreatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(bp, &res.Blueprint); err != nil {
		return nil, fmt.Errorf("decode blueprint: %w", err)
	}
	return &res, nil
}

var _ domain.RenderRepository = (*RenderRepositoryPG)(nil)
