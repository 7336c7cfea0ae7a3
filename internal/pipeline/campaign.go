package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/memory"
	"studio/internal/strategy"
)

const (
	maxLabelLen  = 40
	defaultLabel = "Asset"
)

// Generator runs one asset. *Pipeline satisfies it.
type Generator interface {
	Run(ctx context.Context, in Input) (*domain.RenderResult, error)
}

// CampaignRunner generates the assets of a campaign one at a time so each
// item sees the strategy outcomes of the items before it.
type CampaignRunner struct {
	gen       Generator
	campaigns domain.CampaignRepository
	memory    domain.MemoryStore
	evaluator strategy.Evaluator
	logger    infra.Logger
}

// NewCampaignRunner wires a runner. mem may be nil.
func NewCampaignRunner(gen Generator, campaigns domain.CampaignRepository, mem domain.MemoryStore, logger *infra.Logger) *CampaignRunner {
	if mem == nil {
		mem = memory.NopStore{}
	}
	l := infra.NopLogger()
	if logger != nil {
		l = *logger
	}
	return &CampaignRunner{gen: gen, campaigns: campaigns, memory: mem, evaluator: strategy.StaticEvaluator{}, logger: l}
}

// WithEvaluator replaces the deterministic consistency scoring.
func (r *CampaignRunner) WithEvaluator(e strategy.Evaluator) *CampaignRunner {
	if e != nil {
		r.evaluator = e
	}
	return r
}

// Run loads the campaign, marks it generating and processes its pending
// assets.
func (r *CampaignRunner) Run(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	c, err := r.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	switch c.Status {
	case domain.CampaignGenerating, domain.CampaignComplete:
		return c, domain.ErrCampaignBusy
	}
	if len(c.PendingAssets()) == 0 {
		return c, domain.ErrNothingPending
	}
	if err := r.campaigns.UpdateStatus(ctx, c.ID, domain.CampaignGenerating); err != nil {
		return nil, fmt.Errorf("mark campaign generating: %w", err)
	}
	c.Status = domain.CampaignGenerating
	return r.Execute(ctx, c)
}

// Execute processes the pending assets of a campaign already marked
// generating, for example one returned by ClaimPending.
func (r *CampaignRunner) Execute(ctx context.Context, c *domain.Campaign) (*domain.Campaign, error) {
	log := r.logger.With().Str("campaign_id", c.ID).Logger()
	brandID := brandIDOf(c.Brand)

	var snap domain.MemorySnapshot
	if brandID != "" {
		loaded, err := r.memory.Load(ctx, brandID)
		if err != nil {
			log.Warn().Err(err).Msg("campaign: load memory failed")
		} else {
			snap = loaded
		}
	}

	processed := 0
	prompts := map[string]string{}
	for i := range c.Assets {
		if processed == domain.MaxCampaignAssets {
			break
		}
		asset := &c.Assets[i]
		if asset.Status != domain.AssetPending {
			continue
		}
		if err := ctx.Err(); err != nil {
			return c, err
		}
		processed++

		asset.Status = domain.AssetGenerating
		if err := r.campaigns.UpdateAsset(ctx, c.ID, *asset); err != nil {
			log.Warn().Err(err).Str("asset_id", asset.ID).Msg("campaign: mark asset generating failed")
		}

		result, err := r.gen.Run(ctx, Input{
			Brand:              c.Brand,
			AssetType:          asset.AssetType,
			UserPrompt:         asset.Intent,
			BrandLockEnabled:   c.BrandLockEnabled,
			DesignConstraints:  c.DesignConstraints,
			LogoImageURL:       c.LogoImageURL,
			CampaignMemoryHint: memory.Hint(snap),
			SessionID:          asset.ID,
		})
		switch {
		case err != nil:
			asset.Status = domain.AssetFailed
			log.Error().Err(err).Str("asset_id", asset.ID).Msg("campaign: asset failed")
		case !result.HasImage():
			asset.Status = domain.AssetFailed
			asset.RenderID = result.ID
			log.Warn().Str("asset_id", asset.ID).Str("render_id", result.ID).Msg("campaign: no image produced")
		default:
			applyResult(asset, result)
			prompts[asset.ID] = result.FinalPrompt
			snap = remember(snap, result.Blueprint.Intent)
			log.Info().Str("asset_id", asset.ID).Str("render_id", result.ID).Bool("composited", result.Composited).Msg("campaign: asset generated")
		}
		if err := r.campaigns.UpdateAsset(ctx, c.ID, *asset); err != nil {
			log.Error().Err(err).Str("asset_id", asset.ID).Msg("campaign: update asset failed")
		}
	}

	status := domain.CampaignFailed
	if hasImage(c.Assets) {
		status = domain.CampaignComplete
		r.score(ctx, c, prompts, log)
	}
	if err := r.campaigns.UpdateStatus(ctx, c.ID, status); err != nil {
		return c, fmt.Errorf("mark campaign %s: %w", status, err)
	}
	c.Status = status
	return c, nil
}

// score rates the finished assets and stores the result. Failures are logged
// only.
func (r *CampaignRunner) score(ctx context.Context, c *domain.Campaign, prompts map[string]string, log infra.Logger) {
	req := strategy.EvaluationRequest{Brand: c.Brand}
	for _, a := range c.Assets {
		if !a.HasImage() {
			continue
		}
		req.Assets = append(req.Assets, strategy.EvaluatedAsset{
			Label:       a.Label,
			AssetType:   a.AssetType,
			FinalPrompt: prompts[a.ID],
			Tone:        a.Tone,
			Composited:  a.Composited,
		})
	}
	start := time.Now()
	score, err := r.evaluator.Evaluate(ctx, req)
	observe("consistency", start)
	if err != nil || score == nil {
		log.Warn().Err(err).Str("stage", "consistency").Msg("campaign: consistency evaluation failed")
		return
	}
	if score.FallbackReason != "" {
		infra.StageFallbacks.WithLabelValues("consistency", score.FallbackReason).Inc()
	}
	c.Consistency = score
	if err := r.campaigns.UpdateConsistency(ctx, c.ID, *score); err != nil {
		log.Warn().Err(err).Str("stage", "consistency").Msg("campaign: store consistency failed")
	}
}

func hasImage(assets []domain.CampaignAsset) bool {
	for _, a := range assets {
		if a.HasImage() {
			return true
		}
	}
	return false
}

// ExecuteNext claims the oldest pending campaign and runs it. It returns
// domain.ErrNotFound when nothing is waiting.
func (r *CampaignRunner) ExecuteNext(ctx context.Context) (*domain.Campaign, error) {
	c, err := r.campaigns.ClaimPending(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	c, err = r.Execute(ctx, c)
	if err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Error().Err(err).Str("campaign_id", c.ID).Msg("campaign: run failed")
	}
	return c, err
}

func applyResult(asset *domain.CampaignAsset, result *domain.RenderResult) {
	asset.Status = domain.AssetComplete
	asset.RenderID = result.ID
	asset.ImageURL = result.ImageURL()
	asset.Width = result.Width
	asset.Height = result.Height
	asset.Kind = domain.KindForAssetType(result.Blueprint.AssetTypeSlug)
	asset.Label = AssetLabel(result.Blueprint.Intent.Headline, asset.Label)
	asset.Objective = result.Blueprint.Intent.Objective
	asset.Framework = result.Blueprint.Intent.MessagingFramework
	asset.Tone = result.Blueprint.Intent.EmotionalTone
	asset.Composited = result.Composited
}

// AssetLabel picks the display label of a generated asset.
func AssetLabel(headline, label string) string {
	if h := domain.Truncate(headline, maxLabelLen); h != "" {
		return h
	}
	if l := strings.TrimSpace(label); l != "" {
		return l
	}
	return defaultLabel
}

// remember prepends the brief outcome so the next item's hint reflects it.
func remember(snap domain.MemorySnapshot, brief domain.CreativeBrief) domain.MemorySnapshot {
	e := memory.EntryFromBrief(brief)
	if e.Objective != "" {
		snap.Objectives = append([]domain.Objective{e.Objective}, snap.Objectives...)
	}
	if e.MessagingFramework != "" {
		snap.MessagingFrameworks = append([]string{e.MessagingFramework}, snap.MessagingFrameworks...)
	}
	if e.EmotionalTone != "" {
		snap.EmotionalTones = append([]string{e.EmotionalTone}, snap.EmotionalTones...)
	}
	snap.AssetCount++
	return snap
}
