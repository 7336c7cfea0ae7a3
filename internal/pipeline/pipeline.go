// Package pipeline runs the creative generation stages in order: strategy,
// blueprint, brand lock, background, compositing. Every stage after strategy
// degrades instead of failing, so a run yields at least a background image
// whenever the synthesizer succeeds.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studio/internal/background"
	"studio/internal/blueprint"
	"studio/internal/brandlock"
	"studio/internal/compose"
	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/memory"
	"studio/internal/storage"
	"studio/internal/strategy"
)

// Input is one single-asset generation request.
type Input struct {
	Brand              *domain.BrandProfile
	AssetType          string
	UserPrompt         string
	BrandLockEnabled   bool
	DesignConstraints  *domain.DesignConstraints
	LogoImageURL       string
	CampaignMemoryHint string
	SessionID          string
	// HeadlineOverride replaces the resolved headline when set.
	HeadlineOverride string
}

// RegenerateInput re-renders a stored blueprint without calling the strategy
// stage again.
type RegenerateInput struct {
	Blueprint         domain.Blueprint
	Overrides         domain.IntentOverrides
	Brand             *domain.BrandProfile
	BrandLockEnabled  bool
	DesignConstraints *domain.DesignConstraints
	LogoImageURL      string
	SessionID         string
}

// Backgrounds produces the background raster.
type Backgrounds interface {
	Synthesize(ctx context.Context, req background.Request) *background.Result
}

// Compositor draws the brief onto the background.
type Compositor interface {
	Compose(ctx context.Context, in compose.Input) (*compose.Output, error)
}

// Options wires a Pipeline. Compositor, Memory and Renders are optional.
type Options struct {
	Strategy    strategy.Resolver
	Backgrounds Backgrounds
	Compositor  Compositor
	Store       storage.ObjectStore
	Encoder     storage.Encoder
	Memory      domain.MemoryStore
	Renders     domain.RenderRepository
	Logger      *infra.Logger
	Now         func() time.Time
}

// Pipeline is safe for concurrent use when its collaborators are.
type Pipeline struct {
	strategy    strategy.Resolver
	backgrounds Backgrounds
	compositor  Compositor
	store       storage.ObjectStore
	encoder     storage.Encoder
	memory      domain.MemoryStore
	renders     domain.RenderRepository
	logger      infra.Logger
	now         func() time.Time
}

const regenerateSource = "regenerate"

// New validates opts.
func New(opts Options) (*Pipeline, error) {
	if opts.Strategy == nil {
		return nil, errors.New("pipeline: strategy resolver is required")
	}
	if opts.Backgrounds == nil {
		return nil, errors.New("pipeline: background synthesizer is required")
	}
	if opts.Compositor != nil && opts.Store == nil {
		return nil, errors.New("pipeline: store is required for composites")
	}
	logger := infra.NopLogger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	mem := opts.Memory
	if mem == nil {
		mem = memory.NopStore{}
	}
	return &Pipeline{
		strategy:    opts.Strategy,
		backgrounds: opts.Backgrounds,
		compositor:  opts.Compositor,
		store:       opts.Store,
		encoder:     opts.Encoder,
		memory:      mem,
		renders:     opts.Renders,
		logger:      logger,
		now:         now,
	}, nil
}

// Plan is the outcome of the stages that precede rendering.
type Plan struct {
	Blueprint      domain.Blueprint `json:"blueprint"`
	Provider       string           `json:"provider"`
	FallbackReason string           `json:"fallbackReason,omitempty"`
	MemoryHint     string           `json:"memoryHint,omitempty"`
}

// Plan resolves the strategy and builds the brand-locked blueprint without
// synthesizing or compositing anything.
func (p *Pipeline) Plan(ctx context.Context, in Input) (*Plan, error) {
	return p.plan(ctx, in, p.logger.With().Str("asset_type", in.AssetType).Logger())
}

func (p *Pipeline) plan(ctx context.Context, in Input, log infra.Logger) (*Plan, error) {
	brandID := brandIDOf(in.Brand)
	hint := strings.TrimSpace(in.CampaignMemoryHint)
	if hint == "" && brandID != "" {
		snap, err := p.memory.Load(ctx, brandID)
		if err != nil {
			log.Warn().Err(err).Str("stage", "memory").Msg("pipeline: load campaign memory failed")
		} else {
			hint = memory.Hint(snap)
		}
	}

	start := time.Now()
	res, err := p.strategy.Resolve(ctx, strategy.Request{
		Brand:      in.Brand,
		Intent:     in.UserPrompt,
		AssetType:  in.AssetType,
		MemoryHint: hint,
	})
	observe("strategy", start)
	if err != nil {
		return nil, fmt.Errorf("resolve strategy: %w", err)
	}
	reason := res.FallbackReason()
	if reason != "" {
		infra.StageFallbacks.WithLabelValues("strategy", reason).Inc()
		log.Info().Str("stage", "strategy").Str("provider", res.Provider).Str("fallback_reason", reason).Msg("pipeline: strategy degraded")
	}

	brief := res.Brief
	if v := domain.Truncate(in.HeadlineOverride, domain.MaxHeadlineLen); v != "" {
		brief.Headline = v
	}

	start = time.Now()
	bp := blueprint.Create(in.AssetType, brief)
	bp = brandlock.Apply(bp, in.DesignConstraints, in.BrandLockEnabled)
	observe("blueprint", start)

	return &Plan{Blueprint: bp, Provider: res.Provider, FallbackReason: reason, MemoryHint: hint}, nil
}

// Run executes every stage for one asset.
func (p *Pipeline) Run(ctx context.Context, in Input) (*domain.RenderResult, error) {
	sid := strings.TrimSpace(in.SessionID)
	if sid == "" {
		sid = uuid.NewString()
	}
	brandID := brandIDOf(in.Brand)
	log := p.logger.With().Str("session_id", sid).Str("asset_type", in.AssetType).Logger()

	plan, err := p.plan(ctx, in, log)
	if err != nil {
		return nil, err
	}

	result := p.render(ctx, renderJob{
		sessionID:   sid,
		blueprint:   plan.Blueprint,
		brand:       in.Brand,
		lockEnabled: in.BrandLockEnabled,
		constraints: in.DesignConstraints,
		logoURL:     in.LogoImageURL,
		source:      plan.Provider,
	}, log)

	if brandID != "" && result.HasImage() {
		if err := p.memory.Record(ctx, brandID, memory.EntryFromBrief(result.Blueprint.Intent)); err != nil {
			log.Warn().Err(err).Str("stage", "memory").Msg("pipeline: record campaign memory failed")
		}
	}
	return result, nil
}

// Regenerate merges the overrides into the stored blueprint, re-applies brand
// lock and re-enters at the background stage.
func (p *Pipeline) Regenerate(ctx context.Context, in RegenerateInput) (*domain.RenderResult, error) {
	sid := strings.TrimSpace(in.SessionID)
	if sid == "" {
		sid = uuid.NewString()
	}
	log := p.logger.With().Str("session_id", sid).Str("asset_type", in.Blueprint.AssetTypeSlug).Logger()

	bp := in.Blueprint.Merge(in.Overrides)
	bp = brandlock.Apply(bp, in.DesignConstraints, in.BrandLockEnabled)
	if bp.Width <= 0 || bp.Height <= 0 {
		bp.Width, bp.Height = blueprint.Dimensions(bp.AspectRatio)
	}
	return p.render(ctx, renderJob{
		sessionID:   sid,
		blueprint:   bp,
		brand:       in.Brand,
		lockEnabled: in.BrandLockEnabled,
		constraints: in.DesignConstraints,
		logoURL:     in.LogoImageURL,
		source:      regenerateSource,
	}, log), nil
}

type renderJob struct {
	sessionID   string
	blueprint   domain.Blueprint
	brand       *domain.BrandProfile
	lockEnabled bool
	constraints *domain.DesignConstraints
	logoURL     string
	source      string
}

func (p *Pipeline) render(ctx context.Context, job renderJob, log infra.Logger) *domain.RenderResult {
	bp := job.blueprint
	locked := job.lockEnabled && job.constraints != nil
	brand := job.brand
	if locked && brand != nil {
		colors, fonts := brandlock.FilterBrandAssets(brand.Colors, brand.Fonts, job.constraints, true)
		brand = brand.WithAssets(colors, fonts)
	}

	result := &domain.RenderResult{
		ID:             uuid.NewString(),
		SessionID:      job.sessionID,
		BrandID:        brandIDOf(job.brand),
		Blueprint:      bp,
		Width:          bp.Width,
		Height:         bp.Height,
		StrategySource: job.source,
		CreatedAt:      p.now().UTC(),
	}

	start := time.Now()
	bg := p.backgrounds.Synthesize(ctx, background.Request{Blueprint: bp, Brand: brand, SessionID: job.sessionID})
	observe("background", start)
	result.FinalPrompt = bg.Prompt
	if bg.URL == "" {
		infra.StageFallbacks.WithLabelValues("background", coalesce(bg.FallbackReason, "empty")).Inc()
		log.Warn().Str("stage", "background").Str("provider", bg.Provider).Str("fallback_reason", bg.FallbackReason).Msg("pipeline: no background produced")
		return p.save(ctx, result, log)
	}
	result.BackgroundURL = bg.URL
	result.FinalImageURL = bg.URL

	if p.compositor != nil {
		p.composite(ctx, result, job, brand, locked, log)
	}
	return p.save(ctx, result, log)
}

func (p *Pipeline) composite(ctx context.Context, result *domain.RenderResult, job renderJob, brand *domain.BrandProfile, locked bool, log infra.Logger) {
	in := compose.Input{
		Blueprint:     result.Blueprint,
		BackgroundURL: result.BackgroundURL,
		LogoURL:       coalesce(strings.TrimSpace(job.logoURL), brand.PrimaryLogo()),
		Colors:        brand.Palette(),
	}
	if locked {
		in.MinMarginPercent = job.constraints.MinMarginPercent
	}

	start := time.Now()
	out, err := p.compositor.Compose(ctx, in)
	observe("compose", start)
	if err != nil {
		infra.StageFallbacks.WithLabelValues("compose", "render_failed").Inc()
		log.Warn().Err(err).Str("stage", "compose").Str("fallback_reason", "render_failed").Msg("pipeline: compositing failed, using background")
		return
	}
	encoded, err := p.encoder.Encode(out.Image)
	if err != nil {
		infra.StageFallbacks.WithLabelValues("compose", "encode").Inc()
		log.Warn().Err(err).Str("stage", "compose").Str("fallback_reason", "encode").Msg("pipeline: encode composite failed, using background")
		return
	}
	url, err := p.store.Put(ctx, CompositeKey(job.sessionID, p.now(), encoded.Ext), encoded.Data, encoded.ContentType)
	if err != nil {
		infra.StageFallbacks.WithLabelValues("compose", "store").Inc()
		log.Warn().Err(err).Str("stage", "compose").Str("fallback_reason", "store").Msg("pipeline: store composite failed, using background")
		return
	}
	result.FinalImageURL = url
	result.Composited = true
	result.RenderBackend = out.Backend
}

// save persists the result when a repository is configured. A failed save
// keeps the generated images; the render id is cleared because it cannot be
// looked up later.
func (p *Pipeline) save(ctx context.Context, result *domain.RenderResult, log infra.Logger) *domain.RenderResult {
	if p.renders == nil {
		return result
	}
	if err := p.renders.Save(ctx, result); err != nil {
		infra.StageFallbacks.WithLabelValues("persist", "save_failed").Inc()
		log.Error().Err(err).Str("stage", "persist").Str("render_id", result.ID).Str("fallback_reason", "save_failed").Msg("pipeline: save render failed, returning unsaved result")
		result.ID = ""
	}
	return result
}

// CompositeKey is the object key of a composite written at t.
func CompositeKey(sessionID string, t time.Time, ext string) string {
	if ext == "" {
		ext = storage.FormatPNG
	}
	return fmt.Sprintf("composites/%s-%d.%s", sessionID, t.UnixMilli(), ext)
}

func observe(stage string, start time.Time) {
	infra.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func brandIDOf(b *domain.BrandProfile) string {
	if b == nil {
		return ""
	}
	return strings.TrimSpace(b.ID)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
