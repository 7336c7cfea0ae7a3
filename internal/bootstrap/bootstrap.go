// Package bootstrap assembles the generation pipeline from configuration. The
// api, worker and CLI commands share it so every entry point degrades the same
// way when a provider key, database or backend is missing.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"studio/internal/adapter/repo"
	"studio/internal/background"
	"studio/internal/compose"
	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/infra/credentials"
	"studio/internal/memory"
	"studio/internal/pipeline"
	"studio/internal/storage"
	"studio/internal/strategy"
)

const fetchTimeout = 30 * time.Second

// Options adjusts how Build treats optional infrastructure.
type Options struct {
	// Backends overrides cfg.RenderBackends.
	Backends []string
	// RequireDatabase fails Build when DATABASE_URL is empty.
	RequireDatabase bool
	// SkipDatabase ignores DATABASE_URL and REDIS_URL and keeps everything in
	// process.
	SkipDatabase bool
}

// Services is the wired application graph.
type Services struct {
	Pipeline  *pipeline.Pipeline
	Runner    *pipeline.CampaignRunner
	Planner   strategy.Planner
	Renders   domain.RenderRepository
	Campaigns domain.CampaignRepository
	Memory    domain.MemoryStore
	Store     *storage.FileStore
	Backends  []string
	// Persistent reports whether renders and campaigns live in Postgres.
	Persistent bool

	pool  *pgxpool.Pool
	redis *redis.Client
}

// Close releases database and cache connections.
func (s *Services) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// Build wires storage, persistence, memory, providers and the compositing
// engine. Missing provider keys degrade to deterministic fallbacks instead of
// failing.
func Build(ctx context.Context, cfg *infra.Config, logger infra.Logger, opts Options) (*Services, error) {
	svc := &Services{}
	ok := false
	defer func() {
		if !ok {
			svc.Close()
		}
	}()

	store, err := storage.NewFileStore(absPath(cfg.StoragePath), cfg.StorageBaseURL)
	if err != nil {
		return nil, fmt.Errorf("configure storage: %w", err)
	}
	svc.Store = store

	var sql infra.SQLExecutor
	switch {
	case cfg.DatabaseURL != "" && !opts.SkipDatabase:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		svc.pool = pool
		sql = infra.NewSQLRunner(pool, logger)
		svc.Renders = repo.NewRenderRepository(sql)
		svc.Campaigns = repo.NewCampaignRepository(sql)
		svc.Persistent = true
	case opts.RequireDatabase:
		return nil, errors.New("DATABASE_URL is required")
	default:
		mem := repo.NewMemoryRepository()
		svc.Renders = mem.Renders()
		svc.Campaigns = mem.Campaigns()
	}

	svc.Memory = memoryStore(ctx, cfg, sql, opts, svc, logger)

	var creds *credentials.Store
	if sql != nil {
		creds = credentials.NewStore(sql)
	}
	geminiKey := resolveKey(ctx, creds, credentials.ProviderGemini, cfg.GeminiAPIKey, logger)
	var openAIKey string
	if usesOpenAI(cfg) {
		openAIKey = resolveKey(ctx, creds, credentials.ProviderOpenAI, cfg.OpenAIAPIKey, logger)
	}

	resolver, err := buildResolver(ctx, cfg, geminiKey, openAIKey, logger)
	if err != nil {
		return nil, err
	}
	synth, err := buildBackgrounds(ctx, cfg, store, geminiKey, logger)
	if err != nil {
		return nil, err
	}

	backends := opts.Backends
	if len(backends) == 0 {
		backends = cfg.RenderBackends
	}
	compositor, names, err := buildCompositor(cfg, store, backends, logger)
	if err != nil {
		return nil, err
	}
	svc.Backends = names

	pipelineOpts := pipeline.Options{
		Strategy:    resolver,
		Backgrounds: synth,
		Store:       store,
		Encoder:     storage.Encoder{Format: cfg.OutputFormat, Quality: float32(cfg.WebPQuality)},
		Memory:      svc.Memory,
		Renders:     svc.Renders,
		Logger:      &logger,
	}
	if compositor != nil {
		pipelineOpts.Compositor = compositor
	}
	p, err := pipeline.New(pipelineOpts)
	if err != nil {
		return nil, err
	}
	svc.Pipeline = p
	planner, evaluator := buildCampaignStrategy(cfg, openAIKey, logger)
	svc.Planner = planner
	svc.Runner = pipeline.NewCampaignRunner(p, svc.Campaigns, svc.Memory, &logger).WithEvaluator(evaluator)

	ok = true
	return svc, nil
}

func memoryStore(ctx context.Context, cfg *infra.Config, sql infra.SQLExecutor, opts Options, svc *Services, logger infra.Logger) domain.MemoryStore {
	if cfg.RedisURL != "" && !opts.SkipDatabase {
		client, err := infra.NewRedisClient(ctx, cfg)
		if err == nil {
			svc.redis = client
			return memory.NewRedisStore(client, memory.RedisOptions{})
		}
		logger.Warn().Err(err).Msg("bootstrap: redis unavailable, falling back")
	}
	if sql != nil {
		return memory.NewPostgresStore(sql)
	}
	return memory.NewLocalStore()
}

func resolveKey(ctx context.Context, creds *credentials.Store, provider, envValue string, logger infra.Logger) string {
	key, err := creds.Resolve(ctx, provider, envValue)
	if err != nil {
		logger.Warn().Err(err).Str("provider", provider).Msg("bootstrap: failed to load api key from store")
		return strings.TrimSpace(envValue)
	}
	return key
}

func fallbackLogger(logger infra.Logger, stage, provider string) func(reason string, err error) {
	return func(reason string, err error) {
		logger.Warn().Err(err).
			Str("stage", stage).
			Str("provider", provider).
			Str("fallback_reason", reason).
			Msg("bootstrap: provider degraded")
	}
}

// usesOpenAI reports whether the strategy provider is the OpenAI default.
func usesOpenAI(cfg *infra.Config) bool {
	return cfg.StrategyProvider != "static" && cfg.StrategyProvider != "gemini"
}

func buildResolver(ctx context.Context, cfg *infra.Config, geminiKey, openAIKey string, logger infra.Logger) (strategy.Resolver, error) {
	limits := strategy.Limits{HeadlineMax: cfg.HeadlineMaxChars, FallbackHeadlineMax: cfg.FallbackHeadlineMaxChars}

	gemini := func(fallback strategy.Resolver) (*strategy.GeminiResolver, error) {
		return strategy.NewGeminiResolver(ctx, strategy.GeminiOptions{
			APIKey:     geminiKey,
			Model:      cfg.GeminiTextModel,
			Limits:     limits,
			Fallback:   fallback,
			OnFallback: fallbackLogger(logger, "strategy", "gemini"),
		})
	}

	switch cfg.StrategyProvider {
	case "static":
		return strategy.NewStaticResolver(limits), nil
	case "gemini":
		if geminiKey == "" {
			logger.Warn().Msg("bootstrap: gemini api key missing, strategy uses deterministic briefs")
		}
		return gemini(nil)
	default:
		var fallback strategy.Resolver
		if geminiKey != "" {
			g, err := gemini(nil)
			if err != nil {
				return nil, err
			}
			fallback = g
		}
		if openAIKey == "" {
			logger.Warn().Bool("gemini_fallback", fallback != nil).Msg("bootstrap: openai api key missing")
		}
		return strategy.NewOpenAIResolver(strategy.OpenAIOptions{
			APIKey:       openAIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			HTTPClient:   &http.Client{Timeout: cfg.StrategyTimeout},
			Limits:       limits,
			Fallback:     fallback,
			OnFallback:   fallbackLogger(logger, "strategy", "openai"),
			OnWarning: func(reason, detail string) {
				logger.Info().Str("stage", "strategy").Str("reason", reason).Str("detail", detail).Msg("bootstrap: openai warning")
			},
		}), nil
	}
}

// buildCampaignStrategy picks the campaign planner and consistency evaluator.
// Only the OpenAI provider has model-backed versions; the others plan and score
// deterministically.
func buildCampaignStrategy(cfg *infra.Config, openAIKey string, logger infra.Logger) (strategy.Planner, strategy.Evaluator) {
	if !usesOpenAI(cfg) {
		return strategy.StaticPlanner{}, strategy.StaticEvaluator{}
	}
	chat := func(stage string) strategy.ChatOptions {
		return strategy.ChatOptions{
			APIKey:       openAIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			HTTPClient:   &http.Client{Timeout: cfg.StrategyTimeout},
			OnFallback:   fallbackLogger(logger, stage, "openai"),
		}
	}
	return strategy.NewOpenAIPlanner(chat("plan"), nil), strategy.NewOpenAIEvaluator(chat("consistency"))
}

func buildBackgrounds(ctx context.Context, cfg *infra.Config, store storage.ObjectStore, geminiKey string, logger infra.Logger) (*background.Synthesizer, error) {
	var gen background.Generator = background.NewSyntheticGenerator()
	if cfg.BackgroundProvider == "gemini" {
		if geminiKey == "" {
			logger.Warn().Str("model", cfg.GeminiImageModel).Msg("bootstrap: gemini api key missing, using synthetic backgrounds")
		} else {
			g, err := background.NewGeminiGenerator(ctx, background.GeminiOptions{APIKey: geminiKey, Model: cfg.GeminiImageModel})
			if err != nil {
				return nil, err
			}
			gen = g
		}
	}
	return background.NewSynthesizer(background.Options{
		Generator:  gen,
		Store:      store,
		Timeout:    cfg.BackgroundTimeout,
		OnFallback: fallbackLogger(logger, "background", cfg.BackgroundProvider),
	})
}

func buildCompositor(cfg *infra.Config, store *storage.FileStore, backends []string, logger infra.Logger) (*compose.Engine, []string, error) {
	var renderers []compose.Renderer
	var names []string
	for _, name := range backends {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "browser":
			renderers = append(renderers, compose.NewBrowserRenderer(compose.BrowserOptions{ExecPath: cfg.ChromePath, Timeout: cfg.RenderTimeout}))
		case "canvas":
			renderers = append(renderers, compose.NewCanvasRenderer())
		case "", "none":
			continue
		default:
			logger.Warn().Str("backend", name).Msg("bootstrap: unknown render backend ignored")
			continue
		}
		names = append(names, strings.ToLower(strings.TrimSpace(name)))
	}
	if len(renderers) == 0 {
		logger.Warn().Msg("bootstrap: no render backend, results carry the bare background")
		return nil, nil, nil
	}
	engine, err := compose.NewEngine(compose.EngineOptions{
		Renderers: renderers,
		Images:    storage.NewFetcher(&http.Client{Timeout: fetchTimeout}, store),
		Timeout:   cfg.RenderTimeout,
		OnOutcome: func(backend, outcome string, err error) {
			infra.RenderOutcomes.WithLabelValues(backend, outcome).Inc()
			if err != nil {
				logger.Warn().Err(err).Str("stage", "compose").Str("backend", backend).Msg("bootstrap: render backend failed")
			}
		},
		OnLogoError: func(url string, err error) {
			logger.Warn().Err(err).Str("stage", "compose").Str("logo_url", url).Msg("bootstrap: logo skipped")
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return engine, names, nil
}

func absPath(p string) string {
	if p == "" {
		p = "./storage"
	}
	if filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
