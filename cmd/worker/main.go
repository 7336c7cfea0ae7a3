package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"studio/internal/bootstrap"
	"studio/internal/domain"
	"studio/internal/infra"
)

// campaignExecutor is the part of pipeline.CampaignRunner the loop needs.
type campaignExecutor interface {
	ExecuteNext(ctx context.Context) (*domain.Campaign, error)
}

type campaignWorker struct {
	runner   campaignExecutor
	logger   infra.Logger
	interval time.Duration
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Workers rasterize on the canvas so hosts need no browser.
	svc, err := bootstrap.Build(ctx, cfg, logger, bootstrap.Options{
		Backends:        []string{"canvas"},
		RequireDatabase: true,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to build services")
	}
	defer svc.Close()

	worker := &campaignWorker{runner: svc.Runner, logger: logger, interval: cfg.WorkerPollInterval}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metrics := infra.NewHTTPServerAt(cfg.MetricsAddr, cfg, mux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("worker: metrics listening")
		return metrics.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metrics.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

// Run claims pending campaigns until ctx is cancelled.
func (w *campaignWorker) Run(ctx context.Context) error {
	interval := w.interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	w.logger.Info().Dur("poll_interval", interval).Msg("worker: started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if w.step(ctx) {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// step runs at most one campaign and reports whether one was claimed.
func (w *campaignWorker) step(ctx context.Context) bool {
	c, err := w.runner.ExecuteNext(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return false
	case err != nil && c == nil:
		w.logger.Error().Err(err).Msg("worker: failed to claim campaign")
		return false
	case err != nil:
		w.logger.Error().Err(err).Str("campaign_id", c.ID).Msg("worker: campaign failed")
		return true
	}
	w.logger.Info().Str("campaign_id", c.ID).Str("status", string(c.Status)).Int("assets", len(c.Assets)).Msg("worker: campaign finished")
	return true
}
