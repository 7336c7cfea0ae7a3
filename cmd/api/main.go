package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"studio/internal/bootstrap"
	"studio/internal/http/handlers"
	"studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/ratelimit"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Build(ctx, cfg, logger, bootstrap.Options{})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to build services")
	}
	defer svc.Close()

	// Without Postgres no worker can see new campaigns, so the API runs them.
	var inflight sync.WaitGroup
	var dispatch func(string)
	if !svc.Persistent {
		dispatch = func(id string) {
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				if _, err := svc.Runner.Run(ctx, id); err != nil {
					logger.Error().Err(err).Str("campaign_id", id).Msg("api: campaign failed")
				}
			}()
		}
	}

	app := handlers.NewApp(handlers.Options{
		Pipeline:  svc.Pipeline,
		Renders:   svc.Renders,
		Campaigns: svc.Campaigns,
		Runner:    svc.Runner,
		Planner:   svc.Planner,
		Objects:   svc.Store,
		Dispatch:  dispatch,
		Logger:    &logger,
	})
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		Limiter:        ratelimit.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitBurst),
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      svc.Store.BasePath(),
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Strs("render_backends", svc.Backends).
			Bool("persistent", svc.Persistent).
			Str("strategy_provider", cfg.StrategyProvider).
			Msg("api: listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("api: http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: failed to shutdown server")
	}
	inflight.Wait()
	logger.Info().Msg("api: stopped")
}
