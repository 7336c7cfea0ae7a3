package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/pipeline"
	"studio/internal/strategy"
)

// maxBodyBytes caps request payloads; brands carry logos as URLs, not bytes.
const maxBodyBytes = 1 << 20

// Generator is the part of the pipeline the handlers call.
type Generator interface {
	Run(ctx context.Context, in pipeline.Input) (*domain.RenderResult, error)
	Plan(ctx context.Context, in pipeline.Input) (*pipeline.Plan, error)
	Regenerate(ctx context.Context, in pipeline.RegenerateInput) (*domain.RenderResult, error)
}

// CampaignRunner generates a stored campaign inline.
type CampaignRunner interface {
	Run(ctx context.Context, campaignID string) (*domain.Campaign, error)
}

// ObjectReader resolves stored image URLs back to their bytes.
type ObjectReader interface {
	KeyForURL(raw string) (string, bool)
	Read(ctx context.Context, key string) ([]byte, error)
}

// Options wires an App. Everything except Pipeline is optional;
// the routes that need them answer 503 when they are missing.
type Options struct {
	Pipeline  Generator
	Renders   domain.RenderRepository
	Campaigns domain.CampaignRepository
	Runner    CampaignRunner
	Planner   strategy.Planner
	Objects   ObjectReader
	// Dispatch hands a freshly created campaign to background processing.
	// Leave nil when a worker polls the campaign table.
	Dispatch func(campaignID string)
	Logger   *infra.Logger
}

type App struct {
	pipeline  Generator
	renders   domain.RenderRepository
	campaigns domain.CampaignRepository
	runner    CampaignRunner
	planner   strategy.Planner
	objects   ObjectReader
	dispatch  func(string)
	logger    infra.Logger
}

func NewApp(opts Options) *App {
	logger := infra.NopLogger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &App{
		pipeline:  opts.Pipeline,
		renders:   opts.Renders,
		campaigns: opts.Campaigns,
		runner:    opts.Runner,
		planner:   opts.Planner,
		objects:   opts.Objects,
		dispatch:  opts.Dispatch,
		logger:    logger,
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// fail maps a domain error onto a response. Unknown errors are logged and
// reported as internal.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrInvalidRequest):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrCampaignBusy):
		a.error(w, http.StatusConflict, "campaign_busy", err.Error())
	case errors.Is(err, domain.ErrNothingPending):
		a.error(w, http.StatusConflict, "nothing_pending", err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		a.error(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.error(w, http.StatusGatewayTimeout, "timeout", "request cancelled")
	default:
		a.logger.Error().Err(err).Str("path", r.URL.Path).Msg("handlers: request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// decode reads a JSON body. An empty body leaves dst untouched.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

func (a *App) unavailable(w http.ResponseWriter, what string) {
	a.error(w, http.StatusServiceUnavailable, "unavailable", what+" is not configured")
}
