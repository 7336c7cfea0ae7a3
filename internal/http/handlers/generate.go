package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"studio/internal/blueprint"
	"studio/internal/brandlock"
	"studio/internal/domain"
	"studio/internal/pipeline"
)

type generateRequest struct {
	Brand              *domain.BrandProfile `json:"brand"`
	AssetType          string               `json:"assetType"`
	UserPrompt         string               `json:"userPrompt"`
	BrandLockEnabled   bool                 `json:"brandLockEnabled"`
	DesignConstraints  json.RawMessage      `json:"designConstraints"`
	LogoImageURL       string               `json:"logoImageUrl"`
	CampaignMemoryHint string               `json:"campaignMemoryHint"`
	SessionID          string               `json:"sessionId"`
	HeadlineOverride   string               `json:"headlineOverride"`
}

func (req generateRequest) input() pipeline.Input {
	return pipeline.Input{
		Brand:              req.Brand,
		AssetType:          req.AssetType,
		UserPrompt:         req.UserPrompt,
		BrandLockEnabled:   req.BrandLockEnabled,
		DesignConstraints:  brandlock.ParseConstraints(req.DesignConstraints),
		LogoImageURL:       strings.TrimSpace(req.LogoImageURL),
		CampaignMemoryHint: req.CampaignMemoryHint,
		SessionID:          req.SessionID,
		HeadlineOverride:   req.HeadlineOverride,
	}
}

// Generate runs the full pipeline for one asset. A result without image URLs
// means background synthesis failed and the caller may retry.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !a.decode(w, r, &req) {
		return
	}
	res, err := a.pipeline.Run(r.Context(), req.input())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}

type blueprintRequest struct {
	generateRequest
	Brief *domain.CreativeBrief `json:"brief"`
}

// Blueprints previews the blueprint for an asset type. With a brief the
// factory runs alone; without one the strategy stage resolves the brief first.
func (a *App) Blueprints(w http.ResponseWriter, r *http.Request) {
	var req blueprintRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Brief != nil {
		in := req.input()
		bp := blueprint.Create(req.AssetType, *req.Brief)
		bp = brandlock.Apply(bp, in.DesignConstraints, in.BrandLockEnabled)
		a.json(w, http.StatusOK, pipeline.Plan{Blueprint: bp, Provider: "request"})
		return
	}
	plan, err := a.pipeline.Plan(r.Context(), req.input())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, plan)
}

// Layouts lists the registered asset types.
func (a *App) Layouts(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"layouts": blueprint.Entries()})
}
