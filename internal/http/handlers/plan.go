package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studio/internal/domain"
	"studio/internal/strategy"
)

type planRequest struct {
	Brand        *domain.BrandProfile `json:"brand"`
	Goal         string               `json:"goal"`
	CampaignType string               `json:"campaignType"`
	Context      string               `json:"context"`
}

type planResponse struct {
	*strategy.CampaignPlan
	// Items can be posted to /v1/campaigns as they are.
	Items          []campaignItem `json:"items"`
	FallbackReason string         `json:"fallbackReason,omitempty"`
}

// PlanCampaign proposes the asset list of a campaign without generating it.
func (a *App) PlanCampaign(w http.ResponseWriter, r *http.Request) {
	if a.planner == nil {
		a.unavailable(w, "campaign planner")
		return
	}
	var req planRequest
	if !a.decode(w, r, &req) {
		return
	}
	if len([]rune(strings.TrimSpace(req.Goal))) > strategy.MaxGoalLen {
		a.fail(w, r, fmt.Errorf("%w: goal exceeds %d characters", domain.ErrInvalidRequest, strategy.MaxGoalLen))
		return
	}
	plan, err := a.planner.Plan(r.Context(), strategy.PlanRequest{
		Brand:        req.Brand,
		Goal:         req.Goal,
		CampaignType: req.CampaignType,
		Context:      req.Context,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	resp := planResponse{CampaignPlan: plan, FallbackReason: plan.FallbackReason()}
	for _, asset := range plan.Assets {
		resp.Items = append(resp.Items, campaignItem{
			AssetType: asset.AssetType,
			Intent:    asset.Intent,
			Label:     planLabel(asset.AssetType),
		})
	}
	a.json(w, http.StatusOK, resp)
}

// planLabel turns instagram_story into "Instagram Story".
func planLabel(assetType string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(assetType, "_", " "))
}
