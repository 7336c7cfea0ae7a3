package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"studio/internal/brandlock"
	"studio/internal/domain"
	"studio/internal/middleware"
)

type campaignItem struct {
	AssetType string `json:"assetType"`
	Intent    string `json:"intent"`
	Label     string `json:"label"`
}

type campaignRequest struct {
	BrandID           string               `json:"brandId"`
	Brand             *domain.BrandProfile `json:"brand"`
	Title             string               `json:"title"`
	Items             []campaignItem       `json:"items"`
	BrandLockEnabled  bool                 `json:"brandLockEnabled"`
	DesignConstraints json.RawMessage      `json:"designConstraints"`
	LogoImageURL      string               `json:"logoImageUrl"`
}

func (req campaignRequest) campaign(userID string) (*domain.Campaign, error) {
	if len(req.Items) == 0 || len(req.Items) > domain.MaxCampaignAssets {
		return nil, fmt.Errorf("%w: a campaign needs 1 to %d items", domain.ErrInvalidRequest, domain.MaxCampaignAssets)
	}
	brand := req.Brand
	if brand == nil {
		brand = &domain.BrandProfile{}
	}
	if brand.ID == "" {
		brand.ID = strings.TrimSpace(req.BrandID)
	}
	c := &domain.Campaign{
		UserID:            userID,
		Title:             strings.TrimSpace(req.Title),
		Brand:             brand,
		BrandLockEnabled:  req.BrandLockEnabled,
		DesignConstraints: brandlock.ParseConstraints(req.DesignConstraints),
		LogoImageURL:      strings.TrimSpace(req.LogoImageURL),
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.AssetType) == "" {
			return nil, fmt.Errorf("%w: item %d has no assetType", domain.ErrInvalidRequest, i)
		}
		c.Assets = append(c.Assets, domain.CampaignAsset{
			AssetType: strings.TrimSpace(item.AssetType),
			Intent:    strings.TrimSpace(item.Intent),
			Label:     strings.TrimSpace(item.Label),
			Status:    domain.AssetPending,
		})
	}
	return c, nil
}

// CreateCampaign stores a pending campaign. With ?sync=true the assets are
// generated before the response is written; otherwise the campaign is handed
// to the dispatcher or left for the worker.
func (a *App) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	if a.campaigns == nil {
		a.unavailable(w, "campaign storage")
		return
	}
	var req campaignRequest
	if !a.decode(w, r, &req) {
		return
	}
	c, err := req.campaign(strings.TrimSpace(r.Header.Get(middleware.UserIDHeader)))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.campaigns.Create(r.Context(), c); err != nil {
		a.fail(w, r, err)
		return
	}

	sync, _ := strconv.ParseBool(r.URL.Query().Get("sync"))
	if sync && a.runner != nil {
		done, err := a.runner.Run(r.Context(), c.ID)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		a.json(w, http.StatusOK, done)
		return
	}
	if a.dispatch != nil {
		a.dispatch(c.ID)
	}
	a.json(w, http.StatusAccepted, c)
}

func (a *App) GetCampaign(w http.ResponseWriter, r *http.Request) {
	if a.campaigns == nil {
		a.unavailable(w, "campaign storage")
		return
	}
	c, err := a.campaigns.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, c)
}
