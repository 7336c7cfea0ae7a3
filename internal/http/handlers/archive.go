package handlers

import (
	"fmt"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
	"studio/pkg/zip"
)

// CampaignArchive downloads the finished images of a campaign as a zip.
// Assets hosted outside the object store are skipped.
func (a *App) CampaignArchive(w http.ResponseWriter, r *http.Request) {
	if a.campaigns == nil || a.objects == nil {
		a.unavailable(w, "campaign storage")
		return
	}
	c, err := a.campaigns.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	var assets []zip.Asset
	for i, asset := range c.Assets {
		if asset.Status != domain.AssetComplete || asset.ImageURL == "" {
			continue
		}
		key, ok := a.objects.KeyForURL(asset.ImageURL)
		if !ok {
			continue
		}
		data, err := a.objects.Read(r.Context(), key)
		if err != nil {
			a.logger.Warn().Err(err).Str("campaign_id", c.ID).Str("asset_id", asset.ID).Msg("handlers: archive asset unreadable")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("%02d-%s%s", i+1, asset.AssetType, path.Ext(key)),
			Data:     data,
			Modified: c.UpdatedAt,
		})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusConflict, "nothing_ready", "campaign has no finished assets")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="campaign-%s.zip"`, c.ID))
	w.WriteHeader(http.StatusOK)
	if err := zip.Write(w, assets); err != nil {
		a.logger.Error().Err(err).Str("campaign_id", c.ID).Msg("handlers: write archive failed")
	}
}
