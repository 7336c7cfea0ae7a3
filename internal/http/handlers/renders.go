package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studio/internal/brandlock"
	"studio/internal/domain"
	"studio/internal/pipeline"
)

func (a *App) GetRender(w http.ResponseWriter, r *http.Request) {
	if a.renders == nil {
		a.unavailable(w, "render persistence")
		return
	}
	res, err := a.renders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}

type regenerateRequest struct {
	domain.IntentOverrides
	Brand             *domain.BrandProfile `json:"brand"`
	BrandLockEnabled  bool                 `json:"brandLockEnabled"`
	DesignConstraints json.RawMessage      `json:"designConstraints"`
	LogoImageURL      string               `json:"logoImageUrl"`
	SessionID         string               `json:"sessionId"`
}

// Regenerate re-renders a stored blueprint with intent overrides. The
// strategy stage is skipped.
func (a *App) Regenerate(w http.ResponseWriter, r *http.Request) {
	if a.renders == nil {
		a.unavailable(w, "render persistence")
		return
	}
	stored, err := a.renders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req regenerateRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Brand != nil && req.Brand.ID == "" {
		req.Brand.ID = stored.BrandID
	}
	res, err := a.pipeline.Regenerate(r.Context(), pipeline.RegenerateInput{
		Blueprint:         stored.Blueprint,
		Overrides:         req.IntentOverrides,
		Brand:             req.Brand,
		BrandLockEnabled:  req.BrandLockEnabled,
		DesignConstraints: brandlock.ParseConstraints(req.DesignConstraints),
		LogoImageURL:      req.LogoImageURL,
		SessionID:         req.SessionID,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}
