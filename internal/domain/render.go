package domain

import "time"

// RenderResult is the output of one pipeline run. Image fields are empty when
// the background could not be synthesized.
type RenderResult struct {
	ID             string    `json:"renderId,omitempty"`
	SessionID      string    `json:"sessionId"`
	BrandID        string    `json:"brandId,omitempty"`
	BackgroundURL  string    `json:"backgroundUrl,omitempty"`
	FinalImageURL  string    `json:"finalImageUrl,omitempty"`
	Blueprint      Blueprint `json:"blueprint"`
	FinalPrompt    string    `json:"finalPrompt"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Composited     bool      `json:"composited"`
	RenderBackend  string    `json:"renderBackend,omitempty"`
	StrategySource string    `json:"strategySource,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ImageURL is the URL callers should display: the composite when available,
// otherwise the background.
func (r *RenderResult) ImageURL() string {
	if r == nil {
		return ""
	}
	if r.FinalImageURL != "" {
		return r.FinalImageURL
	}
	return r.BackgroundURL
}

// HasImage reports whether background synthesis succeeded.
func (r *RenderResult) HasImage() bool {
	return r != nil && r.BackgroundURL != ""
}
