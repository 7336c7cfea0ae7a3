package domain

// Blueprint is the intermediate representation handed between the layout,
// brand lock, background and compositing stages.
type Blueprint struct {
	AssetTypeSlug    string        `json:"assetType"`
	AspectRatio      string        `json:"aspectRatio"`
	LayoutTemplateID TemplateID    `json:"layoutTemplateId"`
	CompositionHint  string        `json:"compositionBehavior,omitempty"`
	IncludeLogo      bool          `json:"includeLogo"`
	Width            int           `json:"width"`
	Height           int           `json:"height"`
	Intent           CreativeBrief `json:"intent"`
}

// IntentOverrides replaces individual brief fields during regeneration. Empty
// fields leave the stored value in place.
type IntentOverrides struct {
	Headline        string `json:"headline,omitempty"`
	Subtext         string `json:"subtext,omitempty"`
	CTA             string `json:"cta,omitempty"`
	VisualDirection string `json:"visualDirection,omitempty"`
}

// Merge returns a copy of the blueprint with the non-empty overrides applied.
func (b Blueprint) Merge(o IntentOverrides) Blueprint {
	if v := Truncate(o.Headline, MaxHeadlineLen); v != "" {
		b.Intent.Headline = v
	}
	if v := Truncate(o.Subtext, MaxSubtextLen); v != "" {
		b.Intent.Subtext = v
	}
	if v := Truncate(o.CTA, MaxCTALen); v != "" {
		b.Intent.CTA = v
	}
	if v := Truncate(o.VisualDirection, MaxVisualDirectionLen); v != "" {
		b.Intent.VisualDirection = v
	}
	return b
}
