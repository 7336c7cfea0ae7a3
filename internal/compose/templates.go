// Package compose draws the headline, subtext, CTA and logo of a blueprint
// onto its background. Placement is computed once as a Plan; rasterization
// backends only paint a Plan, so every backend yields the same layout.
package compose

import "studio/internal/domain"

// Anchor is where the text block sits vertically.
type Anchor uint8

const (
	AnchorTop Anchor = iota
	AnchorCenter
	AnchorBottom
)

// Align is the horizontal alignment of text lines inside their column.
type Align uint8

const (
	AlignCenter Align = iota
	AlignLeft
)

// LogoCorner is where a template reserves the logo square.
type LogoCorner uint8

const (
	LogoTopRight LogoCorner = iota
	LogoTopLeft
	LogoTopCenter
	LogoBottomRight
)

// TemplateSpec holds the placement constants of one template. Sizes are
// fractions of min(width, height) unless noted.
type TemplateSpec struct {
	MarginPct      float64
	HeadlineScale  float64
	HeadlineLead   float64
	SubtextRatio   float64 // of the headline size
	CTARatio       float64 // of the headline size
	LogoScale      float64
	Logo           LogoCorner
	Align          Align
	Anchor         Anchor
	PanelRatio     float64 // width share of the text panel, 0 for none
	TextWidthRatio float64 // share of the column used for text
}

// templateSpecs is indexed by domain.TemplateID.Index. The array length ties
// it to the template enum at compile time.
var templateSpecs = [domain.TemplateCount]TemplateSpec{
	// top-heading
	{
		MarginPct: 6, HeadlineScale: 0.08, HeadlineLead: 1.2, SubtextRatio: 0.5, CTARatio: 0.45,
		LogoScale: 0.12, Logo: LogoTopRight, Align: AlignCenter, Anchor: AnchorTop, TextWidthRatio: 1,
	},
	// split-left-text
	{
		MarginPct: 5, HeadlineScale: 0.065, HeadlineLead: 1.2, SubtextRatio: 0.55, CTARatio: 0.5,
		LogoScale: 0.10, Logo: LogoTopLeft, Align: AlignLeft, Anchor: AnchorCenter, PanelRatio: 0.45, TextWidthRatio: 1,
	},
	// vertical-story-centered
	{
		MarginPct: 8, HeadlineScale: 0.07, HeadlineLead: 1.2, SubtextRatio: 0.5, CTARatio: 0.45,
		LogoScale: 0.10, Logo: LogoTopCenter, Align: AlignCenter, Anchor: AnchorCenter, TextWidthRatio: 0.9,
	},
	// product-hero
	{
		MarginPct: 6, HeadlineScale: 0.09, HeadlineLead: 1.15, SubtextRatio: 0.45, CTARatio: 0.5,
		LogoScale: 0.11, Logo: LogoBottomRight, Align: AlignCenter, Anchor: AnchorBottom, TextWidthRatio: 0.95,
	},
}

// SpecFor returns the placement constants of a template.
func SpecFor(id domain.TemplateID) TemplateSpec {
	return templateSpecs[id.Index()]
}
