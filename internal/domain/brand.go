package domain

import "strings"

// MaxBrandColors caps the palette carried by a BrandProfile.
const MaxBrandColors = 6

// BrandProfile is the read-only brand snapshot supplied for one generation call.
type BrandProfile struct {
	ID             string         `json:"id,omitempty" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Tagline        string         `json:"tagline,omitempty" yaml:"tagline"`
	Description    string         `json:"description,omitempty" yaml:"description"`
	Colors         []string       `json:"colors,omitempty" yaml:"colors"`
	Fonts          []string       `json:"fonts,omitempty" yaml:"fonts"`
	Personality    string         `json:"personality,omitempty" yaml:"personality"`
	Tone           string         `json:"tone,omitempty" yaml:"tone"`
	VisualStyle    string         `json:"visualStyle,omitempty" yaml:"visualStyle"`
	TargetAudience string         `json:"targetAudience,omitempty" yaml:"targetAudience"`
	Logos          []string       `json:"logos,omitempty" yaml:"logos"`
	Strategy       *BrandStrategy `json:"strategyProfile,omitempty" yaml:"strategy"`
}

// BrandStrategy carries the optional strategic fields of a brand.
type BrandStrategy struct {
	Positioning        string   `json:"positioning,omitempty" yaml:"positioning"`
	Archetype          string   `json:"archetype,omitempty" yaml:"archetype"`
	ContentPillars     []string `json:"contentPillars,omitempty" yaml:"contentPillars"`
	AestheticNarrative string   `json:"aestheticNarrative,omitempty" yaml:"aestheticNarrative"`
}

// PrimaryLogo returns the first non-empty logo URL.
func (b *BrandProfile) PrimaryLogo() string {
	if b == nil {
		return ""
	}
	for _, l := range b.Logos {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

// Palette returns up to MaxBrandColors trimmed, non-empty colors.
func (b *BrandProfile) Palette() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.Colors))
	for _, c := range b.Colors {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		out = append(out, c)
		if len(out) == MaxBrandColors {
			break
		}
	}
	return out
}

// WithAssets returns a shallow copy of the brand carrying the given colors and
// fonts. The receiver is left untouched.
func (b *BrandProfile) WithAssets(colors, fonts []string) *BrandProfile {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Colors = append([]string(nil), colors...)
	cp.Fonts = append([]string(nil), fonts...)
	return &cp
}
