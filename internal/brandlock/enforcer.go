// Package brandlock applies a brand's opt-in design constraints to a blueprint.
package brandlock

import (
	"encoding/json"
	"regexp"
	"strings"

	"studio/internal/domain"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// Apply returns the blueprint adjusted to the constraints. When brand lock is
// disabled or constraints are nil the blueprint is returned unchanged.
// Applying the same constraints twice yields the same blueprint as once.
func Apply(bp domain.Blueprint, c *domain.DesignConstraints, enabled bool) domain.Blueprint {
	if !enabled || c == nil {
		return bp
	}
	out := bp

	if c.MaxHeadlineLines >= 1 && out.Intent.Headline != "" {
		out.Intent.Headline = capLines(out.Intent.Headline, c.MaxHeadlineLines)
	}
	if phrase := c.CTATone.Phrase(); phrase != "" {
		out.Intent.CTA = phrase
	}
	if c.LogoRequired {
		out.IncludeLogo = true
	}
	if id, ok := TemplateForLogoPosition(c.LockedLogoPosition); ok {
		out.LayoutTemplateID = id
	}
	return out
}

// TemplateForLogoPosition maps a locked logo corner onto the template whose
// convention places the logo on that edge. Top corners use top-heading and
// bottom corners use the centered-vertical story template.
func TemplateForLogoPosition(p domain.LogoPosition) (domain.TemplateID, bool) {
	switch p {
	case domain.LogoTopLeft, domain.LogoTopRight:
		return domain.TemplateTopHeading, true
	case domain.LogoBottomLeft, domain.LogoBottomRight:
		return domain.TemplateVerticalStoryCentered, true
	}
	return domain.TemplateID{}, false
}

func capLines(headline string, max int) string {
	var lines []string
	for _, l := range lineBreak.Split(headline, -1) {
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) <= max {
		return headline
	}
	return strings.Join(lines[:max], "\n")
}

// FilterBrandAssets narrows colors and fonts to the allowed subsets for one
// render. The inputs are not modified, and a list that would end up empty is
// returned as given.
func FilterBrandAssets(colors, fonts []string, c *domain.DesignConstraints, enabled bool) ([]string, []string) {
	if !enabled || c == nil {
		return colors, fonts
	}
	outColors := colors
	if len(c.AllowedColors) > 0 {
		if kept := intersect(colors, c.AllowedColors, domain.MaxAllowedColors); len(kept) > 0 {
			outColors = kept
		}
	}
	outFonts := fonts
	if len(c.AllowedFonts) > 0 && len(fonts) > 0 {
		if kept := intersect(fonts, c.AllowedFonts, domain.MaxAllowedFonts); len(kept) > 0 {
			outFonts = kept
		}
	}
	return outColors, outFonts
}

func intersect(values, allowed []string, limit int) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	var out []string
	for _, v := range values {
		if _, ok := set[strings.ToLower(strings.TrimSpace(v))]; ok {
			out = append(out, v)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// ParseConstraints decodes constraints stored as JSON. Blank or malformed
// input yields nil, which disables enforcement.
func ParseConstraints(raw []byte) *domain.DesignConstraints {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	var c domain.DesignConstraints
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	if !c.LockedLogoPosition.Valid() {
		c.LockedLogoPosition = ""
	}
	return &c
}
