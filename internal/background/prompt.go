package background

import (
	"fmt"
	"strings"

	"studio/internal/domain"
)

const backgroundPreamble = "Generate abstract professional marketing background. No text. No typography. No logos. No letters. Designed for text overlay."

// MaxPromptColors caps the brand colors named in a background prompt.
const MaxPromptColors = 5

// BuildPrompt assembles the background-only prompt for a blueprint. brand may
// be nil.
func BuildPrompt(bp domain.Blueprint, brand *domain.BrandProfile) string {
	parts := []string{backgroundPreamble}
	if v := strings.TrimSpace(bp.Intent.VisualDirection); v != "" {
		parts = append(parts, fmt.Sprintf("Visual direction: %s.", strings.TrimRight(v, ".")))
	}
	if v := strings.TrimSpace(bp.Intent.EmotionalTone); v != "" {
		parts = append(parts, fmt.Sprintf("Tone and mood: %s.", strings.TrimRight(v, ".")))
	}
	parts = append(parts, fmt.Sprintf("Aspect ratio: %s. Full-bleed background, no text or logos.", bp.AspectRatio))

	if colors := brand.Palette(); len(colors) > 0 {
		if len(colors) > MaxPromptColors {
			colors = colors[:MaxPromptColors]
		}
		parts = append(parts, fmt.Sprintf("Use these brand colors in the background: %s.", strings.Join(colors, ", ")))
	}
	if brand != nil {
		switch {
		case brand.Strategy != nil && strings.TrimSpace(brand.Strategy.AestheticNarrative) != "":
			parts = append(parts, fmt.Sprintf("Style: %s.", domain.Truncate(brand.Strategy.AestheticNarrative, 200)))
		case strings.TrimSpace(brand.VisualStyle) != "":
			parts = append(parts, fmt.Sprintf("Visual style: %s.", domain.Truncate(brand.VisualStyle, 120)))
		}
		var aesthetic []string
		for _, v := range []string{brand.Personality, brand.Tone} {
			if v = strings.TrimSpace(v); v != "" {
				aesthetic = append(aesthetic, v)
			}
		}
		if len(aesthetic) > 0 {
			parts = append(parts, fmt.Sprintf("Aesthetic: %s.", domain.Truncate(strings.Join(aesthetic, ", "), 80)))
		}
	}
	parts = append(parts, "High quality, professional, 4K. Background only.")
	return strings.Join(parts, " ")
}
