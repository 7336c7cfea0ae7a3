package strategy

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studio/internal/domain"
)

const (
	defaultCTA       = "Learn more"
	defaultFramework = "benefit-led"
	defaultLayout    = "top-heading"
)

// StaticResolver builds the brief without any model call.
type StaticResolver struct {
	limits Limits
}

// NewStaticResolver returns a deterministic resolver using the given limits.
func NewStaticResolver(limits Limits) *StaticResolver {
	return &StaticResolver{limits: limits.normalized()}
}

// Resolve implements Resolver. It never returns an error.
func (s *StaticResolver) Resolve(_ context.Context, req Request) (*Result, error) {
	return &Result{
		Brief:    s.Brief(req),
		Provider: staticProviderName,
		Metadata: map[string]string{},
	}, nil
}

// Brief returns the deterministic brief for req.
func (s *StaticResolver) Brief(req Request) domain.CreativeBrief {
	b := req.Brand
	name := "Brand"
	var tagline, audience string
	var toneParts []string
	if b != nil {
		if n := strings.TrimSpace(b.Name); n != "" {
			name = n
		}
		tagline = b.Tagline
		audience = strings.TrimSpace(b.TargetAudience)
		for _, v := range []string{b.Tone, b.Personality} {
			if v = strings.TrimSpace(v); v != "" {
				toneParts = append(toneParts, v)
			}
		}
	}
	tone := strings.Join(toneParts, ", ")
	if tone == "" {
		tone = "professional"
	}
	spaced := strings.TrimSpace(strings.ReplaceAll(req.AssetType, "_", " "))

	base := domain.Truncate(req.Intent, MaxIntentLen)
	if base == "" && spaced != "" {
		// Casers carry state, so one is built per call.
		base = cases.Title(language.English).String(spaced)
	}
	headline := domain.Ellipsize(base, s.limits.FallbackHeadlineMax)
	if headline == "" {
		headline = name + " Spotlight"
	}

	subtext := domain.Truncate(tagline, 80)
	if subtext == "" {
		subtext = fmt.Sprintf("On-brand content for %s.", name)
	}
	if audience == "" {
		audience = "target audience"
	}
	brief := domain.CreativeBrief{
		Objective:          domain.ObjectiveEngagement,
		TargetPersona:      audience,
		EmotionalTone:      domain.Truncate(tone, 80),
		MessagingFramework: defaultFramework,
		Headline:           headline,
		Subtext:            subtext,
		CTA:                defaultCTA,
		VisualDirection: fmt.Sprintf(
			"Professional marketing background for %s: clear focal area, balanced composition, brand-aligned mood. No text, no logos.",
			strings.ToLower(spaced),
		),
		LayoutHint: defaultLayout,
	}
	return brief.Clamp(s.limits.HeadlineMax)
}

var _ Resolver = (*StaticResolver)(nil)
