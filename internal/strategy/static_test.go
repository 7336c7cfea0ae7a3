package strategy

import (
	"context"
	"strings"
	"testing"

	"studio/internal/domain"
)

func TestStaticResolverAcmeScenario(t *testing.T) {
	t.Parallel()
	res, err := NewStaticResolver(CampaignLimits).Resolve(context.Background(), Request{
		Brand:     &domain.BrandProfile{Name: "Acme"},
		AssetType: "linkedin_post",
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	b := res.Brief
	if strings.TrimSpace(b.Headline) == "" {
		t.Fatal("headline is empty")
	}
	if b.CTA != "Learn more" {
		t.Fatalf("CTA = %q, want Learn more", b.CTA)
	}
	if b.Subtext != "On-brand content for Acme." {
		t.Fatalf("Subtext = %q", b.Subtext)
	}
	if b.Objective != domain.ObjectiveEngagement || b.MessagingFramework != "benefit-led" {
		t.Fatalf("unexpected strategy fields %+v", b)
	}
	if !strings.Contains(b.VisualDirection, "linkedin post") {
		t.Fatalf("VisualDirection = %q", b.VisualDirection)
	}
}

func TestStaticResolverHeadline(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("a", 60)
	cases := []struct {
		name   string
		limits Limits
		req    Request
		want   string
	}{
		{name: "intent_kept", limits: CampaignLimits, req: Request{Intent: "Summer sale"}, want: "Summer sale"},
		{name: "campaign_ellipsis", limits: CampaignLimits, req: Request{Intent: long}, want: strings.Repeat("a", 47) + "..."},
		{name: "interpreter_ellipsis", limits: InterpreterLimits, req: Request{Intent: long}, want: strings.Repeat("a", 37) + "..."},
		{name: "asset_type", limits: CampaignLimits, req: Request{AssetType: "youtube_thumbnail"}, want: "Youtube Thumbnail"},
		{name: "brand_spotlight", limits: CampaignLimits, req: Request{Brand: &domain.BrandProfile{Name: "Nimbus"}}, want: "Nimbus Spotlight"},
		{name: "anonymous_spotlight", limits: CampaignLimits, req: Request{}, want: "Brand Spotlight"},
		{name: "memory_hint_ignored", limits: CampaignLimits, req: Request{Intent: "Launch", MemoryHint: "Recent: awareness"}, want: "Launch"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := NewStaticResolver(tc.limits).Brief(tc.req).Headline
			if got != tc.want {
				t.Fatalf("Headline = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStaticResolverBrandFields(t *testing.T) {
	t.Parallel()
	brand := &domain.BrandProfile{
		Name:           "Acme",
		Tagline:        "Tools that last",
		Tone:           "warm",
		Personality:    "playful",
		TargetAudience: "Makers",
	}
	b := NewStaticResolver(CampaignLimits).Brief(Request{Brand: brand, AssetType: "instagram_post"})
	if b.EmotionalTone != "warm, playful" {
		t.Fatalf("EmotionalTone = %q", b.EmotionalTone)
	}
	if b.Subtext != "Tools that last" {
		t.Fatalf("Subtext = %q", b.Subtext)
	}
	if b.TargetPersona != "Makers" {
		t.Fatalf("TargetPersona = %q", b.TargetPersona)
	}
	if b.LayoutHint != "top-heading" {
		t.Fatalf("LayoutHint = %q", b.LayoutHint)
	}
}

func TestBuildUserContent(t *testing.T) {
	t.Parallel()
	got := BuildUserContent(Request{
		Brand: &domain.BrandProfile{
			Name:        "Acme",
			Tagline:     "Tools that last",
			Description: strings.Repeat("d", 400),
			Colors:      []string{"#1", "#2", "#3", "#4", "#5"},
		},
		AssetType:  "instagram_post",
		Intent:     "Launch",
		MemoryHint: "Recent: awareness.",
	})
	for _, want := range []string{
		"Brand: Acme.",
		"Tagline: Tools that last.",
		"Description: " + strings.Repeat("d", 300) + ".",
		"Brand colors: #1, #2, #3, #4.",
		"Asset type: instagram_post.",
		"User intent / prompt: Launch\n\nCampaign memory: Recent: awareness..",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("user content missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "#5") {
		t.Fatal("user content should carry at most four colors")
	}
	if anon := BuildUserContent(Request{AssetType: "x"}); !strings.HasPrefix(anon, "Brand: Unknown.") {
		t.Fatalf("anonymous content = %q", anon)
	}
}

func TestSystemInstructionCarriesSchema(t *testing.T) {
	t.Parallel()
	s := SystemInstruction()
	if !strings.HasPrefix(s, "You are an AI Chief Marketing Officer.") {
		t.Fatalf("unexpected prefix: %q", s[:40])
	}
	if !strings.Contains(s, "Output this exact structure:") || !strings.Contains(s, `"layoutType"`) {
		t.Fatal("schema missing from system instruction")
	}
}
