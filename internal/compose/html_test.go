package compose

import (
	"strings"
	"testing"

	"studio/internal/domain"
)

func TestRenderHTMLPositionsAndEscapes(t *testing.T) {
	t.Parallel()
	m := newTestMeasurer(t)
	plan := BuildPlan(m, PlanInput{
		Template: domain.TemplateSplitLeftText,
		Width:    1344,
		Height:   768,
		Headline: "Tom & Jerry <3",
		Subtext:  "Cartoons, all day.",
		CTA:      "Watch",
		HasLogo:  true,
	})
	doc, err := RenderHTML(plan, true)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{
		"Tom &amp; Jerry &lt;3",
		"Cartoons, all day.",
		">Watch<",
		"@font-face",
		"width:1344px;height:768px",
		logoPath,
		"left:" + px(plan.Headline.Lines[0].X) + ";top:" + px(plan.Headline.Lines[0].Y),
		"rgba(0,0,0,0.250)",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "ZgotmplZ") {
		t.Fatalf("template rejected a value:\n%s", doc)
	}
}

func TestRenderHTMLOmitsLogoWithoutImage(t *testing.T) {
	t.Parallel()
	m := newTestMeasurer(t)
	plan := BuildPlan(m, PlanInput{Template: domain.TemplateTopHeading, Headline: "Hello", HasLogo: true})
	doc, err := RenderHTML(plan, false)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(doc, "<img") {
		t.Fatal("logo element rendered without an image")
	}
}

func TestGradientCSS(t *testing.T) {
	t.Parallel()
	got := gradientCSS([]GradientStop{{Offset: 0, Alpha: 0.5}, {Offset: 1, Alpha: 0.25}})
	if want := "rgba(0,0,0,0.500) 0%,rgba(0,0,0,0.250) 100%"; got != want {
		t.Fatalf("gradientCSS = %q, want %q", got, want)
	}
}
