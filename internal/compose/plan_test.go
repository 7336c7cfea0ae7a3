package compose

import (
	"math"
	"strings"
	"testing"

	"studio/internal/domain"
)

func newTestMeasurer(t *testing.T) *Measurer {
	t.Helper()
	m, err := NewMeasurer()
	if err != nil {
		t.Fatalf("NewMeasurer: %v", err)
	}
	return m
}

func basicInput(id domain.TemplateID, w, h int) PlanInput {
	return PlanInput{
		Template: id,
		Width:    w,
		Height:   h,
		Headline: "Ship your launch in half the time",
		Subtext:  "The all-in-one workspace for teams that move fast and want every asset on brand.",
		CTA:      "Start free trial",
		Colors:   []string{"#0a0a0a", "#ff5500"},
		HasLogo:  true,
	}
}

const eps = 0.01

func TestBuildPlanMarginsAndLogoPerTemplate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		id      domain.TemplateID
		w, h    int
		pct     float64
		logoPct float64
		corner  func(p Plan, logo float64) (float64, float64)
	}{
		{
			id: domain.TemplateTopHeading, w: 1024, h: 1024, pct: 6, logoPct: 0.12,
			corner: func(p Plan, l float64) (float64, float64) { return float64(p.Width) - p.Margin - l, p.Margin },
		},
		{
			id: domain.TemplateSplitLeftText, w: 1344, h: 768, pct: 5, logoPct: 0.10,
			corner: func(p Plan, l float64) (float64, float64) { return p.Margin, p.Margin },
		},
		{
			id: domain.TemplateVerticalStoryCentered, w: 576, h: 1024, pct: 8, logoPct: 0.10,
			corner: func(p Plan, l float64) (float64, float64) { return (float64(p.Width) - l) / 2, p.Margin },
		},
		{
			id: domain.TemplateProductHero, w: 1024, h: 1024, pct: 6, logoPct: 0.11,
			corner: func(p Plan, l float64) (float64, float64) {
				return float64(p.Width) - p.Margin - l, float64(p.Height) - p.Margin - l
			},
		},
	}
	m := newTestMeasurer(t)
	for _, tc := range cases {
		p := BuildPlan(m, basicInput(tc.id, tc.w, tc.h))
		base := math.Min(float64(tc.w), float64(tc.h))
		if want := base * tc.pct / 100; math.Abs(p.Margin-want) > eps {
			t.Fatalf("%s margin = %v, want %v", tc.id, p.Margin, want)
		}
		if p.Logo == nil {
			t.Fatalf("%s: logo box missing", tc.id)
		}
		size := math.Round(base * tc.logoPct)
		wantX, wantY := tc.corner(p, size)
		if math.Abs(p.Logo.X-wantX) > eps || math.Abs(p.Logo.Y-wantY) > eps || p.Logo.W != size || p.Logo.H != size {
			t.Fatalf("%s logo = %+v, want (%v,%v) size %v", tc.id, *p.Logo, wantX, wantY, size)
		}
		if p.CTA == nil {
			t.Fatalf("%s: CTA missing", tc.id)
		}
		if limit := float64(tc.h) - p.Margin - p.CTA.H - ctaBottomSlack; p.CTA.Y > limit+eps {
			t.Fatalf("%s CTA y = %v, exceeds %v", tc.id, p.CTA.Y, limit)
		}
		if len(p.Headline.Lines) == 0 || len(p.Headline.Lines) > maxHeadlineLines {
			t.Fatalf("%s headline lines = %d", tc.id, len(p.Headline.Lines))
		}
	}
}

func TestBuildPlanHeadlineAvoidsTopRightLogo(t *testing.T) {
	t.Parallel()
	m := newTestMeasurer(t)
	p := BuildPlan(m, basicInput(domain.TemplateTopHeading, 1024, 1024))
	for _, line := range p.Headline.Lines {
		if line.X < p.Margin-eps {
			t.Fatalf("line %q starts inside the margin at %v", line.Text, line.X)
		}
		if right := line.X + line.W; right > p.Logo.X-logoTextGap+eps {
			t.Fatalf("line %q ends at %v, overlapping logo at %v", line.Text, right, p.Logo.X)
		}
	}
	noLogo := basicInput(domain.TemplateTopHeading, 1024, 1024)
	noLogo.HasLogo = false
	q := BuildPlan(m, noLogo)
	if q.Logo != nil {
		t.Fatal("logo box reserved without a logo")
	}
	center := float64(q.Width) / 2
	for _, line := range q.Headline.Lines {
		if mid := line.X + line.W/2; math.Abs(mid-center) > 0.5 {
			t.Fatalf("line %q centered at %v, want %v", line.Text, mid, center)
		}
	}
}

func TestBuildPlanSplitLeftTextStaysInPanel(t *testing.T) {
	t.Parallel()
	m := newTestMeasurer(t)
	p := BuildPlan(m, basicInput(domain.TemplateSplitLeftText, 1344, 768))
	if p.Panel == nil || math.Abs(p.Panel.W-1344*0.45) > eps {
		t.Fatalf("panel = %+v", p.Panel)
	}
	right := p.Panel.W - p.Margin
	for _, block := range []TextBlock{p.Headline, p.Subtext} {
		for _, line := range block.Lines {
			if math.Abs(line.X-p.Margin) > eps {
				t.Fatalf("line %q x = %v, want left aligned at %v", line.Text, line.X, p.Margin)
			}
		}
	}
	for _, line := range p.Headline.Lines {
		if line.X+line.W > right+eps {
			t.Fatalf("headline %q overflows panel (%v > %v)", line.Text, line.X+line.W, right)
		}
	}
	if first := p.Headline.Lines[0]; first.Y < p.Logo.Y+p.Logo.H {
		t.Fatalf("headline starts at %v above logo bottom %v", first.Y, p.Logo.Y+p.Logo.H)
	}
	if math.Abs(p.CTA.X-p.Margin) > eps {
		t.Fatalf("CTA x = %v, want %v", p.CTA.X, p.Margin)
	}
}

func TestBuildPlanProductHeroIsBottomAnchored(t *testing.T) {
	t.Parallel()
	m := newTestMeasurer(t)
	p := BuildPlan(m, basicInput(domain.TemplateProductHero, 1024, 1024))
	logo := math.Round(1024 * 0.11)
	wantBottom := 1024 - (p.Margin + logo + heroLogoGap)
	if got := p.CTA.Y + p.CTA.H; math.Abs(got-wantBottom) > eps {
		t.Fatalf("block bottom = %v, want %v", got, wantBottom)
	}
	if p.Headline.LineHeight != p.Headline.Size*1.15 {
		t.Fatalf("hero line height = %v", p.Headline.LineHeight)
	}
}

func TestBuildPlanProductHeroWithoutLogoUsesBottomMargin(t *testing.T) {
	t.Parallel()
	m := newTestMeasurer(t)
	in := basicInput(domain.TemplateProductHero, 1024, 1024)
	in.HasLogo = false
	p := BuildPlan(m, in)
	if p.Logo != nil {
		t.Fatalf("logo = %+v", p.Logo)
	}
	if got, want := p.CTA.Y+p.CTA.H, 1024-p.Margin; math.Abs(got-want) > eps {
		t.Fatalf("block bottom = %v, want %v", got, want)
	}
}

func TestBuildPlanVerticalCenters(t *testing.T) {
	t.Parallel()
	m := newTestMeasurer(t)
	in := basicInput(domain.TemplateVerticalStoryCentered, 576, 1024)
	in.HasLogo = false
	p := BuildPlan(m, in)
	top := p.Headline.Lines[0].Y
	bottom := p.CTA.Y + p.CTA.H
	if math.Abs((top+bottom)/2-512) > 1 {
		t.Fatalf("block spans %v..%v, not centered", top, bottom)
	}
}

func TestFitHeadlineShrinks(t *testing.T) {
	t.Parallel()
	m := newTestMeasurer(t)
	text := strings.Repeat("Remarkably long headline words ", 4)
	lines, size := fitHeadline(m, text, 500, 82)
	if size >= 82 || size < minHeadlineSize {
		t.Fatalf("size = %v, want shrunk and >= %v", size, minHeadlineSize)
	}
	if len(lines) > maxHeadlineLines {
		t.Fatalf("lines = %d, want <= %d", len(lines), maxHeadlineLines)
	}
	short, sz := fitHeadline(m, "Hi", 500, 82)
	if sz != 82 || len(short) != 1 {
		t.Fatalf("short headline = %v at %v", short, sz)
	}
	// sizes follow 82 -> 69 -> 58 -> 49
	huge := strings.Repeat("word ", 200)
	hl, hs := fitHeadline(m, huge, 300, 82)
	if hs != 49 {
		t.Fatalf("size after three shrinks = %v, want 49", hs)
	}
	if len(hl) != maxHeadlineLines || !strings.HasSuffix(hl[2], "...") {
		t.Fatalf("overflowing headline not folded: %q", hl)
	}
}

func TestWrapWordsKeepsExplicitBreaks(t *testing.T) {
	t.Parallel()
	m := newTestMeasurer(t)
	lines := wrapWords(m, "First line\nSecond", 10000, 40, true)
	if len(lines) != 2 || lines[0] != "First line" || lines[1] != "Second" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestWrapChars(t *testing.T) {
	t.Parallel()
	rows := wrapChars(strings.Repeat("abcd ", 40), 50, 3)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for _, r := range rows {
		if len(r) > 50 {
			t.Fatalf("row %q longer than 50", r)
		}
	}
	if got := wrapChars("", 50, 3); len(got) != 0 {
		t.Fatalf("empty text rows = %q", got)
	}
}

func TestBuildPlanDefaultsAndMargins(t *testing.T) {
	t.Parallel()
	m := newTestMeasurer(t)
	p := BuildPlan(m, PlanInput{Template: domain.TemplateTopHeading, Headline: "Hello", CTA: "Go"})
	if p.Width != 1024 || p.Height != 1024 {
		t.Fatalf("size = %dx%d", p.Width, p.Height)
	}
	if p.Headline.Color != paletteColor(nil, 0, defaultPrimary) {
		t.Fatalf("headline color = %v", p.Headline.Color)
	}
	if c := p.CTA.Fill; c.R != 0x25 || c.G != 0x63 || c.B != 0xeb {
		t.Fatalf("cta fill = %v", c)
	}
	wide := BuildPlan(m, PlanInput{Template: domain.TemplateTopHeading, Headline: "Hello", MinMarginPercent: 10})
	if math.Abs(wide.Margin-102.4) > eps {
		t.Fatalf("locked margin = %v, want 102.4", wide.Margin)
	}
	if wide.CTA != nil {
		t.Fatal("CTA planned for empty text")
	}
}

func TestBuildPlanTruncatesCTAAndSubtext(t *testing.T) {
	t.Parallel()
	m := newTestMeasurer(t)
	in := basicInput(domain.TemplateTopHeading, 1024, 1024)
	in.CTA = strings.Repeat("x", 40)
	p := BuildPlan(m, in)
	if n := len([]rune(p.CTA.Text)); n != maxCTAChars {
		t.Fatalf("cta length = %d", n)
	}
	if p.CTA.H != 2*ctaPadY+ctaLineHeight {
		t.Fatalf("cta height = %v", p.CTA.H)
	}
	if want := math.Min(maxSubtextSize, math.Round(p.Headline.Size*0.5)); p.Subtext.Size != want {
		t.Fatalf("subtext size = %v, want %v", p.Subtext.Size, want)
	}
}
