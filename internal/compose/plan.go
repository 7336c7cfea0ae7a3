package compose

import (
	"image/color"
	"math"
	"strings"

	"studio/internal/domain"
)

const (
	defaultPrimary = "#111111"
	defaultAccent  = "#2563eb"

	headlineGap    = 24.0
	subtextGap     = 20.0
	subtextLead    = 1.35
	maxSubtextSize = 36.0
	maxCTASize     = 28.0
	ctaPadX        = 32.0
	ctaPadY        = 16.0
	ctaLineHeight  = 28.0
	ctaRadius      = 8.0
	ctaBottomSlack = 60.0
	logoTextGap    = 20.0
	heroLogoGap    = 8.0
	logoAlpha      = 0.95
	subtextAlpha   = 0.95
	panelAlpha     = 0.25
	maxMarginPct   = 20.0
)

// overlay gradient: offset and black alpha, top to bottom
var overlayStops = []GradientStop{
	{Offset: 0, Alpha: 0.35 * 0.5},
	{Offset: 0.3, Alpha: 0.35 * 0.2},
	{Offset: 0.7, Alpha: 0.35 * 0.2},
	{Offset: 1, Alpha: 0.35 * 0.6},
}

// Rect is an axis-aligned box in canvas pixels.
type Rect struct {
	X, Y, W, H float64
}

// GradientStop is one stop of the black readability overlay.
type GradientStop struct {
	Offset float64
	Alpha  float64
}

// Line is one laid-out text line. X is the left edge after alignment and Y
// the top of its line box.
type Line struct {
	Text string
	X, Y float64
	W    float64
}

// TextBlock is a run of lines sharing one style.
type TextBlock struct {
	Lines      []Line
	Size       float64
	LineHeight float64
	Bold       bool
	Color      color.RGBA
	Alpha      float64
}

// Button is the CTA pill.
type Button struct {
	Rect
	Text      string
	TextX     float64
	TextY     float64 // top of the label line box
	Size      float64
	Fill      color.RGBA
	TextColor color.RGBA
	Radius    float64
}

// Plan is the backend-independent placement of every element.
type Plan struct {
	Template   domain.TemplateID
	Width      int
	Height     int
	Margin     float64
	Overlay    []GradientStop
	Panel      *Rect
	Headline   TextBlock
	Subtext    TextBlock
	CTA        *Button
	Logo       *Rect
	LogoAlpha  float64
	PanelAlpha float64
}

// PlanInput is what placement depends on.
type PlanInput struct {
	Template         domain.TemplateID
	Width            int
	Height           int
	Headline         string
	Subtext          string
	CTA              string
	Colors           []string
	HasLogo          bool
	MinMarginPercent float64
}

// BuildPlan lays out one composite.
func BuildPlan(m *Measurer, in PlanInput) Plan {
	spec := SpecFor(in.Template)
	if in.Width <= 0 {
		in.Width = 1024
	}
	if in.Height <= 0 {
		in.Height = 1024
	}
	w, h := float64(in.Width), float64(in.Height)
	base := math.Min(w, h)
	pct := math.Min(math.Max(spec.MarginPct, in.MinMarginPercent), maxMarginPct)
	margin := base * pct / 100

	primary := paletteColor(in.Colors, 0, defaultPrimary)
	accent := paletteColor(in.Colors, 1, defaultAccent)

	plan := Plan{
		Template:   in.Template,
		Width:      in.Width,
		Height:     in.Height,
		Margin:     margin,
		Overlay:    overlayStops,
		LogoAlpha:  logoAlpha,
		PanelAlpha: panelAlpha,
	}

	// text column
	column := Rect{X: margin, W: w - 2*margin}
	if spec.PanelRatio > 0 {
		panel := Rect{W: w * spec.PanelRatio, H: h}
		plan.Panel = &panel
		column.W = panel.W - 2*margin
	}
	if spec.TextWidthRatio > 0 && spec.TextWidthRatio < 1 {
		inset := column.W * (1 - spec.TextWidthRatio) / 2
		column.X += inset
		column.W -= 2 * inset
	}

	logoSize := math.Round(base * spec.LogoScale)
	top := margin
	if in.HasLogo {
		logo := logoRect(spec.Logo, w, h, margin, logoSize)
		plan.Logo = &logo
		switch spec.Logo {
		case LogoTopRight:
			// the logo shares the top band; keep the column left of it
			if right := logo.X - logoTextGap; right < column.X+column.W {
				column.W = math.Max(right-column.X, base*0.25)
			}
		case LogoTopLeft, LogoTopCenter:
			top = logo.Y + logo.H + margin
		}
	}

	// headline
	headSize := math.Round(base * spec.HeadlineScale)
	headText := strings.TrimSpace(in.Headline)
	var headLines []string
	if headText != "" {
		headLines, headSize = fitHeadline(m, headText, column.W, headSize)
	}
	headLead := headSize * spec.HeadlineLead

	// subtext
	subSize := math.Min(maxSubtextSize, math.Round(headSize*spec.SubtextRatio))
	subLines := wrapChars(domain.Truncate(in.Subtext, maxSubtextChars), subtextCharsPerRow, maxSubtextLines)
	subLead := subSize * subtextLead

	// cta
	ctaText := domain.Truncate(in.CTA, maxCTAChars)
	ctaSize := math.Min(maxCTASize, math.Round(headSize*spec.CTARatio))
	ctaH := 2*ctaPadY + ctaLineHeight
	var ctaW float64
	if ctaText != "" {
		ctaW = m.Width(ctaText, ctaSize, true) + 2*ctaPadX
	}

	blockH := float64(len(headLines)) * headLead
	if len(headLines) > 0 {
		blockH += headlineGap
	}
	if len(subLines) > 0 {
		blockH += float64(len(subLines))*subLead + subtextGap
	}
	if ctaText != "" {
		blockH += ctaH
	}

	var y float64
	switch spec.Anchor {
	case AnchorCenter:
		y = math.Max(top, (h-blockH)/2)
	case AnchorBottom:
		bottom := h - margin
		if plan.Logo != nil && spec.Logo == LogoBottomRight {
			bottom = plan.Logo.Y - heroLogoGap
		}
		y = math.Max(top, bottom-blockH)
	default:
		y = top
	}

	plan.Headline = TextBlock{Size: headSize, LineHeight: headLead, Bold: true, Color: primary, Alpha: 1}
	for _, text := range headLines {
		plan.Headline.Lines = append(plan.Headline.Lines, alignLine(m, text, column, spec.Align, y, headSize, true))
		y += headLead
	}
	if len(headLines) > 0 {
		y += headlineGap
	}

	plan.Subtext = TextBlock{Size: subSize, LineHeight: subLead, Color: primary, Alpha: subtextAlpha}
	for _, text := range subLines {
		plan.Subtext.Lines = append(plan.Subtext.Lines, alignLine(m, text, column, spec.Align, y, subSize, false))
		y += subLead
	}
	if len(subLines) > 0 {
		y += subtextGap
	}

	if ctaText != "" {
		ctaY := math.Min(y, h-margin-ctaH-ctaBottomSlack)
		ctaX := column.X
		if spec.Align == AlignCenter {
			ctaX = column.X + (column.W-ctaW)/2
		}
		plan.CTA = &Button{
			Rect:      Rect{X: ctaX, Y: ctaY, W: ctaW, H: ctaH},
			Text:      ctaText,
			TextX:     ctaX + ctaPadX,
			TextY:     ctaY + ctaPadY,
			Size:      ctaSize,
			Fill:      accent,
			TextColor: color.RGBA{R: 255, G: 255, B: 255, A: 255},
			Radius:    ctaRadius,
		}
	}
	return plan
}

func alignLine(m *Measurer, text string, column Rect, align Align, y, size float64, bold bool) Line {
	width := m.Width(text, size, bold)
	x := column.X
	if align == AlignCenter {
		x = column.X + (column.W-width)/2
	}
	return Line{Text: text, X: x, Y: y, W: width}
}

func logoRect(corner LogoCorner, w, h, margin, size float64) Rect {
	switch corner {
	case LogoTopLeft:
		return Rect{X: margin, Y: margin, W: size, H: size}
	case LogoTopCenter:
		return Rect{X: (w - size) / 2, Y: margin, W: size, H: size}
	case LogoBottomRight:
		return Rect{X: w - margin - size, Y: h - margin - size, W: size, H: size}
	default:
		return Rect{X: w - margin - size, Y: margin, W: size, H: size}
	}
}

func paletteColor(colors []string, i int, fallback string) color.RGBA {
	if i < len(colors) {
		if c, ok := domain.ParseHexColor(colors[i]); ok {
			return c
		}
	}
	c, _ := domain.ParseHexColor(fallback)
	return c
}
