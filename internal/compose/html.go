package compose

import (
	"bytes"
	"fmt"
	"html/template"
	"image/color"
	"strings"
)

// Asset paths served next to the document by the browser backend.
const (
	backgroundPath  = "/background.png"
	logoPath        = "/logo.png"
	fontRegularPath = "/fonts/regular.ttf"
	fontBoldPath    = "/fonts/bold.ttf"
)

var pageTemplate = template.Must(template.New("composite").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
@font-face{font-family:"{{.Family}}";src:url("{{.RegularFont}}") format("truetype");font-weight:400}
@font-face{font-family:"{{.Family}}";src:url("{{.BoldFont}}") format("truetype");font-weight:700}
html,body{margin:0;padding:0;overflow:hidden}
.el{position:absolute;margin:0;padding:0;box-sizing:border-box}
.line{white-space:pre;font-family:"{{.Family}}"}
</style></head>
<body style="{{.Body}}">
<div class="el" style="{{.Background}}"></div>
<div class="el" style="{{.Overlay}}"></div>
{{- if .Panel}}
<div class="el" style="{{.Panel}}"></div>
{{- end}}
{{- range .Lines}}
<div class="el line" style="{{.Style}}">{{.Text}}</div>
{{- end}}
{{- if .CTA}}
<div class="el" style="{{.CTA.Box}}"></div>
<div class="el line" style="{{.CTA.Style}}">{{.CTA.Text}}</div>
{{- end}}
{{- if .Logo}}
<img class="el" alt="" src="{{.Logo.Src}}" style="{{.Logo.Style}}">
{{- end}}
</body></html>`))

type htmlLine struct {
	Text  string
	Style template.CSS
}

type htmlCTA struct {
	Box   template.CSS
	Text  string
	Style template.CSS
}

type htmlLogo struct {
	Src   string
	Style template.CSS
}

type htmlPage struct {
	Family      string
	RegularFont string
	BoldFont    string
	Body        template.CSS
	Background  template.CSS
	Overlay     template.CSS
	Panel       template.CSS
	Lines       []htmlLine
	CTA         *htmlCTA
	Logo        *htmlLogo
}

// RenderHTML renders the plan as a fixed-size document. Every element is
// absolutely positioned at the coordinates computed by BuildPlan, so the
// browser performs no layout of its own.
func RenderHTML(p Plan, hasLogo bool) (string, error) {
	page := htmlPage{
		Family:      FontFamily,
		RegularFont: fontRegularPath,
		BoldFont:    fontBoldPath,
		Body:        css("margin:0;width:%dpx;height:%dpx;position:relative;overflow:hidden", p.Width, p.Height),
		Background: css("left:0;top:0;width:%dpx;height:%dpx;background:url(%q) center/cover no-repeat",
			p.Width, p.Height, backgroundPath),
		Overlay: css("left:0;top:0;width:%dpx;height:%dpx;background:linear-gradient(to bottom,%s)",
			p.Width, p.Height, gradientCSS(p.Overlay)),
	}
	if p.Panel != nil {
		page.Panel = css("left:%s;top:%s;width:%s;height:%s;background:rgba(0,0,0,%.3f)",
			px(p.Panel.X), px(p.Panel.Y), px(p.Panel.W), px(p.Panel.H), p.PanelAlpha)
	}
	for _, block := range []TextBlock{p.Headline, p.Subtext} {
		for _, line := range block.Lines {
			page.Lines = append(page.Lines, htmlLine{
				Text:  line.Text,
				Style: lineCSS(line.X, line.Y, block.LineHeight, block.Size, block.Bold, block.Color, block.Alpha),
			})
		}
	}
	if b := p.CTA; b != nil {
		page.CTA = &htmlCTA{
			Box: css("left:%s;top:%s;width:%s;height:%s;border-radius:%s;background:%s",
				px(b.X), px(b.Y), px(b.W), px(b.H), px(b.Radius), rgba(b.Fill, 1)),
			Text:  b.Text,
			Style: lineCSS(b.TextX, b.TextY, ctaLineHeight, b.Size, true, b.TextColor, 1),
		}
	}
	if p.Logo != nil && hasLogo {
		page.Logo = &htmlLogo{
			Src: logoPath,
			Style: css("left:%s;top:%s;width:%s;height:%s;object-fit:contain;opacity:%.2f",
				px(p.Logo.X), px(p.Logo.Y), px(p.Logo.W), px(p.Logo.H), p.LogoAlpha),
		}
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

func lineCSS(x, y, lineHeight, size float64, bold bool, c color.RGBA, alpha float64) template.CSS {
	weight := 400
	if bold {
		weight = 700
	}
	if alpha <= 0 {
		alpha = 1
	}
	return css("left:%s;top:%s;height:%s;line-height:%s;font-size:%s;font-weight:%d;color:%s",
		px(x), px(y), px(lineHeight), px(lineHeight), px(size), weight, rgba(c, alpha))
}

func gradientCSS(stops []GradientStop) string {
	parts := make([]string, 0, len(stops))
	for _, s := range stops {
		parts = append(parts, fmt.Sprintf("rgba(0,0,0,%.3f) %.0f%%", s.Alpha, s.Offset*100))
	}
	return strings.Join(parts, ",")
}

// css formats trusted style text. Every interpolated value is numeric or
// produced by this package.
func css(format string, args ...any) template.CSS {
	return template.CSS(fmt.Sprintf(format, args...))
}

func px(v float64) string {
	return fmt.Sprintf("%.2fpx", v)
}

func rgba(c color.RGBA, alpha float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, alpha*float64(c.A)/255)
}
