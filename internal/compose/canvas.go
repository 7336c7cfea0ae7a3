package compose

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Job is one rasterization: a plan plus decoded images. Logo may be nil.
type Job struct {
	Plan       Plan
	Background image.Image
	Logo       image.Image
}

// Renderer paints a Job.
type Renderer interface {
	Name() string
	Render(ctx context.Context, job Job) (image.Image, error)
}

// CanvasRenderer paints with a 2D drawing surface in process.
type CanvasRenderer struct{}

// NewCanvasRenderer returns the in-process backend.
func NewCanvasRenderer() *CanvasRenderer { return &CanvasRenderer{} }

// Name implements Renderer.
func (c *CanvasRenderer) Name() string { return "canvas" }

// Render implements Renderer.
func (c *CanvasRenderer) Render(ctx context.Context, job Job) (image.Image, error) {
	if job.Background == nil {
		return nil, errors.New("canvas: background is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := job.Plan
	w, h := p.Width, p.Height
	dc := gg.NewContext(w, h)

	dc.DrawImage(coverBackground(job.Background, w, h), 0, 0)

	grad := gg.NewLinearGradient(0, 0, 0, float64(h))
	for _, s := range p.Overlay {
		grad.AddColorStop(s.Offset, color.NRGBA{A: alphaByte(s.Alpha)})
	}
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	if p.Panel != nil {
		dc.SetColor(color.NRGBA{A: alphaByte(p.PanelAlpha)})
		dc.DrawRectangle(p.Panel.X, p.Panel.Y, p.Panel.W, p.Panel.H)
		dc.Fill()
	}

	if err := drawBlock(dc, p.Headline); err != nil {
		return nil, err
	}
	if err := drawBlock(dc, p.Subtext); err != nil {
		return nil, err
	}

	if b := p.CTA; b != nil {
		dc.SetColor(b.Fill)
		dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, b.Radius)
		dc.Fill()
		face, err := newFace(b.Size, true)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetColor(b.TextColor)
		dc.DrawString(b.Text, b.TextX, baseline(face, b.TextY, ctaLineHeight))
	}

	out := imaging.Clone(dc.Image())
	if p.Logo != nil && job.Logo != nil {
		out = placeLogo(out, job.Logo, *p.Logo, p.LogoAlpha)
	}
	return out, nil
}

func drawBlock(dc *gg.Context, b TextBlock) error {
	if len(b.Lines) == 0 {
		return nil
	}
	face, err := newFace(b.Size, b.Bold)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	alpha := b.Alpha
	if alpha <= 0 {
		alpha = 1
	}
	dc.SetColor(color.NRGBA{R: b.Color.R, G: b.Color.G, B: b.Color.B, A: alphaByte(alpha)})
	for _, line := range b.Lines {
		dc.DrawString(line.Text, line.X, baseline(face, line.Y, b.LineHeight))
	}
	return nil
}

// coverBackground scales and center-crops src to exactly w×h.
func coverBackground(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	return imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
}

// placeLogo fits the logo inside box keeping its aspect ratio and blends it
// at the given opacity.
func placeLogo(dst *image.NRGBA, logo image.Image, box Rect, alpha float64) *image.NRGBA {
	size := int(math.Round(box.W))
	if size <= 0 {
		return dst
	}
	fitted := imaging.Fit(logo, size, size, imaging.Lanczos)
	fb := fitted.Bounds()
	pos := image.Pt(
		int(math.Round(box.X))+(size-fb.Dx())/2,
		int(math.Round(box.Y))+(size-fb.Dy())/2,
	)
	return imaging.Overlay(dst, fitted, pos, alpha)
}

func alphaByte(a float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, a)) * 255))
}

var _ Renderer = (*CanvasRenderer)(nil)
