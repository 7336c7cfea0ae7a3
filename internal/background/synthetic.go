package background

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"studio/internal/domain"
	"studio/internal/storage"
)

// SyntheticGenerator paints a deterministic abstract background from the
// prompt and blueprint. It needs no credentials, so local runs and tests
// still exercise the full pipeline.
// Brand colors, when given, replace the seeded ones.
type SyntheticGenerator struct{}

// NewSyntheticGenerator returns a generator.
func NewSyntheticGenerator() *SyntheticGenerator {
	return &SyntheticGenerator{}
}

// Name implements Generator.
func (g *SyntheticGenerator) Name() string { return "synthetic" }

// Generate implements Generator.
func (g *SyntheticGenerator) Generate(ctx context.Context, p Prompt) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bp := p.Blueprint
	seed := deterministicSeed(p.Text, bp.AssetTypeSlug, bp.AspectRatio, bp.Width, bp.Height)
	img := renderSyntheticImage(bp.Width, bp.Height, seed, p.Palette)
	data, err := storage.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return &Image{Data: data, MIMEType: "image/png"}, nil
}

func renderSyntheticImage(width, height int, seed string, palette []string) *image.RGBA {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 1024
	}
	base := pick(palette, 0, seed)
	accent := pick(palette, 1, seed)
	diagonal := pick(palette, 2, seed)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// vertical blend from base to accent
	for y := 0; y < height; y++ {
		t := float64(y) / float64(max(1, height-1))
		row := blend(base, accent, t)
		draw.Draw(img, image.Rect(0, y, width, y+1), &image.Uniform{row}, image.Point{}, draw.Src)
	}

	soft := diagonal
	soft.A = 48
	step := max(16, width/24)
	for i := -height; i < width; i += step * 2 {
		for y := 0; y < height; y++ {
			for dx := 0; dx < step/2; dx++ {
				x := i + y + dx
				if x < 0 || x >= width {
					continue
				}
				img.Set(x, y, overlay(img.RGBAAt(x, y), soft))
			}
		}
	}
	return img
}

func pick(palette []string, i int, seed string) color.RGBA {
	if i < len(palette) {
		if c, ok := domain.ParseHexColor(palette[i]); ok {
			return c
		}
	}
	return colorFromSeed(seed, i)
}

func blend(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float64(x)*(1-t) + float64(y)*t) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func overlay(dst, src color.RGBA) color.RGBA {
	a := float64(src.A) / 255
	mix := func(d, s uint8) uint8 { return uint8(float64(d)*(1-a) + float64(s)*a) }
	return color.RGBA{R: mix(dst.R, src.R), G: mix(dst.G, src.G), B: mix(dst.B, src.B), A: 255}
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if seed == "" {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{R: hexByte(segment[0:2]), G: hexByte(segment[2:4]), B: hexByte(segment[4:6]), A: 255}
}

func hexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

var _ Generator = (*SyntheticGenerator)(nil)
