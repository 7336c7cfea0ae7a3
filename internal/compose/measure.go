package compose

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the family name the browser backend registers for the
// embedded fonts.
const FontFamily = "StudioSans"

var (
	fontsOnce   sync.Once
	fontRegular *truetype.Font
	fontBold    *truetype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if fontRegular, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			fontsErr = fmt.Errorf("parse regular font: %w", fontsErr)
			return
		}
		if fontBold, fontsErr = truetype.Parse(gobold.TTF); fontsErr != nil {
			fontsErr = fmt.Errorf("parse bold font: %w", fontsErr)
		}
	})
	return fontsErr
}

// FontBytes returns the TTF data behind the regular or bold face.
func FontBytes(bold bool) []byte {
	if bold {
		return gobold.TTF
	}
	return goregular.TTF
}

// newFace returns a face at size pixels. Faces cache glyphs and must not be
// shared across goroutines.
func newFace(size float64, bold bool) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	f := fontRegular
	if bold {
		f = fontBold
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone}), nil
}

// Measurer reports advance widths with the embedded fonts.
type Measurer struct {
	faces map[faceKey]font.Face
}

type faceKey struct {
	size float64
	bold bool
}

// NewMeasurer returns a Measurer for one planning pass.
func NewMeasurer() (*Measurer, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	return &Measurer{faces: map[faceKey]font.Face{}}, nil
}

// Width returns the advance width of text in pixels.
func (m *Measurer) Width(text string, size float64, bold bool) float64 {
	key := faceKey{size: size, bold: bold}
	face, ok := m.faces[key]
	if !ok {
		var err error
		if face, err = newFace(size, bold); err != nil {
			return 0
		}
		m.faces[key] = face
	}
	return float64(font.MeasureString(face, text)) / 64
}

// baseline returns the y of the text baseline for a line box starting at top
// with the given line height, centering the glyph box the way CSS does.
func baseline(face font.Face, top, lineHeight float64) float64 {
	metrics := face.Metrics()
	ascent := float64(metrics.Ascent) / 64
	descent := float64(metrics.Descent) / 64
	return top + (lineHeight-(ascent+descent))/2 + ascent
}
