package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// Output formats accepted by Encoder.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Encoder serializes final composites.
type Encoder struct {
	Format  string
	Quality float32
}

// Encoded is a serialized image ready for upload.
type Encoded struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Encode renders img in the configured format. Unknown formats use PNG.
func (e Encoder) Encode(img image.Image) (Encoded, error) {
	if strings.EqualFold(e.Format, FormatWebP) {
		data, err := EncodeWebP(img, e.Quality)
		if err != nil {
			return Encoded{}, err
		}
		return Encoded{Data: data, ContentType: "image/webp", Ext: FormatWebP}, nil
	}
	data, err := EncodePNG(img)
	if err != nil {
		return Encoded{}, err
	}
	return Encoded{Data: data, ContentType: "image/png", Ext: FormatPNG}, nil
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeWebP returns img as lossy WebP. quality outside (0,100] uses 90.
func EncodeWebP(img image.Image, quality float32) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("webp options: %w", err)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
