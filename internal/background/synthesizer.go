// Package background obtains the text-free background raster for a
// blueprint. Failures never propagate: the synthesizer reports an empty URL
// and the reason.
package background

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"studio/internal/domain"
	"studio/internal/storage"
)

// Image is raw model output.
type Image struct {
	Data     []byte
	MIMEType string
}

// Prompt is the generator input.
type Prompt struct {
	Text      string
	Blueprint domain.Blueprint
	Palette   []string
}

// Generator turns a prompt into pixels for the blueprint's aspect ratio.
type Generator interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (*Image, error)
}

// Request is one background synthesis.
type Request struct {
	Blueprint domain.Blueprint
	Brand     *domain.BrandProfile
	SessionID string
}

// Result always carries the prompt. URL is empty when no background was
// produced.
type Result struct {
	URL            string
	Prompt         string
	Provider       string
	FallbackReason string
}

// Options configures a Synthesizer.
type Options struct {
	Generator  Generator
	Store      storage.ObjectStore
	Timeout    time.Duration
	OnFallback func(reason string, err error)
}

// Synthesizer builds the prompt, calls the generator and uploads the result.
type Synthesizer struct {
	gen        Generator
	store      storage.ObjectStore
	timeout    time.Duration
	onFallback func(reason string, err error)
}

const defaultTimeout = 120 * time.Second

// NewSynthesizer validates opts.
func NewSynthesizer(opts Options) (*Synthesizer, error) {
	if opts.Generator == nil {
		return nil, errors.New("background: generator is required")
	}
	if opts.Store == nil {
		return nil, errors.New("background: store is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Synthesizer{gen: opts.Generator, store: opts.Store, timeout: timeout, onFallback: opts.OnFallback}, nil
}

// StorageKey returns the object key of a session's background.
func StorageKey(sessionID string) string {
	return fmt.Sprintf("backgrounds/%s.png", sessionID)
}

// Synthesize never returns an error; check Result.URL.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) *Result {
	res := &Result{Prompt: BuildPrompt(req.Blueprint, req.Brand), Provider: s.gen.Name()}
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	img, err := s.gen.Generate(genCtx, Prompt{Text: res.Prompt, Blueprint: req.Blueprint, Palette: req.Brand.Palette()})
	if err != nil {
		return s.fail(res, "generate_failed", err)
	}
	if img == nil || len(img.Data) == 0 {
		return s.fail(res, "empty_image", errors.New("generator returned no image"))
	}
	data, err := asPNG(img)
	if err != nil {
		return s.fail(res, "decode_image", err)
	}
	url, err := s.store.Put(ctx, StorageKey(req.SessionID), data, "image/png")
	if err != nil {
		return s.fail(res, "store_failed", err)
	}
	res.URL = url
	return res
}

func (s *Synthesizer) fail(res *Result, reason string, err error) *Result {
	if s.onFallback != nil {
		s.onFallback(reason, err)
	}
	res.FallbackReason = reason
	return res
}

func asPNG(img *Image) ([]byte, error) {
	if strings.EqualFold(img.MIMEType, "image/png") || bytes.HasPrefix(img.Data, []byte("\x89PNG")) {
		return img.Data, nil
	}
	decoded, err := imaging.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, err
	}
	return storage.EncodePNG(decoded)
}
