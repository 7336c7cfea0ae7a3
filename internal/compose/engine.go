package compose

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"studio/internal/domain"
)

// ImageSource loads images by URL.
type ImageSource interface {
	FetchImage(ctx context.Context, url string) (image.Image, error)
}

// Input is one compositing request.
type Input struct {
	Blueprint        domain.Blueprint
	BackgroundURL    string
	LogoURL          string
	Colors           []string
	MinMarginPercent float64
}

// Output is a finished composite.
type Output struct {
	Image   image.Image
	Backend string
	Plan    Plan
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	Renderers []Renderer
	Images    ImageSource
	Timeout   time.Duration
	// OnOutcome is called once per attempted backend with "ok" or "error".
	OnOutcome func(backend, outcome string, err error)
	// OnLogoError reports a logo that could not be loaded; rendering goes on
	// without it.
	OnLogoError func(url string, err error)
}

// Engine plans a composite and hands it to the first backend that succeeds.
type Engine struct {
	renderers   []Renderer
	images      ImageSource
	timeout     time.Duration
	onOutcome   func(backend, outcome string, err error)
	onLogoError func(url string, err error)
}

const engineDefaultTimeout = 30 * time.Second

// NewEngine validates opts. An engine without renderers is allowed and
// always reports domain.ErrRenderUnavailable.
func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Images == nil {
		return nil, errors.New("compose: image source is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = engineDefaultTimeout
	}
	return &Engine{
		renderers:   opts.Renderers,
		images:      opts.Images,
		timeout:     timeout,
		onOutcome:   opts.OnOutcome,
		onLogoError: opts.OnLogoError,
	}, nil
}

// Backends lists the configured backend names in order.
func (e *Engine) Backends() []string {
	names := make([]string, 0, len(e.renderers))
	for _, r := range e.renderers {
		names = append(names, r.Name())
	}
	return names
}

// Compose renders in onto its background. Errors wrap
// domain.ErrRenderUnavailable; callers fall back to the background image.
func (e *Engine) Compose(ctx context.Context, in Input) (*Output, error) {
	if len(e.renderers) == 0 {
		return nil, fmt.Errorf("%w: no backend configured", domain.ErrRenderUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	bg, err := e.images.FetchImage(ctx, in.BackgroundURL)
	if err != nil {
		return nil, fmt.Errorf("%w: load background: %v", domain.ErrRenderUnavailable, err)
	}
	var logo image.Image
	if in.Blueprint.IncludeLogo && strings.TrimSpace(in.LogoURL) != "" {
		if logo, err = e.images.FetchImage(ctx, in.LogoURL); err != nil {
			logo = nil
			if e.onLogoError != nil {
				e.onLogoError(in.LogoURL, err)
			}
		}
	}

	m, err := NewMeasurer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderUnavailable, err)
	}
	bp := in.Blueprint
	plan := BuildPlan(m, PlanInput{
		Template:         bp.LayoutTemplateID,
		Width:            bp.Width,
		Height:           bp.Height,
		Headline:         bp.Intent.Headline,
		Subtext:          bp.Intent.Subtext,
		CTA:              bp.Intent.CTA,
		Colors:           in.Colors,
		HasLogo:          logo != nil,
		MinMarginPercent: in.MinMarginPercent,
	})

	job := Job{Plan: plan, Background: bg, Logo: logo}
	var errs []error
	for _, r := range e.renderers {
		img, err := r.Render(ctx, job)
		if err == nil && img != nil {
			e.outcome(r.Name(), "ok", nil)
			return &Output{Image: img, Backend: r.Name(), Plan: plan}, nil
		}
		if err == nil {
			err = errors.New("empty image")
		}
		e.outcome(r.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrRenderUnavailable, errors.Join(errs...))
}

func (e *Engine) outcome(backend, outcome string, err error) {
	if e.onOutcome != nil {
		e.onOutcome(backend, outcome, err)
	}
}
