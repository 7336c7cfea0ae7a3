// Package strategy turns a brand, an asset type and a free-text intent into a
// CreativeBrief. Model-backed resolvers never fail the caller: any upstream
// problem degrades to the deterministic brief and the reason is reported in
// the result metadata.
package strategy

import (
	"context"

	"studio/internal/domain"
)

const (
	staticProviderName = "static"
	openAIProviderName = "openai"
	geminiProviderName = "gemini"
)

// MaxIntentLen bounds the user intent forwarded to a model.
const MaxIntentLen = 500

// MaxMemoryHintLen bounds the campaign memory hint appended to the intent.
const MaxMemoryHintLen = 300

// Request is one strategy call.
type Request struct {
	Brand      *domain.BrandProfile
	Intent     string
	AssetType  string
	MemoryHint string
}

// Result carries the brief together with the provider that produced it.
type Result struct {
	Brief    domain.CreativeBrief
	Provider string
	Metadata map[string]string
}

// FallbackReason returns the degradation reason, or "" when the model answered.
func (r *Result) FallbackReason() string {
	if r == nil || r.Metadata == nil {
		return ""
	}
	return r.Metadata["fallback_reason"]
}

// Resolver produces creative briefs.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (*Result, error)
}

// Limits holds the headline bounds of a resolver. Model headlines are cut at
// HeadlineMax; deterministic headlines longer than FallbackHeadlineMax are
// ellipsized.
type Limits struct {
	HeadlineMax         int
	FallbackHeadlineMax int
}

var (
	// CampaignLimits is the default profile.
	CampaignLimits = Limits{HeadlineMax: domain.MaxHeadlineLen, FallbackHeadlineMax: 50}
	// InterpreterLimits keeps headlines short enough for dense layouts.
	InterpreterLimits = Limits{HeadlineMax: 40, FallbackHeadlineMax: 40}
)

func (l Limits) normalized() Limits {
	if l.HeadlineMax <= 0 || l.HeadlineMax > domain.MaxHeadlineLen {
		l.HeadlineMax = domain.MaxHeadlineLen
	}
	if l.FallbackHeadlineMax <= 0 {
		l.FallbackHeadlineMax = CampaignLimits.FallbackHeadlineMax
	}
	if l.FallbackHeadlineMax > l.HeadlineMax {
		l.FallbackHeadlineMax = l.HeadlineMax
	}
	return l
}
