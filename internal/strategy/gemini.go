package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiTextModel = "gemini-2.5-flash"

// ContentGenerator is the slice of the genai models service the resolver
// uses. *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiOptions configures GeminiResolver.
type GeminiOptions struct {
	APIKey     string
	Model      string
	Limits     Limits
	Generator  ContentGenerator
	Fallback   Resolver
	OnFallback func(reason string, err error)
}

// GeminiResolver asks a Gemini text model for the brief in JSON mode.
type GeminiResolver struct {
	model      string
	generator  ContentGenerator
	limits     Limits
	static     *StaticResolver
	fallback   Resolver
	onFallback func(reason string, err error)
}

// NewGeminiResolver creates a genai client for opts.APIKey unless a generator
// is supplied. Without either, every call degrades with missing_api_key.
func NewGeminiResolver(ctx context.Context, opts GeminiOptions) (*GeminiResolver, error) {
	gen := opts.Generator
	if gen == nil && strings.TrimSpace(opts.APIKey) != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  strings.TrimSpace(opts.APIKey),
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		gen = client.Models
	}
	limits := opts.Limits.normalized()
	return &GeminiResolver{
		model:      coalesce(opts.Model, defaultGeminiTextModel),
		generator:  gen,
		limits:     limits,
		static:     NewStaticResolver(limits),
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}, nil
}

// Resolve implements Resolver.
func (g *GeminiResolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	if g.generator == nil {
		return g.useFallback(ctx, req, "missing_api_key", nil)
	}
	temp := float32(openAITemperature)
	resp, err := g.generator.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{genai.NewPartFromText(BuildUserContent(req))}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(SystemInstruction())}},
			ResponseMIMEType:  "application/json",
			Temperature:       &temp,
		},
	)
	if err != nil {
		return g.useFallback(ctx, req, "generate_content", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return g.useFallback(ctx, req, "empty_choices", errors.New("no candidates"))
	}
	text := extractText(resp)
	if text == "" {
		return g.useFallback(ctx, req, "empty_response", errors.New("empty response"))
	}
	brief, err := briefFromPayload(text, g.static.Brief(req), g.limits.HeadlineMax)
	if err != nil {
		reason := "parse_payload"
		if errors.Is(err, errMissingFields) {
			reason = "missing_fields"
		}
		return g.useFallback(ctx, req, reason, err)
	}
	return &Result{
		Brief:    brief,
		Provider: geminiProviderName,
		Metadata: map[string]string{"model": g.model},
	}, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

func (g *GeminiResolver) useFallback(ctx context.Context, req Request, reason string, fallbackErr error) (*Result, error) {
	if g.onFallback != nil {
		g.onFallback(reason, fallbackErr)
	}
	if g.fallback != nil {
		return degrade(ctx, g.fallback, req, reason)
	}
	return degrade(ctx, g.static, req, reason)
}

var _ Resolver = (*GeminiResolver)(nil)
