package strategy

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"studio/internal/domain"
)

type fakeGenerator struct {
	resp *genai.GenerateContentResponse
	err  error
	cfg  *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.cfg = cfg
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}}},
	}
}

type fakeResolver struct {
	res *Result
}

func (f fakeResolver) Resolve(context.Context, Request) (*Result, error) {
	return f.res, nil
}

func TestGeminiResolverUsesJSONMode(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{resp: textResponse(`{"objective":"awareness","headline":"Meet Acme","cta":"Say hi"}`)}
	r, err := NewGeminiResolver(context.Background(), GeminiOptions{Generator: gen})
	if err != nil {
		t.Fatalf("NewGeminiResolver returned error: %v", err)
	}
	res, err := r.Resolve(context.Background(), Request{Brand: &domain.BrandProfile{Name: "Acme"}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Provider != geminiProviderName {
		t.Fatalf("Provider = %q", res.Provider)
	}
	if gen.cfg == nil || gen.cfg.ResponseMIMEType != "application/json" || gen.cfg.SystemInstruction == nil {
		t.Fatalf("unexpected config %+v", gen.cfg)
	}
	if res.Brief.Objective != domain.ObjectiveAwareness || res.Brief.Headline != "Meet Acme" || res.Brief.CTA != "Say hi" {
		t.Fatalf("unexpected brief %+v", res.Brief)
	}
}

func TestGeminiResolverFallbacks(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		gen    ContentGenerator
		reason string
	}{
		{name: "no_client", reason: "missing_api_key"},
		{name: "call_error", gen: &fakeGenerator{err: errors.New("quota")}, reason: "generate_content"},
		{name: "no_candidates", gen: &fakeGenerator{resp: &genai.GenerateContentResponse{}}, reason: "empty_choices"},
		{name: "blank_text", gen: &fakeGenerator{resp: textResponse("   ")}, reason: "empty_response"},
		{name: "garbage", gen: &fakeGenerator{resp: textResponse("sorry, I cannot")}, reason: "parse_payload"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var captured string
			r, err := NewGeminiResolver(context.Background(), GeminiOptions{
				Generator:  tc.gen,
				OnFallback: func(reason string, err error) { captured = reason },
			})
			if err != nil {
				t.Fatalf("NewGeminiResolver returned error: %v", err)
			}
			res, err := r.Resolve(context.Background(), Request{AssetType: "linkedin_post"})
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if res.FallbackReason() != tc.reason || captured != tc.reason {
				t.Fatalf("reason = %q / %q, want %q", res.FallbackReason(), captured, tc.reason)
			}
			if res.Brief.CTA != "Learn more" {
				t.Fatalf("CTA = %q", res.Brief.CTA)
			}
		})
	}
}

func TestGeminiResolverFallsBackToChainedResolver(t *testing.T) {
	t.Parallel()
	chained := fakeResolver{res: &Result{Brief: domain.CreativeBrief{Headline: "From OpenAI"}, Provider: openAIProviderName}}
	r, err := NewGeminiResolver(context.Background(), GeminiOptions{
		Generator: &fakeGenerator{err: errors.New("down")},
		Fallback:  chained,
	})
	if err != nil {
		t.Fatalf("NewGeminiResolver returned error: %v", err)
	}
	res, err := r.Resolve(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Provider != openAIProviderName || res.Brief.Headline != "From OpenAI" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.FallbackReason() != "generate_content" {
		t.Fatalf("fallback_reason = %q", res.FallbackReason())
	}
}
