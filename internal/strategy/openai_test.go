package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"studio/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func chatBody(content string) string {
	encoded, _ := json.Marshal(content)
	return `{"choices":[{"message":{"content":` + string(encoded) + `}}]}`
}

func TestOpenAIResolverFallbackReasons(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		key    string
		rt     roundTripFunc
		reason string
	}{
		{
			name:   "missing_key",
			reason: "missing_api_key",
		},
		{
			name: "transport_error",
			key:  "dummy",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("boom")
			},
			reason: "http_request",
		},
		{
			name: "upstream_502",
			key:  "dummy",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusBadGateway, `{}`), nil
			},
			reason: "http_502",
		},
		{
			name: "bad_json",
			key:  "dummy",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `not json`), nil
			},
			reason: "decode_response",
		},
		{
			name: "no_choices",
			key:  "dummy",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"choices":[]}`), nil
			},
			reason: "empty_choices",
		},
		{
			name: "malformed_payload",
			key:  "dummy",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, chatBody("{headline: nope")), nil
			},
			reason: "parse_payload",
		},
		{
			name: "no_brief_keys",
			key:  "dummy",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, chatBody(`{"foo":"bar"}`)), nil
			},
			reason: "missing_fields",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var captured string
			opts := OpenAIOptions{
				APIKey: tc.key,
				OnFallback: func(reason string, err error) {
					captured = reason
				},
			}
			if tc.rt != nil {
				opts.HTTPClient = &http.Client{Transport: tc.rt}
			}
			r := NewOpenAIResolver(opts)
			res, err := r.Resolve(context.Background(), Request{
				Brand:     &domain.BrandProfile{Name: "Acme"},
				AssetType: "linkedin_post",
			})
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if res.Provider != staticProviderName {
				t.Fatalf("Provider = %q, want %q", res.Provider, staticProviderName)
			}
			if got := res.FallbackReason(); got != tc.reason {
				t.Fatalf("fallback_reason = %q, want %q", got, tc.reason)
			}
			if captured != tc.reason {
				t.Fatalf("captured reason = %q, want %q", captured, tc.reason)
			}
			if res.Brief.CTA != "Learn more" {
				t.Fatalf("CTA = %q, want Learn more", res.Brief.CTA)
			}
			if res.Brief.Headline == "" {
				t.Fatal("expected non-empty fallback headline")
			}
		})
	}
}

func TestOpenAIResolverParsesAndClampsBrief(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("h", 200)
	content := `{"objective":"world domination","targetPersona":"Founders","emotionalTone":"bold","messagingFramework":"PAS","headline":"` +
		long + `","subtext":"Ship faster","cta":"Start free","visualDirection":"Soft gradient","layoutType":"split-left-text"}`
	var gotAuth, gotPath string
	var gotBody string
	r := NewOpenAIResolver(OpenAIOptions{
		APIKey: "sk-test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			gotPath = req.URL.Path
			b, _ := io.ReadAll(req.Body)
			gotBody = string(b)
			return jsonResponse(http.StatusOK, chatBody(content)), nil
		})},
	})
	res, err := r.Resolve(context.Background(), Request{
		Brand:      &domain.BrandProfile{Name: "Acme", Colors: []string{"#111111", "#ff0000"}},
		Intent:     "Launch week",
		AssetType:  "instagram_post",
		MemoryHint: "Recent: awareness.",
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotPath != "/v1/chat/completions" {
		t.Fatalf("path = %q", gotPath)
	}
	if !strings.Contains(gotBody, "json_object") || !strings.Contains(gotBody, "Campaign memory: Recent: awareness.") {
		t.Fatalf("request body missing expected fields: %s", gotBody)
	}
	if res.Provider != openAIProviderName {
		t.Fatalf("Provider = %q", res.Provider)
	}
	if res.FallbackReason() != "" {
		t.Fatalf("unexpected fallback %q", res.FallbackReason())
	}
	b := res.Brief
	if b.Objective != domain.ObjectiveEngagement {
		t.Fatalf("Objective = %q, want engagement", b.Objective)
	}
	if n := len([]rune(b.Headline)); n != domain.MaxHeadlineLen {
		t.Fatalf("headline length = %d, want %d", n, domain.MaxHeadlineLen)
	}
	if b.CTA != "Start free" || b.MessagingFramework != "PAS" || b.LayoutHint != "split-left-text" {
		t.Fatalf("unexpected brief %+v", b)
	}
}

func TestOpenAIResolverDefaultsMissingFields(t *testing.T) {
	t.Parallel()
	r := NewOpenAIResolver(OpenAIOptions{
		APIKey: "sk-test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, chatBody("```json\n{\"objective\":\"conversion\",\"headline\":42}\n```")), nil
		})},
	})
	res, err := r.Resolve(context.Background(), Request{Brand: &domain.BrandProfile{Name: "Acme"}, AssetType: "facebook_ad"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	b := res.Brief
	if b.Objective != domain.ObjectiveConversion {
		t.Fatalf("Objective = %q", b.Objective)
	}
	if b.Headline != "Facebook Ad" {
		t.Fatalf("Headline = %q, want deterministic headline", b.Headline)
	}
	if b.CTA != "Learn more" || b.TargetPersona != "Target audience." || b.EmotionalTone != "Professional." {
		t.Fatalf("defaults not applied: %+v", b)
	}
	if b.VisualDirection != "Professional marketing background." || b.LayoutHint != "top-heading" {
		t.Fatalf("defaults not applied: %+v", b)
	}
}

func TestOpenAIResolverHonoursHeadlineLimit(t *testing.T) {
	t.Parallel()
	r := NewOpenAIResolver(OpenAIOptions{
		APIKey: "sk-test",
		Limits: InterpreterLimits,
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, chatBody(`{"headline":"`+strings.Repeat("x", 90)+`"}`)), nil
		})},
	})
	res, err := r.Resolve(context.Background(), Request{AssetType: "story"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if n := len([]rune(res.Brief.Headline)); n != 40 {
		t.Fatalf("headline length = %d, want 40", n)
	}
}

func TestNormalizeOpenAIModel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		input  string
		model  string
		reason string
	}{
		{name: "exact_default", input: "gpt-4o-mini", model: "gpt-4o-mini"},
		{name: "exact_other", input: "gpt-4o", model: "gpt-4o"},
		{name: "alias_short", input: "gpt-3.5", model: "gpt-3.5-turbo", reason: "alias"},
		{name: "alias_spaces", input: "GPT4o mini", model: "gpt-4o-mini", reason: "alias"},
		{name: "unsupported", input: "davinci", model: "gpt-4o-mini", reason: "defaulted"},
		{name: "empty", input: "", model: "gpt-4o-mini"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotModel, gotReason := normalizeOpenAIModel(tc.input)
			if gotModel != tc.model {
				t.Fatalf("model = %q, want %q", gotModel, tc.model)
			}
			if gotReason != tc.reason {
				t.Fatalf("reason = %q, want %q", gotReason, tc.reason)
			}
		})
	}
}

func TestNewOpenAIResolverWarnsOnUnsupportedModel(t *testing.T) {
	t.Parallel()
	var capturedReason, capturedDetail string
	NewOpenAIResolver(OpenAIOptions{
		APIKey: "dummy",
		Model:  "text-davinci-003",
		OnWarning: func(reason, detail string) {
			capturedReason = reason
			capturedDetail = detail
		},
	})
	if capturedReason != "model_defaulted" {
		t.Fatalf("warning reason = %q, want model_defaulted", capturedReason)
	}
	if capturedDetail == "" {
		t.Fatal("expected warning detail to be set")
	}
}
