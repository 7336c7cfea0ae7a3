package background

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	"google.golang.org/genai"

	"studio/internal/blueprint"
	"studio/internal/domain"
)

type memoryStore struct {
	puts map[string][]byte
	err  error
}

func (m *memoryStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.puts == nil {
		m.puts = map[string][]byte{}
	}
	m.puts[key] = data
	return "mem://" + key, nil
}

type stubGenerator struct {
	img *Image
	err error
	got Prompt
}

func (s *stubGenerator) Name() string { return "stub" }

func (s *stubGenerator) Generate(_ context.Context, p Prompt) (*Image, error) {
	s.got = p
	return s.img, s.err
}

type fakeModels struct {
	resp *genai.GenerateContentResponse
	cfg  *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.cfg = cfg
	return f.resp, nil
}

func testBlueprint() domain.Blueprint {
	return blueprint.Create("linkedin_post", domain.CreativeBrief{
		VisualDirection: "Soft morning light over a desk.",
		EmotionalTone:   "warm",
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()
	brand := &domain.BrandProfile{
		Name:        "Acme",
		Colors:      []string{"#1", "#2", "#3", "#4", "#5", "#6"},
		VisualStyle: "flat pastel",
		Personality: "friendly",
		Tone:        "calm",
	}
	got := BuildPrompt(testBlueprint(), brand)
	for _, want := range []string{
		"No text. No typography. No logos. No letters.",
		"Visual direction: Soft morning light over a desk.",
		"Tone and mood: warm.",
		"Aspect ratio: 1:1. Full-bleed background, no text or logos.",
		"Use these brand colors in the background: #1, #2, #3, #4, #5.",
		"Visual style: flat pastel.",
		"Aesthetic: friendly, calm.",
		"Background only.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "#6") {
		t.Fatal("prompt should carry at most five colors")
	}
	if anon := BuildPrompt(testBlueprint(), nil); strings.Contains(anon, "brand colors") {
		t.Fatalf("anonymous prompt mentions brand colors: %s", anon)
	}
}

func TestSynthesizeStoresBackground(t *testing.T) {
	t.Parallel()
	store := &memoryStore{}
	s, err := NewSynthesizer(Options{Generator: NewSyntheticGenerator(), Store: store})
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}
	bp := testBlueprint()
	res := s.Synthesize(context.Background(), Request{Blueprint: bp, Brand: &domain.BrandProfile{Colors: []string{"#112233"}}, SessionID: "s1"})
	if res.URL != "mem://backgrounds/s1.png" {
		t.Fatalf("URL = %q, reason %q", res.URL, res.FallbackReason)
	}
	if res.Provider != "synthetic" || res.Prompt == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	img, err := png.Decode(bytes.NewReader(store.puts["backgrounds/s1.png"]))
	if err != nil {
		t.Fatalf("stored background is not PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != bp.Width || b.Dy() != bp.Height {
		t.Fatalf("bounds = %v, want %dx%d", b, bp.Width, bp.Height)
	}
	found := false
	for x := 0; x < bp.Width && !found; x++ {
		r, g, bl, _ := img.At(x, 0).RGBA()
		found = r>>8 == 0x11 && g>>8 == 0x22 && bl>>8 == 0x33
	}
	if !found {
		t.Fatal("top row never shows the brand base color")
	}
}

func TestSynthesizeFailuresYieldEmptyURL(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		gen    *stubGenerator
		store  *memoryStore
		reason string
	}{
		{name: "generator_error", gen: &stubGenerator{err: errors.New("quota")}, store: &memoryStore{}, reason: "generate_failed"},
		{name: "no_image", gen: &stubGenerator{}, store: &memoryStore{}, reason: "empty_image"},
		{name: "garbage_bytes", gen: &stubGenerator{img: &Image{Data: []byte("nope"), MIMEType: "image/jpeg"}}, store: &memoryStore{}, reason: "decode_image"},
		{name: "store_error", gen: &stubGenerator{img: &Image{Data: []byte("\x89PNG...."), MIMEType: "image/png"}}, store: &memoryStore{err: errors.New("disk full")}, reason: "store_failed"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var captured string
			s, err := NewSynthesizer(Options{Generator: tc.gen, Store: tc.store, OnFallback: func(reason string, err error) { captured = reason }})
			if err != nil {
				t.Fatalf("NewSynthesizer: %v", err)
			}
			res := s.Synthesize(context.Background(), Request{Blueprint: testBlueprint(), SessionID: "s"})
			if res.URL != "" {
				t.Fatalf("URL = %q, want empty", res.URL)
			}
			if res.FallbackReason != tc.reason || captured != tc.reason {
				t.Fatalf("reason = %q / %q, want %q", res.FallbackReason, captured, tc.reason)
			}
			if res.Prompt == "" {
				t.Fatal("prompt should be reported even on failure")
			}
		})
	}
}

func TestGeminiGeneratorExtractsInlineImage(t *testing.T) {
	t.Parallel()
	models := &fakeModels{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "here you go"},
			{InlineData: &genai.Blob{Data: []byte("img"), MIMEType: "image/png"}},
		}},
	}}}}
	g, err := NewGeminiGenerator(context.Background(), GeminiOptions{Generator: models})
	if err != nil {
		t.Fatalf("NewGeminiGenerator: %v", err)
	}
	bp := blueprint.Create("linkedin_banner", domain.CreativeBrief{})
	img, err := g.Generate(context.Background(), Prompt{Text: "bg", Blueprint: bp})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if img == nil || string(img.Data) != "img" {
		t.Fatalf("unexpected image %+v", img)
	}
	if got := models.cfg.ImageConfig.AspectRatio; got != "21:9" {
		t.Fatalf("aspect ratio = %q, want 21:9 for %s", got, bp.AspectRatio)
	}
}

func TestGeminiAspectRatio(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"16:9":  "16:9",
		"4:5":   "4:5",
		"4:1":   "21:9",
		"2.7:1": "21:9",
		"bogus": "1:1",
	}
	for in, want := range cases {
		if got := geminiAspectRatio(in); got != want {
			t.Fatalf("geminiAspectRatio(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	t.Parallel()
	if _, err := NewGeminiGenerator(context.Background(), GeminiOptions{}); err == nil {
		t.Fatal("expected error without api key or generator")
	}
}
