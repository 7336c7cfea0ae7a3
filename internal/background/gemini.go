package background

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"studio/internal/blueprint"
)

const defaultGeminiImageModel = "gemini-2.5-flash-image"

// ContentGenerator is satisfied by *genai.Models.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiOptions configures GeminiGenerator.
type GeminiOptions struct {
	APIKey    string
	Model     string
	Generator ContentGenerator
}

// GeminiGenerator produces backgrounds with a Gemini image model.
type GeminiGenerator struct {
	model     string
	generator ContentGenerator
}

// NewGeminiGenerator creates the genai client unless opts.Generator is set.
func NewGeminiGenerator(ctx context.Context, opts GeminiOptions) (*GeminiGenerator, error) {
	gen := opts.Generator
	if gen == nil {
		key := strings.TrimSpace(opts.APIKey)
		if key == "" {
			return nil, errors.New("background: gemini api key is required")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		gen = client.Models
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGeminiImageModel
	}
	return &GeminiGenerator{model: model, generator: gen}, nil
}

// Name implements Generator.
func (g *GeminiGenerator) Name() string { return "gemini" }

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, p Prompt) (*Image, error) {
	temp := float32(0.7)
	resp, err := g.generator.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{genai.NewPartFromText(p.Text)}}},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{AspectRatio: geminiAspectRatio(p.Blueprint.AspectRatio)},
			Temperature: &temp,
		},
	)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("gemini: nil response")
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &Image{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
			}
		}
	}
	return nil, nil
}

// ratios the image model accepts directly
var geminiRatios = map[string]bool{
	"1:1": true, "2:3": true, "3:2": true, "3:4": true, "4:3": true,
	"4:5": true, "5:4": true, "9:16": true, "16:9": true, "21:9": true,
}

// geminiAspectRatio maps banner ratios the model cannot produce onto the
// widest supported one. The compositor cover-scales the result anyway.
func geminiAspectRatio(ar string) string {
	ar = strings.TrimSpace(ar)
	if geminiRatios[ar] {
		return ar
	}
	w, h := blueprint.Dimensions(ar)
	if w > h {
		return "21:9"
	}
	if h > w {
		return "9:16"
	}
	return "1:1"
}

var _ Generator = (*GeminiGenerator)(nil)
