package strategy

import (
	"context"
	"fmt"
	"math"
	"strings"

	"studio/internal/domain"
)

// EvaluatedAsset is one generated campaign asset handed to an Evaluator.
type EvaluatedAsset struct {
	Label       string
	AssetType   string
	FinalPrompt string
	Tone        string
	Composited  bool
}

// EvaluationRequest asks how consistent a set of assets is with the brand.
type EvaluationRequest struct {
	Brand  *domain.BrandProfile
	Assets []EvaluatedAsset
}

// Evaluator scores brand consistency across generated campaign assets.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluationRequest) (*domain.ConsistencyScore, error)
}

const (
	neutralScore       = 7
	maxRecommendations = 4
	evaluatorTemp      = 0.3
)

var defaultRecommendations = []string{
	"Keep campaign messaging aligned across assets.",
	"Reuse brand colors in all creatives.",
}

// StaticEvaluator scores a campaign from the asset metadata alone.
type StaticEvaluator struct{}

// Evaluate implements Evaluator. It never returns an error.
func (StaticEvaluator) Evaluate(_ context.Context, req EvaluationRequest) (*domain.ConsistencyScore, error) {
	return StaticEvaluator{}.Score(req), nil
}

// Score rates tone by the share of assets using the dominant emotional
// tone, visual by the share of composited assets, and color by the composited
// share when the brand has a palette. Without assets every dimension is
// neutral.
func (StaticEvaluator) Score(req EvaluationRequest) *domain.ConsistencyScore {
	if len(req.Assets) == 0 {
		return &domain.ConsistencyScore{
			Overall:         neutralScore,
			Color:           neutralScore,
			Tone:            neutralScore,
			Visual:          neutralScore,
			Recommendations: append([]string(nil), defaultRecommendations...),
			Source:          staticProviderName,
		}
	}

	composited := 0
	tones := map[string]int{}
	for _, a := range req.Assets {
		if a.Composited {
			composited++
		}
		if t := strings.ToLower(strings.TrimSpace(a.Tone)); t != "" {
			tones[t]++
		}
	}
	n := float64(len(req.Assets))
	compositedShare := float64(composited) / n

	tone := neutralScore
	if len(tones) > 0 {
		dominant, total := 0, 0
		for _, c := range tones {
			total += c
			if c > dominant {
				dominant = c
			}
		}
		tone = scaleShare(float64(dominant) / float64(total))
	}
	visual := scaleShare(compositedShare)
	palette := req.Brand.Palette()
	color := 5
	if len(palette) > 0 {
		color = scaleShare(compositedShare)
	}

	var recs []string
	if len(tones) > 1 && tone < 8 {
		recs = append(recs, fmt.Sprintf("Align the emotional tone across assets; the set mixes %d tones.", len(tones)))
	}
	if visual < 8 {
		recs = append(recs, "Re-render assets that kept the bare background so logo and typography appear on every creative.")
	}
	if len(palette) == 0 {
		recs = append(recs, "Add brand colors to the profile so every creative carries them.")
	}
	if len(recs) == 0 {
		recs = append(recs, defaultRecommendations[0])
	}

	return &domain.ConsistencyScore{
		Overall:         int(math.Round(float64(tone+visual+color) / 3)),
		Color:           color,
		Tone:            tone,
		Visual:          visual,
		Recommendations: recs,
		Source:          staticProviderName,
	}
}

// scaleShare maps a share in [0,1] onto 4..10.
func scaleShare(share float64) int {
	return clampScore(int(math.Round(4 + 6*share)))
}

func clampScore(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

const consistencySystemPrompt = `You are a brand consistency auditor.
Given a brand profile and the generated assets of a campaign (labels, types and image prompts), score how consistent the assets are with the brand.
Return JSON only, with no markdown and no explanation.

Output exactly this structure:
{
  "overallScore": 7,
  "colorConsistency": 7,
  "toneConsistency": 8,
  "visualConsistency": 7,
  "recommendations": ["One short recommendation"]
}

Every score is an integer from 1 to 10. recommendations holds 0 to 4 one-line strings.`

// OpenAIEvaluator asks a chat-completions model for the consistency score and
// falls back to StaticEvaluator.
type OpenAIEvaluator struct {
	chat       openAIChat
	onFallback func(reason string, err error)
}

// NewOpenAIEvaluator builds the evaluator. An empty API key degrades every
// call with reason missing_api_key.
func NewOpenAIEvaluator(opts ChatOptions) *OpenAIEvaluator {
	return &OpenAIEvaluator{chat: newChatFromOptions(opts), onFallback: opts.OnFallback}
}

// Evaluate implements Evaluator.
func (e *OpenAIEvaluator) Evaluate(ctx context.Context, req EvaluationRequest) (*domain.ConsistencyScore, error) {
	if len(req.Assets) == 0 {
		return StaticEvaluator{}.Score(req), nil
	}
	text, err := e.chat.complete(ctx, consistencySystemPrompt, buildEvaluationContent(req), evaluatorTemp)
	if err != nil {
		return e.useFallback(req, chatReason(err), err), nil
	}
	m, err := parseModelPayload[map[string]any](text)
	if err != nil {
		return e.useFallback(req, "parse_payload", err), nil
	}
	score := &domain.ConsistencyScore{
		Overall:         scoreField(m, "overallScore"),
		Color:           scoreField(m, "colorConsistency"),
		Tone:            scoreField(m, "toneConsistency"),
		Visual:          scoreField(m, "visualConsistency"),
		Recommendations: []string{},
		Source:          openAIProviderName,
	}
	if recs, ok := m["recommendations"].([]any); ok {
		for _, r := range recs {
			s, ok := r.(string)
			if !ok || strings.TrimSpace(s) == "" {
				continue
			}
			score.Recommendations = append(score.Recommendations, strings.TrimSpace(s))
			if len(score.Recommendations) == maxRecommendations {
				break
			}
		}
	}
	return score, nil
}

func (e *OpenAIEvaluator) useFallback(req EvaluationRequest, reason string, err error) *domain.ConsistencyScore {
	if e.onFallback != nil {
		e.onFallback(reason, err)
	}
	score := StaticEvaluator{}.Score(req)
	score.FallbackReason = reason
	return score
}

// scoreField reads a 1..10 number; anything else is neutral.
func scoreField(m map[string]any, key string) int {
	v, ok := m[key].(float64)
	if !ok || v < 1 || v > 10 {
		return neutralScore
	}
	return int(math.Round(v))
}

func buildEvaluationContent(req EvaluationRequest) string {
	var b strings.Builder
	b.WriteString("Brand profile:\n")
	b.WriteString(buildBrandContext(req.Brand))
	b.WriteString("\n\nGenerated assets:\n")
	for i, a := range req.Assets {
		fmt.Fprintf(&b, "Asset %d: %s; type: %s; prompt: %s.\n",
			i+1, coalesce(a.Label, "untitled"), coalesce(a.AssetType, "n/a"), domain.Truncate(a.FinalPrompt, 150))
	}
	b.WriteString("\nScore consistency from 1 to 10 and give short recommendations.")
	return b.String()
}

var (
	_ Evaluator = StaticEvaluator{}
	_ Evaluator = (*OpenAIEvaluator)(nil)
)
