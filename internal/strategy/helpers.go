package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"studio/internal/domain"
)

// briefKeys are the fields a model answer is expected to carry.
var briefKeys = []string{
	"objective", "targetPersona", "emotionalTone", "messagingFramework",
	"headline", "subtext", "cta", "visualDirection", "layoutType",
}

var errMissingFields = errors.New("model payload carries no brief fields")

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// stringField reads a string value; non-string values count as absent.
func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// briefFromPayload decodes a model answer into a brief. Missing fields take
// the same defaults the deterministic path uses; an answer with none of the
// brief keys is rejected.
func briefFromPayload(raw string, fallback domain.CreativeBrief, headlineMax int) (domain.CreativeBrief, error) {
	m, err := parseModelPayload[map[string]any](raw)
	if err != nil {
		return domain.CreativeBrief{}, err
	}
	found := false
	for _, k := range briefKeys {
		if stringField(m, k) != "" {
			found = true
			break
		}
	}
	if !found {
		return domain.CreativeBrief{}, fmt.Errorf("%w: %d keys", errMissingFields, len(m))
	}
	brief := domain.CreativeBrief{
		Objective:          domain.ParseObjective(stringField(m, "objective")),
		TargetPersona:      coalesce(stringField(m, "targetPersona"), "Target audience."),
		EmotionalTone:      coalesce(stringField(m, "emotionalTone"), "Professional."),
		MessagingFramework: coalesce(stringField(m, "messagingFramework"), defaultFramework),
		Headline:           coalesce(domain.Truncate(stringField(m, "headline"), headlineMax), fallback.Headline),
		Subtext:            stringField(m, "subtext"),
		CTA:                coalesce(stringField(m, "cta"), defaultCTA),
		VisualDirection:    coalesce(stringField(m, "visualDirection"), "Professional marketing background."),
		LayoutHint:         coalesce(stringField(m, "layoutType"), defaultLayout),
	}
	return brief.Clamp(headlineMax), nil
}

// degrade runs the fallback resolver and stamps the reason on its result.
func degrade(ctx context.Context, fallback Resolver, req Request, reason string) (*Result, error) {
	res, err := fallback.Resolve(ctx, req)
	if res != nil {
		if res.Provider == "" {
			res.Provider = staticProviderName
		}
		if res.Metadata == nil {
			res.Metadata = map[string]string{}
		}
		if reason != "" {
			res.Metadata["fallback_reason"] = reason
		}
	}
	return res, err
}
