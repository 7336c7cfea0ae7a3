package strategy

import (
	"fmt"
	"strings"

	"studio/internal/domain"
)

const systemPrompt = `You are an AI Chief Marketing Officer.

Use the provided Brand Intelligence.

Determine:
- The marketing objective
- The most effective messaging framework
- The emotional tone aligned with brand personality
- A compelling headline
- Supporting subtext
- A persuasive CTA
- Visual direction for background
- Recommended layout type

Output ONLY valid structured JSON.`

const outputSchema = `{
  "objective": "awareness | engagement | conversion | retention",
  "targetPersona": "one sentence describing the target audience",
  "emotionalTone": "tone aligned with brand (e.g. professional, bold, warm)",
  "messagingFramework": "framework name or approach (e.g. AIDA, PAS, before-after-bridge)",
  "headline": "short punchy headline (3-8 words)",
  "subtext": "one line supporting copy (under 15 words)",
  "cta": "call-to-action text (2-5 words)",
  "visualDirection": "concrete visual description for background: composition, mood, style (1-2 sentences)",
  "layoutType": "e.g. top-heading, centered-vertical, bold-center, split-text-product"
}`

// SystemInstruction is the instruction sent ahead of every strategy request.
func SystemInstruction() string {
	return systemPrompt + "\n\nOutput this exact structure:\n" + outputSchema
}

// intentWithMemory appends the memory hint to the bounded user intent.
func intentWithMemory(req Request) string {
	intent := domain.Truncate(req.Intent, MaxIntentLen)
	hint := domain.Truncate(req.MemoryHint, MaxMemoryHintLen)
	if hint == "" {
		return intent
	}
	return intent + "\n\nCampaign memory: " + hint
}

func buildBrandContext(b *domain.BrandProfile) string {
	name := "Unknown"
	if b != nil && strings.TrimSpace(b.Name) != "" {
		name = strings.TrimSpace(b.Name)
	}
	lines := []string{fmt.Sprintf("Brand: %s.", name)}
	if b == nil {
		return lines[0]
	}
	add := func(label, value string, max int) {
		if value = strings.TrimSpace(value); value == "" {
			return
		}
		if max > 0 {
			value = domain.Truncate(value, max)
		}
		lines = append(lines, fmt.Sprintf("%s: %s.", label, value))
	}
	add("Tagline", b.Tagline, 0)
	add("Description", b.Description, 300)
	add("Personality", b.Personality, 0)
	add("Tone", b.Tone, 0)
	add("Visual style", b.VisualStyle, 200)
	add("Target audience", b.TargetAudience, 0)
	if s := b.Strategy; s != nil {
		add("Positioning", s.Positioning, 200)
		add("Brand archetype", s.Archetype, 0)
		if len(s.ContentPillars) > 0 {
			pillars := s.ContentPillars
			if len(pillars) > 4 {
				pillars = pillars[:4]
			}
			add("Content pillars", strings.Join(pillars, ", "), 0)
		}
		add("Style", s.AestheticNarrative, 150)
	}
	if colors := b.Palette(); len(colors) > 0 {
		if len(colors) > 4 {
			colors = colors[:4]
		}
		add("Brand colors", strings.Join(colors, ", "), 0)
	}
	return strings.Join(lines, "\n")
}

// BuildUserContent renders the brand, asset type and intent block sent as the
// user turn.
func BuildUserContent(req Request) string {
	blocks := []string{buildBrandContext(req.Brand)}
	if asset := domain.Truncate(req.AssetType, 80); asset != "" {
		blocks = append(blocks, fmt.Sprintf("Asset type: %s.", asset))
	}
	if intent := intentWithMemory(req); intent != "" {
		blocks = append(blocks, fmt.Sprintf("User intent / prompt: %s.", intent))
	}
	return strings.Join(blocks, "\n\n")
}
