package domain

import "strings"

// Objective is the marketing objective of a creative brief.
type Objective string

const (
	ObjectiveAwareness  Objective = "awareness"
	ObjectiveEngagement Objective = "engagement"
	ObjectiveConversion Objective = "conversion"
	ObjectiveRetention  Objective = "retention"
)

// Objectives lists every objective in canonical order.
var Objectives = []Objective{ObjectiveAwareness, ObjectiveEngagement, ObjectiveConversion, ObjectiveRetention}

// ParseObjective maps free text onto the closed objective set. Unknown values
// resolve to engagement.
func ParseObjective(v string) Objective {
	switch Objective(strings.ToLower(strings.TrimSpace(v))) {
	case ObjectiveAwareness:
		return ObjectiveAwareness
	case ObjectiveConversion:
		return ObjectiveConversion
	case ObjectiveRetention:
		return ObjectiveRetention
	default:
		return ObjectiveEngagement
	}
}

// Field length bounds for a CreativeBrief.
const (
	MaxPersonaLen         = 200
	MaxToneLen            = 120
	MaxFrameworkLen       = 100
	MaxHeadlineLen        = 120
	MaxSubtextLen         = 150
	MaxCTALen             = 60
	MaxVisualDirectionLen = 300
	MaxLayoutHintLen      = 60
)

// CreativeBrief is the structured output of the strategy stage.
type CreativeBrief struct {
	Objective          Objective `json:"objective"`
	TargetPersona      string    `json:"targetPersona"`
	EmotionalTone      string    `json:"emotionalTone"`
	MessagingFramework string    `json:"messagingFramework"`
	Headline           string    `json:"headline"`
	Subtext            string    `json:"subtext"`
	CTA                string    `json:"cta"`
	VisualDirection    string    `json:"visualDirection"`
	LayoutHint         string    `json:"layoutHint"`
}

// Clamp enforces the field bounds of the brief. headlineMax <= 0 uses MaxHeadlineLen.
func (b CreativeBrief) Clamp(headlineMax int) CreativeBrief {
	if headlineMax <= 0 {
		headlineMax = MaxHeadlineLen
	}
	b.Objective = ParseObjective(string(b.Objective))
	b.TargetPersona = Truncate(b.TargetPersona, MaxPersonaLen)
	b.EmotionalTone = Truncate(b.EmotionalTone, MaxToneLen)
	b.MessagingFramework = Truncate(b.MessagingFramework, MaxFrameworkLen)
	b.Headline = Truncate(b.Headline, headlineMax)
	b.Subtext = Truncate(b.Subtext, MaxSubtextLen)
	b.CTA = Truncate(b.CTA, MaxCTALen)
	b.VisualDirection = Truncate(b.VisualDirection, MaxVisualDirectionLen)
	b.LayoutHint = Truncate(b.LayoutHint, MaxLayoutHintLen)
	return b
}

// Truncate trims s and cuts it to at most n runes.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

// Ellipsize cuts s to n runes, replacing the tail with "..." when it overflows.
func Ellipsize(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
