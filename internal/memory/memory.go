// Package memory keeps a per-brand record of the objectives, messaging
// frameworks and tones used by earlier generations and turns it into an
// advisory hint for the strategy stage.
package memory

import (
	"fmt"
	"strings"

	"studio/internal/domain"
)

// Read window sizes.
const (
	RecentObjectives = 20
	RecentEntries    = 100

	hintSample      = 3
	repeatThreshold = 2
)

var alternativeFrameworks = map[domain.Objective][]string{
	domain.ObjectiveAwareness:  {"AIDA", "PAS", "before-after-bridge", "storytelling", "problem-agitate-solve"},
	domain.ObjectiveEngagement: {"PAS", "AIDA", "curiosity gap", "social proof", "benefit-led"},
	domain.ObjectiveConversion: {"urgency", "scarcity", "clear CTA", "risk-reversal", "before-after-bridge"},
	domain.ObjectiveRetention:  {"loyalty narrative", "community", "value reminder", "benefit-led", "storytelling"},
}

// Suggestion is an advisory alternative. Empty fields mean no suggestion.
type Suggestion struct {
	Objective          domain.Objective `json:"objective,omitempty"`
	MessagingFramework string           `json:"messagingFramework,omitempty"`
}

// Empty reports whether nothing is suggested.
func (s Suggestion) Empty() bool {
	return s.Objective == "" && s.MessagingFramework == ""
}

// Suggest looks for repetition of the current objective or framework in the
// snapshot. A value counts as repeated once it appears at least twice.
func Suggest(snap domain.MemorySnapshot, objective domain.Objective, framework string) Suggestion {
	obj := strings.ToLower(strings.TrimSpace(string(objective)))
	fw := strings.ToLower(strings.TrimSpace(framework))

	objCount := 0
	for _, o := range snap.Objectives {
		if strings.EqualFold(string(o), obj) {
			objCount++
		}
	}
	fwCount := 0
	if fw != "" {
		for _, f := range snap.MessagingFrameworks {
			if strings.ToLower(strings.TrimSpace(f)) == fw {
				fwCount++
			}
		}
	}

	var out Suggestion
	if fwCount >= repeatThreshold {
		alts, ok := alternativeFrameworks[domain.Objective(obj)]
		if !ok {
			alts = alternativeFrameworks[domain.ObjectiveAwareness]
		}
		for _, alt := range alts {
			if !frameworkUsed(snap.MessagingFrameworks, alt) {
				out.MessagingFramework = alt
				break
			}
		}
	}
	if objCount >= repeatThreshold {
		for _, o := range domain.Objectives {
			if string(o) == obj || objectiveUsed(snap.Objectives, o) {
				continue
			}
			out.Objective = o
			break
		}
	}
	return out
}

func frameworkUsed(used []string, candidate string) bool {
	c := strings.ToLower(candidate)
	for _, u := range used {
		if strings.Contains(strings.ToLower(u), c) {
			return true
		}
	}
	return false
}

func objectiveUsed(used []domain.Objective, o domain.Objective) bool {
	for _, u := range used {
		if strings.EqualFold(string(u), string(o)) {
			return true
		}
	}
	return false
}

// Hint summarizes the snapshot for the strategy prompt. The most recent
// entry stands in for the current choice when looking for repetition. An
// empty snapshot yields "".
func Hint(snap domain.MemorySnapshot) string {
	objectives := make([]string, 0, len(snap.Objectives))
	for _, o := range snap.Objectives {
		objectives = append(objectives, string(o))
	}
	recentObj := distinct(objectives, hintSample)
	recentFw := distinct(snap.MessagingFrameworks, hintSample)
	if len(recentObj) == 0 && len(recentFw) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Recent: ")
	b.WriteString(strings.Join(recentObj, ", "))
	b.WriteString("; ")
	b.WriteString(strings.Join(recentFw, ", "))
	b.WriteString(". Prefer variety when appropriate.")

	var current domain.Objective
	if len(snap.Objectives) > 0 {
		current = snap.Objectives[0]
	}
	var framework string
	if len(snap.MessagingFrameworks) > 0 {
		framework = snap.MessagingFrameworks[0]
	}
	s := Suggest(snap, current, framework)
	if s.Objective != "" {
		fmt.Fprintf(&b, " Consider objective %s.", s.Objective)
	}
	if s.MessagingFramework != "" {
		fmt.Fprintf(&b, " Consider messaging framework %s.", s.MessagingFramework)
	}
	return b.String()
}

// distinct returns up to n unique non-empty values, case-insensitively, in
// order of first appearance.
func distinct(values []string, n int) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, n)
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}

// EntryFromBrief extracts what memory records about a brief.
func EntryFromBrief(b domain.CreativeBrief) domain.MemoryEntry {
	return domain.MemoryEntry{
		Objective:          b.Objective,
		MessagingFramework: strings.TrimSpace(b.MessagingFramework),
		EmotionalTone:      strings.TrimSpace(b.EmotionalTone),
	}
}

// snapshotFrom builds a snapshot from newest-first entries.
func snapshotFrom(brandID string, entries []domain.MemoryEntry, total int) domain.MemorySnapshot {
	snap := domain.MemorySnapshot{BrandID: brandID, AssetCount: total}
	for _, e := range entries {
		if e.Objective != "" && len(snap.Objectives) < RecentObjectives {
			snap.Objectives = append(snap.Objectives, e.Objective)
		}
		if e.MessagingFramework != "" {
			snap.MessagingFrameworks = append(snap.MessagingFrameworks, e.MessagingFramework)
		}
		if e.EmotionalTone != "" {
			snap.EmotionalTones = append(snap.EmotionalTones, e.EmotionalTone)
		}
	}
	return snap
}
