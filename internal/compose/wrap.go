package compose

import (
	"math"
	"strings"
)

const (
	maxHeadlineLines   = 3
	shrinkFactor       = 0.85
	shrinkAttempts     = 3
	minHeadlineSize    = 24
	maxSubtextChars    = 120
	subtextCharsPerRow = 50
	maxSubtextLines    = 3
	maxCTAChars        = 24
)

// wrapWords greedily breaks text into lines no wider than maxWidth. Explicit
// line breaks are kept. A single word wider than maxWidth gets its own line.
func wrapWords(m *Measurer, text string, maxWidth, size float64, bold bool) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if m.Width(candidate, size, bold) <= maxWidth {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
			}
			current = word
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

// fitHeadline wraps the headline, shrinking the size by 15% while it needs
// more than three lines, at most three times and never below 24px. Lines
// beyond the third are folded into an ellipsis.
func fitHeadline(m *Measurer, text string, maxWidth, initial float64) ([]string, float64) {
	size := initial
	lines := wrapWords(m, text, maxWidth, size, true)
	for attempt := 0; attempt < shrinkAttempts && len(lines) > maxHeadlineLines; attempt++ {
		size = math.Max(minHeadlineSize, math.Floor(size*shrinkFactor))
		lines = wrapWords(m, text, maxWidth, size, true)
	}
	if len(lines) > maxHeadlineLines {
		lines = lines[:maxHeadlineLines]
		lines[maxHeadlineLines-1] = ellipsizeToWidth(m, lines[maxHeadlineLines-1], maxWidth, size, true)
	}
	return lines, size
}

func ellipsizeToWidth(m *Measurer, line string, maxWidth, size float64, bold bool) string {
	r := []rune(strings.TrimSpace(line))
	for len(r) > 0 {
		candidate := strings.TrimSpace(string(r)) + "..."
		if m.Width(candidate, size, bold) <= maxWidth {
			return candidate
		}
		r = r[:len(r)-1]
	}
	return "..."
}

// wrapChars splits subtext into rows of about perRow characters on word
// boundaries, keeping at most maxRows.
func wrapChars(text string, perRow, maxRows int) []string {
	var rows []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if len([]rune(candidate)) <= perRow || current == "" {
			current = candidate
			continue
		}
		rows = append(rows, current)
		current = word
	}
	if current != "" {
		rows = append(rows, current)
	}
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	return rows
}
