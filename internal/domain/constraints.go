package domain

import "strings"

// CTATone selects the fixed call-to-action phrase used under brand lock.
type CTATone string

const (
	CTAToneSoft      CTATone = "soft"
	CTAToneAssertive CTATone = "assertive"
	CTAToneUrgent    CTATone = "urgent"
)

// Phrase returns the locked CTA text for the tone, or "" for an unknown tone.
func (t CTATone) Phrase() string {
	switch CTATone(strings.ToLower(string(t))) {
	case CTAToneSoft:
		return "Learn more"
	case CTAToneAssertive:
		return "Get started"
	case CTAToneUrgent:
		return "Act now"
	default:
		return ""
	}
}

// LogoPosition is a logo corner a brand may lock.
type LogoPosition string

const (
	LogoTopLeft     LogoPosition = "top-left"
	LogoTopRight    LogoPosition = "top-right"
	LogoBottomLeft  LogoPosition = "bottom-left"
	LogoBottomRight LogoPosition = "bottom-right"
)

// Valid reports whether p is one of the four corners.
func (p LogoPosition) Valid() bool {
	switch p {
	case LogoTopLeft, LogoTopRight, LogoBottomLeft, LogoBottomRight:
		return true
	}
	return false
}

// Constraint list limits.
const (
	MaxAllowedColors = 6
	MaxAllowedFonts  = 2
)

// DesignConstraints are the opt-in hard rules a brand can lock.
type DesignConstraints struct {
	AllowedColors      []string     `json:"allowedColors,omitempty" yaml:"allowedColors"`
	AllowedFonts       []string     `json:"allowedFonts,omitempty" yaml:"allowedFonts"`
	LockedLogoPosition LogoPosition `json:"lockedLogoPosition,omitempty" yaml:"lockedLogoPosition"`
	MaxHeadlineLines   int          `json:"maxHeadlineLines,omitempty" yaml:"maxHeadlineLines"`
	CTATone            CTATone      `json:"ctaTone,omitempty" yaml:"ctaTone"`
	LogoRequired       bool         `json:"logoRequired,omitempty" yaml:"logoRequired"`
	MinMarginPercent   float64      `json:"minMarginPercent,omitempty" yaml:"minMarginPercent"`
}
