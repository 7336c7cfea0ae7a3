package domain

import (
	"fmt"
	"strings"
)

// TemplateID identifies one of the canonical layout templates. The set is
// closed: values can only be obtained from the exported variables or from
// ParseTemplateID, and the zero value is TemplateTopHeading.
type TemplateID struct {
	slot uint8
}

// TemplateCount is the number of registered templates.
const TemplateCount = 4

var (
	TemplateTopHeading            = TemplateID{slot: 0}
	TemplateSplitLeftText         = TemplateID{slot: 1}
	TemplateVerticalStoryCentered = TemplateID{slot: 2}
	TemplateProductHero           = TemplateID{slot: 3}
)

// TemplateVersion is bumped whenever a template's placement rules change so
// stored blueprints can be told apart.
const TemplateVersion = 1

var templateNames = [TemplateCount]string{
	"top-heading",
	"split-left-text",
	"vertical-story-centered",
	"product-hero",
}

// layout names and legacy ids that resolve onto a canonical template
var templateAliases = map[string]TemplateID{
	"top-heading":             TemplateTopHeading,
	"squaretopheading":        TemplateTopHeading,
	"bold-center":             TemplateTopHeading,
	"banner-wide":             TemplateTopHeading,
	"quote-block":             TemplateTopHeading,
	"default":                 TemplateTopHeading,
	"split-left-text":         TemplateSplitLeftText,
	"split-text-product":      TemplateSplitLeftText,
	"splitlefttext":           TemplateSplitLeftText,
	"vertical-story-centered": TemplateVerticalStoryCentered,
	"centered-vertical":       TemplateVerticalStoryCentered,
	"vertical-story":          TemplateVerticalStoryCentered,
	"verticalstorycentered":   TemplateVerticalStoryCentered,
	"product-hero":            TemplateProductHero,
	"center-product":          TemplateProductHero,
	"producthero":             TemplateProductHero,
}

// Templates returns every template in slot order.
func Templates() []TemplateID {
	return []TemplateID{TemplateTopHeading, TemplateSplitLeftText, TemplateVerticalStoryCentered, TemplateProductHero}
}

// ParseTemplateID resolves a layout name or alias. The boolean reports whether
// the name was recognised; unknown names resolve to TemplateTopHeading.
func ParseTemplateID(name string) (TemplateID, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")
	if id, ok := templateAliases[key]; ok {
		return id, true
	}
	return TemplateTopHeading, false
}

// Index returns the dispatch slot of the template, in [0, TemplateCount).
func (t TemplateID) Index() int {
	return int(t.slot)
}

func (t TemplateID) String() string {
	return templateNames[t.slot]
}

// MarshalText implements encoding.TextMarshaler.
func (t TemplateID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names are rejected
// so corrupted stored blueprints are noticed.
func (t *TemplateID) UnmarshalText(b []byte) error {
	id, ok := ParseTemplateID(string(b))
	if !ok {
		return fmt.Errorf("unknown layout template %q", string(b))
	}
	*t = id
	return nil
}
