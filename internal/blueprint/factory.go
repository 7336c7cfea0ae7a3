// Package blueprint turns an asset type and a creative brief into a Blueprint.
package blueprint

import (
	"regexp"
	"sort"
	"strings"

	"studio/internal/domain"
)

// LayoutConfig is the static layout entry for one asset type.
type LayoutConfig struct {
	AspectRatio     string
	Layout          string
	IncludeLogo     bool
	CompositionHint string
}

// DefaultSlug is the table entry used for unknown asset types.
const DefaultSlug = "custom"

var layoutTable = map[string]LayoutConfig{
	"linkedin_post":          {AspectRatio: "1:1", Layout: "top-heading", IncludeLogo: true, CompositionHint: "headline-above-visual"},
	"instagram_story":        {AspectRatio: "9:16", Layout: "centered-vertical", IncludeLogo: true, CompositionHint: "vertical-story"},
	"instagram_post":         {AspectRatio: "1:1", Layout: "top-heading", IncludeLogo: true},
	"twitter_post":           {AspectRatio: "1:1", Layout: "top-heading", IncludeLogo: true},
	"twitter_x_post":         {AspectRatio: "1:1", Layout: "top-heading", IncludeLogo: true},
	"youtube_thumbnail":      {AspectRatio: "16:9", Layout: "bold-center", IncludeLogo: false, CompositionHint: "thumbnail-cta"},
	"facebook_post":          {AspectRatio: "1:1", Layout: "top-heading", IncludeLogo: true},
	"pinterest_pin":          {AspectRatio: "2:3", Layout: "centered-vertical", IncludeLogo: true, CompositionHint: "vertical-pin"},
	"product_launch":         {AspectRatio: "1:1", Layout: "split-text-product", IncludeLogo: true, CompositionHint: "product-hero"},
	"event_invite":           {AspectRatio: "1:1", Layout: "centered-vertical", IncludeLogo: true},
	"celebrate_achievements": {AspectRatio: "1:1", Layout: "top-heading", IncludeLogo: true},
	"attract_talent":         {AspectRatio: "1:1", Layout: "top-heading", IncludeLogo: true},
	"blog_hero_image":        {AspectRatio: "16:9", Layout: "top-heading", IncludeLogo: false},
	"newsletter":             {AspectRatio: "16:9", Layout: "top-heading", IncludeLogo: true},
	"ebook_guide_cover":      {AspectRatio: "2:3", Layout: "centered-vertical", IncludeLogo: false},
	"display_ad":             {AspectRatio: "4:3", Layout: "split-text-product", IncludeLogo: true},
	"social_media_ad":        {AspectRatio: "1:1", Layout: "top-heading", IncludeLogo: true},
	"customer_testimonial":   {AspectRatio: "1:1", Layout: "quote-block", IncludeLogo: true},
	"thought_leadership":     {AspectRatio: "1:1", Layout: "quote-block", IncludeLogo: true},
	"team_spotlight":         {AspectRatio: "1:1", Layout: "centered-vertical", IncludeLogo: true},
	"inspirational_quote":    {AspectRatio: "1:1", Layout: "quote-block", IncludeLogo: false},
	"linkedin_banner":        {AspectRatio: "4:1", Layout: "banner-wide", IncludeLogo: true},
	"twitter_header":         {AspectRatio: "3:1", Layout: "banner-wide", IncludeLogo: true},
	"twitter_x_header":       {AspectRatio: "3:1", Layout: "banner-wide", IncludeLogo: true},
	"youtube_channel_art":    {AspectRatio: "16:9", Layout: "banner-wide", IncludeLogo: true},
	"facebook_cover":         {AspectRatio: "2.7:1", Layout: "banner-wide", IncludeLogo: true},
	"hero_product_shot":      {AspectRatio: "1:1", Layout: "center-product", IncludeLogo: false, CompositionHint: "product-focus"},
	"lifestyle_shot":         {AspectRatio: "4:5", Layout: "lifestyle-scene", IncludeLogo: false},
	"catalog_layout":         {AspectRatio: "1:1", Layout: "grid-products", IncludeLogo: true},
	"streetwear_hoodie":      {AspectRatio: "1:1", Layout: "mockup-product", IncludeLogo: true},
	"minimalist_tee":         {AspectRatio: "1:1", Layout: "mockup-product", IncludeLogo: true},
	"tote_bag":               {AspectRatio: "1:1", Layout: "mockup-product", IncludeLogo: true},
	"cap_hat":                {AspectRatio: "1:1", Layout: "mockup-product", IncludeLogo: true},
	DefaultSlug:              {AspectRatio: "1:1", Layout: "top-heading", IncludeLogo: true},
}

type dimensions struct {
	width  int
	height int
}

var aspectTable = map[string]dimensions{
	"1:1":   {1024, 1024},
	"9:16":  {576, 1024},
	"16:9":  {1344, 768},
	"4:3":   {1152, 896},
	"3:4":   {768, 1024},
	"2:3":   {682, 1024},
	"4:5":   {819, 1024},
	"3:2":   {1152, 768},
	"5:4":   {1024, 819},
	"4:1":   {1344, 336},
	"3:1":   {1200, 400},
	"2.7:1": {1344, 498},
	"21:9":  {1344, 576},
}

var defaultDimensions = dimensions{1024, 1024}

var (
	slashRun      = regexp.MustCompile(`\s*/\s*`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// NormalizeSlug turns a label such as "Twitter / X Post" into its table key.
func NormalizeSlug(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = slashRun.ReplaceAllString(s, "_")
	s = whitespaceRun.ReplaceAllString(s, "_")
	if s == "" {
		return DefaultSlug
	}
	return s
}

// Dimensions resolves an aspect ratio to its pixel size. Unknown ratios
// resolve to 1024x1024.
func Dimensions(aspectRatio string) (int, int) {
	d, ok := aspectTable[strings.TrimSpace(aspectRatio)]
	if !ok {
		d = defaultDimensions
	}
	return d.width, d.height
}

// Lookup returns the layout entry for an asset type label and whether it was
// found. Unknown labels return the custom entry.
func Lookup(assetType string) (string, LayoutConfig, bool) {
	slug := NormalizeSlug(assetType)
	cfg, ok := layoutTable[slug]
	if !ok {
		return slug, layoutTable[DefaultSlug], false
	}
	return slug, cfg, true
}

// Create builds the Blueprint for an asset type. It never fails: unknown
// asset types use the custom entry.
func Create(assetType string, brief domain.CreativeBrief) domain.Blueprint {
	slug, cfg, _ := Lookup(assetType)
	template, _ := domain.ParseTemplateID(cfg.Layout)
	w, h := Dimensions(cfg.AspectRatio)
	return domain.Blueprint{
		AssetTypeSlug:    slug,
		AspectRatio:      cfg.AspectRatio,
		LayoutTemplateID: template,
		CompositionHint:  cfg.CompositionHint,
		IncludeLogo:      cfg.IncludeLogo,
		Width:            w,
		Height:           h,
		Intent:           brief,
	}
}

// Entry describes a registered asset type for listings.
type Entry struct {
	Slug            string            `json:"assetType"`
	AspectRatio     string            `json:"aspectRatio"`
	Layout          string            `json:"layout"`
	Template        domain.TemplateID `json:"layoutTemplateId"`
	IncludeLogo     bool              `json:"includeLogo"`
	CompositionHint string            `json:"compositionBehavior,omitempty"`
	Width           int               `json:"width"`
	Height          int               `json:"height"`
}

// Entries lists every registered asset type sorted by slug.
func Entries() []Entry {
	out := make([]Entry, 0, len(layoutTable))
	for slug, cfg := range layoutTable {
		template, _ := domain.ParseTemplateID(cfg.Layout)
		w, h := Dimensions(cfg.AspectRatio)
		out = append(out, Entry{
			Slug:            slug,
			AspectRatio:     cfg.AspectRatio,
			Layout:          cfg.Layout,
			Template:        template,
			IncludeLogo:     cfg.IncludeLogo,
			CompositionHint: cfg.CompositionHint,
			Width:           w,
			Height:          h,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
