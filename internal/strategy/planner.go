package strategy

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studio/internal/blueprint"
	"studio/internal/domain"
)

// Campaign plan bounds.
const (
	MinPlanAssets = 3
	MaxPlanAssets = domain.MaxCampaignAssets
	MaxGoalLen    = 500

	maxPlanIntentLen  = 300
	maxPlanTitleLen   = 120
	maxPlanSummaryLen = 500
	plannerTemp       = 0.5
)

const (
	defaultCampaignGoal = "Increase awareness and engagement"
	defaultCampaignType = "growth"
)

// PlanRequest asks for the asset plan of a coordinated campaign.
type PlanRequest struct {
	Brand        *domain.BrandProfile
	Goal         string
	CampaignType string
	// Context is extra free text from the caller, such as a timeline.
	Context string
}

// PlannedAsset is one asset of a campaign plan.
type PlannedAsset struct {
	AssetType string `json:"assetType"`
	Intent    string `json:"intent"`
	Priority  int    `json:"priority"`
}

// CampaignPlan is the outcome of a Planner.
type CampaignPlan struct {
	Title           string            `json:"campaignTitle"`
	StrategySummary string            `json:"strategySummary"`
	Assets          []PlannedAsset    `json:"assets"`
	Provider        string            `json:"provider"`
	Metadata        map[string]string `json:"-"`
}

// FallbackReason returns the degradation reason, or "" when the model answered.
func (p *CampaignPlan) FallbackReason() string {
	if p == nil || p.Metadata == nil {
		return ""
	}
	return p.Metadata["fallback_reason"]
}

// Planner turns a campaign goal into MinPlanAssets..MaxPlanAssets asset specs.
type Planner interface {
	Plan(ctx context.Context, req PlanRequest) (*CampaignPlan, error)
}

func (r PlanRequest) goal() string {
	return coalesce(domain.Truncate(r.Goal, MaxGoalLen), defaultCampaignGoal)
}

func (r PlanRequest) campaignType() string {
	return coalesce(strings.ToLower(strings.TrimSpace(r.CampaignType)), defaultCampaignType)
}

// StaticPlanner plans a LinkedIn, Instagram and display mix without a model.
type StaticPlanner struct{}

// Plan implements Planner. It never returns an error.
func (StaticPlanner) Plan(_ context.Context, req PlanRequest) (*CampaignPlan, error) {
	return StaticPlanner{}.Build(req), nil
}

// Build returns the deterministic plan for req.
func (StaticPlanner) Build(req PlanRequest) *CampaignPlan {
	name := "Brand"
	if req.Brand != nil && strings.TrimSpace(req.Brand.Name) != "" {
		name = strings.TrimSpace(req.Brand.Name)
	}
	goal, kind := req.goal(), req.campaignType()
	title := cases.Title(language.English).String(kind)
	return &CampaignPlan{
		Title: domain.Truncate(fmt.Sprintf("%s %s Campaign", name, title), maxPlanTitleLen),
		StrategySummary: domain.Truncate(fmt.Sprintf(
			"Coordinated %s campaign: %s. Mix of LinkedIn, Instagram, and display to reach the audience with a consistent message.",
			kind, goal), maxPlanSummaryLen),
		Assets: []PlannedAsset{
			{AssetType: "linkedin_post", Intent: domain.Truncate("Professional post for "+goal, maxPlanIntentLen), Priority: 1},
			{AssetType: "instagram_story", Intent: domain.Truncate("Engaging story visual for "+goal, maxPlanIntentLen), Priority: 2},
			{AssetType: "display_ad", Intent: domain.Truncate("Clear CTA and message for "+goal, maxPlanIntentLen), Priority: 3},
		},
		Provider: staticProviderName,
		Metadata: map[string]string{},
	}
}

const plannerSystemPrompt = `You are a marketing campaign strategist.
Given a brand profile and a campaign goal, list the assets a coordinated campaign needs.
Return JSON only, with no markdown and no explanation.

Output exactly this structure:
{
  "campaignTitle": "short campaign name (3-6 words)",
  "strategySummary": "2-4 sentences on the approach and channel mix",
  "assets": [
    {"assetType": "snake_case asset type", "intent": "one sentence creative intent", "priority": 1}
  ]
}

Rules:
- Include 3 to 6 assets.
- Mix channels, for example linkedin_post, instagram_story, youtube_thumbnail, display_ad, facebook_post, pinterest_pin, linkedin_banner, blog_hero_image.
- Order the assets as the campaign unfolds: announce, then social posts, then banners and ads.
- priority 1 is the most important asset.`

type planPayload struct {
	CampaignTitle   string `json:"campaignTitle"`
	StrategySummary string `json:"strategySummary"`
	Assets          []struct {
		AssetType string   `json:"assetType"`
		IdeaType  string   `json:"ideaType"`
		Intent    string   `json:"intent"`
		Priority  *float64 `json:"priority"`
	} `json:"assets"`
}

// OpenAIPlanner asks a chat-completions model for the plan.
type OpenAIPlanner struct {
	chat       openAIChat
	fallback   Planner
	onFallback func(reason string, err error)
}

// NewOpenAIPlanner builds the planner. fallback may be nil, in which case
// StaticPlanner is used.
func NewOpenAIPlanner(opts ChatOptions, fallback Planner) *OpenAIPlanner {
	return &OpenAIPlanner{chat: newChatFromOptions(opts), fallback: fallback, onFallback: opts.OnFallback}
}

// Plan implements Planner.
func (p *OpenAIPlanner) Plan(ctx context.Context, req PlanRequest) (*CampaignPlan, error) {
	text, err := p.chat.complete(ctx, plannerSystemPrompt, BuildPlanContent(req), plannerTemp)
	if err != nil {
		return p.useFallback(ctx, req, chatReason(err), err)
	}
	payload, err := parseModelPayload[planPayload](text)
	if err != nil {
		return p.useFallback(ctx, req, "parse_payload", err)
	}
	assets := make([]PlannedAsset, 0, MaxPlanAssets)
	for i, a := range payload.Assets {
		if len(assets) == MaxPlanAssets {
			break
		}
		assetType := coalesce(a.AssetType, a.IdeaType)
		intent := domain.Truncate(a.Intent, maxPlanIntentLen)
		if assetType == "" || intent == "" {
			continue
		}
		priority := i + 1
		if a.Priority != nil && *a.Priority >= 1 {
			priority = int(math.Round(*a.Priority))
		}
		assets = append(assets, PlannedAsset{AssetType: blueprint.NormalizeSlug(assetType), Intent: intent, Priority: priority})
	}

	meta := map[string]string{"model": p.chat.model}
	if len(assets) < MinPlanAssets {
		if p.onFallback != nil {
			p.onFallback("too_few_assets", fmt.Errorf("model planned %d assets", len(assets)))
		}
		plan := StaticPlanner{}.Build(req)
		plan.Assets = append(plan.Assets, assets...)
		if len(plan.Assets) > MaxPlanAssets {
			plan.Assets = plan.Assets[:MaxPlanAssets]
		}
		meta["fallback_reason"] = "too_few_assets"
		plan.Provider = openAIProviderName
		plan.Metadata = meta
		return plan, nil
	}
	return &CampaignPlan{
		Title:           coalesce(domain.Truncate(payload.CampaignTitle, maxPlanTitleLen), "Campaign"),
		StrategySummary: domain.Truncate(payload.StrategySummary, maxPlanSummaryLen),
		Assets:          assets,
		Provider:        openAIProviderName,
		Metadata:        meta,
	}, nil
}

func (p *OpenAIPlanner) useFallback(ctx context.Context, req PlanRequest, reason string, err error) (*CampaignPlan, error) {
	if p.onFallback != nil {
		p.onFallback(reason, err)
	}
	var fallback Planner = StaticPlanner{}
	if p.fallback != nil {
		fallback = p.fallback
	}
	plan, ferr := fallback.Plan(ctx, req)
	if plan != nil {
		if plan.Provider == "" {
			plan.Provider = staticProviderName
		}
		if plan.Metadata == nil {
			plan.Metadata = map[string]string{}
		}
		plan.Metadata["fallback_reason"] = reason
	}
	return plan, ferr
}

// BuildPlanContent renders the brand, campaign type and goal sent as the user
// turn of a planning call.
func BuildPlanContent(req PlanRequest) string {
	lines := []string{buildBrandContext(req.Brand)}
	if req.Brand != nil && req.Brand.Strategy != nil && len(req.Brand.Strategy.ContentPillars) > 0 {
		lines = append(lines, fmt.Sprintf("Messaging angles: %s.", strings.Join(req.Brand.Strategy.ContentPillars, "; ")))
	}
	lines = append(lines,
		fmt.Sprintf("Campaign type: %s.", req.campaignType()),
		fmt.Sprintf("Campaign goal: %s.", req.goal()),
	)
	if extra := domain.Truncate(req.Context, MaxIntentLen); extra != "" {
		lines = append(lines, fmt.Sprintf("Additional context: %s.", extra))
	}
	return strings.Join(lines, "\n")
}

var (
	_ Planner = StaticPlanner{}
	_ Planner = (*OpenAIPlanner)(nil)
)
