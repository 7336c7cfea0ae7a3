package domain

import (
	"regexp"
	"time"
)

// CampaignStatus enumerates campaign lifecycle states.
type CampaignStatus string

const (
	CampaignPending    CampaignStatus = "pending"
	CampaignGenerating CampaignStatus = "generating"
	CampaignComplete   CampaignStatus = "complete"
	CampaignFailed     CampaignStatus = "failed"
)

// AssetStatus enumerates per-asset states inside a campaign.
type AssetStatus string

const (
	AssetPending    AssetStatus = "pending"
	AssetGenerating AssetStatus = "generating"
	AssetComplete   AssetStatus = "complete"
	AssetFailed     AssetStatus = "failed"
)

// MaxCampaignAssets bounds how many assets one campaign may request.
const MaxCampaignAssets = 6

// AssetKind is the coarse channel category of a generated asset.
type AssetKind string

const (
	AssetKindSocial    AssetKind = "social"
	AssetKindAd        AssetKind = "ad"
	AssetKindThumbnail AssetKind = "thumbnail"
	AssetKindBanner    AssetKind = "banner"
)

var (
	adKindPattern        = regexp.MustCompile(`(^|_)ads?($|_)|display`)
	thumbnailKindPattern = regexp.MustCompile(`thumbnail`)
	bannerKindPattern    = regexp.MustCompile(`banner|cover|header|channel_art`)
)

// KindForAssetType derives the asset kind from an asset-type slug.
func KindForAssetType(slug string) AssetKind {
	switch {
	case adKindPattern.MatchString(slug):
		return AssetKindAd
	case thumbnailKindPattern.MatchString(slug):
		return AssetKindThumbnail
	case bannerKindPattern.MatchString(slug):
		return AssetKindBanner
	default:
		return AssetKindSocial
	}
}

// Campaign groups several assets generated sequentially for one brand.
type Campaign struct {
	ID                string             `json:"id"`
	UserID            string             `json:"userId,omitempty"`
	Title             string             `json:"title,omitempty"`
	Status            CampaignStatus     `json:"status"`
	Brand             *BrandProfile      `json:"brand,omitempty"`
	BrandLockEnabled  bool               `json:"brandLockEnabled"`
	DesignConstraints *DesignConstraints `json:"designConstraints,omitempty"`
	LogoImageURL      string             `json:"logoImageUrl,omitempty"`
	Assets            []CampaignAsset    `json:"assets"`
	Consistency       *ConsistencyScore  `json:"consistency,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// CampaignAsset is one planned or generated asset of a campaign.
type CampaignAsset struct {
	ID         string      `json:"id"`
	AssetType  string      `json:"assetType"`
	Intent     string      `json:"intent"`
	Label      string      `json:"label"`
	Status     AssetStatus `json:"status"`
	Kind       AssetKind   `json:"kind,omitempty"`
	RenderID   string      `json:"renderId,omitempty"`
	ImageURL   string      `json:"imageUrl,omitempty"`
	Width      int         `json:"width,omitempty"`
	Height     int         `json:"height,omitempty"`
	Objective  Objective   `json:"objective,omitempty"`
	Framework  string      `json:"messagingFramework,omitempty"`
	Tone       string      `json:"emotionalTone,omitempty"`
	Composited bool        `json:"composited"`
}

// HasImage reports whether the asset finished with an image.
func (a CampaignAsset) HasImage() bool {
	return a.Status == AssetComplete && a.ImageURL != ""
}

// ConsistencyScore rates how closely the generated assets of a campaign
// follow the brand. Every dimension is on a 1..10 scale.
type ConsistencyScore struct {
	Overall         int      `json:"overallScore"`
	Color           int      `json:"colorConsistency"`
	Tone            int      `json:"toneConsistency"`
	Visual          int      `json:"visualConsistency"`
	Recommendations []string `json:"recommendations"`
	Source          string   `json:"source,omitempty"`
	FallbackReason  string   `json:"fallbackReason,omitempty"`
}

// PendingAssets returns the assets still waiting for generation, in order.
func (c *Campaign) PendingAssets() []CampaignAsset {
	var out []CampaignAsset
	for _, a := range c.Assets {
		if a.Status == AssetPending {
			out = append(out, a)
		}
	}
	return out
}
