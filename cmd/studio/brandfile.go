package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"studio/internal/domain"
)

// brandFile is the YAML document the CLI reads a brand from.
type brandFile struct {
	Brand       domain.BrandProfile       `yaml:"brand"`
	BrandLock   bool                      `yaml:"brandLock"`
	Constraints *domain.DesignConstraints `yaml:"constraints"`
	Logo        string                    `yaml:"logo"`
	Campaign    []campaignItem            `yaml:"campaign"`
}

type campaignItem struct {
	AssetType string `yaml:"assetType"`
	Intent    string `yaml:"intent"`
	Label     string `yaml:"label"`
}

func loadBrandFile(path string) (*brandFile, error) {
	if strings.TrimSpace(path) == "" {
		return &brandFile{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brand file: %w", err)
	}
	return parseBrandFile(raw)
}

func parseBrandFile(raw []byte) (*brandFile, error) {
	var f brandFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse brand file: %w", err)
	}
	if f.Constraints != nil && !f.Constraints.LockedLogoPosition.Valid() {
		f.Constraints.LockedLogoPosition = ""
	}
	if len(f.Brand.Colors) > domain.MaxBrandColors {
		f.Brand.Colors = f.Brand.Colors[:domain.MaxBrandColors]
	}
	return &f, nil
}

// parseItem reads "asset_type=intent" or "asset_type=intent|label".
func parseItem(raw string) (campaignItem, error) {
	assetType, rest, _ := strings.Cut(raw, "=")
	assetType = strings.TrimSpace(assetType)
	if assetType == "" {
		return campaignItem{}, fmt.Errorf("item %q has no asset type", raw)
	}
	intent, label, _ := strings.Cut(rest, "|")
	return campaignItem{AssetType: assetType, Intent: strings.TrimSpace(intent), Label: strings.TrimSpace(label)}, nil
}
