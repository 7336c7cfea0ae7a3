package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"studio/internal/blueprint"
	"studio/internal/domain"
)

func TestWriteLayouts(t *testing.T) {
	var buf bytes.Buffer
	if err := writeLayouts(&buf, blueprint.Entries()); err != nil {
		t.Fatalf("writeLayouts: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "ASSET TYPE") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "youtube_thumbnail") || !strings.Contains(out, "1344x768") {
		t.Fatalf("thumbnail row missing:\n%s", out)
	}
}

func TestGenerateCommandWritesComposite(t *testing.T) {
	t.Setenv("STRATEGY_PROVIDER", "static")
	t.Setenv("BACKGROUND_PROVIDER", "synthetic")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	dir := t.TempDir()
	brandPath := filepath.Join(dir, "brand.yaml")
	brand := `
brand:
  id: acme-1
  name: Acme Outdoor
  colors: ["#0b3d2e", "#f2a900", "#ffffff"]
brandLock: true
constraints:
  allowedColors: ["#0b3d2e", "#f2a900"]
  ctaTone: urgent
`
	if err := os.WriteFile(brandPath, []byte(brand), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")

	var stdout bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"generate", "--brand", brandPath, "--out", out, "--backend", "canvas", "-t", "instagram_post", "-p", "Spring launch"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var res domain.RenderResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout.String())
	}
	if !res.Composited || !strings.HasPrefix(res.FinalImageURL, "file://") {
		t.Fatalf("result = %+v", res)
	}
	// brand lock with ctaTone urgent
	if res.Blueprint.Intent.CTA != "Act now" {
		t.Fatalf("cta = %q", res.Blueprint.Intent.CTA)
	}
	matches, _ := filepath.Glob(filepath.Join(out, "composites", "*.png"))
	if len(matches) != 1 {
		t.Fatalf("composites = %v", matches)
	}
}

func TestCampaignCommandRejectsEmptyCampaign(t *testing.T) {
	t.Setenv("STRATEGY_PROVIDER", "static")
	t.Setenv("BACKGROUND_PROVIDER", "synthetic")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"campaign", "--out", t.TempDir(), "--backend", "none"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "1 to 6 items") {
		t.Fatalf("err = %v", err)
	}
}

func TestPlanCommandPrintsCampaignItems(t *testing.T) {
	t.Setenv("STRATEGY_PROVIDER", "static")
	t.Setenv("BACKGROUND_PROVIDER", "synthetic")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	var stdout bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"plan", "--out", t.TempDir(), "--backend", "none", "-g", "Spring sale", "--type", "seasonal"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var out struct {
		Title string   `json:"campaignTitle"`
		Items []string `json:"items"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout.String())
	}
	if out.Title != "Brand Seasonal Campaign" || len(out.Items) != 3 {
		t.Fatalf("plan = %+v", out)
	}
	item, err := parseItem(out.Items[0])
	if err != nil || item.AssetType != "linkedin_post" || !strings.Contains(item.Intent, "Spring sale") {
		t.Fatalf("item = %+v, %v", item, err)
	}
}
