// Command studio generates branded creatives from the command line without a
// database: brands are read from YAML and images land in a local directory.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"studio/internal/blueprint"
	"studio/internal/bootstrap"
	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/pipeline"
	"studio/internal/sqlinline"
	"studio/internal/strategy"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	brandPath string
	outDir    string
	backends  []string
	verbose   bool
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "studio",
		Short:         "Brand-aware creative generation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&g.brandPath, "brand", "b", "", "Brand YAML file")
	cmd.PersistentFlags().StringVarP(&g.outDir, "out", "o", "", "Output directory (defaults to STORAGE_PATH)")
	cmd.PersistentFlags().StringSliceVar(&g.backends, "backend", nil, "Render backends in fallback order (browser, canvas)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log pipeline stages to stderr")

	cmd.AddCommand(
		generateCmd(g),
		blueprintCmd(g),
		campaignCmd(g),
		planCmd(g),
		layoutsCmd(),
		migrateCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "studio %s\n", version)
			},
		},
	)
	return cmd
}

// session wires an in-process pipeline for one CLI invocation.
type session struct {
	svc   *bootstrap.Services
	brand *brandFile
}

func (g *globalFlags) open(ctx context.Context) (*session, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	if g.outDir != "" {
		cfg.StoragePath = g.outDir
	}
	// objects are referenced by file URL
	cfg.StorageBaseURL = ""

	logger := infra.NopLogger()
	if g.verbose {
		logger = infra.NewLogger("development")
	}
	brand, err := loadBrandFile(g.brandPath)
	if err != nil {
		return nil, err
	}
	svc, err := bootstrap.Build(ctx, cfg, logger, bootstrap.Options{Backends: g.backends, SkipDatabase: true})
	if err != nil {
		return nil, err
	}
	return &session{svc: svc, brand: brand}, nil
}

func (s *session) input(assetType, prompt string) pipeline.Input {
	return pipeline.Input{
		Brand:             &s.brand.Brand,
		AssetType:         assetType,
		UserPrompt:        prompt,
		BrandLockEnabled:  s.brand.BrandLock,
		DesignConstraints: s.brand.Constraints,
		LogoImageURL:      s.brand.Logo,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func generateCmd(g *globalFlags) *cobra.Command {
	var assetType, prompt, headline, hint string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one asset and print the render result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			s, err := g.open(ctx)
			if err != nil {
				return err
			}
			defer s.svc.Close()

			in := s.input(assetType, prompt)
			in.HeadlineOverride = headline
			in.CampaignMemoryHint = hint
			res, err := s.svc.Pipeline.Run(ctx, in)
			if err != nil {
				return err
			}
			if !res.HasImage() {
				fmt.Fprintln(cmd.ErrOrStderr(), "background synthesis failed; no image was produced")
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&assetType, "asset-type", "t", blueprint.DefaultSlug, "Asset type, e.g. instagram_post")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "What the asset should communicate")
	cmd.Flags().StringVar(&headline, "headline", "", "Replace the generated headline")
	cmd.Flags().StringVar(&hint, "memory-hint", "", "Campaign memory hint passed to the strategy stage")
	return cmd
}

func blueprintCmd(g *globalFlags) *cobra.Command {
	var assetType, prompt string
	cmd := &cobra.Command{
		Use:   "blueprint",
		Short: "Resolve the strategy and print the brand-locked blueprint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			s, err := g.open(ctx)
			if err != nil {
				return err
			}
			defer s.svc.Close()

			plan, err := s.svc.Pipeline.Plan(ctx, s.input(assetType, prompt))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().StringVarP(&assetType, "asset-type", "t", blueprint.DefaultSlug, "Asset type")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "What the asset should communicate")
	return cmd
}

func campaignCmd(g *globalFlags) *cobra.Command {
	var rawItems []string
	var title string
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Generate up to six assets in order, each informed by the ones before",
		Long: `Generates a campaign sequentially. Items come from --item flags
("asset_type=intent|label") or, when none are given, from the campaign
section of the brand file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			s, err := g.open(ctx)
			if err != nil {
				return err
			}
			defer s.svc.Close()

			items := s.brand.Campaign
			if len(rawItems) > 0 {
				items = nil
				for _, raw := range rawItems {
					item, err := parseItem(raw)
					if err != nil {
						return err
					}
					items = append(items, item)
				}
			}
			if len(items) == 0 || len(items) > domain.MaxCampaignAssets {
				return fmt.Errorf("a campaign needs 1 to %d items, got %d", domain.MaxCampaignAssets, len(items))
			}

			c := &domain.Campaign{
				Title:             title,
				Brand:             &s.brand.Brand,
				BrandLockEnabled:  s.brand.BrandLock,
				DesignConstraints: s.brand.Constraints,
				LogoImageURL:      s.brand.Logo,
			}
			for _, item := range items {
				c.Assets = append(c.Assets, domain.CampaignAsset{AssetType: item.AssetType, Intent: item.Intent, Label: item.Label})
			}
			if err := s.svc.Campaigns.Create(ctx, c); err != nil {
				return err
			}
			done, err := s.svc.Runner.Run(ctx, c.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), done)
		},
	}
	cmd.Flags().StringArrayVarP(&rawItems, "item", "i", nil, `Campaign item "asset_type=intent|label" (repeatable)`)
	cmd.Flags().StringVar(&title, "title", "", "Campaign title")
	return cmd
}

func planCmd(g *globalFlags) *cobra.Command {
	var goal, kind, extra string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Propose the assets of a campaign without generating them",
		Long: `Plans a campaign for the brand and prints it. The printed items use the
--item syntax of the campaign command.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			s, err := g.open(ctx)
			if err != nil {
				return err
			}
			defer s.svc.Close()

			plan, err := s.svc.Planner.Plan(ctx, strategy.PlanRequest{
				Brand:        &s.brand.Brand,
				Goal:         goal,
				CampaignType: kind,
				Context:      extra,
			})
			if err != nil {
				return err
			}
			if reason := plan.FallbackReason(); reason != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "planner degraded: %s\n", reason)
			}
			out := struct {
				*strategy.CampaignPlan
				Items []string `json:"items"`
			}{CampaignPlan: plan}
			for _, a := range plan.Assets {
				out.Items = append(out.Items, a.AssetType+"="+a.Intent)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&goal, "goal", "g", "", "Campaign goal")
	cmd.Flags().StringVar(&kind, "type", "", "Campaign type, e.g. launch or seasonal")
	cmd.Flags().StringVar(&extra, "context", "", "Extra context such as a timeline")
	return cmd
}

func layoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List asset types with their layout template and size",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeLayouts(cmd.OutOrStdout(), blueprint.Entries())
		},
	}
}

func writeLayouts(w io.Writer, entries []blueprint.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ASSET TYPE\tASPECT\tTEMPLATE\tSIZE\tLOGO")
	for _, e := range entries {
		logo := "no"
		if e.IncludeLogo {
			logo = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%s\n", e.Slug, e.AspectRatio, e.Template, e.Width, e.Height, logo)
	}
	return tw.Flush()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres tables used by the api and worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.DatabaseURL) == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "migrate").Logger()
			pool, err := infra.NewDBPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			if _, err := infra.NewSQLRunner(pool, logger).Exec(ctx, sqlinline.QSchema); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}
