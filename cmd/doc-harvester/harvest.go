package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Sriram-PR/doc-harvester/pkg/config"
	"github.com/Sriram-PR/doc-harvester/pkg/fetch"
	logsetup "github.com/Sriram-PR/doc-harvester/pkg/log"
	"github.com/Sriram-PR/doc-harvester/pkg/orchestrate"
	"github.com/Sriram-PR/doc-harvester/pkg/rules"
)

const defaultLogName = "harvester.log"

var harvestFlagKeys = map[string]string{
	"sector":     "harvest.sector",
	"out-dir":    "harvest.output_dir",
	"max-pages":  "harvest.max_pages",
	"rate-limit": "harvest.rate_limit",
	"page-delay": "harvest.page_delay",
	"fresh":      "harvest.fresh",
}

func newHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Crawl document listings and write the PDF manifest",
		Example: `  doc-harvester harvest --auto-seeds
  doc-harvester harvest --seeds "https://www.afdb.org/en/documents,https://www.afdb.org/en/documents/category/projects-operations"
  doc-harvester harvest --url https://www.afdb.org/en/documents
  doc-harvester harvest --auto-seeds --sector "Energy" --max-pages 10 --rate-limit 2.0 --fresh`,
		Args: cobra.NoArgs,
		RunE: runHarvest,
	}
	f := cmd.Flags()
	f.StringSlice("seeds", nil, "Seed URLs to crawl (comma-separated or repeated)")
	f.String("url", "", "Single seed URL (use --seeds for several)")
	f.Bool("auto-seeds", false, "Use the default seed URLs")
	f.String("sector", "Agriculture & Agro-industries", "Target sector to keep")
	f.String("out-dir", "outputs", "Output directory")
	f.Int("max-pages", 25, "Maximum listing pages per seed")
	f.Float64("rate-limit", 1.0, "Seconds to wait after each processed record")
	f.Float64("page-delay", -1, "Seconds to wait after each page (negative = same as --rate-limit)")
	f.Bool("fresh", false, "Overwrite the manifest instead of appending")
	return cmd
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	appCfg, err := loadConfig(cmd, harvestFlagKeys)
	if err != nil {
		return err
	}

	seeds, _ := cmd.Flags().GetStringSlice("seeds")
	single, _ := cmd.Flags().GetString("url")
	auto, _ := cmd.Flags().GetBool("auto-seeds")
	if resolved := orchestrate.ResolveSeeds(seeds, single, auto); resolved != nil {
		appCfg.Harvest.Seeds = resolved
	}

	warnings, err := appCfg.Validate()
	if err != nil {
		return &exitError{code: 1, msg: fmt.Sprintf("Error: %v", err)}
	}

	if appCfg.LogFile == "" {
		appCfg.LogFile = filepath.Join(appCfg.Harvest.OutputDir, defaultLogName)
	}
	logger, closer, err := logsetup.Setup(appCfg.LogLevel, appCfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()
	log := logrus.NewEntry(logger)
	for _, w := range warnings {
		log.Warn(w)
	}

	set, err := loadRules(appCfg, log)
	if err != nil {
		return err
	}

	printBanner(cmd.OutOrStdout(), appCfg.Harvest)
	logAppConfig(appCfg, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := fetch.NewClient(appCfg.HTTPClientSettings, log)
	fetcher := fetch.NewFetcher(client, appCfg, log)
	if appCfg.RespectRobots {
		fetcher.EnableRobots()
	}

	orch, err := orchestrate.NewOrchestrator(appCfg, set, fetcher, log)
	if err != nil {
		return err
	}
	defer orch.Close()

	if _, err := orch.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return &exitError{code: 1, msg: "\nHarvest interrupted by user"}
		}
		return &exitError{code: 1, msg: fmt.Sprintf("Error during harvest: %v", err)}
	}
	return nil
}

// loadRules returns the built-in selector rules, overlaid by the rules file when configured
func loadRules(appCfg *config.AppConfig, log *logrus.Entry) (*rules.Set, error) {
	if appCfg.RulesFile == "" {
		return rules.Default(), nil
	}
	log.Infof("Loading selector rules from %s", appCfg.RulesFile)
	return rules.LoadFile(appCfg.RulesFile)
}

func printBanner(w io.Writer, h config.HarvestConfig) {
	fmt.Fprintln(w, "AfDB Document Harvester")
	fmt.Fprintf(w, "Seeds: %d\n", len(h.Seeds))
	for i, seed := range h.Seeds {
		fmt.Fprintf(w, "  %d. %s\n", i+1, seed)
	}
	fmt.Fprintf(w, "Target sector: %s\n", h.Sector)
	fmt.Fprintf(w, "Max pages per seed: %d\n", h.MaxPages)
	fmt.Fprintf(w, "Output directory: %s\n", h.OutputDir)
	mode := "append"
	if h.Fresh {
		mode = "fresh"
	}
	fmt.Fprintf(w, "Mode: %s\n\n", mode)
}

// logAppConfig logs the effective configuration
func logAppConfig(appCfg *config.AppConfig, log *logrus.Entry) {
	h := appCfg.Harvest
	log.Infof("Harvest Config: Sector:'%s', MaxPages:%d, RecordDelay:%v, PageDelay:%v, Fresh:%t",
		h.Sector, h.MaxPages, h.RecordDelay(), h.PageDelay(), h.Fresh)
	log.Infof("Harvest Config: Origin:%s, DocumentPath:%s, Manifest:%s",
		h.Origin, h.DocumentPath, filepath.Join(h.OutputDir, h.ManifestFile()))
	log.Infof("Global Config Retries: Max:%d, InitialDelay:%v, MaxDelay:%v",
		appCfg.MaxRetries, appCfg.InitialRetryDelay, appCfg.MaxRetryDelay)
	log.Infof("Global Config HTTP Client: Timeout:%v, RespectRobots:%t, LogFile:%s",
		appCfg.HTTPClientSettings.Timeout, appCfg.RespectRobots, appCfg.LogFile)
}
