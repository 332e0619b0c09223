package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Sriram-PR/doc-harvester/pkg/browser"
	"github.com/Sriram-PR/doc-harvester/pkg/config"
	"github.com/Sriram-PR/doc-harvester/pkg/fetch"
	logsetup "github.com/Sriram-PR/doc-harvester/pkg/log"
	"github.com/Sriram-PR/doc-harvester/pkg/sections"
)

var sectionsFlagKeys = map[string]string{
	"input":        "sections.input",
	"output":       "sections.output",
	"id-col":       "sections.id_column",
	"max-rows":     "sections.max_rows",
	"base-url":     "sections.base_url",
	"rate-limit":   "sections.rate_limit",
	"browser":      "sections.browser",
	"browser-wait": "sections.browser_wait",
}

func newSectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Extract MapAfrica project sections for a CSV of identifiers",
		Example: `  doc-harvester sections --input afdb_clean.csv
  doc-harvester sections --input afdb_clean.csv --output mapafrica_output.csv --max-rows 5 --browser off`,
		Args: cobra.NoArgs,
		RunE: runSections,
	}
	f := cmd.Flags()
	f.String("input", "", "Input CSV with project identifiers (required)")
	f.String("output", "mapafrica_output.csv", "Output CSV file")
	f.String("id-col", "Identifier", "Name of the identifier column")
	f.Int("max-rows", 0, "Process only the first N identifiers (0 = all)")
	f.String("base-url", "https://mapafrica.afdb.org", "MapAfrica base URL")
	f.Float64("rate-limit", 2.0, "Seconds to wait between identifiers")
	f.String("browser", config.BrowserAuto, "Browser fallback: off, auto (on 403/challenge) or always")
	f.Duration("browser-wait", 0, "Settle time after the page body is ready (default 3s)")
	return cmd
}

func runSections(cmd *cobra.Command, _ []string) error {
	appCfg, err := loadConfig(cmd, sectionsFlagKeys)
	if err != nil {
		return err
	}
	warnings := appCfg.ValidateCommon()
	sectionWarnings, err := appCfg.Sections.Validate()
	if err != nil {
		return &exitError{code: 1, msg: fmt.Sprintf("Error: %v", err)}
	}
	warnings = append(warnings, sectionWarnings...)

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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := appCfg.Sections
	log.Infof("Sections Config: Input:%s, Output:%s, IDColumn:%s, BaseURL:%s, Browser:%s, Delay:%v",
		s.Input, s.Output, s.IDColumn, s.BaseURL, s.Browser, s.Delay())

	client := fetch.NewClient(appCfg.HTTPClientSettings, log)
	transport := fetch.NewFetcher(client, appCfg, log)
	if appCfg.RespectRobots {
		transport.EnableRobots()
	}

	var browserFetcher fetch.PageFetcher
	if s.Browser != config.BrowserOff {
		b := browser.NewFetcher(appCfg.UserAgent, s.BrowserWait, appCfg.HTTPClientSettings.Timeout, log)
		defer b.Close()
		browserFetcher = b
	}

	runner, err := sections.NewRunner(s, set, transport, browserFetcher, fetch.NewPacer(log), log)
	if err != nil {
		return err
	}
	if _, err := runner.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return &exitError{code: 1, msg: "\nExtraction interrupted by user"}
		}
		return &exitError{code: 1, msg: fmt.Sprintf("Error processing CSV: %v", err)}
	}
	return nil
}
