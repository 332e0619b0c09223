package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/config"
	"github.com/Sriram-PR/doc-harvester/pkg/crawler"
	"github.com/Sriram-PR/doc-harvester/pkg/fetch"
	"github.com/Sriram-PR/doc-harvester/pkg/models"
	"github.com/Sriram-PR/doc-harvester/pkg/rules"
	"github.com/Sriram-PR/doc-harvester/pkg/storage"
)

// SeedResult contains the result of crawling a single seed
type SeedResult struct {
	Seed     string
	Success  bool
	Error    error
	Stats    crawler.SeedStats
	Duration time.Duration
}

// RunResult summarizes a whole harvest run
type RunResult struct {
	RunID            string
	Seeds            []SeedResult
	Rows             int
	UniqueDetailURLs int
	ByStatus         map[models.VisitStatus]int
	ManifestPath     string
	ManifestWritten  bool
	Duration         time.Duration
}

// Orchestrator runs every seed of a harvest, one after another, and writes the manifest
type Orchestrator struct {
	appCfg *config.AppConfig
	log    *logrus.Entry
	runID  string

	store    storage.VisitedStore
	pacer    *fetch.Pacer
	crawler  *crawler.Crawler
	manifest *crawler.ManifestWriter

	results []SeedResult
}

// NewOrchestrator creates the run-wide dedup store and crawler.
// appCfg must already be validated. Close releases the store.
func NewOrchestrator(appCfg *config.AppConfig, set *rules.Set, fetcher fetch.PageFetcher, log *logrus.Entry) (*Orchestrator, error) {
	runID := uuid.NewString()
	runLog := log.WithField("run_id", runID)

	store, err := storage.NewBadgerStore(runLog)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedup store: %w", err)
	}

	h := appCfg.Harvest
	pacer := fetch.NewPacer(runLog)
	return &Orchestrator{
		appCfg:   appCfg,
		log:      runLog,
		runID:    runID,
		store:    store,
		pacer:    pacer,
		crawler:  crawler.NewCrawler(h, set, fetcher, store, pacer, runLog),
		manifest: crawler.NewManifestWriter(h.OutputDir, h.ManifestFile(), h.Fresh, runLog),
		results:  make([]SeedResult, 0, len(h.Seeds)),
	}, nil
}

// RunID identifies this run in log lines
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run crawls every seed in order and writes the manifest.
// An interrupted run returns the context error and writes nothing.
func (o *Orchestrator) Run(ctx context.Context) (RunResult, error) {
	startTime := time.Now()
	seeds := o.appCfg.Harvest.Seeds
	o.log.Infof("Starting harvest of %d seeds", len(seeds))

	for i, seed := range seeds {
		o.log.Infof("Processing seed %d/%d: %s", i+1, len(seeds), seed)
		result := o.crawlSeed(ctx, seed)
		o.results = append(o.results, result)

		if ctx.Err() != nil {
			o.log.Warn("Harvest interrupted, manifest not written")
			return o.summarize(startTime), ctx.Err()
		}
	}

	run := o.summarize(startTime)
	rows := o.crawler.Rows()
	if len(rows) == 0 {
		o.log.Warn("No matching documents found, manifest not written")
	} else {
		if err := o.manifest.Write(rows); err != nil {
			o.logSummary(run)
			return run, err
		}
		run.ManifestWritten = true
	}
	o.logSummary(run)
	return run, nil
}

// crawlSeed runs one seed, recovering from panics so the next seed still runs
func (o *Orchestrator) crawlSeed(ctx context.Context, seed string) (result SeedResult) {
	startTime := time.Now()
	result.Seed = seed
	seedLog := o.log.WithField("seed", seed)

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Errorf("panic: %v", r)
			seedLog.WithFields(logrus.Fields{
				"panic_info":  r,
				"stack_trace": string(debug.Stack()),
			}).Error("PANIC recovered while crawling seed")
		}
		result.Duration = time.Since(startTime)
	}()

	stats, err := o.crawler.CrawlSeed(ctx, seed)
	result.Stats = stats
	if err != nil {
		result.Error = err
		if !errors.Is(err, context.Canceled) {
			seedLog.Errorf("Seed failed: %v", err)
		}
		return result
	}
	result.Success = true
	return result
}

func (o *Orchestrator) summarize(startTime time.Time) RunResult {
	run := RunResult{
		RunID:            o.runID,
		Seeds:            o.results,
		Rows:             len(o.crawler.Rows()),
		UniqueDetailURLs: o.store.Count(),
		ManifestPath:     o.manifest.Path(),
		Duration:         time.Since(startTime),
	}
	byStatus, err := o.store.CountByStatus()
	if err != nil {
		o.log.Warnf("Could not tally dedup store: %v", err)
	}
	run.ByStatus = byStatus
	return run
}

// logSummary logs a summary of all seed results
func (o *Orchestrator) logSummary(run RunResult) {
	o.log.Info("============================================")
	o.log.Infof("Harvest completed in %v", run.Duration.Round(time.Millisecond))
	o.log.Info("Seed Results:")

	successCount := 0
	failCount := 0
	for _, r := range run.Seeds {
		status := "SUCCESS"
		if !r.Success {
			status = "FAILED"
			failCount++
		} else {
			successCount++
		}
		o.log.Infof("  %s: %s - %d pages, %d rows (%s) in %v",
			r.Seed, status, r.Stats.Pages, r.Stats.Rows, r.Stats.StopReason, r.Duration.Round(time.Millisecond))
		if r.Error != nil {
			o.log.Infof("    Error: %v", r.Error)
		}
	}

	o.log.Info("--------------------------------------------")
	o.log.Infof("Total: %d seeds (%d success, %d failed)", len(run.Seeds), successCount, failCount)
	o.log.Infof("Total documents: %d", run.Rows)
	o.log.Infof("Unique detail URLs processed: %d (accepted %d, rejected %d, failed %d)",
		run.UniqueDetailURLs,
		run.ByStatus[models.VisitStatusAccepted],
		run.ByStatus[models.VisitStatusRejected],
		run.ByStatus[models.VisitStatusFailed])
	o.log.Infof("Time spent pacing: %v", o.pacer.Slept().Round(time.Millisecond))
	if run.ManifestWritten {
		o.log.Infof("Manifest: %s", run.ManifestPath)
	}
	o.log.Info("============================================")
}

// Close releases the dedup store
func (o *Orchestrator) Close() error {
	return o.store.Close()
}

// ResolveSeeds picks the seed list from the command line sources, first present wins:
// comma-separated or repeated seeds, then the single url, then the default pair when auto is set.
// Returns nil when no source is given so configured seeds apply.
func ResolveSeeds(seeds []string, single string, auto bool) []string {
	var out []string
	for _, s := range seeds {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	switch {
	case len(out) > 0:
		return out
	case strings.TrimSpace(single) != "":
		return []string{strings.TrimSpace(single)}
	case auto:
		return append([]string(nil), config.DefaultSeeds...)
	}
	return nil
}
