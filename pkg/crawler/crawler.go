package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/config"
	"github.com/Sriram-PR/doc-harvester/pkg/fetch"
	"github.com/Sriram-PR/doc-harvester/pkg/models"
	"github.com/Sriram-PR/doc-harvester/pkg/process"
	"github.com/Sriram-PR/doc-harvester/pkg/rules"
	"github.com/Sriram-PR/doc-harvester/pkg/storage"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// SeedStats summarizes one seed's traversal
type SeedStats struct {
	Seed       string
	Pages      int
	Records    int // Candidate records extracted
	Duplicates int
	Rows       int // Rows appended (linked, no_pdf or error)
	Errors     int // Error rows
	StopReason string
}

// Crawler drives the per-seed loop for one run.
// It owns the accumulated rows; the dedup store is shared across seeds through it.
// Not safe for concurrent use.
type Crawler struct {
	log     *logrus.Entry
	cfg     config.HarvestConfig
	fetcher fetch.PageFetcher
	store   storage.VisitedStore
	pacer   *fetch.Pacer

	extractor *process.RecordExtractor
	category  *process.CategoryResolver
	links     *process.LinkResolver
	paginator *process.Paginator

	rows []models.ResolvedRow
}

// NewCrawler wires the record pipeline for one run.
// cfg is expected to be validated already.
func NewCrawler(
	cfg config.HarvestConfig,
	set *rules.Set,
	fetcher fetch.PageFetcher,
	store storage.VisitedStore,
	pacer *fetch.Pacer,
	log *logrus.Entry,
) *Crawler {
	keywords := utils.CompileKeywordPattern(cfg.SectorKeywords)
	return &Crawler{
		log:       log,
		cfg:       cfg,
		fetcher:   fetcher,
		store:     store,
		pacer:     pacer,
		extractor: process.NewRecordExtractor(set, cfg.Origin, keywords, log),
		category:  process.NewCategoryResolver(set, cfg.Sector, log),
		links:     process.NewLinkResolver(set, cfg.Origin, cfg.DocumentPath, fetcher, log),
		paginator: process.NewPaginator(set, cfg.Origin, log),
	}
}

// Rows returns the rows accumulated so far, in seed, page and extraction order
func (c *Crawler) Rows() []models.ResolvedRow {
	return c.rows
}

// CrawlSeed traverses one seed to completion.
// Fetch failures end the seed quietly; the only error returned is context cancellation.
func (c *Crawler) CrawlSeed(ctx context.Context, seed string) (SeedStats, error) {
	stats := SeedStats{Seed: seed}
	seedLog := c.log.WithField("seed", seed)
	seedStart := time.Now()

	currentURL := seed
	pageNum := 0
	state := StateFetchingPage
	var page *pageContext

	for state != StateDone {
		if err := ctx.Err(); err != nil {
			stats.StopReason = StopInterrupted
			return stats, err
		}
		seedLog.Debugf("State: %s", state)

		switch state {
		case StateFetchingPage:
			pageNum++
			pageLog := seedLog.WithFields(logrus.Fields{"page": pageNum, "url": currentURL})
			pageLog.Infof("Fetching page %d", pageNum)
			doc, err := c.fetchDoc(ctx, currentURL)
			if err != nil {
				if ctx.Err() != nil {
					stats.StopReason = StopInterrupted
					return stats, ctx.Err()
				}
				pageLog.WithField("error_type", utils.CategorizeError(err)).Warnf("Failed to fetch page: %v", err)
				stats.StopReason = StopFetchFailed
				state = StateDone
				continue
			}
			stats.Pages++
			page = &pageContext{doc: doc, url: currentURL, num: pageNum, log: pageLog}
			state = StateExtracting

		case StateExtracting:
			page.records = c.extractor.Records(page.doc, seed, page.num)
			stats.Records += len(page.records)
			page.log.Infof("Extracted %d records", len(page.records))
			if len(page.records) == 0 {
				stats.StopReason = StopNoRecords
				state = StateDone
				continue
			}
			state = StateProcessingRecords

		case StateProcessingRecords:
			if err := c.processPage(ctx, page, &stats); err != nil {
				stats.StopReason = StopInterrupted
				return stats, err
			}
			state = StatePaginating

		case StatePaginating:
			if page.num >= c.cfg.MaxPages {
				page.log.Infof("Reached page ceiling (%d)", c.cfg.MaxPages)
				stats.StopReason = StopPageCeiling
				state = StateDone
				continue
			}
			next, ok := c.paginator.Next(page.doc, page.url)
			if !ok {
				page.log.Info("No next page found")
				stats.StopReason = StopNoNextPage
				state = StateDone
				continue
			}
			page.log.Debugf("Next page: %s", next)
			currentURL = next
			if err := c.pacer.Wait(ctx, c.cfg.PageDelay(), "page"); err != nil {
				stats.StopReason = StopInterrupted
				return stats, err
			}
			state = StateFetchingPage
		}
	}

	seedLog.WithFields(logrus.Fields{
		"pages":    stats.Pages,
		"rows":     stats.Rows,
		"duration": time.Since(seedStart).Round(time.Millisecond),
	}).Infof("Seed finished: %s", stats.StopReason)
	return stats, nil
}

// pageContext carries one listing page through the state loop
type pageContext struct {
	doc     *goquery.Document
	url     string
	num     int
	records []models.CandidateRecord
	log     *logrus.Entry
}

// processPage runs the record pipeline for every record on the page, in page order
func (c *Crawler) processPage(ctx context.Context, page *pageContext, stats *SeedStats) error {
	for i, rec := range page.records {
		recLog := page.log.WithFields(logrus.Fields{
			"record":     fmt.Sprintf("%d/%d", i+1, len(page.records)),
			"detail_url": rec.DetailURL,
		})

		result := c.processRecord(ctx, rec, recLog)
		if result.Duplicate {
			stats.Duplicates++
			continue
		}
		if ctx.Err() != nil {
			// A cancelled fetch looks like a failure; drop the half-processed record
			return ctx.Err()
		}

		if row, ok := result.ToRow(); ok {
			c.rows = append(c.rows, row)
			stats.Rows++
			if row.Status == models.RowStatusError {
				stats.Errors++
				recLog.WithField("error_type", utils.CategorizeError(result.Err)).Errorf("Record failed: %v", result.Err)
			} else {
				recLog.Infof("Row: %s (%s)", row.Status, row.Title)
			}
		} else {
			recLog.Debug("Rejected by category")
		}

		if err := c.pacer.Wait(ctx, c.cfg.RecordDelay(), "record"); err != nil {
			return err
		}
	}
	return nil
}
