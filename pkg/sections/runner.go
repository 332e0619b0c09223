package sections

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/browser"
	"github.com/Sriram-PR/doc-harvester/pkg/config"
	"github.com/Sriram-PR/doc-harvester/pkg/fetch"
	"github.com/Sriram-PR/doc-harvester/pkg/models"
	"github.com/Sriram-PR/doc-harvester/pkg/parse"
	"github.com/Sriram-PR/doc-harvester/pkg/process"
	"github.com/Sriram-PR/doc-harvester/pkg/rules"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// projectPrefix is the MapAfrica organisation code prepended to AfDB identifiers
const projectPrefix = "46002-"

// Notes written to the output
const (
	NoteExtracted    = "sections extracted successfully"
	NoteNoSections   = "no target sections found"
	NoteNoWorkingURL = "no working URL found"
)

// Summary tallies one run of the section extractor
type Summary struct {
	Processed  int
	ByStatus   map[models.SectionStatus]int
	OutputPath string
	Duration   time.Duration
}

// Runner extracts project sections for a list of identifiers
type Runner struct {
	cfg       config.SectionsConfig
	transport fetch.PageFetcher
	browser   fetch.PageFetcher // nil when the browser mode is off
	extractor *process.SectionExtractor
	pacer     *fetch.Pacer
	log       *logrus.Entry
}

// NewRunner creates a Runner. cfg must be validated; browser may be nil only when cfg.Browser is off.
func NewRunner(cfg config.SectionsConfig, set *rules.Set, transport, browserFetcher fetch.PageFetcher, pacer *fetch.Pacer, log *logrus.Entry) (*Runner, error) {
	if cfg.Browser != config.BrowserOff && browserFetcher == nil {
		return nil, fmt.Errorf("%w: browser mode '%s' needs a browser fetcher", utils.ErrConfigValidation, cfg.Browser)
	}
	return &Runner{
		cfg:       cfg,
		transport: transport,
		browser:   browserFetcher,
		extractor: process.NewSectionExtractor(set),
		pacer:     pacer,
		log:       log,
	}, nil
}

// CandidateURLs lists the project page URLs tried for an identifier, in order
func (r *Runner) CandidateURLs(identifier string) []string {
	base := r.cfg.BaseURL
	return []string{
		base + "/en/projects/" + projectPrefix + identifier,
		base + "/en/projects/" + identifier,
		base + "/projects/" + projectPrefix + identifier,
		base + "/projects/" + identifier,
	}
}

// Run reads identifiers from the input CSV, extracts each project and writes the output CSV.
// An interrupted run returns the context error without writing output.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{ByStatus: make(map[models.SectionStatus]int), OutputPath: r.cfg.Output}

	r.log.Infof("Processing CSV: %s (id column '%s')", r.cfg.Input, r.cfg.IDColumn)
	ids, err := utils.ReadCSVColumn(r.cfg.Input, r.cfg.IDColumn)
	if err != nil {
		return summary, err
	}
	if r.cfg.MaxRows > 0 {
		r.log.Infof("Processing first %d identifiers only", r.cfg.MaxRows)
	}

	var rows []models.SectionRow
	for rowNum, raw := range ids {
		if r.cfg.MaxRows > 0 && len(rows) >= r.cfg.MaxRows {
			break
		}
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if len(rows) > 0 {
			if err := r.pacer.Wait(ctx, r.cfg.Delay(), "identifier"); err != nil {
				return summary, err
			}
		}

		rowLog := r.log.WithFields(logrus.Fields{"row": rowNum + 1, "identifier": id})
		rowLog.Info("Processing identifier")
		row := r.Extract(ctx, id)
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		rows = append(rows, row)
		summary.ByStatus[row.Status]++
		rowLog.Infof("%s - %s", row.Status, row.Notes)
	}
	summary.Processed = len(rows)

	if err := r.writeOutput(rows); err != nil {
		return summary, err
	}
	summary.Duration = time.Since(start)
	r.log.Infof("Processed %d projects (ok %d, no_content %d, not_found %d). Results saved to: %s",
		summary.Processed,
		summary.ByStatus[models.SectionStatusOK],
		summary.ByStatus[models.SectionStatusNoContent],
		summary.ByStatus[models.SectionStatusNotFound],
		r.cfg.Output)
	return summary, nil
}

// writeOutput replaces the output CSV with rows; rows without an output status are logged and left out
func (r *Runner) writeOutput(rows []models.SectionRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if !row.Status.IsValid() {
			r.log.WithField("identifier", row.Identifier).Warnf("Skipping output row with status '%s'", row.Status)
			continue
		}
		records = append(records, row.Record())
	}
	_, err := utils.WriteCSV(r.cfg.Output, models.SectionsHeader, records, false)
	return err
}

// Extract tries each candidate URL until one yields a section.
// A URL that loads without sections is remembered so the row can say no_content.
func (r *Runner) Extract(ctx context.Context, identifier string) models.SectionRow {
	candidates := r.CandidateURLs(identifier)
	row := models.SectionRow{Identifier: identifier}
	fetchedURL := ""

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}
		urlLog := r.log.WithFields(logrus.Fields{"identifier": identifier, "url": candidate})
		doc, err := r.load(ctx, candidate, urlLog)
		if err != nil {
			urlLog.WithField("error_type", utils.CategorizeError(err)).Debugf("Candidate URL failed: %v", err)
			continue
		}
		if fetchedURL == "" {
			fetchedURL = candidate
		}

		res := r.extractor.Extract(doc)
		if !res.Found() {
			urlLog.Debug("No target sections on page")
			continue
		}

		row.ProjectURL = candidate
		row.GeneralDescription = res.Sections["general_description"]
		row.Objectives = res.Sections["objectives"]
		row.Beneficiaries = res.Sections["beneficiaries"]
		row.Status = models.SectionStatusOK
		notes := strings.Join(res.Notes, "; ")
		if notes == "" {
			notes = NoteExtracted
		}
		row.Notes = notes + "; working URL: " + candidate
		return row
	}

	if fetchedURL != "" {
		row.ProjectURL = fetchedURL
		row.Status = models.SectionStatusNoContent
		row.Notes = NoteNoSections
		return row
	}
	row.ProjectURL = candidates[0]
	row.Status = models.SectionStatusNotFound
	row.Notes = NoteNoWorkingURL
	return row
}

// load fetches a page through the transport, switching to the browser when the
// response is blocked or the browser mode is always
func (r *Runner) load(ctx context.Context, rawURL string, urlLog *logrus.Entry) (*goquery.Document, error) {
	if r.cfg.Browser == config.BrowserAlways {
		return r.loadWith(ctx, r.browser, rawURL)
	}

	res, err := r.transport.Fetch(ctx, rawURL, http.MethodGet)
	if blocked(res) && r.cfg.Browser == config.BrowserAuto {
		urlLog.Warn("Blocked by anti-bot protection, retrying with browser")
		return r.loadWith(ctx, r.browser, rawURL)
	}
	if err != nil {
		return nil, err
	}
	return parse.ParseHTML(res.Body)
}

func (r *Runner) loadWith(ctx context.Context, f fetch.PageFetcher, rawURL string) (*goquery.Document, error) {
	res, err := f.Fetch(ctx, rawURL, http.MethodGet)
	if err != nil {
		return nil, err
	}
	return parse.ParseHTML(res.Body)
}

// blocked reports a 403 or an interstitial challenge served in place of the page.
// Plain transport responses only count as a challenge by title; project text often says "challenge".
func blocked(res *fetch.Result) bool {
	if res == nil {
		return false
	}
	if res.Status == http.StatusForbidden {
		return true
	}
	doc, err := parse.ParseHTML(res.Body)
	if err != nil {
		return false
	}
	return browser.IsChallenge(doc.Find("title").First().Text(), "")
}
