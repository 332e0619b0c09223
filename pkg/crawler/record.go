package crawler

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/models"
	"github.com/Sriram-PR/doc-harvester/pkg/parse"
	"github.com/Sriram-PR/doc-harvester/pkg/process"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// RecordResult is the outcome of the per-record pipeline.
// Exactly one of Duplicate, Err, Accepted or a silent rejection applies.
type RecordResult struct {
	Record    models.CandidateRecord
	Duplicate bool
	Accepted  bool
	Row       models.ResolvedRow // Set when Accepted
	Err       error              // Unexpected failure; becomes an error row
}

// ToRow converts a result into its manifest row, if it produces one
func (r RecordResult) ToRow() (models.ResolvedRow, bool) {
	switch {
	case r.Duplicate:
		return models.ResolvedRow{}, false
	case r.Err != nil:
		row := models.NewRow(r.Record)
		row.Status = models.RowStatusError
		row.Notes = fmt.Sprintf("processing error: %v", r.Err)
		return row, true
	case r.Accepted:
		return r.Row, true
	default:
		return models.ResolvedRow{}, false
	}
}

// visitStatus maps a result to its dedup store state
func (r RecordResult) visitStatus() models.VisitStatus {
	switch {
	case r.Err != nil:
		return models.VisitStatusFailed
	case r.Accepted:
		return models.VisitStatusAccepted
	default:
		return models.VisitStatusRejected
	}
}

// processRecord runs dedup, category enforcement and link resolution for one record.
// Panics are recovered into RecordResult.Err.
func (c *Crawler) processRecord(ctx context.Context, rec models.CandidateRecord, recLog *logrus.Entry) (result RecordResult) {
	result.Record = rec
	key := parse.NormalizeString(rec.DetailURL)

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("panic: %v", r)
			result.Accepted = false
			recLog.WithFields(logrus.Fields{
				"panic_info":  r,
				"stack_trace": string(debug.Stack()),
			}).Error("PANIC recovered while processing record")
		}
		if result.Duplicate {
			return
		}
		entry := &models.VisitEntry{
			Status:      result.visitStatus(),
			SourceSeed:  rec.SourceSeed,
			PageNum:     rec.PageNum,
			LastAttempt: time.Now(),
		}
		if result.Err != nil {
			entry.ErrorType = utils.CategorizeError(result.Err)
		}
		if err := c.store.UpdateStatus(key, entry); err != nil {
			recLog.Warnf("Failed to record outcome in dedup store: %v", err)
		}
	}()

	added, err := c.store.MarkVisited(key)
	if err != nil {
		result.Err = err
		return result
	}
	if !added {
		if prior, entry, errStatus := c.store.CheckStatus(key); errStatus == nil {
			dupLog := recLog.WithField("prior_status", prior.String())
			if entry != nil {
				dupLog = dupLog.WithField("first_seed", entry.SourceSeed)
			}
			dupLog.Debug("Skipping duplicate")
		} else {
			recLog.Debug("Skipping duplicate")
		}
		result.Duplicate = true
		return result
	}

	detail := process.NewDetailPage(rec.DetailURL, func() (*goquery.Document, error) {
		return c.fetchDoc(ctx, rec.DetailURL)
	})

	decision := c.category.Resolve(rec, detail)
	if !decision.Accepted {
		return result
	}

	row := models.NewRow(rec)
	row.Sector = decision.Sector
	notes := append([]string(nil), decision.Notes...)

	doc, err := detail.Doc()
	if err != nil {
		notes = append(notes, process.NoteDetailFetchFail)
	} else {
		link := c.links.Resolve(ctx, doc)
		row.PDFURL = link.URL
		if link.Notes != "" {
			notes = append(notes, link.Notes)
		}
	}

	row.Status = models.RowStatusNoPDF
	if row.PDFURL != "" {
		row.Status = models.RowStatusLinked
	}
	row.Notes = strings.Join(notes, "; ")

	result.Accepted = true
	result.Row = row
	return result
}

// fetchDoc GETs rawURL and parses it. Fetch and parse failures both mean "no content".
func (c *Crawler) fetchDoc(ctx context.Context, rawURL string) (*goquery.Document, error) {
	res, err := c.fetcher.Fetch(ctx, rawURL, http.MethodGet)
	if err != nil {
		return nil, err
	}
	return parse.ParseHTML(res.Body)
}
