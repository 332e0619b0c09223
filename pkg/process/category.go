package process

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/models"
	"github.com/Sriram-PR/doc-harvester/pkg/rules"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// Category notes, also used by tests
const (
	NoteSectorFromCard   = "sector from card"
	NoteSectorFromDetail = "sector from detail page"
	NoteNoDetailSector   = "no sector found on detail page"
	NoteDetailFetchFail  = "failed to fetch detail page"
)

// CategoryDecision is the outcome of category enforcement for one record
type CategoryDecision struct {
	Accepted bool
	Sector   string // Confirmed category when accepted, else whatever was seen
	Notes    []string
}

// CategoryResolver enforces the target category, card first and detail page second
type CategoryResolver struct {
	target string
	detail rules.Chain[string]
	log    *logrus.Entry
}

// NewCategoryResolver creates a CategoryResolver for target
func NewCategoryResolver(set *rules.Set, target string, log *logrus.Entry) *CategoryResolver {
	return &CategoryResolver{
		target: target,
		detail: rules.FirstText(set.DetailSector, rules.NonEmpty),
		log:    log,
	}
}

// MatchesTarget is a full-string comparison ignoring case and surrounding whitespace
func MatchesTarget(sector, target string) bool {
	sector = strings.TrimSpace(sector)
	if sector == "" {
		return false
	}
	return strings.EqualFold(sector, strings.TrimSpace(target))
}

// Resolve decides whether rec belongs to the target category.
// A card category that does not match rejects without touching the detail page.
func (c *CategoryResolver) Resolve(rec models.CandidateRecord, detail *DetailPage) CategoryDecision {
	if rec.Sector != "" {
		if MatchesTarget(rec.Sector, c.target) {
			return CategoryDecision{Accepted: true, Sector: rec.Sector, Notes: []string{NoteSectorFromCard}}
		}
		c.log.Debugf("Skipping %s - card sector '%s' does not match target", rec.DetailURL, rec.Sector)
		return CategoryDecision{Sector: rec.Sector}
	}

	doc, err := detail.Doc()
	if err != nil {
		c.log.WithField("error_type", utils.CategorizeError(err)).Debugf("Detail page unavailable for %s: %v", rec.DetailURL, err)
		return CategoryDecision{Notes: []string{NoteDetailFetchFail}}
	}

	sector, found := c.detail.First(doc.Selection)
	if !found {
		c.log.Debugf("Skipping %s - no sector on detail page", rec.DetailURL)
		return CategoryDecision{Notes: []string{NoteNoDetailSector}}
	}
	decision := CategoryDecision{Sector: sector, Notes: []string{NoteSectorFromDetail}}
	if !MatchesTarget(sector, c.target) {
		c.log.Debugf("Skipping %s - detail sector '%s' does not match target", rec.DetailURL, sector)
		return decision
	}
	decision.Accepted = true
	return decision
}
