package process

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/models"
	"github.com/Sriram-PR/doc-harvester/pkg/parse"
	"github.com/Sriram-PR/doc-harvester/pkg/rules"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// RecordExtractor turns listing pages into candidate records
type RecordExtractor struct {
	set    *rules.Set
	origin string
	log    *logrus.Entry

	title   rules.Chain[string]
	link    rules.Chain[string]
	date    rules.Chain[string]
	country rules.Chain[string]
	sector  rules.Chain[string]
}

// NewRecordExtractor builds the per-field strategy chains once.
// sectorKeywords is the case-insensitive keyword matcher for card category text; nil disables card categories.
func NewRecordExtractor(set *rules.Set, origin string, sectorKeywords *regexp.Regexp, log *logrus.Entry) *RecordExtractor {
	hasKeyword := func(text string) bool {
		return sectorKeywords != nil && sectorKeywords.MatchString(text)
	}
	notDate := func(text string) bool {
		return rules.NonEmpty(text) && !set.LooksLikeDate(text)
	}
	return &RecordExtractor{
		set:     set,
		origin:  origin,
		log:     log,
		title:   rules.FirstText(set.Title, rules.NonEmpty),
		link:    rules.FirstAttr(set.Link, "href", rules.NonEmpty),
		date:    rules.FirstText(set.Date, set.LooksLikeDate),
		country: rules.FirstText(set.Country, notDate),
		sector:  rules.FirstText(set.CardSector, hasKeyword),
	}
}

// Records extracts every card on the page that has both a title and a detail URL, in page order.
// Cards with an href that cannot be joined to the origin are logged and skipped.
func (e *RecordExtractor) Records(doc *goquery.Document, seed string, pageNum int) []models.CandidateRecord {
	cards, via := e.set.SelectCards(doc.Selection)
	pageLog := e.log.WithFields(logrus.Fields{"seed": seed, "page": pageNum})
	pageLog.Debugf("Found %d cards using selector: %s", cards.Length(), via)

	records := make([]models.CandidateRecord, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		rec, ok := e.record(card, seed, pageNum, pageLog)
		if ok {
			records = append(records, rec)
		}
	})
	return records
}

func (e *RecordExtractor) record(card *goquery.Selection, seed string, pageNum int, pageLog *logrus.Entry) (models.CandidateRecord, bool) {
	title, _ := e.title.First(card)
	href, hasLink := e.link.First(card)
	if title == "" || !hasLink {
		return models.CandidateRecord{}, false
	}

	detailURL, err := parse.JoinOrigin(e.origin, href)
	if err != nil {
		pageLog.WithField("error_type", utils.CategorizeError(err)).Warnf("Skipping card '%s': %v", title, err)
		return models.CandidateRecord{}, false
	}

	rec := models.CandidateRecord{
		SourceSeed: seed,
		PageNum:    pageNum,
		Title:      title,
		DetailURL:  detailURL,
	}
	rec.Date, _ = e.date.First(card)
	rec.Country, _ = e.country.First(card)
	rec.Sector, rec.SectorFromCard = e.sector.First(card)
	return rec, true
}
