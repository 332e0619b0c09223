package process

import (
	"github.com/PuerkitoBio/goquery"
)

// DetailLoader fetches and parses one detail page
type DetailLoader func() (*goquery.Document, error)

// DetailPage loads a record's detail page on first use and remembers the outcome,
// so the category check and the link lookup share a single fetch.
type DetailPage struct {
	URL    string
	load   DetailLoader
	loaded bool
	doc    *goquery.Document
	err    error
}

// NewDetailPage wraps load for detailURL
func NewDetailPage(detailURL string, load DetailLoader) *DetailPage {
	return &DetailPage{URL: detailURL, load: load}
}

// Doc returns the parsed page, fetching it on the first call only
func (d *DetailPage) Doc() (*goquery.Document, error) {
	if !d.loaded {
		d.doc, d.err = d.load()
		d.loaded = true
	}
	return d.doc, d.err
}

