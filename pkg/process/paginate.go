package process

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/parse"
	"github.com/Sriram-PR/doc-harvester/pkg/rules"
)

// Paginator computes the next listing page URL
type Paginator struct {
	origin    string
	nextLinks []rules.Rule
	pageLinks []rules.Rule
	log       *logrus.Entry
}

// NewPaginator creates a Paginator
func NewPaginator(set *rules.Set, origin string, log *logrus.Entry) *Paginator {
	return &Paginator{
		origin:    origin,
		nextLinks: set.NextLinks,
		pageLinks: set.PageLinks,
		log:       log,
	}
}

// Next returns the URL of the page after currentURL, or false when pagination ends.
// Strategies, first success wins: increment the page query parameter, follow an explicit
// next link, then pick the pager link numbered current+1.
func (p *Paginator) Next(doc *goquery.Document, currentURL string) (string, bool) {
	chain := rules.Chain[string]{
		func(*goquery.Selection) (string, bool) {
			return parse.IncrementPageParam(currentURL)
		},
	}
	chain = append(chain, p.hrefChain(p.nextLinks, currentURL, func(string) bool { return true })...)
	want := parse.ExtractPageNumber(currentURL) + 1
	chain = append(chain, p.hrefChain(p.pageLinks, currentURL, func(href string) bool {
		return parse.ExtractPageNumber(href) == want
	})...)

	next, ok := chain.First(doc.Selection)
	if ok {
		p.log.Debugf("Next page URL: %s", next)
	}
	return next, ok
}

// hrefChain yields, per rule, the first element's href that passes accept, made absolute.
// Links pointing back at the current page are ignored.
func (p *Paginator) hrefChain(list []rules.Rule, currentURL string, accept func(string) bool) rules.Chain[string] {
	current := parse.NormalizeString(currentURL)
	return rules.AnyAttr(list, "href", func(href string) (string, bool) {
		if !accept(href) {
			return "", false
		}
		abs, err := p.absolute(currentURL, href)
		if err != nil {
			p.log.Debugf("Ignoring pager link '%s': %v", href, err)
			return "", false
		}
		return abs, parse.NormalizeString(abs) != current
	})
}

// absolute joins pager hrefs to the origin; query-only hrefs stay on the current listing path
func (p *Paginator) absolute(currentURL, href string) (string, error) {
	if strings.HasPrefix(href, "?") {
		return parse.ResolveAgainst(currentURL, href)
	}
	return parse.JoinOrigin(p.origin, href)
}
