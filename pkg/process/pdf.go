package process

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/fetch"
	"github.com/Sriram-PR/doc-harvester/pkg/parse"
	"github.com/Sriram-PR/doc-harvester/pkg/rules"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// Link notes
const (
	NoteNoPDF             = "no pdf found"
	NoteRedirectCheckFail = "redirect check failed"
)

// LinkResult is a resolved document link
type LinkResult struct {
	URL   string // Final URL after redirects; empty when nothing qualified
	Hops  int
	Notes string
}

// LinkResolver finds the downloadable file on a detail page and follows its redirects
type LinkResolver struct {
	origin  string
	docPath string
	ext     string
	fetcher fetch.PageFetcher
	log     *logrus.Entry

	candidates rules.Chain[string]
}

// NewLinkResolver creates a LinkResolver. fetcher is used for the HEAD redirect check.
func NewLinkResolver(set *rules.Set, origin, docPath string, fetcher fetch.PageFetcher, log *logrus.Entry) *LinkResolver {
	r := &LinkResolver{
		origin:  origin,
		docPath: docPath,
		ext:     strings.ToLower(set.PDFExtension),
		fetcher: fetcher,
		log:     log,
	}
	primary := r.hrefChain(set.PDFPrimary, func(string) bool { return true })
	fallback := r.hrefChain(set.PDFFallback, func(href string) bool {
		return strings.Contains(strings.ToLower(href), r.ext)
	})
	r.candidates = append(primary, fallback...)
	return r
}

// hrefChain yields, per rule, the first matching element whose href passes pre and
// whose absolute form qualifies
func (r *LinkResolver) hrefChain(list []rules.Rule, pre func(string) bool) rules.Chain[string] {
	return rules.AnyAttr(list, "href", func(href string) (string, bool) {
		if !pre(href) {
			return "", false
		}
		abs, err := parse.JoinOrigin(r.origin, href)
		if err != nil {
			r.log.WithField("error_type", utils.CategorizeError(err)).Debugf("Ignoring link '%s': %v", href, err)
			return "", false
		}
		return abs, r.qualifies(abs)
	})
}

// qualifies accepts links under the document storage path, or absolute links naming the file type
func (r *LinkResolver) qualifies(abs string) bool {
	if r.docPath != "" && strings.Contains(abs, r.docPath) {
		return true
	}
	return strings.HasPrefix(abs, "http") && strings.Contains(strings.ToLower(abs), r.ext)
}

// Candidate returns the first qualifying link on the page without following it
func (r *LinkResolver) Candidate(doc *goquery.Document) (string, bool) {
	return r.candidates.First(doc.Selection)
}

// Resolve finds a candidate link and follows its redirects with a HEAD request.
// A failed redirect check keeps the candidate URL with zero hops.
func (r *LinkResolver) Resolve(ctx context.Context, doc *goquery.Document) LinkResult {
	candidate, ok := r.Candidate(doc)
	if !ok {
		return LinkResult{Notes: NoteNoPDF}
	}

	finalURL, hops, err := r.followRedirects(ctx, candidate)
	if err != nil {
		r.log.WithField("error_type", utils.CategorizeError(err)).Warnf("Error following redirects for %s: %v", candidate, err)
		return LinkResult{URL: candidate, Notes: NoteRedirectCheckFail}
	}

	res := LinkResult{URL: finalURL, Hops: hops}
	if hops > 0 {
		res.Notes = fmt.Sprintf("redirects=%d", hops)
	}
	r.log.Debugf("Found PDF: %s", finalURL)
	return res
}

func (r *LinkResolver) followRedirects(ctx context.Context, candidate string) (string, int, error) {
	if r.fetcher == nil {
		return candidate, 0, nil
	}
	res, err := r.fetcher.Fetch(ctx, candidate, http.MethodHead)
	if err != nil {
		return candidate, 0, err
	}
	if res.FinalURL == "" {
		return candidate, res.RedirectHops, nil
	}
	return res.FinalURL, res.RedirectHops, nil
}
