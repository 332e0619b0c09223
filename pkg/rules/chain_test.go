package rules

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestChain_FirstSuccessWins(t *testing.T) {
	calls := 0
	never := func(*goquery.Selection) (int, bool) { calls++; return 0, false }
	seven := func(*goquery.Selection) (int, bool) { calls++; return 7, true }
	nine := func(*goquery.Selection) (int, bool) { calls++; return 9, true }

	v, ok := Chain[int]{never, seven, nine}.First(nil)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls, "strategies after the first success must not run")
}

func TestChain_NoneApply(t *testing.T) {
	v, ok := Chain[string]{}.First(nil)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestRule_SelectWithAttrFilter(t *testing.T) {
	doc := docFrom(t, `<nav>
		<a href="/p1" aria-label="Previous page">Prev</a>
		<a href="/p3" aria-label="Go to NEXT page">Next</a>
	</nav>`)
	rule := Rule{Selector: "[aria-label]", Attr: "aria-label", Contains: "next"}
	found := rule.Select(doc.Selection)
	require.Equal(t, 1, found.Length())
	assert.Equal(t, "/p3", found.AttrOr("href", ""))
}

func TestFirstText_LooksOnlyAtFirstMatchPerRule(t *testing.T) {
	doc := docFrom(t, `<div>
		<h3>   </h3><h3>Second heading</h3>
		<span class="title">  Annual
		   Report  </span>
	</div>`)
	chain := FirstText(sel("h3", ".title"), NonEmpty)
	v, ok := chain.First(doc.Selection)
	assert.True(t, ok)
	assert.Equal(t, "Annual Report", v, "an empty first h3 moves on to the next rule, not the next h3")
}

func TestFirstAttr(t *testing.T) {
	doc := docFrom(t, `<div><a name="top">anchor</a><span class="link" href="/x">x</span><a href="/y">y</a></div>`)
	v, ok := FirstAttr(sel("a", ".link"), "href", NonEmpty).First(doc.Selection)
	assert.True(t, ok)
	assert.Equal(t, "/x", v)
}

func TestAnyAttr_ScansAllMatches(t *testing.T) {
	doc := docFrom(t, `<div><a href="/a.doc">a</a><a href="/b.PDF">b</a><a href="/c.pdf">c</a></div>`)
	keep := func(h string) (string, bool) { return h, strings.Contains(strings.ToLower(h), ".pdf") }
	v, ok := AnyAttr(sel("a"), "href", keep).First(doc.Selection)
	assert.True(t, ok)
	assert.Equal(t, "/b.PDF", v)
}

func TestAnyAttr_KeepTransformsValue(t *testing.T) {
	doc := docFrom(t, `<div><a href="">x</a><a href="/skip">s</a><a href="/docs/r.pdf">r</a></div>`)
	keep := func(h string) (string, bool) {
		if !strings.HasSuffix(h, ".pdf") {
			return "", false
		}
		return "https://example.org" + h, true
	}
	v, ok := AnyAttr(sel("a"), "href", keep).First(doc.Selection)
	assert.True(t, ok)
	assert.Equal(t, "https://example.org/docs/r.pdf", v)

	_, ok = AnyAttr(sel("a"), "href", func(string) (string, bool) { return "", false }).First(doc.Selection)
	assert.False(t, ok)
}
