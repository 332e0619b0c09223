package process

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/doc-harvester/pkg/fetch"
)

const testOrigin = "https://www.afdb.org"

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// fakeFetcher answers HEAD checks from a table of final URLs and hop counts
type fakeFetcher struct {
	results map[string]*fetch.Result
	err     error
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL, method string) (*fetch.Result, error) {
	f.calls = append(f.calls, method+" "+rawURL)
	if f.err != nil {
		return nil, f.err
	}
	if res, ok := f.results[rawURL]; ok {
		return res, nil
	}
	return &fetch.Result{Status: 200, FinalURL: rawURL}, nil
}

var errBoom = errors.New("boom")
