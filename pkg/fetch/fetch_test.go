package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/doc-harvester/pkg/config"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// redirectServer serves /hop/N which redirects down to /hop/0, which returns a body
func redirectServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/hop/", func(w http.ResponseWriter, r *http.Request) {
		var n int
		fmt.Sscanf(r.URL.Path, "/hop/%d", &n)
		if n > 0 {
			http.Redirect(w, r, fmt.Sprintf("/hop/%d", n-1), http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "final")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_CountsRedirectHops(t *testing.T) {
	srv := redirectServer(t)
	f := NewFetcher(testClient(), testConfig(0), testLogger())

	tests := []struct {
		path string
		hops int
	}{
		{"/hop/0", 0},
		{"/hop/1", 1},
		{"/hop/3", 3},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := f.Fetch(context.Background(), srv.URL+tt.path, http.MethodGet)
			require.NoError(t, err)
			assert.Equal(t, tt.hops, res.RedirectHops)
			assert.Equal(t, srv.URL+"/hop/0", res.FinalURL)
			assert.Equal(t, "final", string(res.Body))
		})
	}
}

func TestFetch_HeadHasNoBody(t *testing.T) {
	srv := redirectServer(t)
	f := NewFetcher(testClient(), testConfig(0), testLogger())

	res, err := f.Fetch(context.Background(), srv.URL+"/hop/2", http.MethodHead)
	require.NoError(t, err)
	assert.Equal(t, 2, res.RedirectHops)
	assert.Empty(t, res.Body)
	assert.Equal(t, http.StatusOK, res.Status)
}

func TestFetch_SendsDefaultHeaders(t *testing.T) {
	var gotUA, gotLang atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		gotLang.Store(r.Header.Get("Accept-Language"))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(testClient(), testConfig(0), testLogger())
	_, err := f.Fetch(context.Background(), srv.URL, "")
	require.NoError(t, err)
	assert.Equal(t, "harvester-test/1.0", gotUA.Load())
	assert.Contains(t, gotLang.Load(), "en-US")
}

func TestFetch_ClientErrorReturnsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "<title>Just a moment...</title>")
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(testClient(), testConfig(2), testLogger())
	res, err := f.Fetch(context.Background(), srv.URL, http.MethodGet)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrClientHTTPError))
	require.NotNil(t, res, "blocked pages are handed back so callers can inspect them")
	assert.Equal(t, http.StatusForbidden, res.Status)
	assert.Contains(t, string(res.Body), "Just a moment")
}

func TestFetch_RetriesExhausted(t *testing.T) {
	srv, attempts := mockServer(t, []int{503})
	f := NewFetcher(testClient(), testConfig(2), testLogger())

	res, err := f.Fetch(context.Background(), srv.URL, http.MethodGet)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, utils.ErrRetryFailed))
	assert.Equal(t, "RetryFailed_HTTPServer", utils.CategorizeError(err))
	assert.EqualValues(t, 3, attempts.Load())
}

func TestFetch_BadURL(t *testing.T) {
	f := NewFetcher(testClient(), testConfig(0), testLogger())
	_, err := f.Fetch(context.Background(), "http://bad host/", http.MethodGet)
	assert.True(t, errors.Is(err, utils.ErrRequestCreation), "got %v", err)
}

func TestFetch_RobotsGate(t *testing.T) {
	var pageHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		pageHits.Add(1)
		fmt.Fprint(w, "ok")
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(testClient(), testConfig(0), testLogger())
	f.EnableRobots()

	_, err := f.Fetch(context.Background(), srv.URL+"/private/doc", http.MethodGet)
	assert.True(t, errors.Is(err, utils.ErrRobotsDisallowed), "got %v", err)
	assert.Equal(t, "Policy_Robots", utils.CategorizeError(err))

	res, err := f.Fetch(context.Background(), srv.URL+"/public/doc", http.MethodGet)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(res.Body))
	assert.EqualValues(t, 1, pageHits.Load())
}

func TestRobots_MissingFileAllowsEverything(t *testing.T) {
	var robotsHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(testClient(), testConfig(0), testLogger())
	rh := NewRobotsHandler(f, "harvester-test/1.0", testLogger())

	target, _ := url.Parse(srv.URL + "/anything")
	assert.True(t, rh.Allowed(context.Background(), target))
	assert.True(t, rh.Allowed(context.Background(), target))
	assert.EqualValues(t, 1, robotsHits.Load(), "failures are cached per host")
}

func TestNewClient_KeepsCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/set" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			return
		}
		c, err := r.Cookie("session")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, c.Value)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(0)
	cfg.HTTPClientSettings = config.HTTPClientConfig{Timeout: testClient().Timeout}
	f := NewFetcher(NewClient(cfg.HTTPClientSettings, testLogger()), cfg, testLogger())

	_, err := f.Fetch(context.Background(), srv.URL+"/set", http.MethodGet)
	require.NoError(t, err)
	res, err := f.Fetch(context.Background(), srv.URL+"/get", http.MethodGet)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(res.Body))
}
