package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/fetch"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// challengeWait is the extra settle time given to an interstitial challenge page
const challengeWait = 10 * time.Second

// Fetcher renders pages in a headless Chrome tab.
// It implements fetch.PageFetcher for GET only; the browser starts on first use.
type Fetcher struct {
	userAgent string
	wait      time.Duration
	timeout   time.Duration
	log       *logrus.Entry

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewFetcher creates a browser fetcher. wait is the settle time after the body is ready;
// timeout bounds each page load.
func NewFetcher(userAgent string, wait, timeout time.Duration, log *logrus.Entry) *Fetcher {
	return &Fetcher{
		userAgent: userAgent,
		wait:      wait,
		timeout:   timeout,
		log:       log.WithField("fetcher", "browser"),
	}
}

// browser returns the shared browser context, allocating it on first call
func (f *Fetcher) browser() context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browserCtx != nil {
		return f.browserCtx
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	if f.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(f.log.Debugf),
		chromedp.WithErrorf(f.log.Debugf),
	)
	f.allocCancel, f.browserCtx, f.browserCancel = allocCancel, browserCtx, browserCancel
	f.log.Info("Started headless browser")
	return f.browserCtx
}

// Fetch navigates a fresh tab to rawURL and returns the rendered HTML.
// Redirect hops are not observable through the browser and are reported as 0.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, method string) (*fetch.Result, error) {
	if method != "" && method != http.MethodGet {
		return nil, fmt.Errorf("%w: method %s not supported", utils.ErrBrowser, method)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(f.browser())
	defer cancel()
	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, f.timeout)
	defer timeoutCancel()
	stop := context.AfterFunc(ctx, timeoutCancel)
	defer stop()

	tasks := []chromedp.Action{
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
	}
	if f.wait > 0 {
		tasks = append(tasks, chromedp.Sleep(f.wait))
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, f.wrap(ctx, rawURL, "navigation failed", err)
	}

	var title, html, location string
	if err := chromedp.Run(timeoutCtx, chromedp.Title(&title), chromedp.OuterHTML("html", &html)); err != nil {
		return nil, f.wrap(ctx, rawURL, "reading page failed", err)
	}

	if IsChallenge(title, html) {
		f.log.WithField("url", rawURL).Info("Detected challenge page, waiting")
		if err := chromedp.Run(timeoutCtx,
			chromedp.Sleep(challengeWait),
			chromedp.WaitReady("body"),
			chromedp.OuterHTML("html", &html),
		); err != nil {
			return nil, f.wrap(ctx, rawURL, "challenge wait failed", err)
		}
	}

	if err := chromedp.Run(timeoutCtx, chromedp.Location(&location)); err != nil || location == "" {
		location = rawURL
	}
	return &fetch.Result{Status: http.StatusOK, FinalURL: location, Body: []byte(html)}, nil
}

func (f *Fetcher) wrap(ctx context.Context, rawURL, what string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s for %s: %w", utils.ErrBrowser, what, rawURL, err)
}

// Close shuts the browser down if it was started
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browserCancel != nil {
		f.browserCancel()
		f.allocCancel()
		f.browserCtx, f.browserCancel, f.allocCancel = nil, nil, nil
	}
	return nil
}

// IsChallenge reports whether a page is an anti-bot interstitial rather than content
func IsChallenge(title, html string) bool {
	return strings.Contains(title, "Just a moment") || strings.Contains(strings.ToLower(html), "challenge")
}
