package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/config"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// maxBodyBytes caps how much of a page is read into memory
const maxBodyBytes = 16 << 20

// Result is what a completed fetch hands to the rest of the pipeline
type Result struct {
	Status       int
	FinalURL     string // URL after following redirects
	RedirectHops int
	Body         []byte // Empty for HEAD
	Header       http.Header
}

// PageFetcher is the transport capability the crawler and section extractor depend on.
// On a non-2xx final status, implementations return a non-nil Result alongside the error.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL, method string) (*Result, error)
}

// Fetcher handles HTTP requests with retry, default headers and an optional robots.txt gate
type Fetcher struct {
	client *http.Client
	cfg    *config.AppConfig
	robots *RobotsHandler
	log    *logrus.Entry
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(client *http.Client, cfg *config.AppConfig, log *logrus.Entry) *Fetcher {
	return &Fetcher{
		client: client,
		cfg:    cfg,
		log:    log,
	}
}

// EnableRobots makes Fetch refuse URLs the site's robots.txt disallows for the configured agent
func (f *Fetcher) EnableRobots() {
	f.robots = NewRobotsHandler(f, f.cfg.UserAgent, f.log)
}

// Fetch performs one logical request: robots check, default headers, retries, body read
// and redirect hop counting.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, method string) (*Result, error) {
	if method == "" {
		method = http.MethodGet
	}
	if f.robots != nil {
		if u, err := url.Parse(rawURL); err == nil && !f.robots.Allowed(ctx, u) {
			return nil, fmt.Errorf("%w: %s", utils.ErrRobotsDisallowed, rawURL)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", utils.ErrRequestCreation, method, rawURL, err)
	}
	f.setDefaultHeaders(req)

	resp, fetchErr := f.FetchWithRetry(req, ctx)
	if resp == nil {
		return nil, fetchErr
	}
	defer resp.Body.Close()

	result := &Result{
		Status:       resp.StatusCode,
		FinalURL:     resp.Request.URL.String(),
		RedirectHops: countHops(resp),
		Header:       resp.Header,
	}

	if method != http.MethodHead {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr != nil && fetchErr == nil {
			return nil, fmt.Errorf("%w: %s: %w", utils.ErrResponseBodyRead, rawURL, readErr)
		}
		result.Body = body
	}

	if result.RedirectHops > 0 {
		f.log.WithFields(logrus.Fields{"url": rawURL, "final_url": result.FinalURL, "hops": result.RedirectHops}).Debug("Followed redirects")
	}
	return result, fetchErr
}

func (f *Fetcher) setDefaultHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,fr;q=0.8")
}

// countHops walks the chain of redirect responses that led to resp
func countHops(resp *http.Response) int {
	hops := 0
	for r := resp.Request; r != nil && r.Response != nil; r = r.Response.Request {
		hops++
	}
	return hops
}

// FetchWithRetry performs an HTTP request bound to ctx.
// Network errors, 5xx and 429 are retried with exponential backoff and jitter.
// A 429 carrying Retry-After waits that long instead, capped at the max retry delay.
// Other 4xx and non-2xx statuses return the response together with an error; the caller closes the body.
func (f *Fetcher) FetchWithRetry(req *http.Request, ctx context.Context) (*http.Response, error) {
	var lastErr error
	var currentResp *http.Response
	var retryAfter time.Duration

	reqLog := f.log.WithField("url", req.URL.String())

	maxRetries := f.cfg.MaxRetries
	initialRetryDelay := f.cfg.InitialRetryDelay
	maxRetryDelay := f.cfg.MaxRetryDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			reqLog.Warnf("Context cancelled before attempt %d: %v", attempt, ctx.Err())
			if lastErr != nil {
				return nil, fmt.Errorf("context cancelled (%v) during retry backoff after error: %w", ctx.Err(), lastErr)
			}
			return nil, fmt.Errorf("context cancelled before first attempt: %w", ctx.Err())
		default:
		}

		if attempt > 0 {
			finalDelay := backoffDelay(attempt, initialRetryDelay, maxRetryDelay)
			if retryAfter > 0 {
				finalDelay = min(retryAfter, maxRetryDelay)
				retryAfter = 0
			}
			reqLog.WithFields(logrus.Fields{"attempt": attempt, "max_retries": maxRetries, "delay": finalDelay}).Warn("Retrying request...")

			select {
			case <-time.After(finalDelay):
			case <-ctx.Done():
				reqLog.Warnf("Context cancelled during retry sleep: %v", ctx.Err())
				if lastErr != nil {
					return nil, fmt.Errorf("context cancelled (%v) during retry delay after error: %w", ctx.Err(), lastErr)
				}
				return nil, fmt.Errorf("context cancelled during retry delay: %w", ctx.Err())
			}
		}

		currentResp, lastErr = f.client.Do(req.WithContext(ctx))

		if lastErr != nil {
			if currentResp != nil {
				drainAndClose(currentResp)
			}
			if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
				reqLog.Warnf("Context cancelled/timed out during HTTP request execution: %v", lastErr)
				return nil, lastErr
			}
			reqLog.WithField("attempt", attempt).Errorf("Network error: %v", lastErr)
			continue
		}

		statusCode := currentResp.StatusCode
		resLog := reqLog.WithFields(logrus.Fields{"status_code": statusCode, "attempt": attempt})

		switch {
		case statusCode >= 200 && statusCode < 300:
			resLog.Debug("Successfully fetched")
			return currentResp, nil

		case statusCode >= 500:
			resLog.Warn("Server error, retrying...")
			lastErr = fmt.Errorf("%w: status %d %s", utils.ErrServerHTTPError, statusCode, currentResp.Status)
			drainAndClose(currentResp)
			continue

		case statusCode == http.StatusTooManyRequests:
			retryAfter = parseRetryAfter(currentResp.Header.Get("Retry-After"), time.Now())
			resLog.WithField("retry_after", retryAfter).Warn("Received 429 Too Many Requests, retrying...")
			lastErr = fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, statusCode, currentResp.Status)
			drainAndClose(currentResp)
			continue

		case statusCode >= 400 && statusCode < 500:
			resLog.Warn("Client error (4xx), not retrying")
			return currentResp, fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, statusCode, currentResp.Status)

		default:
			resLog.Warnf("Non-retryable/unexpected status: %d", statusCode)
			return currentResp, fmt.Errorf("%w: status %d %s", utils.ErrOtherHTTPError, statusCode, currentResp.Status)
		}
	}

	reqLog.Errorf("All %d fetch attempts failed. Last error: %v", maxRetries+1, lastErr)

	if lastErr != nil {
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return nil, lastErr
		}
		return nil, fmt.Errorf("%w: %w", utils.ErrRetryFailed, lastErr)
	}
	return nil, utils.ErrRetryFailed
}

// backoffDelay is initial * 2^(attempt-1), capped at ceiling, with +/-10% jitter
func backoffDelay(attempt int, initial, ceiling time.Duration) time.Duration {
	delay := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
	if delay <= 0 || delay > ceiling {
		delay = ceiling
	}
	var jitter time.Duration
	if spread := int64(delay) / 5; spread > 0 {
		jitter = time.Duration(rand.Int63n(spread)) - delay/10
	}
	if delay+jitter < 0 {
		return 0
	}
	return delay + jitter
}

// parseRetryAfter reads a Retry-After value in delay-seconds or HTTP-date form.
// Missing, malformed or past values yield 0.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
