package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// Validate checks AppConfig fields and the harvest settings, applying sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
// Section extractor settings are checked separately by SectionsConfig.Validate.
func (c *AppConfig) Validate() (warnings []string, err error) {
	warnings = c.ValidateCommon()

	harvestWarnings, err := c.Harvest.Validate()
	warnings = append(warnings, harvestWarnings...)
	if err != nil {
		return warnings, err
	}

	return warnings, nil
}

// ValidateCommon applies defaults to the settings shared by every command:
// user agent, log level, retries and the HTTP client.
func (c *AppConfig) ValidateCommon() (warnings []string) {
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = DefaultUserAgent
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	// MaxRetries
	if c.MaxRetries < 0 {
		warnings = append(warnings, "max_retries cannot be negative, setting to 0")
		c.MaxRetries = 0
	}
	if c.MaxRetries == 0 && c.InitialRetryDelay == 0 {
		c.MaxRetries = 3
	}

	// Retry delays (only if retries enabled)
	if c.MaxRetries > 0 {
		if c.InitialRetryDelay <= 0 {
			c.InitialRetryDelay = 1 * time.Second
		}
		if c.MaxRetryDelay <= 0 {
			c.MaxRetryDelay = 30 * time.Second
		}
	}

	if c.InitialRetryDelay > c.MaxRetryDelay && c.MaxRetryDelay > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"initial_retry_delay (%v) > max_retry_delay (%v), using max_retry_delay for initial",
			c.InitialRetryDelay, c.MaxRetryDelay))
		c.InitialRetryDelay = c.MaxRetryDelay
	}

	c.validateHTTPClientSettings()
	return warnings
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 30 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}

// Validate checks HarvestConfig fields and applies defaults.
// Returns collected warnings and any fatal error.
func (h *HarvestConfig) Validate() (warnings []string, err error) {
	seeds := make([]string, 0, len(h.Seeds))
	for _, s := range h.Seeds {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, "http") {
			return warnings, fmt.Errorf("%w: invalid seed URL '%s' (must start with http)", utils.ErrConfigValidation, s)
		}
		seeds = append(seeds, s)
	}
	if len(seeds) == 0 {
		warnings = append(warnings, "no seeds given, using the default seed pair")
		seeds = append(seeds, DefaultSeeds...)
	}
	h.Seeds = seeds

	if strings.TrimSpace(h.Sector) == "" {
		h.Sector = "Agriculture & Agro-industries"
	}
	if len(h.SectorKeywords) == 0 {
		h.SectorKeywords = append([]string(nil), DefaultSectorKeywords...)
	}

	if h.OutputDir == "" {
		warnings = append(warnings, "output_dir is empty, defaulting to 'outputs'")
		h.OutputDir = "outputs"
	}
	if h.ManifestName == "" {
		h.ManifestName = "afdb_manifest"
	}
	h.ManifestName = strings.TrimSuffix(h.ManifestName, ".csv")

	if h.MaxPages <= 0 {
		warnings = append(warnings, "max_pages should be > 0, defaulting to 25")
		h.MaxPages = 25
	}

	if h.RateLimitSeconds < 0 {
		warnings = append(warnings, "rate_limit cannot be negative, defaulting to 1.0")
		h.RateLimitSeconds = 1.0
	}

	if h.Origin == "" {
		h.Origin = "https://www.afdb.org"
	}
	h.Origin = strings.TrimRight(h.Origin, "/")
	originURL, parseErr := url.Parse(h.Origin)
	if parseErr != nil || originURL.Scheme == "" || originURL.Host == "" {
		return warnings, fmt.Errorf("%w: origin '%s' must be an absolute URL", utils.ErrConfigValidation, h.Origin)
	}

	if h.DocumentPath == "" {
		h.DocumentPath = "/sites/default/files/documents/"
	} else if h.DocumentPath[0] != '/' {
		h.DocumentPath = "/" + h.DocumentPath
	}

	return warnings, nil
}

// Validate checks SectionsConfig fields and applies defaults.
// Returns collected warnings and any fatal error.
func (s *SectionsConfig) Validate() (warnings []string, err error) {
	if strings.TrimSpace(s.Input) == "" {
		return nil, fmt.Errorf("%w: sections needs an input CSV of project identifiers", utils.ErrConfigValidation)
	}
	if s.Output == "" {
		s.Output = "mapafrica_output.csv"
	}
	if s.IDColumn == "" {
		s.IDColumn = "Identifier"
	}
	if s.MaxRows < 0 {
		warnings = append(warnings, "max_rows cannot be negative, processing all rows")
		s.MaxRows = 0
	}
	if s.BaseURL == "" {
		s.BaseURL = "https://mapafrica.afdb.org"
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	if s.RateLimitSeconds < 0 {
		warnings = append(warnings, "sections rate_limit cannot be negative, defaulting to 2.0")
		s.RateLimitSeconds = 2.0
	}

	switch strings.ToLower(s.Browser) {
	case "":
		s.Browser = BrowserAuto
	case BrowserOff, BrowserAuto, BrowserAlways:
		s.Browser = strings.ToLower(s.Browser)
	default:
		return warnings, fmt.Errorf("%w: browser mode '%s' (want off, auto or always)", utils.ErrConfigValidation, s.Browser)
	}
	if s.BrowserWait <= 0 {
		s.BrowserWait = 3 * time.Second
	}

	return warnings, nil
}
