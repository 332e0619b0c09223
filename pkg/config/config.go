package config

import "time"

// DefaultUserAgent mimics a desktop browser; the listing site serves reduced markup to unknown agents
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultSeeds are crawled when no seed source is given
var DefaultSeeds = []string{
	"https://www.afdb.org/en/documents",
	"https://www.afdb.org/en/documents/category/projects-operations",
}

// DefaultSectorKeywords mark card text as category-ish during extraction
var DefaultSectorKeywords = []string{"agriculture", "agro"}

// Browser fallback modes for the section extractor
const (
	BrowserOff    = "off"
	BrowserAuto   = "auto"
	BrowserAlways = "always"
)

// AppConfig holds the global application configuration
type AppConfig struct {
	UserAgent          string           `yaml:"user_agent" mapstructure:"user_agent"`
	LogLevel           string           `yaml:"log_level" mapstructure:"log_level"`
	LogFile            string           `yaml:"log_file,omitempty" mapstructure:"log_file"`
	RulesFile          string           `yaml:"rules_file,omitempty" mapstructure:"rules_file"`
	RespectRobots      bool             `yaml:"respect_robots" mapstructure:"respect_robots"`
	MaxRetries         int              `yaml:"max_retries" mapstructure:"max_retries"`
	InitialRetryDelay  time.Duration    `yaml:"initial_retry_delay" mapstructure:"initial_retry_delay"`
	MaxRetryDelay      time.Duration    `yaml:"max_retry_delay" mapstructure:"max_retry_delay"`
	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings" mapstructure:"http_client_settings"`
	Harvest            HarvestConfig    `yaml:"harvest" mapstructure:"harvest"`
	Sections           SectionsConfig   `yaml:"sections" mapstructure:"sections"`
}

// HarvestConfig holds settings for the listing crawl
type HarvestConfig struct {
	Seeds            []string `yaml:"seeds" mapstructure:"seeds"`
	Sector           string   `yaml:"sector" mapstructure:"sector"`
	SectorKeywords   []string `yaml:"sector_keywords" mapstructure:"sector_keywords"`
	OutputDir        string   `yaml:"output_dir" mapstructure:"output_dir"`
	ManifestName     string   `yaml:"manifest_name" mapstructure:"manifest_name"`
	MaxPages         int      `yaml:"max_pages" mapstructure:"max_pages"`
	RateLimitSeconds float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // Sleep after each processed record
	PageDelaySeconds float64  `yaml:"page_delay" mapstructure:"page_delay"` // Sleep after each page transition; negative = same as rate_limit
	Fresh            bool     `yaml:"fresh" mapstructure:"fresh"`
	Origin           string   `yaml:"origin" mapstructure:"origin"`
	DocumentPath     string   `yaml:"document_path" mapstructure:"document_path"`
}

// SectionsConfig holds settings for the project section extractor
type SectionsConfig struct {
	Input            string        `yaml:"input,omitempty" mapstructure:"input"`
	Output           string        `yaml:"output" mapstructure:"output"`
	IDColumn         string        `yaml:"id_column" mapstructure:"id_column"`
	MaxRows          int           `yaml:"max_rows,omitempty" mapstructure:"max_rows"` // 0 = all rows
	BaseURL          string        `yaml:"base_url" mapstructure:"base_url"`
	RateLimitSeconds float64       `yaml:"rate_limit" mapstructure:"rate_limit"`
	Browser          string        `yaml:"browser" mapstructure:"browser"`
	BrowserWait      time.Duration `yaml:"browser_wait" mapstructure:"browser_wait"` // Settle time after body is ready
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`                                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty" mapstructure:"max_idle_conns"`                   // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty" mapstructure:"max_idle_conns_per_host"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty" mapstructure:"idle_conn_timeout"`             // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty" mapstructure:"tls_handshake_timeout"`     // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty" mapstructure:"expect_continue_timeout"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty" mapstructure:"force_attempt_http2"`         // nil=default, true=force, false=disable
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty" mapstructure:"dialer_timeout"`                   // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty" mapstructure:"dialer_keep_alive"`             // TCP keep-alive interval
}

// RecordDelay is the pause applied after each processed record
func (h HarvestConfig) RecordDelay() time.Duration {
	return secondsToDuration(h.RateLimitSeconds)
}

// PageDelay is the pause applied after each page transition
func (h HarvestConfig) PageDelay() time.Duration {
	if h.PageDelaySeconds < 0 {
		return h.RecordDelay()
	}
	return secondsToDuration(h.PageDelaySeconds)
}

// ManifestFile returns the manifest file name including its extension
func (h HarvestConfig) ManifestFile() string {
	return h.ManifestName + ".csv"
}

// Delay is the pause between identifiers
func (s SectionsConfig) Delay() time.Duration {
	return secondsToDuration(s.RateLimitSeconds)
}

func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
