package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Sriram-PR/doc-harvester/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Validate_Defaults(t *testing.T) {
	cfg := AppConfig{} // Zero value
	warnings, err := cfg.Validate()

	require.NoError(t, err)

	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 1*time.Second, cfg.InitialRetryDelay)
	assert.Equal(t, 30*time.Second, cfg.MaxRetryDelay)

	// Check HTTP client defaults
	assert.Equal(t, 30*time.Second, cfg.HTTPClientSettings.Timeout)
	assert.Equal(t, 100, cfg.HTTPClientSettings.MaxIdleConns)
	assert.Equal(t, 2, cfg.HTTPClientSettings.MaxIdleConnsPerHost)
	assert.Equal(t, 15*time.Second, cfg.HTTPClientSettings.DialerTimeout)

	// Check harvest defaults
	h := cfg.Harvest
	assert.Equal(t, DefaultSeeds, h.Seeds)
	assert.Equal(t, "Agriculture & Agro-industries", h.Sector)
	assert.Equal(t, DefaultSectorKeywords, h.SectorKeywords)
	assert.Equal(t, "outputs", h.OutputDir)
	assert.Equal(t, "afdb_manifest.csv", h.ManifestFile())
	assert.Equal(t, 25, h.MaxPages)
	assert.Equal(t, "https://www.afdb.org", h.Origin)
	assert.Equal(t, "/sites/default/files/documents/", h.DocumentPath)

	assert.True(t, containsWarning(warnings, "no seeds given"))
	assert.True(t, containsWarning(warnings, "output_dir is empty"))
	assert.True(t, containsWarning(warnings, "max_pages should be > 0"))
}

func TestAppConfig_Validate_ValidConfig(t *testing.T) {
	cfg := AppConfig{
		UserAgent:         "harvest-bot/1.0",
		MaxRetries:        5,
		InitialRetryDelay: 2 * time.Second,
		MaxRetryDelay:     60 * time.Second,
		HTTPClientSettings: HTTPClientConfig{
			Timeout: 10 * time.Second,
		},
		Harvest: HarvestConfig{
			Seeds:            []string{" https://www.afdb.org/en/documents?page=0 ", ""},
			Sector:           "Energy",
			OutputDir:        "/out",
			ManifestName:     "energy.csv",
			MaxPages:         3,
			RateLimitSeconds: 0.5,
			PageDelaySeconds: -1,
			Origin:           "https://www.afdb.org/",
			DocumentPath:     "files/",
		},
	}

	warnings, err := cfg.Validate()

	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "harvest-bot/1.0", cfg.UserAgent)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.HTTPClientSettings.Timeout)
	assert.Equal(t, []string{"https://www.afdb.org/en/documents?page=0"}, cfg.Harvest.Seeds)
	assert.Equal(t, "energy.csv", cfg.Harvest.ManifestFile())
	assert.Equal(t, "https://www.afdb.org", cfg.Harvest.Origin)
	assert.Equal(t, "/files/", cfg.Harvest.DocumentPath)
	assert.Equal(t, 500*time.Millisecond, cfg.Harvest.RecordDelay())
	assert.Equal(t, 500*time.Millisecond, cfg.Harvest.PageDelay(), "negative page delay follows the record delay")
}

func TestAppConfig_Validate_NegativeValues(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*AppConfig)
		wantWarning string
		check       func(*testing.T, *AppConfig)
	}{
		{
			name: "negative max_retries",
			setup: func(c *AppConfig) {
				c.MaxRetries = -1
				c.InitialRetryDelay = 1 * time.Second // Prevent default of 3 retries
			},
			wantWarning: "max_retries cannot be negative",
			check: func(t *testing.T, c *AppConfig) {
				assert.Equal(t, 0, c.MaxRetries)
			},
		},
		{
			name: "negative rate_limit",
			setup: func(c *AppConfig) {
				c.Harvest.RateLimitSeconds = -2
			},
			wantWarning: "rate_limit cannot be negative",
			check: func(t *testing.T, c *AppConfig) {
				assert.Equal(t, 1.0, c.Harvest.RateLimitSeconds)
			},
		},
		{
			name: "initial delay above max",
			setup: func(c *AppConfig) {
				c.InitialRetryDelay = 10 * time.Second
				c.MaxRetryDelay = 2 * time.Second
			},
			wantWarning: "initial_retry_delay",
			check: func(t *testing.T, c *AppConfig) {
				assert.Equal(t, 2*time.Second, c.InitialRetryDelay)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{}
			tt.setup(&cfg)
			warnings, err := cfg.Validate()
			require.NoError(t, err)
			assert.True(t, containsWarning(warnings, tt.wantWarning), "warnings: %v", warnings)
			tt.check(t, &cfg)
		})
	}
}

func TestHarvestConfig_Validate_InvalidSeed(t *testing.T) {
	cfg := HarvestConfig{Seeds: []string{"https://www.afdb.org/en/documents", "www.afdb.org/en/documents"}}
	_, err := cfg.Validate()

	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfigValidation))
	assert.Contains(t, err.Error(), "must start with http")
}

func TestHarvestConfig_Validate_InvalidOrigin(t *testing.T) {
	cfg := HarvestConfig{Origin: "afdb.org"}
	_, err := cfg.Validate()

	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfigValidation))
}

func TestHarvestConfig_Delays(t *testing.T) {
	h := HarvestConfig{RateLimitSeconds: 1.5, PageDelaySeconds: 0.25}
	assert.Equal(t, 1500*time.Millisecond, h.RecordDelay())
	assert.Equal(t, 250*time.Millisecond, h.PageDelay())

	h = HarvestConfig{}
	assert.Equal(t, time.Duration(0), h.RecordDelay())
	assert.Equal(t, time.Duration(0), h.PageDelay())
}

func TestSectionsConfig_Validate(t *testing.T) {
	t.Run("requires input", func(t *testing.T) {
		cfg := SectionsConfig{}
		_, err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, utils.ErrConfigValidation))
	})

	t.Run("defaults", func(t *testing.T) {
		cfg := SectionsConfig{Input: "projects.csv", MaxRows: -3, RateLimitSeconds: -1}
		warnings, err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, "mapafrica_output.csv", cfg.Output)
		assert.Equal(t, "Identifier", cfg.IDColumn)
		assert.Equal(t, "https://mapafrica.afdb.org", cfg.BaseURL)
		assert.Equal(t, BrowserAuto, cfg.Browser)
		assert.Equal(t, 0, cfg.MaxRows)
		assert.Equal(t, 2*time.Second, cfg.Delay())
		assert.True(t, containsWarning(warnings, "max_rows cannot be negative"))
	})

	t.Run("browser mode normalized", func(t *testing.T) {
		cfg := SectionsConfig{Input: "projects.csv", Browser: "ALWAYS"}
		_, err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, BrowserAlways, cfg.Browser)
	})

	t.Run("unknown browser mode", func(t *testing.T) {
		cfg := SectionsConfig{Input: "projects.csv", Browser: "sometimes"}
		_, err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sometimes")
	})
}

// containsWarning checks if any warning contains the substring.
func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
