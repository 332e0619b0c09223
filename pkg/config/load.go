package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// EnvPrefix namespaces environment overrides, e.g. HARVESTER_HARVEST_MAX_PAGES
const EnvPrefix = "HARVESTER"

// NewViper returns a viper instance with defaults and environment binding applied.
// Callers bind command flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so environment overrides resolve during Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("rules_file", "")
	v.SetDefault("respect_robots", false)
	v.SetDefault("max_retries", 3)
	v.SetDefault("initial_retry_delay", "1s")
	v.SetDefault("max_retry_delay", "30s")

	v.SetDefault("http_client_settings.timeout", "30s")

	v.SetDefault("harvest.seeds", []string{})
	v.SetDefault("harvest.sector", "Agriculture & Agro-industries")
	v.SetDefault("harvest.sector_keywords", DefaultSectorKeywords)
	v.SetDefault("harvest.output_dir", "outputs")
	v.SetDefault("harvest.manifest_name", "afdb_manifest")
	v.SetDefault("harvest.max_pages", 25)
	v.SetDefault("harvest.rate_limit", 1.0)
	v.SetDefault("harvest.page_delay", -1.0)
	v.SetDefault("harvest.fresh", false)
	v.SetDefault("harvest.origin", "https://www.afdb.org")
	v.SetDefault("harvest.document_path", "/sites/default/files/documents/")

	v.SetDefault("sections.input", "")
	v.SetDefault("sections.output", "mapafrica_output.csv")
	v.SetDefault("sections.id_column", "Identifier")
	v.SetDefault("sections.max_rows", 0)
	v.SetDefault("sections.base_url", "https://mapafrica.afdb.org")
	v.SetDefault("sections.rate_limit", 2.0)
	v.SetDefault("sections.browser", BrowserAuto)
	v.SetDefault("sections.browser_wait", 3*time.Second)
}

// Load reads the optional config file into v and decodes the merged settings.
// Precedence: bound flags > HARVESTER_* environment > config file > defaults.
// Validation is left to the caller so warnings can be logged once the logger exists.
func Load(v *viper.Viper, configPath string) (*AppConfig, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: config file '%s' not found", utils.ErrConfigValidation, configPath)
			}
			return nil, fmt.Errorf("%w: reading config file '%s': %w", utils.ErrConfigValidation, configPath, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding configuration: %w", utils.ErrConfigValidation, err)
	}
	return &cfg, nil
}
