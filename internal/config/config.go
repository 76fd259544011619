// Package config defines service configuration structures and loading hooks.
package config

import (
	"runtime"
	"time"

	"github.com/okian/buildlab/internal/adapters/oracle"
	"github.com/okian/buildlab/internal/adapters/refdata"
	"github.com/okian/buildlab/internal/domain/analysis"
	"github.com/okian/buildlab/internal/domain/generation"
	"github.com/okian/buildlab/internal/domain/matching"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of pipeline workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds how many requests may wait for a worker.
	QueueSize int `koanf:"queue_size"`

	// MaxPromptLength is the longest accepted prompt in runes.
	MaxPromptLength int `koanf:"max_prompt_length"`

	// Timeouts in milliseconds: whole request, each oracle call, each dataset GET.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
	OracleTimeoutMS  int `koanf:"oracle_timeout_ms"`
	FetchTimeoutMS   int `koanf:"fetch_timeout_ms"`

	// Oracle selects the completion provider.
	OracleProvider string `koanf:"oracle_provider"`
	OracleModel    string `koanf:"oracle_model"`
	OracleAPIKey   string `koanf:"oracle_api_key"`
	OracleBaseURL  string `koanf:"oracle_base_url"`

	// Sampling temperatures per oracle call.
	AnalysisTemperature   float64 `koanf:"analysis_temperature"`
	GenerationTemperature float64 `koanf:"generation_temperature"`
	MatchTemperature      float64 `koanf:"match_temperature"`

	// Reference dataset locations.
	DatasetBaseURL        string `koanf:"dataset_base_url"`
	AttributeWeightsPath  string `koanf:"attribute_weights_path"`
	BadgeRequirementsPath string `koanf:"badge_requirements_path"`
	BuildNamesPath        string `koanf:"build_names_path"`
	BadgeTiersPath        string `koanf:"badge_tiers_path"`
	CommunityBuildsURL    string `koanf:"community_builds_url"`

	// DatasetRatePerSec and DatasetBurst limit outbound dataset requests.
	DatasetRatePerSec float64 `koanf:"dataset_rate_per_sec"`
	DatasetBurst      int     `koanf:"dataset_burst"`

	// DatasetCacheTTLMS keeps a fetched dataset snapshot; 0 disables caching.
	DatasetCacheTTLMS int `koanf:"dataset_cache_ttl_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		WorkerCount:           runtime.NumCPU() * 2,
		QueueSize:             256,
		MaxPromptLength:       2000,
		RequestTimeoutMS:      90_000,
		OracleTimeoutMS:       60_000,
		FetchTimeoutMS:        10_000,
		OracleProvider:        oracle.ProviderOpenAI,
		AnalysisTemperature:   analysis.DefaultTemperature,
		GenerationTemperature: generation.DefaultTemperature,
		MatchTemperature:      matching.DefaultTemperature,
		DatasetBaseURL:        refdata.DefaultBaseURL,
		AttributeWeightsPath:  refdata.DefaultWeightsPath,
		BadgeRequirementsPath: refdata.DefaultRequirementsPath,
		BuildNamesPath:        refdata.DefaultBuildNamesPath,
		BadgeTiersPath:        refdata.DefaultBadgeTiersPath,
		CommunityBuildsURL:    refdata.DefaultCommunityURL,
		DatasetRatePerSec:     10,
		DatasetBurst:          4,
		DatasetCacheTTLMS:     300_000,
	}
}

// RequestTimeout bounds a whole request.
func (c *Config) RequestTimeout() time.Duration { return ms(c.RequestTimeoutMS) }

// OracleTimeout bounds one oracle call.
func (c *Config) OracleTimeout() time.Duration { return ms(c.OracleTimeoutMS) }

// FetchTimeout bounds one dataset GET.
func (c *Config) FetchTimeout() time.Duration { return ms(c.FetchTimeoutMS) }

// DatasetCacheTTL is how long a dataset snapshot is reused.
func (c *Config) DatasetCacheTTL() time.Duration { return ms(c.DatasetCacheTTLMS) }

// Oracle returns the oracle client settings.
func (c *Config) Oracle() oracle.Config {
	return oracle.Config{
		Provider: c.OracleProvider,
		Model:    c.OracleModel,
		APIKey:   c.OracleAPIKey,
		BaseURL:  c.OracleBaseURL,
		Timeout:  c.OracleTimeout(),
	}
}

// DatasetPaths returns the dataset file names.
func (c *Config) DatasetPaths() refdata.Paths {
	return refdata.Paths{
		Weights:      c.AttributeWeightsPath,
		Requirements: c.BadgeRequirementsPath,
		BuildNames:   c.BuildNamesPath,
		BadgeTiers:   c.BadgeTiersPath,
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
