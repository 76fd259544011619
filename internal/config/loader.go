package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/buildlab/internal/adapters/oracle"
)

// Environment variables read outside the prefixed key space.
const (
	EnvPrefix   = "BUILDLAB_"
	EnvConfig   = "BUILDLAB_CONFIG"
	EnvDotEnv   = "BUILDLAB_ENV_FILE"
	defaultEnvF = ".env"
)

const maxTemperature = 2

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if BUILDLAB_CONFIG is set
//  3. env (prefix BUILDLAB_)
//
// A .env file is read into the environment first; variables that are
// already set win over it.
func Load(_ context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// BUILDLAB_QUEUE_SIZE -> queue_size (flat keys)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg.applyFallbacks()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv(EnvDotEnv)
	if path == "" {
		path = defaultEnvF
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}
	return nil
}

// applyFallbacks honours the provider's own variables when the prefixed
// keys are unset.
func (c *Config) applyFallbacks() {
	c.OracleProvider = strings.ToLower(strings.TrimSpace(c.OracleProvider))
	switch c.OracleProvider {
	case oracle.ProviderOpenAI:
		if c.OracleAPIKey == "" {
			c.OracleAPIKey = os.Getenv("OPENAI_API_KEY")
		}
		if c.OracleModel == "" {
			c.OracleModel = os.Getenv("OPENAI_MODEL")
		}
	case oracle.ProviderGemini:
		if c.OracleAPIKey == "" {
			c.OracleAPIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.OracleProvider != oracle.ProviderOpenAI && c.OracleProvider != oracle.ProviderGemini:
		return fmt.Errorf("%w: oracle_provider %q is not one of openai, gemini", ErrInvalidConfig, c.OracleProvider)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.MaxPromptLength < 1:
		return fmt.Errorf("%w: max_prompt_length must be positive", ErrInvalidConfig)
	case c.RequestTimeoutMS < 1 || c.OracleTimeoutMS < 1 || c.FetchTimeoutMS < 1:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	case c.DatasetCacheTTLMS < 0:
		return fmt.Errorf("%w: dataset_cache_ttl_ms must not be negative", ErrInvalidConfig)
	}
	temps := map[string]float64{
		"analysis_temperature":   c.AnalysisTemperature,
		"generation_temperature": c.GenerationTemperature,
		"match_temperature":      c.MatchTemperature,
	}
	for name, t := range temps {
		if t < 0 || t > maxTemperature {
			return fmt.Errorf("%w: %s %.2f is outside [0,2]", ErrInvalidConfig, name, t)
		}
	}
	return nil
}
