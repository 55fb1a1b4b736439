// Package config handles configuration loading for marketlens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"  yaml:"analysis"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ProvidersConfig holds external data provider settings.
// Empty keys leave the corresponding provider unconfigured; the engine
// falls back per component rather than failing at startup.
type ProvidersConfig struct {
	AlphaVantageKey string `mapstructure:"alpha_vantage_key" yaml:"alpha_vantage_key"`
	NewsAPIKey      string `mapstructure:"newsapi_key"       yaml:"newsapi_key"`
	GeminiKey       string `mapstructure:"gemini_key"        yaml:"gemini_key"`
	GeminiModel     string `mapstructure:"gemini_model"      yaml:"gemini_model"`
}

// AnalysisConfig holds aggregation engine settings.
type AnalysisConfig struct {
	TopK                int `mapstructure:"top_k"                 yaml:"top_k"`
	MaxCandidates       int `mapstructure:"max_candidates"        yaml:"max_candidates"`
	Workers             int `mapstructure:"workers"               yaml:"workers"`
	CandidateTimeoutSec int `mapstructure:"candidate_timeout_sec" yaml:"candidate_timeout_sec"`
	FetchTimeoutSec     int `mapstructure:"fetch_timeout_sec"     yaml:"fetch_timeout_sec"`
	NewsLimit           int `mapstructure:"news_limit"            yaml:"news_limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.marketlens/config.yaml (home directory)
//  3. /etc/marketlens/config.yaml (system)
//
// Environment variables override config file values.
// Format: MARKETLENS_<SECTION>_<KEY>, e.g., MARKETLENS_PROVIDERS_NEWSAPI_KEY
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".marketlens"))
	v.AddConfigPath("/etc/marketlens")

	v.SetEnvPrefix("MARKETLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("MARKETLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("providers.gemini_model", "gemini-2.0-flash")

	// Analysis defaults — bounded fan-out regardless of candidate list size
	v.SetDefault("analysis.top_k", 3)
	v.SetDefault("analysis.max_candidates", 10)
	v.SetDefault("analysis.workers", 5)
	v.SetDefault("analysis.candidate_timeout_sec", 15)
	v.SetDefault("analysis.fetch_timeout_sec", 10)
	v.SetDefault("analysis.news_limit", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("MARKETLENS_PROVIDERS_ALPHA_VANTAGE_KEY"); key != "" {
		cfg.Providers.AlphaVantageKey = key
	}
	if key := os.Getenv("MARKETLENS_PROVIDERS_NEWSAPI_KEY"); key != "" {
		cfg.Providers.NewsAPIKey = key
	}
	if key := os.Getenv("MARKETLENS_PROVIDERS_GEMINI_KEY"); key != "" {
		cfg.Providers.GeminiKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
