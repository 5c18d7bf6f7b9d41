// Package config loads the hierarchical application configuration: built-in
// defaults, then an optional YAML file, then BANKINGEST_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BANKINGEST_LOG_LEVEL.
const EnvPrefix = "BANKINGEST"

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Database struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"database" yaml:"database"`

	AI struct {
		Enabled                bool   `mapstructure:"enabled" yaml:"enabled"`
		Model                  string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds         int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		MaxDescriptionsPerCall int    `mapstructure:"max_descriptions_per_call" yaml:"max_descriptions_per_call"`
		APIKey                 string `mapstructure:"api_key" yaml:"-"`
	} `mapstructure:"ai" yaml:"ai"`

	Categorization struct {
		SeedFile       string `mapstructure:"seed_file" yaml:"seed_file"`
		HeuristicsFile string `mapstructure:"heuristics_file" yaml:"heuristics_file"`
		LearnKeywords  bool   `mapstructure:"learn_keywords" yaml:"learn_keywords"`
		MaxPropagation int    `mapstructure:"max_propagation" yaml:"max_propagation"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Recurring struct {
		SnoozeDays       int     `mapstructure:"snooze_days" yaml:"snooze_days"`
		TopN             int     `mapstructure:"top_n" yaml:"top_n"`
		RecentWindowDays int     `mapstructure:"recent_window_days" yaml:"recent_window_days"`
		AmountTolerance  float64 `mapstructure:"amount_tolerance" yaml:"amount_tolerance"`
	} `mapstructure:"recurring" yaml:"recurring"`

	Ingest struct {
		Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	} `mapstructure:"ingest" yaml:"ingest"`
}

// AITimeout returns the per-call deadline for the categorization service.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// SnoozeDuration returns how long a dismissed suggestion stays hidden.
func (c *Config) SnoozeDuration() time.Duration {
	return time.Duration(c.Recurring.SnoozeDays) * 24 * time.Hour
}

// InitializeConfig loads configuration from the standard search paths.
func InitializeConfig() (*Config, error) {
	return InitializeConfigFrom("")
}

// InitializeConfigFrom loads configuration from configFile when it is not
// empty, otherwise from config.yaml in $HOME/.bank-ingest, .bank-ingest or
// the working directory. A missing file is not an error.
func InitializeConfigFrom(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.bank-ingest")
		v.AddConfigPath(".bank-ingest")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			if configFile != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// The API key keeps its conventional unprefixed variable name.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Defaults returns a Config populated only with default values.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.path", "bank-ingest.db")

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.max_descriptions_per_call", 40)
	v.SetDefault("ai.api_key", "")

	v.SetDefault("categorization.seed_file", "")
	v.SetDefault("categorization.heuristics_file", "")
	v.SetDefault("categorization.learn_keywords", true)
	v.SetDefault("categorization.max_propagation", 200)

	v.SetDefault("recurring.snooze_days", 30)
	v.SetDefault("recurring.top_n", 5)
	v.SetDefault("recurring.recent_window_days", 45)
	v.SetDefault("recurring.amount_tolerance", 5.0)

	v.SetDefault("ingest.concurrency", 4)
}

func validateConfig(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", cfg.Log.Format)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if cfg.AI.TimeoutSeconds < 1 || cfg.AI.TimeoutSeconds > 300 {
		return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", cfg.AI.TimeoutSeconds)
	}
	if cfg.AI.MaxDescriptionsPerCall < 1 || cfg.AI.MaxDescriptionsPerCall > 500 {
		return fmt.Errorf("ai.max_descriptions_per_call must be between 1 and 500, got: %d", cfg.AI.MaxDescriptionsPerCall)
	}
	if cfg.Categorization.MaxPropagation < 1 {
		return fmt.Errorf("categorization.max_propagation must be positive, got: %d", cfg.Categorization.MaxPropagation)
	}
	if cfg.Recurring.SnoozeDays < 1 {
		return fmt.Errorf("recurring.snooze_days must be positive, got: %d", cfg.Recurring.SnoozeDays)
	}
	if cfg.Recurring.TopN < 1 {
		return fmt.Errorf("recurring.top_n must be positive, got: %d", cfg.Recurring.TopN)
	}
	if cfg.Recurring.RecentWindowDays < 1 {
		return fmt.Errorf("recurring.recent_window_days must be positive, got: %d", cfg.Recurring.RecentWindowDays)
	}
	if cfg.Recurring.AmountTolerance < 0 {
		return fmt.Errorf("recurring.amount_tolerance must not be negative, got: %f", cfg.Recurring.AmountTolerance)
	}
	if cfg.Ingest.Concurrency < 1 || cfg.Ingest.Concurrency > 64 {
		return fmt.Errorf("ingest.concurrency must be between 1 and 64, got: %d", cfg.Ingest.Concurrency)
	}
	return nil
}
