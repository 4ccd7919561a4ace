// Package config resolves runtime settings from flags, environment and config files.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration.
const (
	DefaultAPIBaseURL = "https://api.github.com/"
	DefaultWorkers    = 1
	MaxWorkers        = 32
	DefaultUploadDir  = "uploads"
	DefaultAddr       = ":8080"
	DefaultOutput     = "table"
	DefaultLogFormat  = "text"
	EnvPrefix         = "CANDIDATE_STATS"
)

// Config holds the resolved runtime configuration.
type Config struct {
	APIBaseURL     string        `mapstructure:"api-base-url"`
	Workers        int           `mapstructure:"workers"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"` // zero means no timeout
	UploadDir      string        `mapstructure:"upload-dir"`
	Addr           string        `mapstructure:"addr"`
	Output         string        `mapstructure:"output"`
	LogFormat      string        `mapstructure:"log-format"`
	Verbose        bool          `mapstructure:"verbose"`
	Color          bool          `mapstructure:"color"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api-base-url", DefaultAPIBaseURL)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("request-timeout", "0s")
	v.SetDefault("upload-dir", DefaultUploadDir)
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("log-format", DefaultLogFormat)
	v.SetDefault("verbose", false)
	v.SetDefault("color", true)
}

// BindEnvironment makes v read CANDIDATE_STATS_* variables, with dashes in keys
// written as underscores.
func BindEnvironment(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load unmarshals the values resolved by v and validates them.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and normalizes enumerations.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api-base-url '%s'. must be an absolute url", c.APIBaseURL)
	}
	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d (received %d)", MaxWorkers, c.Workers)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request-timeout cannot be negative (received %s)", c.RequestTimeout)
	}
	c.Output = strings.ToLower(c.Output)
	if c.Output != "table" && c.Output != "json" {
		return fmt.Errorf("invalid output format '%s'. must be table, json", c.Output)
	}
	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log-format '%s'. must be text, json", c.LogFormat)
	}
	return nil
}
