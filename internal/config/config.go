// Package config loads crawler settings from flags, KCYCLE_* environment
// variables and an optional YAML file through viper.
package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/spf13/viper"

	"github.com/pfrederiksen/kcycle-crawler/internal/dataset"
	"github.com/pfrederiksen/kcycle-crawler/internal/fetch"
	"github.com/pfrederiksen/kcycle-crawler/internal/logger"
	"github.com/pfrederiksen/kcycle-crawler/internal/scraper"
)

const (
	EnvPrefix      = "KCYCLE"
	ConfigName     = ".kcycle"
	DefaultPause   = 0.5 // seconds
	DefaultRetries = 2
)

// Keys shared by the flag set, the environment and the config file
const (
	KeyBaseURL    = "base-url"
	KeyUserAgent  = "user-agent"
	KeyTimeout    = "timeout"
	KeyRetries    = "retries"
	KeyRetryWait  = "retry-wait"
	KeyPause      = "pause"
	KeyLogLevel   = "log-level"
	KeyStrictKeys = "strict-keys"
	KeyDataDir    = "data-dir"
)

// Config holds the settings shared by every command
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	Retries    int
	RetryWait  time.Duration
	Pause      time.Duration
	LogLevel   logger.Level
	StrictKeys bool
	DataDir    string
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, scraper.DefaultBaseURL)
	v.SetDefault(KeyUserAgent, fetch.DefaultUserAgent)
	v.SetDefault(KeyTimeout, fetch.DefaultTimeout)
	v.SetDefault(KeyRetries, DefaultRetries)
	v.SetDefault(KeyRetryWait, time.Second)
	v.SetDefault(KeyPause, DefaultPause)
	v.SetDefault(KeyLogLevel, string(logger.LevelInfo))
	v.SetDefault(KeyStrictKeys, false)
	v.SetDefault(KeyDataDir, dataset.DefaultDir)
}

// Load reads and validates the settings held by v
func Load(v *viper.Viper) (Config, error) {
	level, err := logger.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BaseURL:    v.GetString(KeyBaseURL),
		UserAgent:  v.GetString(KeyUserAgent),
		Timeout:    v.GetDuration(KeyTimeout),
		Retries:    v.GetInt(KeyRetries),
		RetryWait:  v.GetDuration(KeyRetryWait),
		Pause:      seconds(v.GetFloat64(KeyPause)),
		LogLevel:   level,
		StrictKeys: v.GetBool(KeyStrictKeys),
		DataDir:    v.GetString(KeyDataDir),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// seconds converts a float number of seconds to a Duration
func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// Validate reports every invalid setting
func (c Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid %s: %q", KeyBaseURL, c.BaseURL))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyTimeout, c.Timeout))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", KeyRetries, c.Retries))
	}
	if c.Pause < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %s", KeyPause, c.Pause))
	}

	return errors.Join(errs...)
}

// FetchOptions returns the HTTP client settings
func (c Config) FetchOptions() fetch.Options {
	return fetch.Options{
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
		Retries:   c.Retries,
		RetryWait: c.RetryWait,
	}
}
