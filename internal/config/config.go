// Package config holds the loadmore CLI configuration.
//
// Values are layered: defaults, then the TOML file, then LOADMORE_*
// environment variables, then command-line flags. File and environment
// values never override a flag the user set explicitly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Sternrassler/loadmore/pkg/dom"
	"github.com/Sternrassler/loadmore/pkg/logging"
	"github.com/Sternrassler/loadmore/pkg/pagination"
)

// DefaultUserAgent identifies loadmore to the sites it expands.
const DefaultUserAgent = "loadmore/1.0 (+https://github.com/Sternrassler/loadmore)"

// Config holds CLI configuration.
type Config struct {
	UserAgent   string
	HTTPTimeout time.Duration

	MaxPages       int
	MaxConcurrency int
	PageTimeout    time.Duration

	RedisAddr  string
	SessionTTL time.Duration

	Sanitize bool

	LogLevel  string
	LogPretty bool

	ListenAddr string

	Selectors dom.Selectors
}

// Default returns a Config with default values.
func Default() Config {
	scroll := pagination.DefaultConfig()

	return Config{
		UserAgent:      DefaultUserAgent,
		HTTPTimeout:    30 * time.Second,
		MaxPages:       scroll.MaxPages,
		MaxConcurrency: scroll.MaxConcurrency,
		PageTimeout:    scroll.Timeout,
		SessionTTL:     30 * time.Minute,
		LogLevel:       string(logging.LevelInfo),
		ListenAddr:     ":8080",
		Selectors:      dom.DefaultSelectors(),
	}
}

// DefaultPath returns ~/.loadmore/config.toml, or "" without a home
// directory.
func DefaultPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".loadmore", "config.toml")
	}
	return ""
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("user-agent is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max-pages must not be negative")
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.PageTimeout <= 0 {
		return fmt.Errorf("page-timeout must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session-ttl must be positive")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}

// Scroller returns the scroller configuration.
func (c *Config) Scroller() pagination.Config {
	return pagination.Config{
		MaxPages:       c.MaxPages,
		MaxConcurrency: c.MaxConcurrency,
		Timeout:        c.PageTimeout,
	}
}

// Logging returns the logger configuration. Validate must have passed.
func (c *Config) Logging() logging.Config {
	level, _ := logging.ParseLevel(c.LogLevel)

	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Pretty = c.LogPretty
	return cfg
}

// configSetter applies values unless the matching flag was set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses an environment value. "0" is kept.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
