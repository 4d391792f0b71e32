package config

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with string durations for TOML.
type FileConfig struct {
	UserAgent      string `toml:"user_agent"`
	HTTPTimeout    string `toml:"http_timeout"`
	MaxPages       int    `toml:"max_pages"`
	MaxConcurrency int    `toml:"max_concurrency"`
	PageTimeout    string `toml:"page_timeout"`
	RedisAddr      string `toml:"redis_addr"`
	SessionTTL     string `toml:"session_ttl"`
	Sanitize       *bool  `toml:"sanitize"`
	LogLevel       string `toml:"log_level"`
	LogPretty      *bool  `toml:"log_pretty"`
	ListenAddr     string `toml:"listen_addr"`

	Selectors FileSelectors `toml:"selectors"`
}

// FileSelectors is the [selectors] table.
type FileSelectors struct {
	Anchor          string `toml:"anchor"`
	Listing         string `toml:"listing"`
	Container       string `toml:"container"`
	Loader          string `toml:"loader"`
	LoadingClass    string `toml:"loading_class"`
	LoadingTextAttr string `toml:"loading_text_attr"`
}

// LoadFile reads and parses a TOML config file.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ApplyFile applies fc to cfg, skipping flags present in changed.
func ApplyFile(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("user-agent", fc.UserAgent, &cfg.UserAgent)
	s.setString("redis-addr", fc.RedisAddr, &cfg.RedisAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("addr", fc.ListenAddr, &cfg.ListenAddr)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("page-timeout", fc.PageTimeout, &cfg.PageTimeout); err != nil {
		return err
	}
	if err := s.setDuration("session-ttl", fc.SessionTTL, &cfg.SessionTTL); err != nil {
		return err
	}

	s.setInt("max-pages", fc.MaxPages, &cfg.MaxPages)
	s.setInt("concurrency", fc.MaxConcurrency, &cfg.MaxConcurrency)

	s.setBool("sanitize", fc.Sanitize, &cfg.Sanitize)
	s.setBool("log-pretty", fc.LogPretty, &cfg.LogPretty)

	s.setString("selector-anchor", fc.Selectors.Anchor, &cfg.Selectors.Anchor)
	s.setString("selector-listing", fc.Selectors.Listing, &cfg.Selectors.Listing)
	s.setString("selector-container", fc.Selectors.Container, &cfg.Selectors.Container)
	s.setString("selector-loader", fc.Selectors.Loader, &cfg.Selectors.Loader)
	s.setString("selector-loading-class", fc.Selectors.LoadingClass, &cfg.Selectors.LoadingClass)
	s.setString("selector-loading-text-attr", fc.Selectors.LoadingTextAttr, &cfg.Selectors.LoadingTextAttr)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
