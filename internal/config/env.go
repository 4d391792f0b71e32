package config

import "os"

// ApplyEnv applies LOADMORE_* environment variables to cfg, skipping flags
// present in changed. Malformed values are errors.
func ApplyEnv(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("user-agent", os.Getenv("LOADMORE_USER_AGENT"), &cfg.UserAgent)
	s.setString("redis-addr", os.Getenv("LOADMORE_REDIS_ADDR"), &cfg.RedisAddr)
	s.setString("log-level", os.Getenv("LOADMORE_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("addr", os.Getenv("LOADMORE_LISTEN_ADDR"), &cfg.ListenAddr)

	if err := s.setDuration("timeout", os.Getenv("LOADMORE_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("page-timeout", os.Getenv("LOADMORE_PAGE_TIMEOUT"), &cfg.PageTimeout); err != nil {
		return err
	}
	if err := s.setDuration("session-ttl", os.Getenv("LOADMORE_SESSION_TTL"), &cfg.SessionTTL); err != nil {
		return err
	}

	if err := s.setIntFromString("max-pages", os.Getenv("LOADMORE_MAX_PAGES"), &cfg.MaxPages); err != nil {
		return err
	}
	if err := s.setIntFromString("concurrency", os.Getenv("LOADMORE_MAX_CONCURRENCY"), &cfg.MaxConcurrency); err != nil {
		return err
	}

	s.setBoolFromString("sanitize", os.Getenv("LOADMORE_SANITIZE"), &cfg.Sanitize)
	s.setBoolFromString("log-pretty", os.Getenv("LOADMORE_LOG_PRETTY"), &cfg.LogPretty)

	s.setString("selector-anchor", os.Getenv("LOADMORE_SELECTOR_ANCHOR"), &cfg.Selectors.Anchor)
	s.setString("selector-container", os.Getenv("LOADMORE_SELECTOR_CONTAINER"), &cfg.Selectors.Container)

	return nil
}
