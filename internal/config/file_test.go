package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
user_agent = "crawler/2.0"
http_timeout = "10s"
max_pages = 5
sanitize = true
redis_addr = "localhost:6379"

[selectors]
anchor = ".next-page"
container = ".posts"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if fc.UserAgent != "crawler/2.0" || fc.HTTPTimeout != "10s" || fc.MaxPages != 5 {
		t.Errorf("LoadFile() = %+v", fc)
	}
	if fc.Sanitize == nil || !*fc.Sanitize {
		t.Error("sanitize not parsed")
	}
	if fc.Selectors.Anchor != ".next-page" || fc.Selectors.Container != ".posts" {
		t.Errorf("selectors = %+v", fc.Selectors)
	}
	if !FileExists(path) {
		t.Error("FileExists() = false for written file")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("max_pages = ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestApplyFile(t *testing.T) {
	trueVal := true

	tests := []struct {
		name    string
		file    FileConfig
		changed map[string]bool
		check   func(t *testing.T, cfg Config)
		wantErr bool
	}{
		{
			name: "applies values",
			file: FileConfig{
				UserAgent:   "file-agent",
				HTTPTimeout: "5s",
				PageTimeout: "1m",
				SessionTTL:  "1h",
				MaxPages:    9,
				Sanitize:    &trueVal,
				Selectors:   FileSelectors{Loader: ".spinner"},
			},
			changed: map[string]bool{},
			check: func(t *testing.T, cfg Config) {
				if cfg.UserAgent != "file-agent" || cfg.HTTPTimeout != 5*time.Second {
					t.Errorf("cfg = %+v", cfg)
				}
				if cfg.PageTimeout != time.Minute || cfg.SessionTTL != time.Hour {
					t.Errorf("durations = %v %v", cfg.PageTimeout, cfg.SessionTTL)
				}
				if cfg.MaxPages != 9 || !cfg.Sanitize {
					t.Errorf("max pages %d sanitize %v", cfg.MaxPages, cfg.Sanitize)
				}
				if cfg.Selectors.Loader != ".spinner" || cfg.Selectors.Anchor != ".wp-load-more__button" {
					t.Errorf("selectors = %+v", cfg.Selectors)
				}
			},
		},
		{
			name:    "respects changed flags",
			file:    FileConfig{UserAgent: "file-agent", MaxPages: 9},
			changed: map[string]bool{"user-agent": true},
			check: func(t *testing.T, cfg Config) {
				if cfg.UserAgent != DefaultUserAgent {
					t.Errorf("UserAgent = %q, flag value should win", cfg.UserAgent)
				}
				if cfg.MaxPages != 9 {
					t.Errorf("MaxPages = %d", cfg.MaxPages)
				}
			},
		},
		{
			name:    "invalid duration",
			file:    FileConfig{HTTPTimeout: "soon"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := ApplyFile(&cfg, tt.file, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
