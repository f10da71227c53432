package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-project" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.API.BaseURL != "http://localhost:5000" {
			t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
		}
		if cfg.API.Timeout != 5*time.Second {
			t.Fatalf("expected 5s timeout, got %v", cfg.API.Timeout)
		}
		if cfg.Schema != DefaultSchemaPath {
			t.Fatalf("expected default schema path, got %q", cfg.Schema)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\napi:\n  base_url: https://panel.example\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.API.Timeout != DefaultTimeout {
			t.Fatalf("expected default timeout, got %v", cfg.API.Timeout)
		}
		if cfg.Session.DSN != DefaultSessionDSN {
			t.Fatalf("expected default dsn, got %q", cfg.Session.DSN)
		}
	})

	t.Run("env overrides yaml", func(t *testing.T) {
		t.Setenv("RPGPANEL_BASE_URL", "https://override.example")
		t.Setenv("RPGPANEL_TOKEN", "secret")
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.API.BaseURL != "https://override.example" {
			t.Fatalf("expected env base url, got %q", cfg.API.BaseURL)
		}
		if cfg.API.Token != "secret" {
			t.Fatalf("expected env token, got %q", cfg.API.Token)
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\napi:\n  base_url: http://localhost\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing base url", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\napi:\n  base_url: \n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported base url scheme", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\napi:\n  base_url: ftp://localhost\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported session dsn", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\napi:\n  base_url: http://localhost\nsession:\n  dsn: mysql://db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\napi:\n  base_url: http://localhost\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
