package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultSessionDSN = "sqlite://.rpgpanel/session.db"
	DefaultSchemaPath = "panels.yaml"
)

type ProjectConfig struct {
	Project string        `yaml:"project"`
	Version int           `yaml:"version"`
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Schema  string        `yaml:"schema"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"RPGPANEL_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"RPGPANEL_TIMEOUT"`
	// Token overrides the stored session credential. Never read from YAML.
	Token string `yaml:"-" env:"RPGPANEL_TOKEN"`
}

type SessionConfig struct {
	DSN string `yaml:"dsn" env:"RPGPANEL_SESSION_DSN"`
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyProjectDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyProjectDefaults(cfg *ProjectConfig) {
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(cfg.Session.DSN) == "" {
		cfg.Session.DSN = DefaultSessionDSN
	}
	if strings.TrimSpace(cfg.Schema) == "" {
		cfg.Schema = DefaultSchemaPath
	}
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api base_url is required")
	}
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base_url must be http or https, got %q", u.Scheme)
	}
	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	if !strings.HasPrefix(cfg.Session.DSN, "sqlite://") && !strings.HasPrefix(cfg.Session.DSN, "postgres://") && !strings.HasPrefix(cfg.Session.DSN, "postgresql://") {
		return fmt.Errorf("unsupported session dsn scheme: %s", cfg.Session.DSN)
	}
	return nil
}
