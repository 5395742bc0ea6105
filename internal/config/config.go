package config

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/samsriram712/alex/internal/model"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// AuthConfig says where the bearer credential comes from. The first
// non-empty source wins, in the order token, token_file, token_command, token_env.
type AuthConfig struct {
	Token        string `yaml:"token,omitempty"`
	TokenFile    string `yaml:"token_file,omitempty"`
	TokenCommand string `yaml:"token_command,omitempty"`
	TokenEnv     string `yaml:"token_env,omitempty"`
	TokenTTL     string `yaml:"token_ttl,omitempty"`
}

type Config struct {
	APIURL           string         `yaml:"api_url"`
	WebURL           string         `yaml:"web_url,omitempty"`
	Timeout          string         `yaml:"timeout"`
	LogLevel         string         `yaml:"log_level"`
	HistoryRetention string         `yaml:"history_retention"`
	AlertDomains     []model.Domain `yaml:"alert_domains"`
	TodoDomains      []model.Domain `yaml:"todo_domains"`
	Auth             AuthConfig     `yaml:"auth"`
}

func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// TokenTTLDuration is how long a command-issued token may be reused. Zero
// means the command runs for every request.
func (c *Config) TokenTTLDuration() time.Duration {
	if c.Auth.TokenTTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	if c.HistoryRetention == "" {
		return 30 * 24 * time.Hour
	}
	d, err := ParseDays(c.HistoryRetention)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return d
}

// ParseDays parses a duration that may use an "Nd" day suffix.
func ParseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "alex", "config.yaml")
}

// HistoryPath is the SQLite file holding the transition journal.
func HistoryPath() string {
	return filepath.Join(xdg.DataHome, "alex", "history.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "alex", "alex.log")
}

// LoadEnvFile reads KEY=value pairs into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading env file %s: %w", path, err)
	}
	return nil
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Non-fatal: keep the embedded defaults
		_ = writeDefaults(path)
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		// Fields absent from the file keep their default values
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ALEX_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("ALEX_WEB_URL"); v != "" {
		cfg.WebURL = v
	}
	if v := os.Getenv("ALEX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.WebURL = strings.TrimRight(cfg.WebURL, "/")
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if cfg.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	if err := checkHTTPURL("api_url", cfg.APIURL); err != nil {
		return err
	}
	if cfg.WebURL != "" {
		if err := checkHTTPURL("web_url", cfg.WebURL); err != nil {
			return err
		}
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
	}
	if cfg.Auth.TokenTTL != "" {
		if _, err := time.ParseDuration(cfg.Auth.TokenTTL); err != nil {
			return fmt.Errorf("auth.token_ttl: %w", err)
		}
	}
	if len(cfg.AlertDomains) == 0 {
		return fmt.Errorf("alert_domains must list at least one domain")
	}
	if len(cfg.TodoDomains) == 0 {
		return fmt.Errorf("todo_domains must list at least one domain")
	}
	for _, d := range append(append([]model.Domain{}, cfg.AlertDomains...), cfg.TodoDomains...) {
		if !d.Valid() {
			return fmt.Errorf("unknown domain %q (valid: portfolio, retirement, research, system)", d)
		}
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", cfg.LogLevel)
	}
	return nil
}

func checkHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: url scheme must be http or https, got %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: url has no host", field)
	}
	return nil
}
