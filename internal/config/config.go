package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adityjk/news-terminal/internal/news"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "news-terminal"

// Environment variables consulted for the API key, in priority order.
var apiKeyEnv = []string{"NEWS_TERMINAL_API_KEY", "NEWSAPI_KEY"}

type SearchConfig struct {
	Endpoint      string `yaml:"endpoint"`
	MinInterval   string `yaml:"min_interval"`
	IncludeSource bool   `yaml:"include_source"`
}

type ScraperConfig struct {
	UserAgent    string `yaml:"user_agent"`
	MinParagraph int    `yaml:"min_paragraph"`
}

type Config struct {
	APIKey          string        `yaml:"api_key"`
	Provider        string        `yaml:"provider"`
	Country         string        `yaml:"country"`
	Category        string        `yaml:"category"`
	PageSize        int           `yaml:"page_size"`
	RefreshInterval string        `yaml:"refresh_interval"`
	Timeout         string        `yaml:"timeout"`
	NewsAPIURL      string        `yaml:"newsapi_url"`
	Search          SearchConfig  `yaml:"search"`
	Scraper         ScraperConfig `yaml:"scraper"`
	LogLevel        string        `yaml:"log_level"`
	Retention       string        `yaml:"retention"`

	path string
}

// ResolvedAPIKey returns the key from the config file, falling back to the
// environment.
func (c *Config) ResolvedAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	for _, name := range apiKeyEnv {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// NeedsAPIKey is true when the selected provider requires a key and none is
// available.
func (c *Config) NeedsAPIKey() bool {
	return c.Provider == "newsapi" && c.ResolvedAPIKey() == ""
}

func (c *Config) RefreshDuration() time.Duration {
	return parseDuration(c.RefreshInterval, 5*time.Minute)
}

func (c *Config) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

func (c *Config) SearchInterval() time.Duration {
	return parseDuration(c.Search.MinInterval, time.Second)
}

func (c *Config) RetentionDuration() time.Duration {
	return parseDuration(c.Retention, 30*24*time.Hour)
}

// StartCategory is the category selected when the UI opens.
func (c *Config) StartCategory() news.Category {
	cat, err := news.ParseCategory(c.Category)
	if err != nil {
		return news.Headlines
	}
	return cat
}

// Path is the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// ParseDuration accepts Go durations plus an "Nd" day suffix.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func JournalPath() string {
	return filepath.Join(xdg.CacheHome, appName, "journal.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
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

// Load reads the config at path (or the XDG default). Keys missing from the
// file keep their default values. A missing file is created from defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: embedded defaults still apply
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o600)
}

// SaveAPIKey stores key in the config file, keeping every other setting.
// An empty key clears it.
func (c *Config) SaveAPIKey(key string) error {
	path := c.path
	if path == "" {
		path = DefaultConfigPath()
	}

	var doc map[string]interface{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("reading config: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	doc["api_key"] = strings.TrimSpace(key)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	// The file holds a credential
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	c.APIKey = strings.TrimSpace(key)
	return nil
}

func validate(cfg *Config) error {
	switch cfg.Provider {
	case "newsapi", "rss":
	default:
		return fmt.Errorf("unknown provider %q (valid: newsapi, rss)", cfg.Provider)
	}
	if len(cfg.Country) != 2 {
		return fmt.Errorf("country must be a two-letter code, got %q", cfg.Country)
	}
	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		return fmt.Errorf("page_size must be between 1 and 100, got %d", cfg.PageSize)
	}
	if _, err := news.ParseCategory(cfg.Category); err != nil {
		return err
	}
	for name, raw := range map[string]string{
		"newsapi_url":     cfg.NewsAPIURL,
		"search.endpoint": cfg.Search.Endpoint,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid url: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s: url scheme must be http or https, got %q", name, u.Scheme)
		}
	}
	for name, raw := range map[string]string{
		"refresh_interval":    cfg.RefreshInterval,
		"timeout":             cfg.Timeout,
		"search.min_interval": cfg.Search.MinInterval,
		"retention":           cfg.Retention,
	} {
		if raw == "" {
			continue
		}
		if _, err := ParseDuration(raw); err != nil {
			return fmt.Errorf("%s: invalid duration %q", name, raw)
		}
	}
	return nil
}
