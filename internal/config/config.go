package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources Sources `yaml:"sources"`
	Store   Store   `yaml:"store"`
	Ingest  Ingest  `yaml:"ingest"`
	Server  Server  `yaml:"server"`
	Output  Output  `yaml:"output"`
}

type Sources struct {
	Feeds []Feed     `yaml:"feeds"`
	APIs  APIsConfig `yaml:"apis"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type APIsConfig struct {
	NewsAPI      NewsAPIConfig      `yaml:"newsapi"`
	AlphaVantage AlphaVantageConfig `yaml:"alphavantage"`
}

type NewsAPIConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type AlphaVantageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKeyEnv string `yaml:"api_key_env"`
	Topics    string `yaml:"topics"`
}

type Store struct {
	MongoURIEnv string `yaml:"mongo_uri_env"`
	Database    string `yaml:"database"`
	Collection  string `yaml:"collection"`
}

type Ingest struct {
	IntervalMinutes int `yaml:"interval_minutes"`
	RetentionDays   int `yaml:"retention_days"`
}

type Server struct {
	Port            int `yaml:"port"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

// ConfigDir returns the XDG config directory for finnews.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "finnews")
}

// DataDir returns the XDG data directory for finnews.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "finnews")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/finnews/config.yaml > ./config.yaml.
// When none exists the embedded defaults apply, so an empty path with a
// nil error means "run with defaults".
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path yields the
// embedded defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(DefaultConfigYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Sources: Sources{
			Feeds: defaultFeeds(),
			APIs: APIsConfig{
				NewsAPI: NewsAPIConfig{
					Enabled:   true,
					APIKeyEnv: "NEWS_API_KEY",
				},
				AlphaVantage: AlphaVantageConfig{
					Enabled:   true,
					APIKeyEnv: "ALPHA_VANTAGE_API_KEY",
					Topics:    "financial_markets,economy_fiscal,economy_monetary",
				},
			},
		},
		Store: Store{
			MongoURIEnv: "MONGO_URI",
			Database:    "financial_news_aggregator",
			Collection:  "news_articles",
		},
		Ingest: Ingest{
			IntervalMinutes: 15,
			RetentionDays:   30,
		},
		Server: Server{
			Port:            8000,
			CacheTTLSeconds: 30,
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

func defaultFeeds() []Feed {
	return []Feed{
		{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/news/rssindex"},
		{Name: "MarketWatch", URL: "http://feeds.marketwatch.com/marketwatch/topstories/"},
		{Name: "CNBC", URL: "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
		{Name: "Financial Times", URL: "https://www.ft.com/?format=rss"},
		{Name: "Bloomberg", URL: "https://feeds.bloomberg.com/markets/news.rss"},
		{Name: "Reuters Business", URL: "https://www.reutersagency.com/feed/?taxonomy=best-topics&post_type=best"},
		{Name: "WSJ Markets", URL: "https://feeds.a.dj.com/rss/RSSMarketsMain.xml"},
	}
}

// MongoURI resolves the primary-store connection string from the
// environment. Empty means the primary is not configured.
func (c *Config) MongoURI() string {
	env := c.Store.MongoURIEnv
	if env == "" {
		env = "MONGO_URI"
	}
	return os.Getenv(env)
}

// UpdateInterval returns the ingestion interval, honoring the
// UPDATE_INTERVAL environment override (minutes).
func (c *Config) UpdateInterval() time.Duration {
	minutes := c.Ingest.IntervalMinutes
	if v := os.Getenv("UPDATE_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			minutes = n
		}
	}
	if minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
